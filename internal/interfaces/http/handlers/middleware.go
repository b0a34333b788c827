package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header(constants.HeaderRequestID, requestID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyClientIP, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggingMiddleware logs incoming requests.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"bytes":      c.Writer.Size(),
		}
		if c.Writer.Status() >= 500 {
			log.Warn(c.Request.Context(), "Request failed", fields)
			return
		}
		log.Info(c.Request.Context(), "Request processed", fields)
	}
}

// RecoveryMiddleware recovers from panics.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				log.Error(c.Request.Context(), "Panic recovered", err, logger.Fields{"path": c.Request.URL.Path})
				appErr := errors.ErrInternal("internal server error")
				c.AbortWithStatusJSON(appErr.HTTPStatus(), dto.ErrorResponse(appErr, RequestID(c)))
			}
		}()
		c.Next()
	}
}

// RequestID returns the request ID assigned by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(string(constants.ContextKeyRequestID))
}

// respondError writes err as an APIResponse with the status it carries.
func respondError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatusOf(err), dto.ErrorResponse(err, RequestID(c)))
}
