package grpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	grpclib "google.golang.org/grpc"
	grpcCodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// InterceptorChain 拦截器链
type InterceptorChain struct {
	log logger.Logger
}

// NewInterceptorChain 创建拦截器链
func NewInterceptorChain(log logger.Logger) *InterceptorChain {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &InterceptorChain{log: log}
}

// UnaryRecoveryInterceptor 恢复拦截器(捕获 panic)
func (ic *InterceptorChain) UnaryRecoveryInterceptor() grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				ic.log.Error(ctx, "gRPC handler panic recovered", fmt.Errorf("%v", r),
					logger.Fields{"method": info.FullMethod},
				)
				err = status.Error(grpcCodes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}

// UnaryLoggingInterceptor 日志拦截器
func (ic *InterceptorChain) UnaryLoggingInterceptor() grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()

		// 提取 Metadata
		md, _ := metadata.FromIncomingContext(ctx)
		if ids := md.Get("x-request-id"); len(ids) > 0 {
			ctx = context.WithValue(ctx, constants.ContextKeyRequestID, ids[0])
		}
		var userAgent string
		if agents := md.Get("user-agent"); len(agents) > 0 {
			userAgent = agents[0]
		}

		resp, err := handler(ctx, req)

		fields := logger.Fields{
			"method":      info.FullMethod,
			"user_agent":  userAgent,
			"duration_ms": time.Since(startTime).Milliseconds(),
			"status":      status.Code(err).String(),
		}
		switch code := status.Code(err); code {
		case grpcCodes.OK:
			ic.log.Info(ctx, "gRPC request completed", fields)
		case grpcCodes.Internal, grpcCodes.Unavailable, grpcCodes.Unknown:
			ic.log.Error(ctx, "gRPC request failed", err, fields)
		default:
			ic.log.Warn(ctx, "gRPC request rejected", fields)
		}

		return resp, err
	}
}

// UnaryValidationInterceptor 参数验证拦截器
func (ic *InterceptorChain) UnaryValidationInterceptor() grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		if err := utils.ValidateStruct(req); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// UnaryErrorInterceptor 错误转换拦截器(将领域错误转换为 gRPC 状态码)
func (ic *InterceptorChain) UnaryErrorInterceptor() grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, toStatusError(err)
	}
}

// toStatusError 将领域错误转换为 gRPC 错误
func toStatusError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return status.Error(grpcCodes.Internal, "internal server error")
	}

	var code grpcCodes.Code
	switch appErr.HTTPStatus() {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		code = grpcCodes.InvalidArgument
	case http.StatusNotFound:
		code = grpcCodes.NotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		code = grpcCodes.Unavailable
	default:
		return status.Error(grpcCodes.Internal, "internal server error")
	}
	return status.Errorf(code, "%s: %s", appErr.Code(), appErr.Error())
}

// ChainUnaryInterceptors 链式调用所有拦截器
func (ic *InterceptorChain) ChainUnaryInterceptors() grpclib.ServerOption {
	return grpclib.ChainUnaryInterceptor(
		ic.UnaryRecoveryInterceptor(),   // 1. 恢复 panic
		ic.UnaryLoggingInterceptor(),    // 2. 日志
		ic.UnaryErrorInterceptor(),      // 3. 错误转换
		ic.UnaryValidationInterceptor(), // 4. 参数验证
	)
}
