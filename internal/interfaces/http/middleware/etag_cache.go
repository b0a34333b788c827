package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyCacheWriter is a custom gin.ResponseWriter that intercepts and buffers the response body.
// This allows the ETag middleware to calculate a hash of the body before it's sent to the client.
// bodyCacheWriter 是一个自定义的 gin.ResponseWriter，用于拦截和缓冲响应正文。
// 这允许 ETag 中间件在将正文发送到客户端之前计算其哈希值。
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the data written to the response body instead of sending it immediately.
// Write 捕获写入响应正文的数据，而不是立即发送它。
func (w *bodyCacheWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCacheWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETagCache returns a Gin middleware that implements ETag-based HTTP caching for GET requests.
// Stored reports never change, so a matching If-None-Match is answered with 304 Not Modified.
// The response varies with the format query parameter, which is part of the hashed body.
// ETagCache 返回一个为 GET 请求实现基于 ETag 的 HTTP 缓存的 Gin 中间件。
// 已存储的报告不会改变，因此匹配的 If-None-Match 将返回 304 Not Modified。
func ETagCache(maxAgeSeconds int) gin.HandlerFunc {
	cacheControl := fmt.Sprintf("private, max-age=%d, must-revalidate", maxAgeSeconds)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bcw := &bodyCacheWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = bcw
		c.Next()

		responseBody := bcw.body.Bytes()
		if c.Writer.Status() == http.StatusOK && len(responseBody) > 0 {
			hash := sha256.Sum256(responseBody)
			etag := fmt.Sprintf(`"%x"`, hash[:16])

			c.Header("ETag", etag)
			c.Header("Cache-Control", cacheControl)
			if match := c.GetHeader("If-None-Match"); match == etag {
				c.Status(http.StatusNotModified)
				bcw.ResponseWriter.WriteHeaderNow()
				return
			}
		}

		_, _ = bcw.ResponseWriter.Write(responseBody)
	}
}
