package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Tracing opens a span per request and propagates it through the request
// context.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		operation := c.Request.Method + " " + c.FullPath()
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), operation)
		defer span.Finish()

		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}
