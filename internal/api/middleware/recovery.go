package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const stackBufSize = 4096

// Recovery returns Echo middleware that turns a handler panic into a 500
// JSON response and logs the stack trace.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				buf := make([]byte, stackBufSize)
				n := runtime.Stack(buf, false)
				msg := fmt.Sprint(r)

				span := trace.SpanFromContext(c.Request().Context())
				span.SetStatus(codes.Error, "panic: "+msg)

				log.Error("panic recovered",
					"error", msg,
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"request_id", RequestID(c),
					"stack", string(buf[:n]),
				)

				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()
			return next(c)
		}
	}
}
