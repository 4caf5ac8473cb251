package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/free-games-notifier/internal/tracing"
)

// Tracing returns Echo middleware that starts a server span per API request,
// continuing any trace context carried in the request headers. Probe and
// scrape paths are not traced.
func Tracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isOperationalPath(req.URL.Path) {
				return next(c)
			}

			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracing.Tracer().Start(ctx, req.Method+" "+routeLabel(c),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.URL.Path),
				),
			)
			defer span.End()

			if id := RequestID(c); id != "" {
				span.SetAttributes(attribute.String("request.id", id))
			}

			c.SetRequest(req.WithContext(ctx))
			err := next(c)

			status := c.Response().Status
			span.SetAttributes(attribute.String("http.response.status_code", strconv.Itoa(status)))
			if status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
			if err != nil {
				span.RecordError(err)
			}
			return err
		}
	}
}
