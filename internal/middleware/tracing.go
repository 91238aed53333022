package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, continuing any trace propagated in
// the request headers, and stores it in the request's user context.
func Tracing() fiber.Handler {
	tracer := otel.Tracer("catalog/http")

	return func(c *fiber.Ctx) error {
		carrier := propagation.HeaderCarrier{}
		for key, values := range c.GetReqHeaders() {
			for _, value := range values {
				http.Header(carrier).Add(key, value)
			}
		}
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		// Spans are exported after the request; fasthttp reuses these buffers.
		method := utils.CopyString(c.Method())

		ctx, span := tracer.Start(
			ctx,
			method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", utils.CopyString(c.OriginalURL())),
				attribute.String("http.scheme", utils.CopyString(c.Protocol())),
				attribute.String("http.user_agent", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
				attribute.String("http.client_ip", utils.CopyString(c.IP())),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		route := routePath(c)
		span.SetName(method + " " + route)

		status := responseStatus(c, err)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		if err != nil {
			span.RecordError(err)
		}
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "Server Error")
		}

		return err
	}
}
