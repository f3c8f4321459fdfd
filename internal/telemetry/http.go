package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WrapHTTPTransport adds client spans to outbound requests when tracing is enabled.
// Span names carry the method and host only; spreadsheet ids stay out of span names.
func WrapHTTPTransport(transport http.RoundTripper) http.RoundTripper {
	if !IsEnabled() {
		return transport
	}

	return otelhttp.NewTransport(transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Host
		}),
	)
}
