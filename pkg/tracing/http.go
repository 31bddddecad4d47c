package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// untracedPaths are scraped on a schedule and would drown the report spans.
var untracedPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GinMiddleware starts a server span per status request, except for the
// health and metrics endpoints.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(shouldTrace))
}

func shouldTrace(r *http.Request) bool {
	_, skip := untracedPaths[r.URL.Path]
	return !skip
}
