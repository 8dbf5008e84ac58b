package httpapi

import (
	"net/http"
	"time"

	httpopenapi "github.com/fairyhunter13/vegifarm-storefront/internal/http/openapi"
)

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.closing.Load() {
		status = "draining"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	tm := a.metrics()
	m := map[string]any{
		"events_enqueued":  tm.Enqueued,
		"events_delivered": tm.Delivered,
		"events_failed":    tm.Failed,
		"backlog_size":     tm.Backlog,
		"queue_depth":      tm.Depth,
		"workers_running":  tm.Running,
		"language":         a.Lang.Language(),
		"bundles_cached":   len(a.Lang.CachedLocales()),
		"cart_items":       a.Catalog.TotalItems(),
		"feedback_backend": a.Feedback.Configured(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Vegifarm API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

// writable refuses mutations once shutdown has begun.
func (a *App) writable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.closing.Load() {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		next(w, r)
	}
}
