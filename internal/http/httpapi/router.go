package httpapi

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"singlepages/internal/http/handlers"
	"singlepages/internal/middleware"
)

// RouterOptions configures the middleware stack and the optional static mount.
type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimit      int
	// Static serves mirrored images under /static/ when set.
	Static fs.FS
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RateLimit, time.Minute),
	)
	r.MethodNotAllowed(app.MethodNotAllowed)
	r.NotFound(app.NotFound)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Get("/singles/{citySlug}", app.SinglesPage)
	r.Get("/v1/city-pages", app.CityPageQuery)
	r.Post("/v1/city-pages", app.CityPageBody)
	r.Get("/sitemap.xml", app.Sitemap)

	if opts.Static != nil {
		files := http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static)))
		r.Get("/static/*", files.ServeHTTP)
	}

	return r
}
