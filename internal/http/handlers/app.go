package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"singlepages/internal/domain"
	"singlepages/internal/pages"
)

// PageService produces city pages.
type PageService interface {
	Page(ctx context.Context, slug string) pages.Result
}

// CityLister lists every city with a landing page.
type CityLister interface {
	ListAll(ctx context.Context) ([]domain.City, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Pages       PageService
	Cities      CityLister
	DB          Pinger
	SiteBaseURL string
	Production  bool
	Logger      zerolog.Logger
	Now         func() time.Time
}

type errorResponse struct {
	Error           string              `json:"error"`
	Details         string              `json:"details,omitempty"`
	FallbackContent *domain.PagePayload `json:"fallbackContent,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the JSON error envelope. Details are dropped in production.
func (a *App) error(w http.ResponseWriter, code int, msg, details string) {
	if a.Production {
		details = ""
	}
	a.json(w, code, errorResponse{Error: msg, Details: details})
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
