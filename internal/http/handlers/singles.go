package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"singlepages/internal/domain"
	"singlepages/internal/pages"
)

type cityPageRequest struct {
	CitySlug string `json:"citySlug"`
}

// SinglesPage serves GET /singles/{citySlug}.
func (a *App) SinglesPage(w http.ResponseWriter, r *http.Request) {
	a.servePage(w, r, chi.URLParam(r, "citySlug"))
}

// CityPageQuery serves GET /v1/city-pages?citySlug=.
func (a *App) CityPageQuery(w http.ResponseWriter, r *http.Request) {
	a.servePage(w, r, r.URL.Query().Get("citySlug"))
}

// CityPageBody serves POST /v1/city-pages with a JSON body.
func (a *App) CityPageBody(w http.ResponseWriter, r *http.Request) {
	var req cityPageRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	a.servePage(w, r, req.CitySlug)
}

// MethodNotAllowed answers unsupported methods with the JSON error envelope.
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// NotFound answers unknown routes.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func (a *App) servePage(w http.ResponseWriter, r *http.Request, slug string) {
	slug = domain.NormalizeSlug(slug)
	if slug == "" {
		a.json(w, http.StatusBadRequest, errorResponse{Error: "citySlug is required"})
		return
	}
	res := a.Pages.Page(r.Context(), slug)
	switch res.Kind {
	case pages.KindOk, pages.KindDegraded:
		w.Header().Set("Content-Type", "application/json")
		if res.Cached {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
		if res.Kind == pages.KindDegraded {
			w.Header().Set("X-Content-Degraded", "true")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Body)
	case pages.KindNotFound:
		a.json(w, http.StatusNotFound, errorResponse{
			Error:           "Stadt nicht gefunden",
			Details:         fmt.Sprintf("Die Stadt %q wurde nicht in unserer Datenbank gefunden.", res.Slug),
			FallbackContent: res.Payload,
		})
	default:
		a.Logger.Error().Err(res.Err).Str("slug", res.Slug).Str("kind", res.ErrKind).Msg("city page failed")
		a.error(w, http.StatusInternalServerError, "failed to load city page", res.Message())
	}
}
