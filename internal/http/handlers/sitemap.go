package handlers

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"singlepages/internal/domain"
	"singlepages/internal/pages"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// BuildSitemap renders the XML sitemap for the site root and every city page.
func BuildSitemap(baseURL string, cities []domain.City, now time.Time) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	lastMod := now.Format(time.DateOnly)
	set := urlset{Xmlns: sitemapNamespace}
	set.URLs = append(set.URLs, sitemapURL{Loc: baseURL, LastMod: lastMod, ChangeFreq: "monthly", Priority: "1.0"})
	for _, c := range cities {
		slug := domain.NormalizeSlug(c.Slug)
		if slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + pages.CacheKey(slug),
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Sitemap serves GET /sitemap.xml.
func (a *App) Sitemap(w http.ResponseWriter, r *http.Request) {
	cities, err := a.Cities.ListAll(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("sitemap: list cities failed")
		a.error(w, http.StatusInternalServerError, "Error generating sitemap", err.Error())
		return
	}
	body, err := BuildSitemap(a.SiteBaseURL, cities, a.now())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Error generating sitemap", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
