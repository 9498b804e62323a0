package image

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"singlepages/internal/infra"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func respond(status int, body string) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{}}, nil
	}
}

func newTestProvider(rt roundTripFunc) *PixabayProvider {
	return NewPixabayProvider(PixabayOptions{
		APIKey:     "px-key",
		HTTPClient: &http.Client{Transport: rt},
		Logger:     infra.NopLogger(),
		Pick:       func(n int) int { return n - 1 },
	})
}

func TestPixabayFetchImage(t *testing.T) {
	var query string
	p := newTestProvider(func(r *http.Request) (*http.Response, error) {
		query = r.URL.RawQuery
		return respond(http.StatusOK, `{"hits":[{"largeImageURL":"https://cdn.pixabay.com/koeln.jpg"},{"largeImageURL":"https://cdn.pixabay.com/other.jpg"}]}`)(r)
	})

	got := p.FetchImage(context.Background(), "Köln city")
	if got != "https://cdn.pixabay.com/koeln.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
	for _, want := range []string{"key=px-key", "q=K%C3%B6ln+city", "image_type=photo", "per_page=3"} {
		if !strings.Contains(query, want) {
			t.Fatalf("expected %q in query %q", want, query)
		}
	}
}

func TestPixabayFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		name string
		rt   roundTripFunc
	}{
		{name: "transport_error", rt: func(r *http.Request) (*http.Response, error) { return nil, errors.New("dial tcp") }},
		{name: "status", rt: respond(http.StatusBadRequest, `[ERROR 400] "per_page" is out of valid range.`)},
		{name: "decode", rt: respond(http.StatusOK, `not json`)},
		{name: "no_hits", rt: respond(http.StatusOK, `{"total":0,"hits":[]}`)},
		{name: "empty_url", rt: respond(http.StatusOK, `{"hits":[{"largeImageURL":""}]}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := newTestProvider(tc.rt).FetchImage(context.Background(), "Köln")
			if got != DefaultImages[len(DefaultImages)-1] {
				t.Fatalf("expected default image, got %q", got)
			}
		})
	}
}

func TestPixabayWithoutKeySkipsNetwork(t *testing.T) {
	p := NewPixabayProvider(PixabayOptions{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("no request expected without api key")
			return nil, nil
		})},
		Logger: infra.NopLogger(),
	})
	got := p.FetchImage(context.Background(), "Köln")
	found := false
	for _, d := range DefaultImages {
		if d == got {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected one of the default images, got %q", got)
	}
}

func TestPixabayClampsPerPage(t *testing.T) {
	p := NewPixabayProvider(PixabayOptions{APIKey: "k", PerPage: 1})
	endpoint, err := p.endpoint("x")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(endpoint, "per_page=3") {
		t.Fatalf("expected per_page clamped to 3, got %s", endpoint)
	}
}
