package pages

import (
	"encoding/json"

	"singlepages/internal/domain"
)

// Kind tags the outcome of a page request.
type Kind int

const (
	KindOk Kind = iota
	KindNotFound
	KindDegraded
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindDegraded:
		return "degraded"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of Service.Page. Body holds the serialized payload;
// for cache hits it is the stored content byte for byte.
type Result struct {
	Kind     Kind
	Slug     string
	Payload  *domain.PagePayload
	Body     []byte
	Cached   bool
	Warnings []string
	// ErrKind and Err describe KindError results.
	ErrKind string
	Err     error
}

func okResult(slug string, payload *domain.PagePayload, body []byte, cached bool, warnings []string) Result {
	return Result{Kind: KindOk, Slug: slug, Payload: payload, Body: body, Cached: cached, Warnings: warnings}
}

func notFoundResult(slug string, fallback *domain.PagePayload) Result {
	body, _ := json.Marshal(fallback)
	return Result{Kind: KindNotFound, Slug: slug, Payload: fallback, Body: body, Err: domain.ErrNotFound}
}

func degradedResult(slug string, payload *domain.PagePayload, warnings []string) Result {
	body, _ := json.Marshal(payload)
	return Result{Kind: KindDegraded, Slug: slug, Payload: payload, Body: body, Warnings: warnings}
}

func errorResult(slug, kind string, err error) Result {
	return Result{Kind: KindError, Slug: slug, ErrKind: kind, Err: err}
}

// Message returns the error text of a KindError or KindNotFound result.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
