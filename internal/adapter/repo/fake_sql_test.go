package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"singlepages/internal/domain"
	"singlepages/internal/sqlinline"
)

type cacheRow struct {
	content   string
	createdAt time.Time
	expiresAt time.Time
}

// fakeSQL emulates the cities and page_cache tables for the queries in sqlinline.
type fakeSQL struct {
	cities []domain.City
	pages  map[string]cacheRow
	err    error
	execs  int
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{pages: map[string]cacheRow{}}
}

func (f *fakeSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	f.execs++
	switch query {
	case sqlinline.QUpsertPageCache:
		f.pages[args[0].(string)] = cacheRow{
			content:   args[1].(string),
			createdAt: args[2].(time.Time),
			expiresAt: args[3].(time.Time),
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec %q", query)
}

func (f *fakeSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	switch query {
	case sqlinline.QSelectCityBySlug:
		for _, c := range f.cities {
			if c.Slug == args[0].(string) {
				return fakeRow{values: []any{c.Name, c.FederalRegion, c.Slug}}
			}
		}
		return fakeRow{err: pgx.ErrNoRows}
	case sqlinline.QSelectValidPageCache:
		row, ok := f.pages[args[0].(string)]
		if !ok || !row.expiresAt.After(args[1].(time.Time)) {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{row.content, row.createdAt, row.expiresAt}}
	}
	return fakeRow{err: fmt.Errorf("unexpected query %q", query)}
}

func (f *fakeSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	if query != sqlinline.QListCities {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	rows := &fakeRows{}
	for _, c := range f.cities {
		rows.values = append(rows.values, []any{c.Name, c.FederalRegion, c.Slug})
	}
	return rows, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	values [][]any
	pos    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.values[r.pos-1], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		switch ptr := dest[i].(type) {
		case *string:
			*ptr = v.(string)
		case *time.Time:
			*ptr = v.(time.Time)
		default:
			return fmt.Errorf("unsupported dest %T", dest[i])
		}
	}
	return nil
}
