package repo

import (
	"context"
	"fmt"

	"singlepages/internal/domain"
	"singlepages/internal/infra"
	"singlepages/internal/sqlinline"
)

// CityRepositoryPG implements domain.CityRepository using PostgreSQL.
type CityRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCityRepository constructs a new city repository instance.
func NewCityRepository(sql infra.SQLExecutor) *CityRepositoryPG {
	return &CityRepositoryPG{sql: sql}
}

// GetBySlug returns the city registered under slug, or domain.ErrNotFound.
func (r *CityRepositoryPG) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	slug = domain.NormalizeSlug(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	var city domain.City
	err := r.sql.QueryRow(ctx, sqlinline.QSelectCityBySlug, slug).Scan(&city.Name, &city.FederalRegion, &city.Slug)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup city %q: %w", slug, err)
	}
	return &city, nil
}

// ListAll returns every city ordered by name.
func (r *CityRepositoryPG) ListAll(ctx context.Context) ([]domain.City, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCities)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var city domain.City
		if err := rows.Scan(&city.Name, &city.FederalRegion, &city.Slug); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cities, nil
}

var _ domain.CityRepository = (*CityRepositoryPG)(nil)
