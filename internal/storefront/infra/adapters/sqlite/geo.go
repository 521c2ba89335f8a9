package sqlite

import (
	"context"
	"fmt"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.GeoRepository = (*Store)(nil)

// The geo tables are read-only reference data seeded by migrations, so the
// rows scan straight into the domain structs.
type countryRow struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

type stateRow struct {
	ID        int64  `db:"id"`
	CountryID int64  `db:"country_id"`
	Name      string `db:"name"`
}

type cityRow struct {
	ID      int64  `db:"id"`
	StateID int64  `db:"state_id"`
	Name    string `db:"name"`
}

func (s *Store) ListCountries(ctx context.Context) ([]entity.Country, error) {
	var rows []countryRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, code, name FROM countries ORDER BY name`); err != nil {
		return nil, translate(err, "list countries")
	}
	out := make([]entity.Country, len(rows))
	for i, r := range rows {
		out[i] = entity.Country(r)
	}
	return out, nil
}

func (s *Store) ListStates(ctx context.Context, countryID int64) ([]entity.State, error) {
	var rows []stateRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, country_id, name FROM states WHERE country_id = ? ORDER BY name`, countryID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("states of country %d", countryID))
	}
	out := make([]entity.State, len(rows))
	for i, r := range rows {
		out[i] = entity.State(r)
	}
	return out, nil
}

func (s *Store) ListCities(ctx context.Context, stateID int64) ([]entity.City, error) {
	var rows []cityRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, state_id, name FROM cities WHERE state_id = ? ORDER BY name`, stateID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("cities of state %d", stateID))
	}
	out := make([]entity.City, len(rows))
	for i, r := range rows {
		out[i] = entity.City(r)
	}
	return out, nil
}

func (s *Store) GetCountry(ctx context.Context, id int64) (*entity.Country, error) {
	var row countryRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, code, name FROM countries WHERE id = ?`, id); err != nil {
		return nil, translate(err, fmt.Sprintf("country %d", id))
	}
	c := entity.Country(row)
	return &c, nil
}

func (s *Store) GetState(ctx context.Context, id int64) (*entity.State, error) {
	var row stateRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, country_id, name FROM states WHERE id = ?`, id); err != nil {
		return nil, translate(err, fmt.Sprintf("state %d", id))
	}
	st := entity.State(row)
	return &st, nil
}

func (s *Store) GetCity(ctx context.Context, id int64) (*entity.City, error) {
	var row cityRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, state_id, name FROM cities WHERE id = ?`, id); err != nil {
		return nil, translate(err, fmt.Sprintf("city %d", id))
	}
	c := entity.City(row)
	return &c, nil
}
