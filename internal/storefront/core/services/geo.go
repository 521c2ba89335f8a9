package services

import (
	"context"
	"errors"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// GeoService serves the cascading country, state and city lookups.
type GeoService struct {
	geo ports.GeoRepository
}

func NewGeoService(geo ports.GeoRepository) *GeoService {
	return &GeoService{geo: geo}
}

func (s *GeoService) Countries(ctx context.Context) ([]entity.Country, error) {
	return s.geo.ListCountries(ctx)
}

func (s *GeoService) States(ctx context.Context, countryID int64) ([]entity.State, error) {
	if _, err := s.geo.GetCountry(ctx, countryID); err != nil {
		return nil, err
	}
	return s.geo.ListStates(ctx, countryID)
}

func (s *GeoService) Cities(ctx context.Context, stateID int64) ([]entity.City, error) {
	if _, err := s.geo.GetState(ctx, stateID); err != nil {
		return nil, err
	}
	return s.geo.ListCities(ctx, stateID)
}

func (s *GeoService) Country(ctx context.Context, id int64) (*entity.Country, error) {
	return s.geo.GetCountry(ctx, id)
}

// Location is a resolved country/state/city triple.
type Location struct {
	Country entity.Country
	State   entity.State
	City    entity.City
}

// Resolve loads the triple and checks that the state lies in the country and
// the city in the state. Mismatches are reported as validation errors on the
// offending field.
func (s *GeoService) Resolve(ctx context.Context, countryID, stateID, cityID int64) (*Location, error) {
	country, err := s.geo.GetCountry(ctx, countryID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "country_id", "The selected country is invalid.")
	}
	state, err := s.geo.GetState(ctx, stateID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "state_id", "The selected state is invalid.")
	}
	if state.CountryID != country.ID {
		return nil, entity.NewValidationError("state_id", "The selected state does not belong to the country.")
	}
	city, err := s.geo.GetCity(ctx, cityID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "city_id", "The selected city is invalid.")
	}
	if city.StateID != state.ID {
		return nil, entity.NewValidationError("city_id", "The selected city does not belong to the state.")
	}
	return &Location{Country: *country, State: *state, City: *city}, nil
}

func notFoundAsInvalid(err error, field, msg string) error {
	if errors.Is(err, entity.ErrNotFound) {
		return entity.NewValidationError(field, msg)
	}
	return err
}
