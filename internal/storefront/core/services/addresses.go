package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

type AddressInput struct {
	Type      entity.AddressType
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
	CountryID int64
	StateID   int64
	CityID    int64
	Street    string
	Zip       string
	IsDefault bool
}

type AddressService struct {
	addresses ports.AddressRepository
	sessions  ports.SessionRepository
	geo       *GeoService
	now       func() time.Time
}

func NewAddressService(addresses ports.AddressRepository, sessions ports.SessionRepository, geo *GeoService) *AddressService {
	return &AddressService{addresses: addresses, sessions: sessions, geo: geo, now: time.Now}
}

func (s *AddressService) List(ctx context.Context, customerID string) ([]entity.Address, error) {
	return s.addresses.ListCustomerAddresses(ctx, customerID)
}

// Get returns one of the customer's addresses. Addresses owned by someone
// else are reported as not found.
func (s *AddressService) Get(ctx context.Context, customerID, id string) (*entity.Address, error) {
	a, err := s.addresses.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CustomerID != customerID {
		return nil, fmt.Errorf("address %s: %w", id, entity.ErrNotFound)
	}
	return a, nil
}

func (s *AddressService) Create(ctx context.Context, customerID string, in AddressInput) (*entity.Address, error) {
	if _, err := s.geo.Resolve(ctx, in.CountryID, in.StateID, in.CityID); err != nil {
		return nil, err
	}
	a := s.newAddress(in)
	a.CustomerID = customerID
	if err := s.addresses.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Update(ctx context.Context, customerID, id string, in AddressInput) (*entity.Address, error) {
	a, err := s.Get(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.geo.Resolve(ctx, in.CountryID, in.StateID, in.CityID); err != nil {
		return nil, err
	}
	applyAddressInput(a, in)
	a.UpdatedAt = s.now().UTC()
	if err := s.addresses.UpdateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, customerID, id string) error {
	if _, err := s.Get(ctx, customerID, id); err != nil {
		return err
	}
	return s.addresses.DeleteAddress(ctx, id)
}

// SaveSessionAddresses stores a guest's checkout addresses. billing is nil
// when the shipping address doubles as billing. The two writes are
// independent: a failed billing save leaves the shipping address in place.
func (s *AddressService) SaveSessionAddresses(ctx context.Context, sessionID string, shipping AddressInput, billing *AddressInput) (*entity.Address, *entity.Address, error) {
	if err := s.sessions.TouchSession(ctx, sessionID, s.now().UTC()); err != nil {
		return nil, nil, err
	}

	shipping.Type = entity.AddressShipping
	ship, err := s.saveSessionAddress(ctx, sessionID, shipping, "shipping.")
	if err != nil {
		return nil, nil, err
	}
	if billing == nil {
		return ship, nil, nil
	}

	billing.Type = entity.AddressBilling
	bill, err := s.saveSessionAddress(ctx, sessionID, *billing, "billing.")
	if err != nil {
		return ship, nil, err
	}
	return ship, bill, nil
}

func (s *AddressService) saveSessionAddress(ctx context.Context, sessionID string, in AddressInput, prefix string) (*entity.Address, error) {
	if _, err := s.geo.Resolve(ctx, in.CountryID, in.StateID, in.CityID); err != nil {
		return nil, prefixFields(err, prefix)
	}
	a := s.newAddress(in)
	a.SessionID = sessionID
	a.IsDefault = false
	if err := s.addresses.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// LatestSessionAddress returns the guest's most recent address of the type.
func (s *AddressService) LatestSessionAddress(ctx context.Context, sessionID string, typ entity.AddressType) (*entity.Address, error) {
	return s.addresses.LatestSessionAddress(ctx, sessionID, typ)
}

// Snapshot freezes an address with resolved place names for an order.
func (s *AddressService) Snapshot(ctx context.Context, a *entity.Address) (entity.AddressSnapshot, error) {
	loc, err := s.geo.Resolve(ctx, a.CountryID, a.StateID, a.CityID)
	if err != nil {
		return entity.AddressSnapshot{}, err
	}
	return entity.AddressSnapshot{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Company:     a.Company,
		Email:       a.Email,
		Phone:       a.Phone,
		CountryCode: loc.Country.Code,
		Country:     loc.Country.Name,
		State:       loc.State.Name,
		City:        loc.City.Name,
		Street:      a.Street,
		Zip:         a.Zip,
	}, nil
}

func (s *AddressService) newAddress(in AddressInput) *entity.Address {
	now := s.now().UTC()
	a := &entity.Address{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	applyAddressInput(a, in)
	return a
}

func applyAddressInput(a *entity.Address, in AddressInput) {
	a.Type = in.Type
	a.FirstName = in.FirstName
	a.LastName = in.LastName
	a.Company = in.Company
	a.Email = in.Email
	a.Phone = in.Phone
	a.CountryID = in.CountryID
	a.StateID = in.StateID
	a.CityID = in.CityID
	a.Street = in.Street
	a.Zip = in.Zip
	a.IsDefault = in.IsDefault
}

// prefixFields nests validation field names under prefix, e.g. "billing.".
func prefixFields(err error, prefix string) error {
	var verr *entity.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := &entity.ValidationError{Fields: make(map[string]string, len(verr.Fields))}
	for k, v := range verr.Fields {
		out.Fields[prefix+k] = v
	}
	return out
}
