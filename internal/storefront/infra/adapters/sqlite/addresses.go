package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.AddressRepository = (*Store)(nil)

const addressColumns = `id, customer_id, session_id, type, first_name, last_name, company, email, phone,
	country_id, state_id, city_id, street, zip, is_default, created_at, updated_at`

type addressRow struct {
	ID         string         `db:"id"`
	CustomerID sql.NullString `db:"customer_id"`
	SessionID  sql.NullString `db:"session_id"`
	Type       string         `db:"type"`
	FirstName  string         `db:"first_name"`
	LastName   string         `db:"last_name"`
	Company    string         `db:"company"`
	Email      string         `db:"email"`
	Phone      string         `db:"phone"`
	CountryID  int64          `db:"country_id"`
	StateID    int64          `db:"state_id"`
	CityID     int64          `db:"city_id"`
	Street     string         `db:"street"`
	Zip        string         `db:"zip"`
	IsDefault  bool           `db:"is_default"`
	CreatedAt  timestamp      `db:"created_at"`
	UpdatedAt  timestamp      `db:"updated_at"`
}

func (r addressRow) toEntity() entity.Address {
	return entity.Address{
		ID:         r.ID,
		CustomerID: r.CustomerID.String,
		SessionID:  r.SessionID.String,
		Type:       entity.AddressType(r.Type),
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Company:    r.Company,
		Email:      r.Email,
		Phone:      r.Phone,
		CountryID:  r.CountryID,
		StateID:    r.StateID,
		CityID:     r.CityID,
		Street:     r.Street,
		Zip:        r.Zip,
		IsDefault:  r.IsDefault,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

// clearDefault unsets the default flag on the customer's other addresses of
// the same type, keeping at most one default per type.
func clearDefault(ctx context.Context, tx *sqlx.Tx, a *entity.Address) error {
	if !a.IsDefault || a.CustomerID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = 0 WHERE customer_id = ? AND type = ? AND id <> ?`,
		a.CustomerID, string(a.Type), a.ID)
	return translate(err, "clear default address")
}

func (s *Store) CreateAddress(ctx context.Context, a *entity.Address) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearDefault(ctx, tx, a); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO addresses (`+addressColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, nullableString(a.CustomerID), nullableString(a.SessionID), string(a.Type),
			a.FirstName, a.LastName, a.Company, a.Email, a.Phone,
			a.CountryID, a.StateID, a.CityID, a.Street, a.Zip, boolToInt(a.IsDefault),
			formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
		)
		return translate(err, "create address")
	})
}

func (s *Store) UpdateAddress(ctx context.Context, a *entity.Address) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearDefault(ctx, tx, a); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE addresses
			SET    type = ?, first_name = ?, last_name = ?, company = ?, email = ?, phone = ?,
			       country_id = ?, state_id = ?, city_id = ?, street = ?, zip = ?,
			       is_default = ?, updated_at = ?
			WHERE  id = ?`,
			string(a.Type), a.FirstName, a.LastName, a.Company, a.Email, a.Phone,
			a.CountryID, a.StateID, a.CityID, a.Street, a.Zip,
			boolToInt(a.IsDefault), formatTime(a.UpdatedAt), a.ID,
		)
		if err != nil {
			return translate(err, "update address "+a.ID)
		}
		return expectAffected(res, "address "+a.ID)
	})
}

func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete address "+id)
	}
	return expectAffected(res, "address "+id)
}

func (s *Store) GetAddress(ctx context.Context, id string) (*entity.Address, error) {
	var row addressRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id); err != nil {
		return nil, translate(err, "address "+id)
	}
	a := row.toEntity()
	return &a, nil
}

func (s *Store) ListCustomerAddresses(ctx context.Context, customerID string) ([]entity.Address, error) {
	var rows []addressRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+addressColumns+` FROM addresses WHERE customer_id = ?
		 ORDER BY type, is_default DESC, created_at`, customerID)
	if err != nil {
		return nil, translate(err, "addresses of "+customerID)
	}
	out := make([]entity.Address, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out, nil
}

func (s *Store) LatestSessionAddress(ctx context.Context, sessionID string, typ entity.AddressType) (*entity.Address, error) {
	var row addressRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+addressColumns+` FROM addresses WHERE session_id = ? AND type = ?
		 ORDER BY created_at DESC LIMIT 1`, sessionID, string(typ))
	if err != nil {
		return nil, translate(err, string(typ)+" address of session")
	}
	a := row.toEntity()
	return &a, nil
}
