package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var (
	_ ports.CustomerRepository = (*Store)(nil)
	_ ports.UserRepository     = (*Store)(nil)
)

const customerColumns = `id, email, password_hash, first_name, last_name, phone, active, created_at, updated_at`

type customerRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Phone        string    `db:"phone"`
	Active       bool      `db:"active"`
	CreatedAt    timestamp `db:"created_at"`
	UpdatedAt    timestamp `db:"updated_at"`
}

func (r customerRow) toEntity() entity.Customer {
	return entity.Customer{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func (s *Store) CreateCustomer(ctx context.Context, c *entity.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Email, c.PasswordHash, c.FirstName, c.LastName, c.Phone, boolToInt(c.Active),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	return translate(err, "create customer "+c.Email)
}

func (s *Store) UpdateCustomer(ctx context.Context, c *entity.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET    email = ?, password_hash = ?, first_name = ?, last_name = ?, phone = ?,
		       active = ?, updated_at = ?
		WHERE  id = ?`,
		c.Email, c.PasswordHash, c.FirstName, c.LastName, c.Phone, boolToInt(c.Active),
		formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return translate(err, "update customer "+c.ID)
	}
	return expectAffected(res, "customer "+c.ID)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete customer "+id)
	}
	return expectAffected(res, "customer "+id)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	var row customerRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id); err != nil {
		return nil, translate(err, "customer "+id)
	}
	c := row.toEntity()
	return &c, nil
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var row customerRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE email = ?`, email); err != nil {
		return nil, translate(err, "customer "+email)
	}
	c := row.toEntity()
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, f entity.CustomerFilter) (entity.PageResult[entity.Customer], error) {
	var where []string
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		where = append(where, `(email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)`)
		args = append(args, like, like, like)
	}
	if f.Active != nil {
		where = append(where, `active = ?`)
		args = append(args, boolToInt(*f.Active))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := f.Page.Normalize()
	result := entity.PageResult[entity.Customer]{Page: page.Number, PerPage: page.PerPage}
	if err := s.db.GetContext(ctx, &result.Total, `SELECT COUNT(*) FROM customers`+clause, args...); err != nil {
		return result, translate(err, "count customers")
	}

	var rows []customerRow
	q := `SELECT ` + customerColumns + ` FROM customers` + clause + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &rows, q, append(args, page.PerPage, page.Offset())...); err != nil {
		return result, translate(err, "list customers")
	}
	result.Items = make([]entity.Customer, len(rows))
	for i, r := range rows {
		result.Items[i] = r.toEntity()
	}
	return result, nil
}

func (s *Store) CountCustomersCreated(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM customers WHERE created_at >= ? AND created_at < ?`,
		formatTime(from), formatTime(to))
	return n, translate(err, "count new customers")
}

const userColumns = `id, name, email, password_hash, role, active, last_login_at, created_at, updated_at`

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Active       bool      `db:"active"`
	LastLoginAt  timestamp `db:"last_login_at"`
	CreatedAt    timestamp `db:"created_at"`
	UpdatedAt    timestamp `db:"updated_at"`
}

func (r userRow) toEntity() entity.User {
	return entity.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         entity.Role(r.Role),
		Active:       r.Active,
		LastLoginAt:  r.LastLoginAt.ptr(),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *entity.User) error {
	var lastLogin any
	if u.LastLoginAt != nil {
		lastLogin = formatTime(*u.LastLoginAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), boolToInt(u.Active), lastLogin,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	return translate(err, "create user "+u.Email)
}

func (s *Store) UpdateUser(ctx context.Context, u *entity.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET    name = ?, email = ?, password_hash = ?, role = ?, active = ?, updated_at = ?
		WHERE  id = ?`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), boolToInt(u.Active), formatTime(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return translate(err, "update user "+u.ID)
	}
	return expectAffected(res, "user "+u.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete user "+id)
	}
	return expectAffected(res, "user "+id)
}

func (s *Store) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, translate(err, "user "+id)
	}
	u := row.toEntity()
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, translate(err, "user "+email)
	}
	u := row.toEntity()
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]entity.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY name`); err != nil {
		return nil, translate(err, "list users")
	}
	out := make([]entity.User, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out, nil
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, formatTime(at), id)
	return translate(err, "touch login "+id)
}
