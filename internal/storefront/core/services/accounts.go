package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService signs customers and back-office users in.
type AuthService struct {
	customers ports.CustomerRepository
	users     ports.UserRepository
	carts     *CartService
	tokens    *auth.TokenIssuer
	now       func() time.Time
}

func NewAuthService(customers ports.CustomerRepository, users ports.UserRepository, carts *CartService, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{customers: customers, users: users, carts: carts, tokens: tokens, now: time.Now}
}

// Register creates a customer account and signs it in. Lines in the guest
// cart of sessionID move to the new account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, sessionID string) (*entity.Customer, *Session, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}
	now := s.now().UTC()
	c := &entity.Customer{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, nil, entity.NewValidationError("email", "The email has already been taken.")
		}
		return nil, nil, err
	}
	session, err := s.signInCustomer(ctx, c, sessionID)
	if err != nil {
		return nil, nil, err
	}
	slog.InfoContext(ctx, "customer registered", "customer_id", c.ID)
	return c, session, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, sessionID string) (*entity.Customer, *Session, error) {
	c, err := s.customers.GetCustomerByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil, entity.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !c.Active || !auth.CheckPassword(c.PasswordHash, password) {
		return nil, nil, entity.ErrInvalidCredentials
	}
	session, err := s.signInCustomer(ctx, c, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return c, session, nil
}

func (s *AuthService) signInCustomer(ctx context.Context, c *entity.Customer, sessionID string) (*Session, error) {
	if err := s.carts.Merge(ctx, sessionID, c.ID); err != nil {
		// the login itself still succeeds
		slog.WarnContext(ctx, "guest cart merge failed", "customer_id", c.ID, "error", err)
	}
	token, expires, err := s.tokens.Issue(c.ID, auth.KindCustomer, "")
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires}, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*entity.User, *Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil, entity.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !u.Active || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, nil, entity.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, nil, err
	}
	u.LastLoginAt = &now

	token, expires, err := s.tokens.Issue(u.ID, auth.KindAdmin, string(u.Role))
	if err != nil {
		return nil, nil, err
	}
	slog.InfoContext(ctx, "back-office login", "user_id", u.ID, "role", u.Role)
	return u, &Session{Token: token, ExpiresAt: expires}, nil
}

// BootstrapAdmin creates the first admin user unless the email already
// exists. It is a no-op when email is empty.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	email = normalizeEmail(email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, entity.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	slog.InfoContext(ctx, "bootstrap admin created", "email", email)
	return nil
}

// CustomerService is the back-office view of storefront customers.
type CustomerService struct {
	customers ports.CustomerRepository
	orders    ports.OrderRepository
	now       func() time.Time
}

func NewCustomerService(customers ports.CustomerRepository, orders ports.OrderRepository) *CustomerService {
	return &CustomerService{customers: customers, orders: orders, now: time.Now}
}

type CustomerUpdate struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Active    bool
	// Password is only changed when set.
	Password string
}

func (s *CustomerService) List(ctx context.Context, f entity.CustomerFilter) (entity.PageResult[entity.Customer], error) {
	return s.customers.ListCustomers(ctx, f)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*entity.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

func (s *CustomerService) Update(ctx context.Context, id string, in CustomerUpdate) (*entity.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Email = normalizeEmail(in.Email)
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Phone = in.Phone
	c.Active = in.Active
	if in.Password != "" {
		if c.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewValidationError("email", "The email has already been taken.")
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a customer without order history.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	n, err := s.orders.CountOrdersForCustomer(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("customer %s has %d orders: %w", id, n, entity.ErrConflict)
	}
	return s.customers.DeleteCustomer(ctx, id)
}

// UserService manages back-office accounts.
type UserService struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

type UserInput struct {
	Name     string
	Email    string
	Role     entity.Role
	Active   bool
	Password string
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*entity.User, error) {
	if in.Password == "" {
		return nil, entity.NewValidationError("password", "The password field is required.")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       in.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewValidationError("email", "The email has already been taken.")
		}
		return nil, err
	}
	return u, nil
}

// Update edits a user. actorID is the signed-in user; nobody can demote or
// deactivate themselves.
func (s *UserService) Update(ctx context.Context, actorID, id string, in UserInput) (*entity.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == id && (in.Role != u.Role || !in.Active) {
		return nil, fmt.Errorf("cannot change own role or deactivate self: %w", entity.ErrForbidden)
	}
	u.Name = in.Name
	u.Email = normalizeEmail(in.Email)
	u.Role = in.Role
	u.Active = in.Active
	if in.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewValidationError("email", "The email has already been taken.")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fmt.Errorf("cannot delete own account: %w", entity.ErrForbidden)
	}
	return s.users.DeleteUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
