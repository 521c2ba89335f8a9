package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	c, session, err := e.auth.Register(ctx, RegisterInput{Email: " Ana@Example.com ", Password: "secret-pass", FirstName: "Ana"}, "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.NotEmpty(t, session.Token)

	_, _, err = e.auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "other-pass"}, "")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	_, _, err = e.auth.Login(ctx, "ana@example.com", "wrong", "")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
	_, _, err = e.auth.Login(ctx, "nobody@example.com", "secret-pass", "")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	got, _, err := e.auth.Login(ctx, "ANA@example.com", "secret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestAuthService_AdminLoginAndBootstrap(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, e.auth.BootstrapAdmin(ctx, "root@example.com", "admin-pass"))
	require.NoError(t, e.auth.BootstrapAdmin(ctx, "root@example.com", "ignored"))

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	u, session, err := e.auth.AdminLogin(ctx, "root@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.NotNil(t, u.LastLoginAt)
	assert.NotEmpty(t, session.Token)

	_, _, err = e.auth.AdminLogin(ctx, "root@example.com", "nope")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestUserService_SelfProtection(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	admin, err := e.users.Create(ctx, UserInput{Name: "Admin", Email: "admin@example.com", Role: entity.RoleAdmin, Active: true, Password: "admin-pass"})
	require.NoError(t, err)
	editor, err := e.users.Create(ctx, UserInput{Name: "Ed", Email: "ed@example.com", Role: entity.RoleEditor, Active: true, Password: "editor-pass"})
	require.NoError(t, err)

	_, err = e.users.Create(ctx, UserInput{Name: "Dup", Email: "ED@example.com", Role: entity.RoleEditor, Password: "x"})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = e.users.Update(ctx, admin.ID, admin.ID, UserInput{Name: "Admin", Email: "admin@example.com", Role: entity.RoleEditor, Active: true})
	assert.ErrorIs(t, err, entity.ErrForbidden)
	assert.ErrorIs(t, e.users.Delete(ctx, admin.ID, admin.ID), entity.ErrForbidden)

	updated, err := e.users.Update(ctx, admin.ID, editor.ID, UserInput{Name: "Edith", Email: "ed@example.com", Role: entity.RoleManager, Active: true})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, updated.Role)

	require.NoError(t, e.users.Delete(ctx, admin.ID, editor.ID))
	_, err = e.users.Get(ctx, editor.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCustomerService_DeleteKeepsOrderHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	c, _, err := e.auth.Register(ctx, RegisterInput{Email: "buyer@example.com", Password: "secret-pass"}, "")
	require.NoError(t, err)
	addr := clujAddress()
	addr.Type = entity.AddressShipping
	shipping, err := e.addresses.Create(ctx, c.ID, addr)
	require.NoError(t, err)
	p := e.product(t, "LAP-1", "100.00", 5)
	_, err = e.carts.AddItem(ctx, entity.Actor{CustomerID: c.ID}, p.ID, 1)
	require.NoError(t, err)
	_, err = e.checkout.PlaceOrder(ctx, entity.Actor{CustomerID: c.ID}, PlaceOrderInput{
		IdempotencyKey: "buyer-1", ShippingAddressID: shipping.ID, UseShippingAsBilling: true, PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.customers.Delete(ctx, c.ID), entity.ErrConflict)

	other, _, err := e.auth.Register(ctx, RegisterInput{Email: "window@example.com", Password: "secret-pass"}, "")
	require.NoError(t, err)
	require.NoError(t, e.customers.Delete(ctx, other.ID))
}
