package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jcmexdev/ecommerce-storefront/internal/checkoutclient"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/telemetry"
)

type options struct {
	baseURL   string
	productID string
	quantity  int
	countryID int64
	pickup    string
	payment   string
	email     string
	password  string
	firstName string
	lastName  string
	phone     string
	street    string
	zip       string
	logLevel  string
}

func main() {
	var o options
	pflag.StringVar(&o.baseURL, "base-url", "http://localhost:8080", "storefront base URL")
	pflag.StringVar(&o.productID, "product", "", "product id to buy")
	pflag.IntVar(&o.quantity, "quantity", 1, "units to buy")
	pflag.Int64Var(&o.countryID, "country", 1, "shipping country id")
	pflag.StringVar(&o.pickup, "pickup", "", "pickup point id; courier delivery when empty")
	pflag.StringVar(&o.payment, "payment", "card", "card, cash_on_delivery or bank_transfer")
	pflag.StringVar(&o.email, "email", "", "shopper email; with --password signs in as a customer")
	pflag.StringVar(&o.password, "password", "", "customer password")
	pflag.StringVar(&o.firstName, "first-name", "Guest", "recipient first name")
	pflag.StringVar(&o.lastName, "last-name", "Shopper", "recipient last name")
	pflag.StringVar(&o.phone, "phone", "+40700000000", "recipient phone")
	pflag.StringVar(&o.street, "street", "Main Street 1", "street address")
	pflag.StringVar(&o.zip, "zip", "000000", "postal code")
	pflag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	pflag.Parse()

	telemetry.InitLogger(os.Stderr, o.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	order, err := checkout(ctx, o)
	if err != nil {
		var apiErr *checkoutclient.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			slog.Error("checkout rejected", "status", apiErr.Status, "fields", apiErr.Fields)
		} else {
			slog.Error("checkout failed", "error", err)
		}
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(order)
}

func checkout(ctx context.Context, o options) (*checkoutclient.Order, error) {
	if o.productID == "" {
		return nil, errors.New("--product is required")
	}
	if o.email == "" {
		return nil, errors.New("--email is required")
	}

	client := checkoutclient.New(o.baseURL)
	if o.password != "" {
		if err := client.Login(ctx, o.email, o.password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	if _, err := client.AddItem(ctx, o.productID, o.quantity); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	session, err := client.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	totals := session.ChangeShippingCountry(ctx, o.countryID)
	slog.Info("cart priced", "total_incl_tax", totals.TotalInclTax, "vat_rate", totals.VATRate, "country", totals.CountryCode)

	states, err := session.States(ctx, o.countryID)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("country %d has no states", o.countryID)
	}
	cities, err := session.Cities(ctx, states[0].ID)
	if err != nil {
		return nil, fmt.Errorf("cities: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("state %d has no cities", states[0].ID)
	}

	session.SetShippingAddress(checkoutclient.Address{
		FirstName: o.firstName,
		LastName:  o.lastName,
		Email:     o.email,
		Phone:     o.phone,
		CountryID: o.countryID,
		StateID:   states[0].ID,
		CityID:    cities[0].ID,
		Street:    o.street,
		Zip:       o.zip,
	})
	session.SetUseShippingAsBilling(true)
	session.SetPaymentMethod(o.payment)
	if o.pickup != "" {
		session.SelectPickup(ctx, o.pickup)
	}

	slog.Info("submitting order", "idempotency_key", session.IdempotencyKey())
	return session.Submit(ctx)
}
