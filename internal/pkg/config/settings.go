package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed settings.yaml
var defaultSettings []byte

// Settings is the storefront's commercial configuration: tax table, shipping
// prices, pickup points and payment limits.
type Settings struct {
	Currency          string                     `yaml:"currency"`
	DefaultVATRate    decimal.Decimal            `yaml:"default_vat_rate"`
	VATRates          map[string]decimal.Decimal `yaml:"vat_rates"`
	Shipping          ShippingSettings           `yaml:"shipping"`
	CardLimit         decimal.Decimal            `yaml:"card_limit"`
	LowStockThreshold int                        `yaml:"low_stock_threshold"`
	PickupPoints      []PickupPoint              `yaml:"pickup_points"`
}

type ShippingSettings struct {
	Courier CourierSettings `yaml:"courier"`
	Pickup  PickupSettings  `yaml:"pickup"`
}

type CourierSettings struct {
	Price    decimal.Decimal `yaml:"price"`
	FreeOver decimal.Decimal `yaml:"free_over"`
}

type PickupSettings struct {
	Price decimal.Decimal `yaml:"price"`
}

type PickupPoint struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	CityID  int64  `yaml:"city_id"`
	Address string `yaml:"address"`
}

// LoadSettings parses the YAML file at path, or the embedded defaults when
// path is empty.
func LoadSettings(path string) (*Settings, error) {
	data := defaultSettings
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read settings %s: %w", path, err)
		}
		data = b
	}
	return ParseSettings(data)
}

func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	normalized := make(map[string]decimal.Decimal, len(s.VATRates))
	for code, rate := range s.VATRates {
		normalized[strings.ToUpper(code)] = rate
	}
	s.VATRates = normalized
	return &s, nil
}

// VATRate returns the rate for an ISO-2 country code, or the default rate.
func (s *Settings) VATRate(countryCode string) decimal.Decimal {
	if rate, ok := s.VATRates[strings.ToUpper(countryCode)]; ok {
		return rate
	}
	return s.DefaultVATRate
}

func (s *Settings) PickupPoint(id string) (PickupPoint, bool) {
	for _, p := range s.PickupPoints {
		if p.ID == id {
			return p, true
		}
	}
	return PickupPoint{}, false
}

func (s *Settings) validate() error {
	if s.Currency == "" {
		return errors.New("config: settings currency is required")
	}
	one := decimal.NewFromInt(1)
	if s.DefaultVATRate.IsNegative() || s.DefaultVATRate.GreaterThan(one) {
		return errors.New("config: default_vat_rate must be within [0, 1]")
	}
	for code, rate := range s.VATRates {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return fmt.Errorf("config: vat rate for %s must be within [0, 1]", code)
		}
	}
	if !s.CardLimit.IsPositive() {
		return errors.New("config: card_limit must be positive")
	}
	seen := make(map[string]bool, len(s.PickupPoints))
	for _, p := range s.PickupPoints {
		if p.ID == "" || seen[p.ID] {
			return fmt.Errorf("config: pickup point id %q is empty or duplicated", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
