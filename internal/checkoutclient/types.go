package checkoutclient

// Totals mirrors the storefront's price breakdown; amounts are decimal strings.
type Totals struct {
	Subtotal     string `json:"subtotal"`
	Shipping     string `json:"shipping"`
	VATRate      string `json:"vat_rate"`
	Tax          string `json:"tax"`
	TotalExclTax string `json:"total_excl_tax"`
	TotalInclTax string `json:"total_incl_tax"`
	CountryCode  string `json:"country_code,omitempty"`
	Currency     string `json:"currency"`
}

type Line struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type Cart struct {
	ID                string `json:"id"`
	Items             []Line `json:"items"`
	ShippingCountryID int64  `json:"shipping_country_id,omitempty"`
	ShippingMethod    string `json:"shipping_method"`
	PickupPointID     string `json:"pickup_point_id,omitempty"`
	Totals            Totals `json:"totals"`
}

type Place struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Address is the checkout address form.
type Address struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone"`
	CountryID int64  `json:"country_id"`
	StateID   int64  `json:"state_id"`
	CityID    int64  `json:"city_id"`
	Street    string `json:"street"`
	Zip       string `json:"zip"`
}

type Order struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
	Totals        Totals `json:"totals"`

	// Replayed is set when the server answered with the order an earlier
	// submission of the same session created.
	Replayed bool `json:"-"`
}
