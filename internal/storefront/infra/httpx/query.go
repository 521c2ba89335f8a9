package httpx

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/validation"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// queryReader parses typed query parameters, collecting a field error for
// each value that does not parse.
type queryReader struct {
	values url.Values
	errs   validation.FieldErrors
}

func newQueryReader(u *url.URL) *queryReader {
	return &queryReader{values: u.Query(), errs: validation.FieldErrors{}}
}

func (q *queryReader) text(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

func (q *queryReader) integer(name string) int {
	raw := q.text(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs[name] = "The " + name + " field must be an integer."
	}
	return n
}

func (q *queryReader) amount(name string) *decimal.Decimal {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		q.errs[name] = "The " + name + " field must be a positive number."
		return nil
	}
	return &d
}

func (q *queryReader) flag(name string) *bool {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs[name] = "The " + name + " field must be true or false."
		return nil
	}
	return &b
}

// date accepts RFC 3339 timestamps or plain dates (midnight UTC).
func (q *queryReader) date(name string) *time.Time {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	q.errs[name] = "The " + name + " field must be a date."
	return nil
}

func (q *queryReader) oneOf(name string, allowed ...string) string {
	raw := q.text(name)
	if raw == "" {
		return ""
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	q.errs[name] = "The selected " + name + " is invalid."
	return ""
}

func (q *queryReader) page() entity.Page {
	p := entity.Page{Number: q.integer("page"), PerPage: q.integer("per_page")}
	if p.Number < 0 {
		q.errs["page"] = "The page field must be at least 1."
	}
	if p.PerPage < 0 || p.PerPage > entity.MaxPerPage {
		q.errs["per_page"] = "The per_page field must be between 1 and " + strconv.Itoa(entity.MaxPerPage) + "."
	}
	return p
}

func (q *queryReader) err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return q.errs
}
