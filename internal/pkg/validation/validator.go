// Package validation binds declarative struct-tag rule sets to request
// payloads and renders failures as json-field → message maps.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

var (
	skuPattern  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,63}$`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// FieldErrors maps a request field (its json path) to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// Rule is an extra named rule with its English message; {0} is the field name.
type Rule struct {
	Tag     string
	Message string
	Fn      validator.Func
}

// New builds a validator that names fields by their json tag, understands
// decimal.Decimal in numeric rules and knows the storefront's custom rules.
func New(extra ...Rule) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("validation: register translations: %w", err)
	}

	rules := append([]Rule{
		{Tag: "sku", Message: "{0} must be 2-64 upper-case letters, digits, '-' or '_'", Fn: matches(skuPattern)},
		{Tag: "slug", Message: "{0} must be lower-case words separated by '-'", Fn: matches(slugPattern)},
	}, extra...)
	for _, r := range rules {
		if err := register(v, trans, r); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Struct validates s and returns FieldErrors on rule violations.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		if _, exists := out[key]; !exists {
			out[key] = fe.Translate(v.trans)
		}
	}
	return out
}

// fieldPath drops the root struct name from a namespace such as
// "PlaceOrderRequest.shipping_address.zip".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// OneOfStrings builds a rule accepting only the given values.
func OneOfStrings(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		got := fl.Field().String()
		for _, v := range values {
			if got == v {
				return true
			}
		}
		return false
	}
}

func register(v *validator.Validate, trans ut.Translator, r Rule) error {
	if err := v.RegisterValidation(r.Tag, r.Fn); err != nil {
		return fmt.Errorf("validation: register %s: %w", r.Tag, err)
	}
	return v.RegisterTranslation(r.Tag, trans,
		func(ut ut.Translator) error { return ut.Add(r.Tag, r.Message, true) },
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(r.Tag, fe.Field())
			return msg
		},
	)
}
