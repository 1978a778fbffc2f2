// Package productjson decodes and encodes products and their polymorphic
// category payloads. Every decode failure is a *domain.ValidationError.
package productjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const discriminator = "categoryType"

type variantShape struct {
	name      string
	required  string
	permitted map[string]struct{}
	decode    func(raw []byte) (domain.Category, error)
}

var shapes = map[domain.CategoryType]variantShape{
	domain.CategoryBooks: {
		name:      "BooksCategory",
		required:  "nofPages",
		permitted: fieldSet(discriminator, "nofPages", "authors"),
		decode: func(raw []byte) (domain.Category, error) {
			var b domain.BooksCategory
			err := json.Unmarshal(raw, &b)
			return b, err
		},
	},
	domain.CategoryMovies: {
		name:      "MoviesCategory",
		required:  "nofMinutes",
		permitted: fieldSet(discriminator, "nofMinutes"),
		decode: func(raw []byte) (domain.Category, error) {
			var m domain.MoviesCategory
			err := json.Unmarshal(raw, &m)
			return m, err
		},
	},
}

func fieldSet(fields ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

// DecodeCategory decodes a category payload. A JSON null yields a nil
// category and no error.
func DecodeCategory(raw []byte) (domain.Category, error) {
	c, verr := decodeCategory(raw, "")
	if verr != nil {
		return nil, verr
	}
	return c, nil
}

func decodeCategory(raw []byte, prefix string) (domain.Category, *domain.ValidationError) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, domain.PayloadError("Missing CategoryType")
	}
	rawType, ok := fields[discriminator]
	if !ok {
		return nil, domain.PayloadError("Missing CategoryType")
	}
	var typeName string
	if err := json.Unmarshal(rawType, &typeName); err != nil {
		return nil, domain.PayloadError("Unknown CategoryType: %s.", string(rawType))
	}
	shape, ok := shapes[domain.CategoryType(typeName)]
	if !ok {
		return nil, domain.PayloadError("Unknown CategoryType: %s.", typeName)
	}

	if _, ok := fields[shape.required]; !ok {
		return nil, domain.PayloadError("%s requires '%s'.", shape.name, shape.required)
	}
	for key := range fields {
		if _, ok := shape.permitted[key]; !ok {
			return nil, domain.PayloadError("%s contains unsupported properties.", shape.name)
		}
	}

	category, err := shape.decode(trimmed)
	if err != nil {
		return nil, fieldDecodeError(err, prefix)
	}
	if verr := validateStruct(category, prefix); verr != nil {
		return nil, verr
	}
	return category, nil
}

func fieldDecodeError(err error, prefix string) *domain.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		key := typeErr.Field
		if prefix != "" {
			key = prefix + "." + key
		}
		verr := domain.NewValidationError()
		verr.Add(key, fmt.Sprintf("The JSON value could not be converted to %s.", typeErr.Type))
		return verr
	}
	return domain.PayloadError("The JSON value could not be decoded: %s.", strings.TrimSuffix(err.Error(), "."))
}

type productEnvelope struct {
	ID           *uuid.UUID      `json:"id"`
	Name         *string         `json:"name"`
	Category     *string         `json:"category"`
	Summary      *string         `json:"summary"`
	ImageFile    *string         `json:"imageFile"`
	Price        decimal.Decimal `json:"price"`
	Currency     *string         `json:"currency"`
	CategoryInfo json.RawMessage `json:"categoryInfo"`
}

// DecodeProduct decodes a product body: envelope types, currency, the nested
// category and finally field validation.
func DecodeProduct(raw []byte) (domain.Product, error) {
	if verr := checkEnvelope(raw); verr != nil {
		return domain.Product{}, verr
	}
	var env productEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Product{}, fieldDecodeError(err, "")
	}

	p := domain.Product{
		Name:      deref(env.Name),
		Category:  deref(env.Category),
		Summary:   deref(env.Summary),
		ImageFile: deref(env.ImageFile),
		Price:     env.Price,
		Currency:  domain.DefaultCurrency,
	}
	if env.ID != nil {
		p.ID = *env.ID
	}
	if env.Currency != nil {
		currency, ok := domain.ParseCurrency(*env.Currency)
		if !ok {
			return domain.Product{}, domain.PayloadError("Failed to parse `currency`.")
		}
		p.Currency = currency
	}

	category, verr := decodeCategory(env.CategoryInfo, "categoryInfo")
	if verr != nil {
		return domain.Product{}, verr
	}

	if verr := validateStruct(p, ""); verr != nil {
		return domain.Product{}, verr
	}
	p.CategoryInfo = category
	return p, nil
}

// EncodeCategory writes the discriminator and the variant's own fields.
func EncodeCategory(c domain.Category) ([]byte, error) {
	switch v := c.(type) {
	case nil:
		return []byte("null"), nil
	case domain.BooksCategory:
		return json.Marshal(v)
	case domain.MoviesCategory:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown category variant %T", c)
	}
}

func EncodeProduct(p domain.Product) ([]byte, error) {
	return json.Marshal(p)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
