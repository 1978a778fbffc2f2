package productjson

import (
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 400, verr.Status)
	assert.Equal(t, domain.ValidationProblemTitle, verr.Title)
	return verr.Errors
}

func TestDecodeCategoryVariants(t *testing.T) {
	c, err := DecodeCategory([]byte(`{"categoryType":"Books","nofPages":500,"authors":["A","B"]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.BooksCategory{NofPages: 500, Authors: []string{"A", "B"}}, c)

	c, err = DecodeCategory([]byte(`{"nofMinutes":120,"categoryType":"Movies"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.MoviesCategory{NofMinutes: 120}, c)

	c, err = DecodeCategory([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeCategoryShapeErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		message string
	}{
		{"missing discriminator", `{"nofPages":1,"authors":["A"]}`, "Missing CategoryType"},
		{"not an object", `[1,2]`, "Missing CategoryType"},
		{"unknown discriminator", `{"categoryType":"Music"}`, "Unknown CategoryType: Music."},
		{"non string discriminator", `{"categoryType":7}`, "Unknown CategoryType: 7."},
		{"books missing pages", `{"categoryType":"Books","authors":["A"]}`, "BooksCategory requires 'nofPages'."},
		{"books extra field", `{"categoryType":"Books","nofPages":500,"authors":["A"],"extra":1}`, "BooksCategory contains unsupported properties."},
		{"movies missing minutes", `{"categoryType":"Movies"}`, "MoviesCategory requires 'nofMinutes'."},
		{"movies extra field", `{"categoryType":"Movies","nofMinutes":90,"nofPages":1}`, "MoviesCategory contains unsupported properties."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCategory([]byte(tc.payload))
			errs := validationErrors(t, err)
			assert.Equal(t, map[string][]string{"$": {tc.message}}, errs)
		})
	}
}

func TestDecodeCategoryFieldErrors(t *testing.T) {
	_, err := DecodeCategory([]byte(`{"categoryType":"Books","nofPages":500}`))
	errs := validationErrors(t, err)
	assert.Equal(t, []string{"The authors field is required."}, errs["authors"])

	_, err = DecodeCategory([]byte(`{"categoryType":"Books","nofPages":500,"authors":[]}`))
	errs = validationErrors(t, err)
	assert.Equal(t, []string{"The field authors must be a string or array type with a minimum length of '1'."}, errs["authors"])

	_, err = DecodeCategory([]byte(`{"categoryType":"Movies","nofMinutes":-5}`))
	errs = validationErrors(t, err)
	assert.Contains(t, errs, "nofMinutes")
	assert.NotContains(t, errs, "$")
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range []domain.Category{
		domain.BooksCategory{NofPages: 42, Authors: []string{"Douglas Adams"}},
		domain.MoviesCategory{NofMinutes: 88},
	} {
		raw, err := EncodeCategory(c)
		require.NoError(t, err)
		decoded, err := DecodeCategory(raw)
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestEncodeCategoryWritesOnlyVariantFields(t *testing.T) {
	raw, err := EncodeCategory(domain.MoviesCategory{NofMinutes: 88})
	require.NoError(t, err)
	assert.JSONEq(t, `{"categoryType":"Movies","nofMinutes":88}`, string(raw))

	raw, err = EncodeCategory(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestDecodeProduct(t *testing.T) {
	p, err := DecodeProduct([]byte(`{
		"id": "0a4b3c1e-5f2d-4b7a-9c8e-1d2f3a4b5c6d",
		"name": "Dune",
		"category": "Books",
		"summary": "Spice",
		"imageFile": "dune.png",
		"price": 12.5,
		"currency": "EUR",
		"categoryInfo": {"categoryType":"Books","nofPages":412,"authors":["Frank Herbert"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "0a4b3c1e-5f2d-4b7a-9c8e-1d2f3a4b5c6d", p.ID.String())
	assert.Equal(t, "Dune", p.Name)
	assert.Equal(t, domain.CurrencyEUR, p.Currency)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))
	assert.Equal(t, domain.BooksCategory{NofPages: 412, Authors: []string{"Frank Herbert"}}, p.CategoryInfo)
}

func TestDecodeProductDefaultsCurrency(t *testing.T) {
	p, err := DecodeProduct([]byte(`{"name":"Heat","price":3}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyUSD, p.Currency)
	assert.Nil(t, p.CategoryInfo)
}

func TestDecodeProductErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		field   string
		message string
	}{
		{"unknown currency", `{"name":"x","price":1,"currency":"XYZ"}`, "$", "Failed to parse `currency`."},
		{"missing name", `{"price":1}`, "name", "The name field is required."},
		{"negative price", `{"name":"x","price":-1}`, "price", "The field price must be greater than or equal to 0."},
		{"nested shape error", `{"name":"x","price":1,"categoryInfo":{"categoryType":"Movies"}}`, "$", "MoviesCategory requires 'nofMinutes'."},
		{"nested field error", `{"name":"x","price":1,"categoryInfo":{"categoryType":"Books","nofPages":3,"authors":[]}}`, "categoryInfo.authors", "The field authors must be a string or array type with a minimum length of '1'."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeProduct([]byte(tc.payload))
			errs := validationErrors(t, err)
			assert.Equal(t, []string{tc.message}, errs[tc.field])
		})
	}
}

func TestDecodeProductSchemaViolations(t *testing.T) {
	_, err := DecodeProduct([]byte(`{"name":"x","price":"cheap","categoryInfo":5}`))
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "categoryInfo")

	_, err = DecodeProduct([]byte(`{"name":`))
	errs = validationErrors(t, err)
	assert.Equal(t, []string{"The request body is not valid JSON."}, errs["$"])

	_, err = DecodeProduct([]byte(`[]`))
	errs = validationErrors(t, err)
	assert.Contains(t, errs, "$")
}
