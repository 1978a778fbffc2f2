package productjson

import (
	"fmt"

	"storefront/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

const productEnvelopeSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string", "format": "uuid"},
    "name": {"type": ["string", "null"]},
    "category": {"type": ["string", "null"]},
    "summary": {"type": ["string", "null"]},
    "imageFile": {"type": ["string", "null"]},
    "price": {"type": "number"},
    "currency": {"type": "string"},
    "categoryInfo": {"type": ["object", "null"]}
  }
}`

var productSchema = mustSchema(productEnvelopeSchema)

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

// checkEnvelope reports JSON type violations keyed by field.
func checkEnvelope(raw []byte) *domain.ValidationError {
	result, err := productSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return domain.PayloadError("The request body is not valid JSON.")
	}
	if result.Valid() {
		return nil
	}
	verr := domain.NewValidationError()
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" || field == "" {
			field = domain.PayloadKey
		}
		verr.Add(field, desc.Description())
	}
	return verr
}
