package authz

import "fmt"

const (
	TransformerSecretHeader = "secret_header"
	TransformerMinimumAge   = "minimum_age"
)

var DefaultTransformers = []string{TransformerSecretHeader, TransformerMinimumAge}

var registry = map[string]func() Transformer{
	TransformerSecretHeader: NewSecretHeaderTransformer,
	TransformerMinimumAge:   NewMinimumAgeTransformer,
}

// ChainFromNames resolves configured transformer names in order.
func ChainFromNames(names []string) (*Chain, error) {
	transformers := make([]Transformer, 0, len(names))
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown transformer %q", name)}
		}
		transformers = append(transformers, factory())
	}
	return NewChain(transformers...)
}
