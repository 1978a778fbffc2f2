package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/infra/productjson"

	"github.com/spf13/cobra"
)

func newProductCmd(opts *options) *cobra.Command {
	product := &cobra.Command{
		Use:   "product",
		Short: "Work with product payloads",
	}
	product.AddCommand(&cobra.Command{
		Use:   "validate <file|->",
		Short: "Decode a product body the way POST /api/products does",
		Long: `Decode a product body and print the normalized product, or the
validation problem the API would answer with.

Examples:
  storefrontctl product validate dune.json
  cat dune.json | storefrontctl product validate - -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			var err error
			if args[0] == "-" {
				payload, err = io.ReadAll(cmd.InOrStdin())
			} else {
				payload, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read product: %w", err)
			}
			return validateProduct(cmd.OutOrStdout(), opts, payload)
		},
	})
	return product
}

func validateProduct(w io.Writer, opts *options, payload []byte) error {
	product, err := productjson.DecodeProduct(payload)
	if err != nil {
		var problem *domain.ValidationError
		if !errors.As(err, &problem) {
			return err
		}
		if opts.structured() {
			if err := opts.write(w, problem); err != nil {
				return err
			}
			return errCheckFailed
		}
		fmt.Fprintf(w, "Status: %s\n", failFmt("INVALID"))
		fields := make([]string, 0, len(problem.Errors))
		for field := range problem.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			for _, msg := range problem.Errors[field] {
				fmt.Fprintf(w, "  %s: %s\n", field, msg)
			}
		}
		return errCheckFailed
	}

	encoded, err := productjson.EncodeProduct(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	if opts.structured() {
		var generic map[string]any
		if err := json.Unmarshal(encoded, &generic); err != nil {
			return err
		}
		return opts.write(w, generic)
	}
	fmt.Fprintf(w, "Status: %s\n", passFmt("VALID"))
	fmt.Fprintln(w, string(encoded))
	return nil
}
