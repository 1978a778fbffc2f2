package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"storefront/internal/domain"
	"storefront/internal/infra/cachemem"
	"storefront/internal/infra/memstore"
	"storefront/internal/infra/productfilter"
	"storefront/internal/infra/productjson"

	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"
)

type filterMatch struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func newFilterCmd(opts *options) *cobra.Command {
	var productsPath string
	filter := &cobra.Command{
		Use:   "filter",
		Short: "Work with catalog filter expressions",
	}
	check := &cobra.Command{
		Use:   "check <expression>",
		Short: "Compile a filter expression and list the products it matches",
		Long: `Compile a catalog filter expression as GET /api/products?filter= does
and run it against the seeded catalog, or a JSON array of products.

Examples:
  storefrontctl filter check 'price < 20 && categoryType == "Books"'
  storefrontctl filter check '"Frank Herbert" in authors' --products catalog.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products := memstore.SeedProducts()
			if productsPath != "" {
				loaded, err := loadProducts(productsPath)
				if err != nil {
					return err
				}
				products = loaded
			}

			compiler := productfilter.NewCompiler(cachemem.New[*vm.Program](1))
			matcher, err := compiler.Compile(args[0])
			if err != nil {
				return err
			}
			matches := []filterMatch{}
			for _, p := range products {
				ok, err := matcher.Match(p)
				if err != nil {
					return err
				}
				if ok {
					matches = append(matches, filterMatch{ID: p.ID.String(), Name: p.Name})
				}
			}

			if opts.structured() {
				return opts.write(cmd.OutOrStdout(), matches)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, m := range matches {
				fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Name)
			}
			return w.Flush()
		},
	}
	check.Flags().StringVar(&productsPath, "products", "", "JSON array of products (seeded catalog when empty)")
	filter.AddCommand(check)
	return filter
}

func loadProducts(path string) ([]domain.Product, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]domain.Product, 0, len(raws))
	for i, raw := range raws {
		p, err := productjson.DecodeProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
