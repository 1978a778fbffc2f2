// Package cmd implements the storefrontctl commands: offline checks for
// product payloads, the health check policy and catalog filter expressions.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	passFmt = color.New(color.FgGreen, color.Bold).SprintFunc()
	failFmt = color.New(color.FgRed, color.Bold).SprintFunc()
)

// errCheckFailed is returned when a check ran but its subject was rejected.
var errCheckFailed = errors.New("check failed")

type options struct {
	output string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Offline checks for storefront payloads and policies",
		Long: `storefrontctl runs the storefront decoders and policies without a server.

It validates product bodies against the category codec, evaluates the
health check policy for a synthetic request and compiles catalog filter
expressions.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json, yaml")
	root.AddCommand(newProductCmd(opts), newPolicyCmd(opts), newFilterCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func (o *options) structured() bool {
	return o.output == "json" || o.output == "yaml"
}

func (o *options) write(w io.Writer, data any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "table":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}
