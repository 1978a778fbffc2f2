package main

import (
	"os"

	"storefront/cmd/storefrontctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
