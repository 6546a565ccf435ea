package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/runtime"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "svc-api-gateway",
		Short:   "Storefront API gateway",
		Version: fmt.Sprintf("%s (%s)", config.ServiceVersion, config.CommitSHA),
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(routesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the public gateway and the admin server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runtime.New().Run()
		},
	}
}
