package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v2"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

func routesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table resolved from the environment",
		Long: `Print the route table the gateway would serve, in match order.

Examples:
  svc-api-gateway routes
  ROUTES_FILE=routes.yaml svc-api-gateway routes --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Init()
			if err != nil {
				return err
			}

			table, _, err := config.BuildRouteTable(cfg.Upstreams)
			if err != nil {
				return err
			}

			return printRoutes(cmd.OutOrStdout(), table.Routes(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, yaml)")

	return cmd
}

func printRoutes(w io.Writer, routes []model.Route, output string) error {
	switch output {
	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMETHOD\tPATH\tUPSTREAM\tREWRITE\tBREAKER")

		for _, route := range routes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				route.Name, route.Method, route.Pattern.String(), route.Upstream, route.Rewrite, route.Breaker)
		}

		return tw.Flush()
	case outputYAML:
		specs := make([]config.RouteSpec, 0, len(routes))
		for _, route := range routes {
			specs = append(specs, config.RouteSpec{
				Name:     route.Name,
				Method:   route.Method,
				Path:     route.Pattern.String(),
				Upstream: route.Upstream,
				Rewrite:  route.Rewrite,
				Breaker:  route.Breaker,
			})
		}

		raw, err := yaml.Marshal(map[string][]config.RouteSpec{"routes": specs})
		if err != nil {
			return fmt.Errorf("encoding routes: %w", err)
		}

		_, err = w.Write(raw)

		return err
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
}
