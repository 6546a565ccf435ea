package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront-gateway/internal/config"
)

func TestPrintRoutes(t *testing.T) {
	t.Parallel()

	table, _, err := config.BuildRouteTable(config.Upstreams{
		ProductServiceURL:   "http://product:8080",
		OrderServiceURL:     "http://order:8081",
		InventoryServiceURL: "http://inventory:8082",
	})
	require.NoError(t, err)

	cases := []struct {
		name     string
		output   string
		contains []string
		wantErr  bool
	}{
		{
			name:     "table",
			output:   outputTable,
			contains: []string{"NAME", "product_service_public", "/product/**", "http://product:8080", config.ProductBreaker},
		},
		{
			name:     "yaml",
			output:   outputYAML,
			contains: []string{"routes:", "name: order_service", "upstream:", "http://order:8081"},
		},
		{
			name:    "unsupported format",
			output:  "xml",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			err := printRoutes(&buf, table.Routes(), tc.output)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			for _, fragment := range tc.contains {
				require.Contains(t, buf.String(), fragment)
			}
		})
	}
}
