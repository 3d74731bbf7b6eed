package cli

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/api"
	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/config"
)

// serveCommand serves the catalog over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalog queries over HTTP",
		Long: `Serve exposes read-only catalog queries as a JSON HTTP API:

  GET /packages?q=pattern
  GET /packages/{name}
  GET /packages/{name}/versions
  GET /packages/{name}/versions/{version}
  GET /packages/{name}/fields/{field}?version=
  GET /packages/{name}/deps?version=
  GET /packages/{name}/closure?version=
  GET /packages/{name}/graph?format=json|yaml|dot
  GET /plan?pkg=a&pkg=b
  GET /manifest
  GET /healthz

Do not run load against the same database while serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(s *catalog.SQLiteStore) error {
				return api.New(s, c.Logger).ListenAndServe(ctx, addr, func(a net.Addr) {
					printSuccess(cmd.OutOrStdout(), "Serving %s on http://%s", c.Config.Database, a)
				})
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")

	return cmd
}
