package commands

import (
	"unprompted-mcp/internal/httpapi"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var httpAddr string

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Serve POST /api/simulate for browser front ends",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		service, store := openService()
		if store != nil {
			defer store.Close()
		}

		addr := cfg.HTTPAddr
		if httpAddr != "" {
			addr = httpAddr
		}
		server := httpapi.NewServer(service, addr)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.ListenAndServe(gctx)
		})
		return g.Wait()
	},
}

func init() {
	serveHTTPCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveHTTPCmd)
}
