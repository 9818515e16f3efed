package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/countymap/internal/render"
	"github.com/sells-group/countymap/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the county dataset over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		records, err := loadRecords(ctx)
		if err != nil {
			return err
		}

		srv := server.New(records, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxToleranceKM: cfg.Server.MaxToleranceKM,
			Map: render.Options{
				Width:   cfg.Map.Width,
				Height:  cfg.Map.Height,
				Scale:   cfg.Map.Scale,
				Divisor: cfg.Map.SymbolDivisor,
			},
		})
		return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
