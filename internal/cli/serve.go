package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/buergerwerk/klartext/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Long: `Start the HTTP server exposing the analysis pipeline:

  POST /api/v1/analyze         synchronous analysis
  POST /api/v1/refine          refinement of an existing claim list
  POST /api/v1/analyze/stream  incremental delivery via server-sent events`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		application, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer application.close()

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.New(application.analyzer).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		fmt.Fprintf(os.Stderr, "klartext listening on %s\n", cfg.Server.Addr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
