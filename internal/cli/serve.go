package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront",
	Long: `Serve the storefront and admin console.

With --tls (or server.tls) the site is served over HTTPS on server.tls_port
and plain HTTP requests are redirected there. Without server.cert_file and
server.key_file a self-signed certificate is generated at startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "HTTP port")
	serveCmd.Flags().Bool("tls", false, "serve HTTPS")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
