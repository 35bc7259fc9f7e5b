package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/server"
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Write a self-signed certificate",
	Long: `Write cert.pem and key.pem for local HTTPS.

Examples:
  storefront cert                          # localhost only
  storefront cert --host 192.168.1.10      # add a LAN address
  storefront cert --out ./tls --days 30`,
	RunE: runCert,
}

func init() {
	rootCmd.AddCommand(certCmd)

	certCmd.Flags().StringSlice("host", []string{"localhost"}, "DNS names or IP addresses")
	certCmd.Flags().String("out", ".", "output directory")
	certCmd.Flags().Int("days", 365, "validity in days")
}

func runCert(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	hosts, _ := cmd.Flags().GetStringSlice("host")
	out, _ := cmd.Flags().GetString("out")
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	certPEM, keyPEM, err := server.SelfSignedCert(hosts, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("generating certificate: %w", err)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	certPath := filepath.Join(out, "cert.pem")
	keyPath := filepath.Join(out, "key.pem")
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("writing certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("writing key: %w", err)
	}

	p.Success("Certificate written to %s", certPath)
	p.Success("Key written to %s", keyPath)
	p.Info("Set server.cert_file and server.key_file to use them")
	return nil
}
