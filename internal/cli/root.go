// Package cli contains the storefront command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront/internal/config"
	"storefront/internal/logger"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	cfg     *config.Config
	log     *slog.Logger
)

// flagKeys maps command-line flags onto configuration keys. Flags that a
// command does not define are skipped.
var flagKeys = map[string]string{
	"api-url":   "api.base_url",
	"log-level": "logging.level",
	"port":      "server.port",
	"tls":       "server.tls",
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "FreshCart storefront and admin console",
	Long: `storefront serves the FreshCart shop and its admin console on top of
the remote store API.

Example usage:
  storefront serve                   # Serve on :8082
  storefront serve --tls             # Serve HTTPS with a self-signed certificate
  storefront catalog products -k tv  # Search the catalog from the terminal
  storefront cert --host shop.local  # Write cert.pem and key.pem`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the command selected by os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./storefront.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("api-url", "", "store API base URL")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func initConfig(cmd *cobra.Command) error {
	if noColor {
		color.NoColor = true
	}

	var err error
	cfg, err = config.Load(cfgFile, bindFlags(cmd))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	// stdout belongs to command output.
	log = logger.InitWithWriter(os.Stderr, cfg.Logging.Level)
	log.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"port", cfg.Server.Port,
		"tls", cfg.Server.TLS,
	)
	return nil
}

// bindFlags binds the flags the user actually set, so unset flags never
// shadow file or environment values.
func bindFlags(cmd *cobra.Command) config.Option {
	return func(v *viper.Viper) error {
		for name, key := range flagKeys {
			f := cmd.Flags().Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
		return nil
	}
}
