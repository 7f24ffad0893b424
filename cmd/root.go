package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wayloop/internal/config"
	"github.com/bnema/wayloop/internal/logger"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "wayloop",
		Short: "wayloop - Wayland windowing event loop",
		Long: `wayloop drives toplevel windows on a Wayland compositor.
It folds compositor events into window state and delivers them to an
application in a fixed order once per loop iteration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetConfigPath(configPath)
			if err := config.Init(); err != nil {
				return err
			}
			if level := config.Get().Logging.LogLevel; level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.config/wayloop/wayloop.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	if err := viper.BindPFlag("logging.log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		exitError("failed to bind log-level flag: %v", err)
	}
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
