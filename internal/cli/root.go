// Package cli implements the stackcli command line tool.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-stacker/internal/config"
)

var (
	cfgFile string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "stackcli",
	Short: "Stack images vertically into a single PNG",
	Long: `stackcli stacks images top to bottom the same way the desktop editor does:
every image is placed directly below the visible part of the previous one,
wide images are scaled down to the surface width, and each image can be
trimmed at the top and bottom or shifted before the next one is added.

Configuration is read from $XDG_CONFIG_HOME/image-stacker/config.yaml
(or the file named by STACKER_CONFIG or --config). Every key can be
overridden with a STACKER_ environment variable, e.g.
STACKER_SURFACE_MAX_WIDTH=800.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		log, err := c.Logging.Prepare()
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		cfg, logger = c, log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/image-stacker/config.yaml)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
