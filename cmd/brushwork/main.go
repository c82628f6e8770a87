// Command brushwork evaluates brush scripts into meshes, validation
// reports, face picks and SVG wireframes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/config"
	"github.com/chazu/brushwork/pkg/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brushwork",
	Short: "Convex brush modelling from Lisp scripts",
	Long: `brushwork evaluates scripts that build convex brushes, combine them
with subtract and intersect, and edit their vertices.

A script is a sequence of forms such as:
  (cuboid "floor" :size (vec3 256 256 16) :material "stone")
  (subtract "doorway" (lookup "wall") (lookup "door"))

Every subcommand takes a script path, or - to read standard input.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "brushwork.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(evalCmd, checkCmd, pickCmd, svgCmd, configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
