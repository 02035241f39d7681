package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.viam.com/rdk/logging"

	"github.com/erh/poseutils"
)

type options struct {
	transforms  string
	outputModel string
	database    string
	debug       bool
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "nerf2colmap",
		Short: "Convert a NeRF transforms.json into a COLMAP text model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return realMain(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transforms, "transforms", "", "path to transforms.json")
	cmd.Flags().StringVar(&opts.outputModel, "output_model", "", "output COLMAP model directory")
	cmd.Flags().StringVar(&opts.database, "database", "", "unused, accepted for compatibility")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "debug logging")

	for _, f := range []string{"transforms", "output_model", "database"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(fmt.Errorf("bad flag %s: %w", f, err))
		}
	}

	return cmd
}

func realMain(opts options) error {
	logger := logging.NewLogger("nerf2colmap")
	if opts.debug {
		logger = logging.NewDebugLogger("nerf2colmap")
	}

	logger.Debugf("ignoring database %s", opts.database)

	return poseutils.ExportColmap(opts.transforms, opts.outputModel, logger)
}
