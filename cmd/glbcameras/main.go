package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/erh/poseutils/gltfcam"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	asset := ""

	cmd := &cobra.Command{
		Use:   "glbcameras",
		Short: "Print the cameras in a glTF binary scene and the nodes that place them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			doc, err := gltfcam.Load(asset)
			if err != nil {
				return err
			}
			return gltfcam.Print(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().StringVar(&asset, "asset", gltfcam.DefaultAsset, "scene to inspect")

	return cmd
}
