// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/container"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run a local single-node Elasticsearch for development",
}

var backendUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the development Elasticsearch container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		image, _ := cmd.Flags().GetString("image")
		port, _ := cmd.Flags().GetInt("port")
		return rt.Start(container.Backend{Name: name, Image: image, Port: port}, os.Stdout)
	},
}

var backendDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Remove the development Elasticsearch container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		return rt.Stop(name, os.Stdout)
	},
}

func init() {
	backendCmd.PersistentFlags().String("name", container.DefaultName, "container name")
	backendUpCmd.Flags().String("image", container.DefaultImage, "Elasticsearch image")
	backendUpCmd.Flags().Int("port", container.DefaultPort, "host port")

	backendCmd.AddCommand(backendUpCmd, backendDownCmd)
	rootCmd.AddCommand(backendCmd)
}
