// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/tilt_matrix/internal/app"
	"github.com/relabs-tech/tilt_matrix/internal/config"
)

var (
	flagConfig     string
	flagWidth      int
	flagFrameDelay int
	flagSamples    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tilt_matrix",
		Short: "Tilt Matrix - orientation driven trail and pulse animations on an LED grid",
		Long: `Tilt Matrix reads pitch/roll/yaw from an orientation sensor and animates an
N×N RGB matrix: colour trails stream in from the tilt direction and a
concentric pulse plays while the device lies flat.

Displays: terminal, ws2812 (SPI LED matrix), serial (Adalight controller),
oled (SSD1306 mirror) and web (browser preview).`,
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the matrix with the sensor and displays from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("starting tilt-matrix")
			if err := config.InitGlobal(flagConfig); err != nil {
				return err
			}
			return app.RunMatrix(config.Get())
		},
	}
	runCmd.Flags().StringVar(&flagConfig, "config", "./tilt_matrix.conf", "path to configuration file")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Animate a mock sensor in the terminal (no hardware needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.GridWidth = flagWidth
			cfg.FrameDelayMS = flagFrameDelay
			cfg.NumSamples = flagSamples
			return app.RunMatrix(cfg)
		},
	}
	previewCmd.Flags().IntVar(&flagWidth, "width", 8, "grid width in pixels")
	previewCmd.Flags().IntVar(&flagFrameDelay, "frame-delay", 200, "delay between frames in milliseconds")
	previewCmd.Flags().IntVar(&flagSamples, "samples", 10, "sensor reads per tick")

	palettesCmd := &cobra.Command{
		Use:   "palettes",
		Short: "Print the configured colour palettes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cmd.Flags().Changed("config") {
				var err error
				if cfg, err = config.Load(flagConfig); err != nil {
					return err
				}
			}
			return app.PrintPalettes(cmd.OutOrStdout(), cfg)
		},
	}
	palettesCmd.Flags().StringVar(&flagConfig, "config", "./tilt_matrix.conf", "path to configuration file")

	rootCmd.AddCommand(runCmd, previewCmd, palettesCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
