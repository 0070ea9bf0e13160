// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/tilt_matrix/internal/app"
	"github.com/relabs-tech/tilt_matrix/internal/config"
)

func main() {
	configPath := flag.String("config", "./tilt_matrix.conf", "path to configuration file")
	frames := flag.Bool("frames", false, "also print every frame as colour blocks")
	flag.Parse()

	log.Println("starting tilt-matrix console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(config.Get(), *frames); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
