//go:build linux
// +build linux

// gdsprobe inspects the direct-storage setup and benchmarks reads and
// writes through the accelerated path or the plain host path.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/velakur/gdsio/internal/cufile"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	err := rootCmd.Execute()
	// All I/O has drained by now; shut the driver down before exiting.
	cufile.CloseDriver()
	if err != nil {
		log.Error().Err(err).Msg("gdsprobe failed")
		os.Exit(1)
	}
}
