// forgectl is the command line surface over the performance platform:
// serve the HTTP API, run one-off simulations, drive optimization studies
// and inspect stored results.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:           "forgectl",
		Short:         "Hybrid rocket steady-state performance prediction and optimization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(optimizeCmd())
	root.AddCommand(studiesCmd())
	root.AddCommand(probeCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
