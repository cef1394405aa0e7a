// Command kontent is the batch content pipeline for the training
// portal: it ingests source documents into the station/section
// taxonomy and reconciles the persisted corpus.
package main

import (
	"os"

	"github.com/trenlab/kontent-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
