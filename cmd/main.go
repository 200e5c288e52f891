package main

import (
	"os"

	"github.com/soundprediction/inquiro/cmd/inquiro"
)

func main() {
	if err := inquiro.Execute(); err != nil {
		os.Exit(1)
	}
}
