package main

import (
	"os"

	"github.com/soundprediction/plagiarismguard/cmd/plagiarismguard"
)

func main() {
	if err := plagiarismguard.Execute(); err != nil {
		os.Exit(1)
	}
}
