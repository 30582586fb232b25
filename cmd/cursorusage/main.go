package main

import (
	"io"
	"log"
	"os"
)

func main() {
	if os.Getenv("CURSORUSAGE_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
