// Command people-cli is a terminal front-end for a people-crud server.
//
// Usage: people-cli [base-url]
package main

import (
	"context"
	"log/slog"
	"os"

	"people-crud/internal/client"
	"people-crud/internal/ui"
)

const defaultBaseURL = "http://localhost:3000"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	baseURL := defaultBaseURL
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	api, err := client.New(baseURL)
	if err != nil {
		logger.Error("create client", "err", err)
		os.Exit(1)
	}

	r := newREPL(os.Stdin, os.Stdout)
	ctl := ui.NewController(api, r.confirm, logger)
	r.ctl = ctl

	if err := r.run(context.Background()); err != nil {
		logger.Error("read input", "err", err)
		os.Exit(1)
	}
}
