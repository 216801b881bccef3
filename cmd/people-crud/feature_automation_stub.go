//go:build no_automation

package main

import (
	"log/slog"

	"people-crud/internal/records"
	"people-crud/internal/web"
)

type autoStopper struct{}

func (a *autoStopper) Stop() {}

func initAutomation(_ *records.Service, _ *Config, _ *slog.Logger) (*autoStopper, []web.ServerOption) {
	return &autoStopper{}, nil
}
