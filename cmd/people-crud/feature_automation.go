//go:build !no_automation

package main

import (
	"log/slog"

	"people-crud/internal/automation"
	"people-crud/internal/records"
	"people-crud/internal/web"
)

type autoStopper struct {
	engine *automation.Engine
}

func (a *autoStopper) Stop() {
	if a.engine != nil {
		a.engine.Stop()
	}
}

func initAutomation(svc *records.Service, cfg *Config, logger *slog.Logger) (*autoStopper, []web.ServerOption) {
	if cfg.ScriptsDir == "" {
		return &autoStopper{}, nil
	}
	scriptMgr, err := automation.NewManager(cfg.ScriptsDir)
	if err != nil {
		logger.Error("create script manager", "err", err)
		return &autoStopper{}, nil
	}

	engine := automation.NewEngine(svc, scriptMgr, logger)
	engine.Start()

	opts := []web.ServerOption{
		web.WithHooks(scriptMgr, engine),
	}
	return &autoStopper{engine: engine}, opts
}
