//go:build no_mqtt

package main

import (
	"log/slog"

	"people-crud/internal/records"
)

type mqttStopper struct{}

func (m *mqttStopper) Stop() {}

func initMQTT(_ *records.Service, _ *Config, _ *slog.Logger) *mqttStopper {
	return &mqttStopper{}
}
