// Package testing gates tests that need external services.
package testing

import (
	"os"
	"testing"
)

// Environment variables read by the helpers.
const (
	EnvUnitOnly        = "MASKLOG_UNIT_TESTS_ONLY"
	EnvRunIntegration  = "MASKLOG_RUN_INTEGRATION_TESTS"
	EnvNATSURL         = "MASKLOG_TEST_NATS_URL"
	defaultTestNATSURL = "nats://127.0.0.1:4222/masklog.test"
)

// Unit returns true if running in unit test mode.
// Unit tests should be fast and not require external services.
func Unit() bool {
	if os.Getenv(EnvUnitOnly) == "true" {
		return true
	}
	if os.Getenv(EnvRunIntegration) == "true" {
		return false
	}
	// -short and an unset or "false" switch all mean unit mode
	return true
}

// Integration returns true if running in integration test mode.
// Integration tests may require external services such as a NATS server.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips the test if running in unit test mode.
func SkipIfUnit(t *testing.T, message ...string) {
	t.Helper()
	if Unit() || testing.Short() {
		msg := "Skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// SkipIfIntegration skips the test if running in integration test mode.
func SkipIfIntegration(t *testing.T, message ...string) {
	t.Helper()
	if Integration() {
		msg := "Skipping unit-only test in integration mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// NATSURL returns the NATS URI integration tests publish to.
func NATSURL() string {
	if u := os.Getenv(EnvNATSURL); u != "" {
		return u
	}
	return defaultTestNATSURL
}
