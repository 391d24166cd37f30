package config

import (
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

const redacted = "********"

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	dat, err := Marshal(cfg, false)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, dat, os.FileMode(0o600))
}

// Marshal renders cfg as YAML. Durations are written in their string form
// so the file reads back through Load. Secrets are masked when redact is
// set.
func Marshal(cfg *Config, redact bool) ([]byte, error) {
	out := *cfg
	if redact {
		out.MQTTPassword = mask(out.MQTTPassword)
		out.InfluxToken = mask(out.InfluxToken)
	}

	return yaml.Marshal(struct {
		Config
		StateTimeout string `json:"state_timeout"`
		PollInterval string `json:"poll_interval"`
	}{
		Config:       out,
		StateTimeout: out.StateTimeout.String(),
		PollInterval: out.PollInterval.String(),
	})
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}
