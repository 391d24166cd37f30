package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{
		DeviceIP:         "192.168.1.100",
		MQTTPort:         1883,
		RootTopic:        "438M",
		StateTimeout:     10 * time.Second,
		DefaultWidth:     90,
		FallbackHeading:  180,
		PollInterval:     5 * time.Minute,
		NATSSubject:      "blowcontrol",
		InfluxBucket:     "blowcontrol",
		TemperatureUnits: "Celsius",
		LogLevel:         "warn",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("DEVICE_IP", "10.0.0.7")
	t.Setenv("MQTT_PORT", "1884")
	t.Setenv("MQTT_PASSWORD", "secret")
	t.Setenv("SERIAL_NUMBER", "ABC-EU-1234")
	t.Setenv("STATE_TIMEOUT", "3s")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DeviceIP != "10.0.0.7" || cfg.MQTTPort != 1884 {
		t.Errorf("got %s:%d", cfg.DeviceIP, cfg.MQTTPort)
	}
	if cfg.MQTTPassword != "secret" || cfg.SerialNumber != "ABC-EU-1234" {
		t.Errorf("credentials not loaded: %+v", cfg)
	}
	if cfg.StateTimeout != 3*time.Second {
		t.Errorf("state timeout = %s, want 3s", cfg.StateTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	data := "DEVICE_IP=192.168.0.50\nMQTT_PASSWORD=pw\nSERIAL_NUMBER=XYZ\nROOT_TOPIC=527\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.Topic("command"), "527/XYZ/command"; got != want {
		t.Errorf("Topic(command) = %q, want %q", got, want)
	}
	if cfg.BrokerURL() != "tcp://192.168.0.50:1883" {
		t.Errorf("BrokerURL() = %q", cfg.BrokerURL())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatal(err)
	}
	cfg.MQTTPassword = "pw"
	cfg.SerialNumber = "SER"
	cfg.StateTimeout = 42 * time.Second
	cfg.DefaultWidth = 180

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	got, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_Redacts(t *testing.T) {
	out, err := Marshal(&Config{MQTTPassword: "hunter2", InfluxToken: "tok"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(out); strings.Contains(s, "hunter2") || strings.Contains(s, ": tok") {
		t.Errorf("secrets leaked:\n%s", s)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		DeviceIP: "1.2.3.4", MQTTPort: 1883, MQTTPassword: "pw", RootTopic: "438M",
		SerialNumber: "S", StateTimeout: time.Second, DefaultWidth: 90, FallbackHeading: 180,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no_password", func(c *Config) { c.MQTTPassword = "" }, ErrMissingPassword},
		{"no_serial", func(c *Config) { c.SerialNumber = "" }, ErrMissingSerial},
		{"bad_port", func(c *Config) { c.MQTTPort = 0 }, nil},
		{"off_default_width", func(c *Config) { c.DefaultWidth = 0 }, nil},
		{"odd_default_width", func(c *Config) { c.DefaultWidth = 100 }, nil},
		{"bad_fallback", func(c *Config) { c.FallbackHeading = 360 }, nil},
		{"no_timeout", func(c *Config) { c.StateTimeout = 0 }, nil},
		{"no_root_topic", func(c *Config) { c.RootTopic = "" }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	c := Config{RootTopic: "438M", SerialNumber: "SER"}
	want := Topics{
		Command:       "438M/SER/command",
		StatusCurrent: "438M/SER/status/current",
		StatusFault:   "438M/SER/status/fault",
	}
	if diff := cmp.Diff(want, c.Topics()); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
	if c.Topic("") != "438M/SER" {
		t.Errorf("Topic(\"\") = %q", c.Topic(""))
	}
}
