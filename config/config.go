// Package config loads device and bridge settings from the environment, an
// optional config file (YAML or .env) and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alittlebrighter/blowcontrol/oscillation"
)

// Keys double as lower-cased environment variable names.
const (
	KeyDeviceIP         = "device_ip"
	KeyMQTTPort         = "mqtt_port"
	KeyMQTTPassword     = "mqtt_password"
	KeyRootTopic        = "root_topic"
	KeySerialNumber     = "serial_number"
	KeyStateTimeout     = "state_timeout"
	KeyDefaultWidth     = "default_width"
	KeyFallbackHeading  = "fallback_heading"
	KeyPollInterval     = "poll_interval"
	KeyNATSURL          = "nats_url"
	KeyNATSSubject      = "nats_subject"
	KeyInfluxURL        = "influx_url"
	KeyInfluxToken      = "influx_token"
	KeyInfluxOrg        = "influx_org"
	KeyInfluxBucket     = "influx_bucket"
	KeyTemperatureUnits = "temperature_units"
	KeyLogLevel         = "log_level"
)

var (
	ErrMissingPassword = errors.New("MQTT_PASSWORD environment variable is required")
	ErrMissingSerial   = errors.New("SERIAL_NUMBER environment variable is required")
)

// Config holds everything needed to reach the fan and, optionally, the
// bridge sinks.
type Config struct {
	DeviceIP     string `mapstructure:"device_ip" json:"device_ip"`
	MQTTPort     int    `mapstructure:"mqtt_port" json:"mqtt_port"`
	MQTTPassword string `mapstructure:"mqtt_password" json:"mqtt_password,omitempty"`
	RootTopic    string `mapstructure:"root_topic" json:"root_topic"`
	SerialNumber string `mapstructure:"serial_number" json:"serial_number"`

	StateTimeout    time.Duration `mapstructure:"state_timeout" json:"state_timeout"`
	DefaultWidth    int           `mapstructure:"default_width" json:"default_width"`
	FallbackHeading int           `mapstructure:"fallback_heading" json:"fallback_heading"`
	PollInterval    time.Duration `mapstructure:"poll_interval" json:"poll_interval"`

	NATSURL          string `mapstructure:"nats_url" json:"nats_url,omitempty"`
	NATSSubject      string `mapstructure:"nats_subject" json:"nats_subject,omitempty"`
	InfluxURL        string `mapstructure:"influx_url" json:"influx_url,omitempty"`
	InfluxToken      string `mapstructure:"influx_token" json:"influx_token,omitempty"`
	InfluxOrg        string `mapstructure:"influx_org" json:"influx_org,omitempty"`
	InfluxBucket     string `mapstructure:"influx_bucket" json:"influx_bucket,omitempty"`
	TemperatureUnits string `mapstructure:"temperature_units" json:"temperature_units"`

	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

// Topics are the MQTT topics for one device.
type Topics struct {
	Command       string
	StatusCurrent string
	StatusFault   string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDeviceIP, "192.168.1.100")
	v.SetDefault(KeyMQTTPort, 1883)
	v.SetDefault(KeyMQTTPassword, "")
	v.SetDefault(KeyRootTopic, "438M")
	v.SetDefault(KeySerialNumber, "")
	v.SetDefault(KeyStateTimeout, "10s")
	v.SetDefault(KeyDefaultWidth, oscillation.WidthMedium)
	v.SetDefault(KeyFallbackHeading, 180)
	v.SetDefault(KeyPollInterval, "5m")
	v.SetDefault(KeyNATSURL, "")
	v.SetDefault(KeyNATSSubject, "blowcontrol")
	v.SetDefault(KeyInfluxURL, "")
	v.SetDefault(KeyInfluxToken, "")
	v.SetDefault(KeyInfluxOrg, "")
	v.SetDefault(KeyInfluxBucket, "blowcontrol")
	v.SetDefault(KeyTemperatureUnits, "Celsius")
	v.SetDefault(KeyLogLevel, "warn")

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, or the first default location that
// exists when path is empty, and decodes the merged settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Base(path) == ".env" {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// DefaultPath is where config init writes when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "blowcontrol.yaml"
	}
	return filepath.Join(dir, "blowcontrol", "config.yaml")
}

func findConfigFile() string {
	for _, candidate := range []string{".env", DefaultPath()} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Validate checks the settings required to talk to the device.
func (c *Config) Validate() error {
	if c.MQTTPassword == "" {
		return ErrMissingPassword
	}
	if c.SerialNumber == "" {
		return ErrMissingSerial
	}
	if c.DeviceIP == "" {
		return errors.New("DEVICE_IP is required but not set")
	}
	if c.RootTopic == "" {
		return errors.New("ROOT_TOPIC is required but not set")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("mqtt_port must be between 1 and 65535, got %d", c.MQTTPort)
	}
	if c.DefaultWidth == oscillation.WidthOff || oscillation.NearestWidth(c.DefaultWidth) != c.DefaultWidth {
		return fmt.Errorf("default_width must be one of 45, 90, 180, 350, got %d", c.DefaultWidth)
	}
	if c.FallbackHeading < 0 || c.FallbackHeading > 359 {
		return fmt.Errorf("fallback_heading must be between 0 and 359, got %d", c.FallbackHeading)
	}
	if c.StateTimeout <= 0 {
		return fmt.Errorf("state_timeout must be positive, got %s", c.StateTimeout)
	}
	return nil
}

// BrokerURL is the MQTT broker address of the device.
func (c *Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.DeviceIP, c.MQTTPort)
}

// Topic builds a device topic such as "438M/SERIAL/command".
func (c *Config) Topic(suffix string) string {
	base := c.RootTopic + "/" + c.SerialNumber
	if suffix == "" {
		return base
	}
	return base + "/" + suffix
}

func (c *Config) Topics() Topics {
	return Topics{
		Command:       c.Topic("command"),
		StatusCurrent: c.Topic("status/current"),
		StatusFault:   c.Topic("status/fault"),
	}
}
