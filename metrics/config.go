package metrics

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultMetricsHost           = "127.0.0.1"
	defaultMetricsPort           = 2112
	defaultMetricsUpdateInterval = 100 * time.Millisecond
)

// Config defines the server's basic configuration for the Prometheus
// metrics endpoint.
type Config struct {
	// Host is the IP the metrics server binds to.
	Host string `long:"host" description:"IP of the Prometheus server"`

	// Port is the port the metrics server binds to.
	Port int `long:"port" description:"Port of the Prometheus server"`

	// UpdateInterval is the interval at which polled metrics are refreshed.
	UpdateInterval time.Duration `long:"updateinterval" description:"The interval of Prometheus metrics updated"`
}

func (cfg *Config) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	ip := net.ParseIP(cfg.Host)
	if ip == nil {
		return fmt.Errorf("invalid host: %v", cfg.Host)
	}

	return nil
}

// Address returns the validated listen address of the metrics server.
func (cfg *Config) Address() (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	return net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)), nil
}

// DefaultGuardMetricsConfig returns the default metrics config for the
// risk guard daemon.
func DefaultGuardMetricsConfig() *Config {
	return &Config{
		Host:           defaultMetricsHost,
		Port:           defaultMetricsPort,
		UpdateInterval: defaultMetricsUpdateInterval,
	}
}
