package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Merchant holds the credentials and knobs the gateway client needs. It is
// read once at startup and never mutated.
type Merchant struct {
	Account   string `yaml:"merchant_account"`
	Domain    string `yaml:"merchant_domain"`
	SecretKey string `yaml:"secret_key"`
	// Timeout for gateway round-trips, in seconds.
	Timeout int  `yaml:"timeout"`
	Debug   bool `yaml:"debug"`
}

type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	WayForPay Merchant `yaml:"wayforpay"`
	Kafka     struct {
		Enabled          bool   `yaml:"enabled"`
		BootstrapServers string `yaml:"bootstrap_servers"`
		Topic            string `yaml:"topic"`
	} `yaml:"kafka"`
}

const defaultTimeout = 30

// Load reads the YAML file, expanding ${ENV} references first so secrets can
// stay out of the file itself.
func Load(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	expandedFile := os.ExpandEnv(string(file))

	if err := yaml.Unmarshal([]byte(expandedFile), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.WayForPay.Timeout <= 0 {
		config.WayForPay.Timeout = defaultTimeout
	}

	return config, nil
}

// Validate checks the credentials every request needs.
func (m Merchant) Validate() error {
	if m.Account == "" {
		return fmt.Errorf("wayforpay merchant_account is not set")
	}
	if m.Domain == "" {
		return fmt.Errorf("wayforpay merchant_domain is not set")
	}
	if m.SecretKey == "" {
		return fmt.Errorf("wayforpay secret_key is not set")
	}
	return nil
}
