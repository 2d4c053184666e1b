// Package config loads runtime settings for the product search service.
package config

import (
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Server modes.
const (
	ModeHTTP   = "http"
	ModeLambda = "lambda"
)

const envPrefix = "PRODUCT_SEARCH"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Upstream UpstreamConfig `mapstructure:"upstream" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	AWS      AWSConfig      `mapstructure:"aws"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Mode            string        `mapstructure:"mode" validate:"required,oneof=http lambda"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// UpstreamConfig points at the external product search endpoint.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// Addr is the listen address for the local HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", ModeHTTP)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("upstream.base_url", "https://dummyjson.com/products/search")
	v.SetDefault("upstream.timeout", 5*time.Second)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "ProductSearch")
	v.SetDefault("aws.region", "us-east-1")
}

// Load reads defaults, the optional config file and PRODUCT_SEARCH_* environment
// variables, in increasing precedence, and validates the result.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validatorv10.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
