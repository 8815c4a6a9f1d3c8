// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// Config holds every setting of the probe.  It is assembled from
// defaults, then the YAML configuration file, then SPINTA_*
// environment variables, then command-line flags.
type Config struct {
	URL         string            `mapstructure:"url"`
	Dataset     string            `mapstructure:"dataset"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	State       string            `mapstructure:"state"`
	ChunkSize   string            `mapstructure:"chunk_size"`
	StopRow     int               `mapstructure:"stop_row"`
	StopTime    time.Duration     `mapstructure:"stop_time"`
	Timeout     time.Duration     `mapstructure:"timeout"`
}

// CredentialsConfig names the OAuth2 client used against the server.
type CredentialsConfig struct {
	ClientID string   `mapstructure:"client_id"`
	Secret   string   `mapstructure:"secret"`
	Scopes   []string `mapstructure:"scopes"`
	TokenURL string   `mapstructure:"token_url"`
}

// envConfig lists the environment variables that override the file.
type envConfig struct {
	URL      string `env:"SPINTA_URL"`
	Dataset  string `env:"SPINTA_DATASET"`
	ClientID string `env:"SPINTA_CLIENT_ID"`
	Secret   string `env:"SPINTA_CLIENT_SECRET"`
	Scopes   string `env:"SPINTA_SCOPES"`
	TokenURL string `env:"SPINTA_TOKEN_URL"`
	State    string `env:"SPINTA_STATE"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Dataset:   "datasets/gov/example",
		State:     "none",
		ChunkSize: "1m",
	}
}

// LoadConfig reads filename, if any, and applies the environment.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	if filename != "" {
		raw, err := loadConfigYaml(filename)
		if err != nil {
			return config, err
		}
		if err = decodeConfig(raw, &config); err != nil {
			return config, err
		}
	}
	err := applyEnv(&config)
	return config, err
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

// decodeConfig overlays a parsed YAML document on config.  Scalars are
// weakly typed, so "stop_row: '10'" works, and durations may be
// written as "30s".
func decodeConfig(raw map[string]interface{}, config *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           config,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func applyEnv(config *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return err
	}
	overlay(&config.URL, e.URL)
	overlay(&config.Dataset, e.Dataset)
	overlay(&config.Credentials.ClientID, e.ClientID)
	overlay(&config.Credentials.Secret, e.Secret)
	overlay(&config.Credentials.TokenURL, e.TokenURL)
	overlay(&config.State, e.State)
	if e.Scopes != "" {
		config.Credentials.Scopes = splitScopes(e.Scopes)
	}
	return nil
}

func overlay(field *string, value string) {
	if value != "" {
		*field = value
	}
}

// splitScopes accepts scopes separated by spaces, commas or both.
func splitScopes(s string) []string {
	return strings.Fields(strings.Replace(s, ",", " ", -1))
}
