// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "probe.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte(content), 0644))
	return filename
}

func TestDefaultConfig(t *testing.T) {
	config, err := LoadConfig("")
	if assert.NoError(t, err) {
		assert.Equal(t, DefaultConfig(), config)
	}
}

func TestLoadConfig(t *testing.T) {
	filename := writeConfig(t, `
url: https://spinta.example.org
credentials:
  client_id: probe
  secret: s3cret
  scopes:
    - spinta_insert
    - spinta_getall
state: postgres://localhost/push
chunk_size: 512k
stop_row: "10"
stop_time: 30s
timeout: 5s
`)
	config, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, "https://spinta.example.org", config.URL)
	assert.Equal(t, "datasets/gov/example", config.Dataset)
	assert.Equal(t, "probe", config.Credentials.ClientID)
	assert.Equal(t, "s3cret", config.Credentials.Secret)
	assert.Equal(t, []string{"spinta_insert", "spinta_getall"}, config.Credentials.Scopes)
	assert.Equal(t, "postgres://localhost/push", config.State)
	assert.Equal(t, "512k", config.ChunkSize)
	assert.Equal(t, 10, config.StopRow)
	assert.Equal(t, 30*time.Second, config.StopTime)
	assert.Equal(t, 5*time.Second, config.Timeout)
}

func TestScopesString(t *testing.T) {
	filename := writeConfig(t, "credentials:\n  scopes: spinta_insert,spinta_getall\n")
	config, err := LoadConfig(filename)
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"spinta_insert", "spinta_getall"}, config.Credentials.Scopes)
	}
}

func TestUnknownKey(t *testing.T) {
	filename := writeConfig(t, "chunksize: 1m\n")
	_, err := LoadConfig(filename)
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	filename := writeConfig(t, "url: https://file.example.org\nstate: memory\n")
	t.Setenv("SPINTA_URL", "https://env.example.org")
	t.Setenv("SPINTA_CLIENT_ID", "envclient")
	t.Setenv("SPINTA_SCOPES", "spinta_insert spinta_getall")

	config, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", config.URL)
	assert.Equal(t, "envclient", config.Credentials.ClientID)
	assert.Equal(t, []string{"spinta_insert", "spinta_getall"}, config.Credentials.Scopes)
	assert.Equal(t, "memory", config.State)
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitScopes("a, b c"))
	assert.Empty(t, splitScopes(" , "))
}
