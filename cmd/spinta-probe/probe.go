// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/diffeo/go-spinta/backend"
	"github.com/diffeo/go-spinta/cache"
	"github.com/diffeo/go-spinta/push"
	"github.com/diffeo/go-spinta/restclient"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var errNoURL = errors.New("no server URL; set --url, SPINTA_URL or url in the configuration")

// probe carries the resolved configuration between the global setup
// and the individual commands.
type probe struct {
	Config    Config
	Logger    *logrus.Logger
	ReqLogger logrus.FieldLogger
	state     push.State
}

// setup resolves configuration and logging.  It runs before any
// command.
func (p *probe) setup(c *cli.Context) error {
	config, err := LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &config)
	p.Config = config

	p.Logger = logrus.StandardLogger()
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	p.Logger.SetLevel(level)

	if c.Bool("log-requests") {
		stdlog := logrus.StandardLogger()
		p.ReqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	if addr := c.String("metrics"); addr != "" {
		go serveMetrics(p.Logger, addr)
	}
	return nil
}

func (p *probe) close(c *cli.Context) error {
	if closer, ok := p.state.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// applyFlags overlays explicitly given global flags on config.
func applyFlags(c *cli.Context, config *Config) {
	if c.IsSet("url") {
		config.URL = c.String("url")
	}
	if c.IsSet("dataset") {
		config.Dataset = c.String("dataset")
	}
	if c.IsSet("client-id") {
		config.Credentials.ClientID = c.String("client-id")
	}
	if c.IsSet("secret") {
		config.Credentials.Secret = c.String("secret")
	}
	if c.IsSet("scopes") {
		config.Credentials.Scopes = splitScopes(c.String("scopes"))
	}
	if c.IsSet("token-url") {
		config.Credentials.TokenURL = c.String("token-url")
	}
	if c.IsSet("timeout") {
		config.Timeout = c.Duration("timeout")
	}
}

func serveMetrics(logger logrus.FieldLogger, addr string) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, r)
	logger.WithFields(logrus.Fields{
		"err":  err,
		"addr": addr,
	}).Error("metrics listener stopped")
}

// Client builds the REST client described by the configuration,
// wrapped in an object cache.
func (p *probe) Client() (spinta.Client, error) {
	if p.Config.URL == "" {
		return nil, errNoURL
	}
	options := []restclient.Option{
		restclient.WithHTTPClient(&http.Client{Timeout: p.Config.Timeout}),
	}
	if p.ReqLogger != nil {
		options = append(options, restclient.WithLogger(p.ReqLogger))
	}
	creds := restclient.Credentials{
		ClientID: p.Config.Credentials.ClientID,
		Secret:   p.Config.Credentials.Secret,
		Scopes:   p.Config.Credentials.Scopes,
		TokenURL: p.Config.Credentials.TokenURL,
	}
	if creds.HasCredentials() {
		options = append(options, restclient.WithCredentials(creds))
	}
	client, err := restclient.New(p.Config.URL, options...)
	if err != nil {
		return nil, err
	}
	return cache.New(client, 0), nil
}

// State opens the push state store named by the configuration.  The
// store is closed when the application exits.
func (p *probe) State() (push.State, error) {
	var b backend.Backend
	if err := b.Set(p.Config.State); err != nil {
		return nil, err
	}
	state, err := b.State()
	if err != nil {
		return nil, err
	}
	p.state = state
	return state, nil
}
