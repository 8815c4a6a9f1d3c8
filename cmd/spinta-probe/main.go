// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Spinta-probe exercises a spinta data-publishing server from the
// command line.  It can create and read single resources, render
// ascii tables, replay the documented contract scenarios, and push
// rows from NDJSON or YAML files.  Usage:
//
//     spinta-probe --url https://get.data.gov.lt contract
//     spinta-probe --config probe.yaml push --state memory rows.ndjson
//
// Settings come from a YAML file named by --config, overridden by
// SPINTA_* environment variables, overridden by flags.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("spinta-probe failed")
	}
}

func newApp() *cli.App {
	p := &probe{}

	app := cli.NewApp()
	app.Name = "spinta-probe"
	app.Usage = "exercise a spinta data-publishing server"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		cli.StringFlag{
			Name:  "url",
			Usage: "root URL of the spinta server",
		},
		cli.StringFlag{
			Name:  "dataset",
			Usage: "dataset holding the Country, City and CityExplicit models",
		},
		cli.StringFlag{
			Name:  "client-id",
			Usage: "OAuth2 client name",
		},
		cli.StringFlag{
			Name:  "secret",
			Usage: "OAuth2 client secret",
		},
		cli.StringFlag{
			Name:  "scopes",
			Usage: "space- or comma-separated OAuth2 scopes",
		},
		cli.StringFlag{
			Name:  "token-url",
			Usage: "OAuth2 token endpoint (default {url}/auth/token)",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "give up on each request after this long",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "minimum level of log messages",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
		cli.StringFlag{
			Name:  "metrics",
			Usage: "[ip]:port to serve Prometheus metrics on",
		},
	}
	app.Before = p.setup
	app.After = p.close
	app.Commands = []cli.Command{
		postCommand(p),
		getCommand(p),
		tableCommand(p),
		contractCommand(p),
		pushCommand(p),
	}
	return app
}
