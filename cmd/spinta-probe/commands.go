// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diffeo/go-spinta/contract"
	"github.com/diffeo/go-spinta/push"
	"github.com/diffeo/go-spinta/restdata"
	"github.com/diffeo/go-spinta/spinta"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var queryFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "select",
		Usage: "comma-separated properties to return",
	},
	cli.StringFlag{
		Name:  "sort",
		Usage: "comma-separated sort keys, prefix with - to reverse",
	},
	cli.IntFlag{
		Name:  "limit",
		Usage: "return at most this many rows",
	},
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func queryFromFlags(c *cli.Context) spinta.Query {
	return spinta.Query{
		Select: splitList(c.String("select")),
		Sort:   splitList(c.String("sort")),
		Limit:  c.Int("limit"),
	}
}

// model resolves a model argument.  A bare model name is looked up in
// the configured dataset.
func (p *probe) model(arg string) (spinta.ModelName, error) {
	if !strings.Contains(strings.Trim(arg, "/"), "/") && p.Config.Dataset != "" {
		arg = p.Config.Dataset + "/" + arg
	}
	return spinta.ParseModelName(arg)
}

func writeJSON(w io.Writer, v interface{}) error {
	if err := restdata.Encode(w, v); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func postCommand(p *probe) cli.Command {
	return cli.Command{
		Name:      "post",
		Usage:     "create one resource",
		ArgsUsage: "MODEL JSON",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.NewExitError("post needs a model and a JSON object", 2)
			}
			model, err := p.model(c.Args().Get(0))
			if err != nil {
				return err
			}
			var obj spinta.Object
			err = restdata.Decode(restdata.JSONMediaType, strings.NewReader(c.Args().Get(1)), &obj)
			if err != nil {
				return err
			}
			client, err := p.Client()
			if err != nil {
				return err
			}
			created, err := client.Insert(context.Background(), model, obj)
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, created)
		},
	}
}

func getCommand(p *probe) cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "fetch one resource by _id, or a whole model",
		ArgsUsage: "MODEL [ID]",
		Flags:     queryFlags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return cli.NewExitError("get needs a model and an optional _id", 2)
			}
			model, err := p.model(c.Args().Get(0))
			if err != nil {
				return err
			}
			client, err := p.Client()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if c.NArg() == 2 {
				obj, err := client.Get(ctx, model, c.Args().Get(1))
				if err != nil {
					return err
				}
				return writeJSON(c.App.Writer, obj)
			}
			objs, err := client.GetAll(ctx, model, queryFromFlags(c))
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, restdata.DataList{Data: objs})
		},
	}
}

func tableCommand(p *probe) cli.Command {
	return cli.Command{
		Name:      "table",
		Usage:     "render a model as an ascii table",
		ArgsUsage: "MODEL",
		Flags:     queryFlags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.NewExitError("table needs a model", 2)
			}
			model, err := p.model(c.Args().Get(0))
			if err != nil {
				return err
			}
			client, err := p.Client()
			if err != nil {
				return err
			}
			table, err := client.Table(context.Background(), model, queryFromFlags(c))
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.App.Writer, table)
			return err
		},
	}
}

func contractCommand(p *probe) cli.Command {
	return cli.Command{
		Name:  "contract",
		Usage: "replay the documented scenarios and report",
		Action: func(c *cli.Context) error {
			client, err := p.Client()
			if err != nil {
				return err
			}
			runner := contract.NewRunner(client, p.Config.Dataset)
			runner.Logger = p.Logger
			report := runner.Run(context.Background())
			if err := report.Write(c.App.Writer); err != nil {
				return err
			}
			if report.Failed() {
				return cli.NewExitError("contract failed", 1)
			}
			return nil
		},
	}
}

func pushCommand(p *probe) cli.Command {
	return cli.Command{
		Name:      "push",
		Usage:     "upsert rows from NDJSON or YAML files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "state",
				Usage: "impl[:address] of push state storage (none, memory, postgres)",
			},
			cli.StringFlag{
				Name:  "chunk-size",
				Usage: "maximum request body size, e.g. 1m",
			},
			cli.IntFlag{
				Name:  "stop-row",
				Usage: "stop after queueing this many changed rows",
			},
			cli.DurationFlag{
				Name:  "stop-time",
				Usage: "stop reading rows after this long",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.NewExitError("push needs at least one file", 2)
			}
			if c.IsSet("state") {
				p.Config.State = c.String("state")
			}
			if c.IsSet("chunk-size") {
				p.Config.ChunkSize = c.String("chunk-size")
			}
			if c.IsSet("stop-row") {
				p.Config.StopRow = c.Int("stop-row")
			}
			if c.IsSet("stop-time") {
				p.Config.StopTime = c.Duration("stop-time")
			}

			pusher, err := p.pusher()
			if err != nil {
				return err
			}
			for _, filename := range c.Args() {
				stats, err := pushFile(pusher, filename)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.App.Writer, "%s: %d read, %d pushed, %d skipped, %d failed, %d invalid\n",
					filename, stats.Read, stats.Pushed, stats.Skipped, stats.Failed, stats.Invalid)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (p *probe) pusher() (*push.Pusher, error) {
	client, err := p.Client()
	if err != nil {
		return nil, err
	}
	state, err := p.State()
	if err != nil {
		return nil, err
	}
	chunkSize, err := push.ParseChunkSize(p.Config.ChunkSize)
	if err != nil {
		return nil, err
	}
	pusher := push.New(client, state)
	pusher.ChunkSize = chunkSize
	pusher.StopRow = p.Config.StopRow
	pusher.StopTime = p.Config.StopTime
	pusher.Logger = p.Logger
	return pusher, nil
}

// pushFile pushes one file; "-" reads NDJSON from standard input.
func pushFile(pusher *push.Pusher, filename string) (push.Stats, error) {
	var r io.Reader = os.Stdin
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return push.Stats{}, err
		}
		defer f.Close()
		r = f
	}

	var src push.Source
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		src = push.YAML(r)
	default:
		src = push.NDJSON(r)
	}
	pusher.Logger.WithFields(logrus.Fields{
		"file": filename,
	}).Info("pushing")
	return pusher.Push(context.Background(), src)
}
