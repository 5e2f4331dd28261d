package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/html"
	"github.com/chrisuehlinger/domkit/network"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	debug      bool

	cfg    config
	logger *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "domkit",
		Short: "Query, create and script HTML documents",
		Long: `domkit loads an HTML document from a URL, a file or a data: URL and
runs DOM helpers against it: selector queries, element creation, readiness
waits and scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.logger != nil {
				return nil
			}
			a.logger, err = newLogger(a.debug, cfg.LogLevel)
			return err
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newQueryCmd(a),
		newCreateCmd(a),
		newReadyCmd(a),
		newRunCmd(a),
	)
	return root
}

func newLogger(debug bool, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	} else if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log_level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (a *app) client() (*network.Client, error) {
	return network.NewClient(
		network.WithTimeout(a.cfg.Timeout),
		network.WithUserAgent(a.cfg.UserAgent),
	)
}

func (a *app) sourceLoader(client *network.Client) *network.Loader {
	var opts []network.LoaderOption
	if a.cfg.BaseURL != "" {
		opts = append(opts, network.WithBaseURL(a.cfg.BaseURL))
	}
	return network.NewLoader(client, opts...)
}

// newDocumentLoader returns an html loader for source. Its document is in
// the Loading state until load runs.
func (a *app) newDocumentLoader(source string) (*html.Loader, error) {
	resolved, err := a.sourceLoader(nil).Resolve(source)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}
	return html.NewLoader(html.WithURL(network.DocumentURL(resolved))), nil
}

// load fetches source and parses it into l's document.
func (a *app) load(ctx context.Context, l *html.Loader, source string) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	start := time.Now()
	rc, err := a.sourceLoader(client).Open(ctx, source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer rc.Close()

	if err := l.Load(ctx, rc); err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}
	a.logger.Debug("document loaded",
		zap.String("source", source),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// loadDocument fetches and parses source to completion.
func (a *app) loadDocument(ctx context.Context, source string) (*dom.Document, error) {
	l, err := a.newDocumentLoader(source)
	if err != nil {
		return nil, err
	}
	if err := a.load(ctx, l, source); err != nil {
		return nil, err
	}
	return l.Document(), nil
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
