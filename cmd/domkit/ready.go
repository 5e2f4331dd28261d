package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrisuehlinger/domkit/domutil"
)

func newReadyCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ready <source>",
		Short: "Load a document and report when it becomes ready",
		Long: `Starts loading source and waits on the document with
domutil.WaitReady, the way a page script waits for DOMContentLoaded. Prints
the ready state seen when the wait returned and how long it took.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.Timeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			l, err := a.newDocumentLoader(source)
			if err != nil {
				return err
			}
			doc := l.Document()
			start := time.Now()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.load(gctx, l, source)
			})
			waitErr := domutil.WaitReady(gctx, doc)
			state := doc.ReadyState()
			elapsed := time.Since(start)

			if err := g.Wait(); err != nil {
				return err
			}
			if waitErr != nil {
				return fmt.Errorf("waiting for %s: %w", source, waitErr)
			}

			a.logger.Info("document ready",
				zap.String("source", source),
				zap.String("state", state.String()),
				zap.Duration("elapsed", elapsed))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", source, state, elapsed.Round(time.Microsecond))
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long (default from config)")
	return cmd
}
