package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrisuehlinger/domkit/js"
)

func newRunCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run <source> <script.js>",
		Short: "Run a script against a document",
		Long: `Runs script.js with document, qs, qsa, createElement and DOMisReady in
scope while source loads. The script starts before the document is parsed,
like an async script in a page, so DOM work belongs in DOMisReady().then(...).
console output is printed; script errors fail the command.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, scriptPath := args[0], args[1]
			script, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.Timeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			l, err := a.newDocumentLoader(source)
			if err != nil {
				return err
			}
			rt := js.NewRuntime(l.Document(),
				js.WithConsole(func(level, msg string) {
					a.logger.Debug("console", zap.String("level", level), zap.String("msg", msg))
					fmt.Fprintln(out, msg)
				}),
				js.WithErrorHandler(func(err error) {
					a.logger.Warn("script error", zap.String("script", scriptPath), zap.Error(err))
				}),
			)
			defer rt.Close()

			if err := rt.ExecuteScript(string(script), scriptPath); err != nil {
				return fmt.Errorf("run %s: %w", scriptPath, err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.load(gctx, l, source)
			})
			g.Go(func() error {
				return rt.RunLoop(gctx)
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if errs := rt.Errors(); len(errs) > 0 {
				return fmt.Errorf("run %s: %d script error(s), first: %w", scriptPath, len(errs), errs[0])
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long (default from config)")
	return cmd
}
