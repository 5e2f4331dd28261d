package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/domutil"
	"github.com/chrisuehlinger/domkit/html"
)

var errNoMatch = errors.New("no element matches")

func newQueryCmd(a *app) *cobra.Command {
	var (
		all  bool
		attr string
	)
	cmd := &cobra.Command{
		Use:   "query <source> <selector>",
		Short: "Print the elements of a document that match a selector",
		Long: `Prints the outer HTML of the first element matching selector, or of
every match with --all. With --attr the value of that attribute is printed
instead; elements without it are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, selector := args[0], args[1]
			doc, err := a.loadDocument(cmd.Context(), source)
			if err != nil {
				return err
			}

			var matches []*dom.Element
			if all {
				matches, err = domutil.Qsa(selector, doc)
			} else {
				var el *dom.Element
				el, err = domutil.Qs(selector, doc)
				if el != nil {
					matches = append(matches, el)
				}
			}
			if err != nil {
				return fmt.Errorf("query %q: %w", selector, err)
			}
			a.logger.Debug("query",
				zap.String("selector", selector),
				zap.Int("matches", len(matches)))
			if len(matches) == 0 {
				return fmt.Errorf("%w %q", errNoMatch, selector)
			}

			out := cmd.OutOrStdout()
			for _, el := range matches {
				line := html.OuterHTML(el)
				if attr != "" {
					v, ok := el.LookupAttribute(attr)
					if !ok {
						continue
					}
					line = v
				}
				if err := writeLine(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every match instead of the first")
	cmd.Flags().StringVar(&attr, "attr", "", "print this attribute's value instead of the markup")
	return cmd
}
