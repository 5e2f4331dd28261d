package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/domutil"
	"github.com/chrisuehlinger/domkit/html"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		classes []string
		text    string
		data    []string
		style   []string
		set     []string
	)
	cmd := &cobra.Command{
		Use:   "create <tag>",
		Short: "Create an element from options and print it",
		Long: `Builds an element with domutil.CreateElement and prints its outer HTML.

  domkit create button --class btn --text "Click me" --data action=open --set disabled=true

--set values "true" and "false" are passed as booleans so reflected boolean
properties such as disabled work; everything else is a string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := domutil.Options{}
			if len(classes) > 0 {
				opts["class"] = classes
			}
			if cmd.Flags().Changed("text") {
				opts["text"] = text
			}
			if len(data) > 0 {
				m, err := parsePairs("data", data)
				if err != nil {
					return err
				}
				opts["dataset"] = m
			}
			if len(style) > 0 {
				m, err := parsePairs("style", style)
				if err != nil {
					return err
				}
				opts["style"] = m
			}
			props, err := parsePairs("set", set)
			if err != nil {
				return err
			}
			for k, v := range props {
				if flag, ok := reservedOptions[k]; ok {
					return fmt.Errorf("--set %s: use --%s instead", k, flag)
				}
				switch v {
				case "true":
					opts[k] = true
				case "false":
					opts[k] = false
				default:
					opts[k] = v
				}
			}

			el, err := domutil.CreateElement(args[0], opts, dom.NewDocument())
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			return writeLine(cmd.OutOrStdout(), html.OuterHTML(el))
		},
	}
	cmd.Flags().StringArrayVar(&classes, "class", nil, "add a class (repeatable)")
	cmd.Flags().StringVar(&text, "text", "", "text content")
	cmd.Flags().StringArrayVar(&data, "data", nil, "dataset entry key=value (repeatable)")
	cmd.Flags().StringArrayVar(&style, "style", nil, "inline style property=value (repeatable)")
	cmd.Flags().StringArrayVar(&set, "set", nil, "property or attribute key=value (repeatable)")
	return cmd
}

// reservedOptions maps the option keys that have their own flag to that flag.
var reservedOptions = map[string]string{
	"class":   "class",
	"text":    "text",
	"dataset": "data",
	"style":   "style",
}

// parsePairs splits key=value flag values.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--%s %q: want key=value", flag, p)
		}
		m[k] = v
	}
	return m, nil
}
