package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/examjson/parser/pkg/exam"
	"github.com/examjson/parser/pkg/report"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [line]",
		Short: "Parse a single question line and print the result",
		Long: `Parse a single question line and print it.

If no line is given as an argument, the first line of stdin is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var line string
			if len(args) == 1 {
				line = args[0]
			} else {
				read, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read stdin: %w", err)
				}
				line = read
			}

			q, err := exam.ParseLine(line)
			if err != nil {
				return fmt.Errorf("parse %q: %w", strings.TrimSpace(line), err)
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", a.cfg.Indent)
				if err := enc.Encode(q); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			case "text":
				report.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr()).Question(q)
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, text)")

	return cmd
}
