package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examjson/parser/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "watch [input]",
		Short: "Convert the input file again whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j := a.resolve(cmd, args, &flags)

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := fillPaths(cmd.Context(), &j, p); err != nil {
				return err
			}
			if j.output == stdoutPath {
				return fmt.Errorf("watch cannot write to stdout, use --output")
			}

			convert := func(ctx context.Context) error {
				_, err := run(ctx, j, cmd.OutOrStdout(), cmd.ErrOrStderr())
				return err
			}

			// A failing first run is reported but the watcher still starts,
			// so fixing the input triggers a new conversion.
			if err := convert(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}

			w, err := watch.New(j.input, a.cfg.Watch.Debounce.Duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", j.input)
			return w.Watch(cmd.Context(), convert)
		},
	}

	flags.register(cmd)
	return cmd
}
