package main

import (
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert a question text file into a JSON document",
		Long: `Convert a text file holding one exam question per line into a JSON document.

Each line has the form

  (B)12.Question text(A)first(B)second(C)third(D)fourth(出處：source)

Lines that do not follow this form are reported and skipped. When no input
is given on the command line or in the config file, the paths are asked for
interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j := a.resolve(cmd, args, &flags)

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := fillPaths(cmd.Context(), &j, p); err != nil {
				return err
			}

			_, err := run(cmd.Context(), j, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
