package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/examjson/parser/pkg/config"
	"github.com/examjson/parser/pkg/prompt"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app carries the settings shared by all commands
type app struct {
	configPath string
	verbosity  int
	cfg        *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "examjson",
		Short:        "Convert one-line exam questions into JSON",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			verbosity := cfg.Log.Verbosity
			if cmd.Flags().Changed("verbose") {
				verbosity = a.verbosity
			}
			var logFile *string
			if cfg.Log.File != "" {
				logFile = &cfg.Log.File
			}
			commonlog.Configure(verbosity, logFile)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newPrompter picks the interactive form on a terminal and plain line
// prompts otherwise
var newPrompter = func(in io.Reader, out io.Writer) prompt.PathPrompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return prompt.NewTeaPrompter(in, out)
	}
	return prompt.NewLinePrompter(in, out)
}
