package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/queuedpixel/twitch-craps-bot/internal/config"
)

// configText is a configuration rendered as YAML.
type configText string

// TextLines implements TextLiner.
func (c configText) TextLines() []string {
	return strings.Split(strings.TrimSuffix(string(c), "\n"), "\n")
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [file]",
		Short: "Validate and print the effective configuration",
		Long: `Validate a configuration file against the schema and print it with
defaults applied. Without an argument the --config file is used; without
either, the defaults are printed.

Exit codes:
  0 - Configuration is valid
  1 - Configuration violates the schema
  2 - Command error (file not found, malformed YAML)

Example:
  crapsbot config crapsbot.yaml
  crapsbot config --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runConfig(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runConfig(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)

		var verr *config.ValidationError
		if errors.As(err, &verr) {
			if ferr := formatter.Error(CodeConfig, "invalid config: "+path, verr.Problems); ferr != nil {
				return ferr
			}
			return NewExitError(ExitFailure, "invalid config")
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(cfg)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return formatter.Success(configText(data))
}
