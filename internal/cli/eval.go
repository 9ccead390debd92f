package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/queuedpixel/twitch-craps-bot/internal/bot"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	User string
}

// EvalResult is the chat output of one eval.
type EvalResult struct {
	User  string   `json:"user"`
	Lines []string `json:"lines"`
}

// TextLines implements TextLiner.
func (r EvalResult) TextLines() []string { return r.Lines }

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <statement>...",
		Short: "Run a compound statement against the stored state",
		Long: `Run a ';'-separated compound statement as a user, exactly as
"!craps eval <statement>" would in chat, and print the replies.

Changes to programs, functions and variables are saved to the configured
state. Programs do not tick.

Example:
  crapsbot eval 'variable create x 2 ; print {x * 21}'
  crapsbot eval --user alice '{max(3, 4)}'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "user to run as (default: owner)")

	return cmd
}

func runEval(opts *EvalOptions, statement string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	repo, err := openState(cfg)
	if err != nil {
		return err
	}
	defer closeState(repo)

	ctx := commandContext(cmd)
	b := bot.New(cfg, bot.WithRepository(repo))
	if err := b.Load(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load state", err)
	}

	user := opts.User
	if user == "" {
		user = cfg.Owner
	}

	if err := b.Handle(ctx, user, bot.Prefix+" eval "+statement); err != nil {
		return WrapExitError(ExitFailure, "failed to save state", err)
	}

	lines := b.Drain()
	if lines == nil {
		lines = []string{}
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(EvalResult{User: user, Lines: lines})
}
