package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
	"github.com/queuedpixel/twitch-craps-bot/internal/store"
)

// StateResult summarizes a copied state.
type StateResult struct {
	Path      string `json:"path"`
	Users     int    `json:"users"`
	Programs  int    `json:"programs"`
	Functions int    `json:"functions"`
	Variables int    `json:"variables"`
	Hash      string `json:"hash"`
}

// String implements fmt.Stringer for text output.
func (r StateResult) String() string {
	return fmt.Sprintf("%s: %d users, %d programs, %d functions, %d variables (%s)",
		r.Path, r.Users, r.Programs, r.Functions, r.Variables, r.Hash)
}

// NewStateCommand creates the state command and its subcommands.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Export or import the scripting state",
		Long: `Copy the scripting state between the configured backend and a
players document (the JSON state file).

Example:
  crapsbot state export backup.json --config crapsbot.yaml
  crapsbot state import players.json --config crapsbot.yaml`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "export <file>",
		Short:         "Write the configured state to a players document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateExport(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "import <file>",
		Short:         "Replace the configured state with a players document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateImport(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runStateExport(opts *RootOptions, path string, cmd *cobra.Command) error {
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
	st, err := repo.Load(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load state", err)
	}
	if err := store.NewJSONFile(path).Save(ctx, st); err != nil {
		return WrapExitError(ExitFailure, "failed to write state", err)
	}
	slog.Info("state exported", "path", path)

	return report(opts, cmd, path, st)
}

func runStateImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("state file not found: %s", path))
	}

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
	st, err := store.NewJSONFile(path).Load(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read state", err)
	}
	if err := repo.Save(ctx, st); err != nil {
		return WrapExitError(ExitFailure, "failed to save state", err)
	}
	slog.Info("state imported", "path", path, "backend", cfg.State.Backend)

	return report(opts, cmd, cfg.State.Path, st)
}

func report(opts *RootOptions, cmd *cobra.Command, path string, st *ir.State) error {
	hash, err := ir.StateHash(st)
	if err != nil {
		return err
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(summarize(path, hash, st))
}

func summarize(path, hash string, st *ir.State) StateResult {
	r := StateResult{Path: path, Hash: hash}
	users := make(map[string]bool)
	for user, ps := range st.Programs {
		users[user] = true
		r.Programs += len(ps)
	}
	for user, fns := range st.Functions {
		users[user] = true
		r.Functions += len(fns)
	}
	for user, vars := range st.Variables {
		users[user] = true
		r.Variables += len(vars)
	}
	r.Users = len(users)
	return r
}
