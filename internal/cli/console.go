package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/queuedpixel/twitch-craps-bot/internal/bot"
)

// ConsoleOptions holds flags for the console command.
type ConsoleOptions struct {
	*RootOptions
	User string // speaker of lines without a "name: " prefix
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsoleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the bot against a local chat console",
		Long: `Run the bot with standard input as the chat channel.

Each input line is one chat message. A line of the form "name: message" is
said by name; any other line is said by --user, which defaults to the
configured owner. Bot replies are printed to standard output, paced by
message_interval. The bot stops at end of input or on Ctrl-C.

Example:
  crapsbot console --config crapsbot.yaml
  echo 'alice: !craps bet pass 10' | crapsbot console`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "user for lines without a name prefix (default: owner)")

	return cmd
}

func runConsole(opts *ConsoleOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	repo, err := openState(cfg)
	if err != nil {
		return err
	}
	defer closeState(repo)

	b := bot.New(cfg,
		bot.WithRepository(repo),
		bot.WithRegistry(prometheus.NewRegistry()),
	)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Load(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load state", err)
	}

	user := opts.User
	if user == "" {
		user = cfg.Owner
	}

	out := cmd.OutOrStdout()
	sender := bot.SenderFunc(func(_ context.Context, line string) error {
		_, err := fmt.Fprintln(out, line)
		return err
	})

	go readConsole(cmd.InOrStdin(), b, user)

	err = b.Run(ctx, sender)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "bot stopped", err)
	}
	return nil
}

// readConsole enqueues every input line, then stops the bot.
func readConsole(r io.Reader, b *bot.Bot, defaultUser string) {
	defer b.Stop()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		user, text := parseConsoleLine(scanner.Text(), defaultUser)
		if text == "" {
			continue
		}
		if !b.Enqueue(user, text) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("console input failed", "error", err)
	}
}

// parseConsoleLine splits "name: message". Lines whose prefix is not a
// valid user name belong to defaultUser.
func parseConsoleLine(line, defaultUser string) (user, text string) {
	line = strings.TrimSpace(line)
	name, rest, ok := strings.Cut(line, ": ")
	if !ok || !isUserName(name) {
		return defaultUser, line
	}
	return name, strings.TrimSpace(rest)
}

func isUserName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
