// Command crapsbot runs the Twitch craps table and its scripting engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/queuedpixel/twitch-craps-bot/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
