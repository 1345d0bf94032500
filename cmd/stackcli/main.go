// Command stackcli stacks images into one PNG without the desktop editor.
package main

import (
	"context"
	"os"
	"os/signal"

	"image-stacker/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
