package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/smasonuk/polymesh/internal/cli"
	"github.com/smasonuk/polymesh/internal/viewer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCmd(viewer.NewCmd()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
