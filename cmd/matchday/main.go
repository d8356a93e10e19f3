package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/defeedco/matchday/pkg/feed/atomfeed"
	_ "github.com/defeedco/matchday/pkg/feed/htmlfeed"
	_ "github.com/defeedco/matchday/pkg/feed/jsonfeed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
