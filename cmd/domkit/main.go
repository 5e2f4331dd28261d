// Command domkit loads HTML documents and runs the domutil helpers against
// them from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.logger != nil {
		if err != nil {
			a.logger.Error("command failed", zap.Error(err))
		}
		_ = a.logger.Sync()
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "domkit:", err)
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
