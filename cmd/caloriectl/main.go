// Command caloriectl reads and edits a calorie tracker session from the
// terminal, using the same backend configuration as the server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"calorie/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}
