// Command crowdinsync keeps local resource files in step with a remote
// translation project.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/digitalmediaserver/crowdinsync/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
