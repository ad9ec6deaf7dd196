package commands

import (
	"flag"

	"ubfuzz/internal/monitor"
)

// ServeMonitorCommand runs a standalone monitor.Hub with no attached event
// source, useful for exercising the websocket protocol (and the UI that
// consumes it) without running a fuzzing session at the same time.
func ServeMonitorCommand(args []string) error {
	fs := flag.NewFlagSet("serve-monitor", flag.ContinueOnError)
	listen := fs.String("listen", ":8089", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hub := monitor.NewHub()
	return hub.Run(*listen)
}
