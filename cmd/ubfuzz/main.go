// cmd/ubfuzz/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"ubfuzz/cmd/ubfuzz/commands"
)

const version = "0.1.0"

// commandAliases mirrors cmd/sentra's single-letter shortcuts.
var commandAliases = map[string]string{
	"g": "generate",
	"m": "mutate",
	"r": "reduce",
	"f": "fuzz",
	"s": "serve-monitor",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
		args[0] = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("ubfuzz " + version)
		return
	}

	var err error
	switch cmd {
	case "generate":
		err = commands.GenerateCommand(args[1:])
	case "mutate":
		err = commands.MutateCommand(args[1:])
	case "reduce":
		err = commands.ReduceCommand(args[1:])
	case "fuzz":
		err = commands.FuzzCommand(args[1:])
	case "serve-monitor":
		err = commands.ServeMonitorCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func showUsage() {
	fmt.Println("ubfuzz - undefined-behavior C/C++ program generator and scheduler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ubfuzz generate -seed N [-o file]            Generate one program        (alias: g)")
	fmt.Println("  ubfuzz mutate -seed N -strategy NAME [-o f]  Generate and mutate once     (alias: m)")
	fmt.Println("  ubfuzz reduce -oracle CMD [-seed N] [-o f]   Shrink a finding             (alias: r)")
	fmt.Println("  ubfuzz fuzz -oracle CMD [options]            Run the scheduler loop       (alias: f)")
	fmt.Println("  ubfuzz serve-monitor -listen :8089           Serve the live monitor alone (alias: s)")
	fmt.Println()
	fmt.Println("Help:")
	fmt.Println("  ubfuzz help                Show this message")
	fmt.Println("  ubfuzz --version           Show version")
}
