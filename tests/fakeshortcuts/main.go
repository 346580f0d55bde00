// Command fakeshortcuts stands in for the macOS `shortcuts` CLI in
// integration tests. It implements the `run <name>` subcommand with a few
// well-known shortcut names that cover the interesting behaviors.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: shortcuts run <name>")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "run requires a shortcut name")
			os.Exit(2)
		}
		os.Exit(run(os.Args[2]))
	case "list":
		fmt.Println("Echo Test\nFail Test\nSleep Test\nSpew Test")
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(2)
	}
}

func run(name string) int {
	switch name {
	case "Echo Test":
		// Copies stdin through, so tests can assert textInput delivery.
		if _, err := io.Copy(os.Stdout, os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			return 1
		}
		return 0
	case "Fail Test":
		fmt.Fprintln(os.Stderr, "the shortcut reported an error")
		return 1
	case "Sleep Test":
		time.Sleep(30 * time.Second)
		return 0
	case "Spew Test":
		line := strings.Repeat("x", 1023) + "\n"
		for i := 0; i < 1024; i++ {
			fmt.Print(line)
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "shortcut %q not found\n", name)
		return 1
	}
}
