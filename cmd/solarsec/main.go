// File: cmd/solarsec/main.go
/*
Copyright © 2025 Kyle McAllister (xkilldash9x@proton.me)
*/

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/solarsec-cli/cmd"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
)

const panicLogFile = "panic.log"

const banner = `
   \ | /      solarsec v%s
 -- (_) --    STRIDE / DREAD / SA1 spot market / AEMO VPP
   / | \      type a command, or "exit" to quit

`

// Function variables replaced in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		err := cmd.Execute(ctx)
		observability.Sync()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				osExit(0)
			} else {
				osExit(1)
			}
		}
		return
	}

	fmt.Printf(banner, cmd.Version)
	if err := interactive(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		osExit(1)
	}
	fmt.Println("Exiting solarsec.")
}

// interactive reads one command per line until EOF or exit.
func interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "solarsec > ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		executeLine(ctx, line, out)
	}
	return scanner.Err()
}

// executeLine runs one interactive command on a fresh command tree so flags
// do not carry over between lines.
func executeLine(ctx context.Context, line string, out io.Writer) {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(strings.Fields(line))
	rootCmd.SetOut(out)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: Command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}

// handlePanic records an unrecovered panic in panic.log and exits non-zero.
func handlePanic() {
	if r := recover(); r != nil {
		observability.Sync()

		panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
		if err := osWriteFile(panicLogFile, []byte(panicMessage), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
			fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
			osExit(1)
			return
		}

		fmt.Fprintf(os.Stderr, "\nsolarsec crashed. Details logged to %s\n", panicLogFile)
		osExit(1)
	}
}
