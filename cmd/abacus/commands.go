package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/rahul/abacus/internal/gateway"
	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/internal/store"
	"github.com/spf13/cobra"
)

var sampleRequests = []string{
	"Add 15 and 25",
	"Multiply 7 by 8",
	"Calculate the mean of 10, 20, 30 and 40",
	"Add 5 and 3, then multiply by 2",
	"Calculate the square root of 144",
	"Raise 2 to the power of 8",
}

var errCalculationFailed = errors.New("calculation failed")

// runOnce calculates input and prints either the reply text or the JSON
// envelope. A failed calculation is reported as an error after printing.
func runOnce(ctx context.Context, w io.Writer, runner gateway.Runner, input string, asJSON bool) error {
	env := runner.Run(ctx, input)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, gateway.Render(env))
	}

	if !env.Success {
		return errCalculationFailed
	}
	return nil
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "sair", "exit", "quit":
		return true
	}
	return false
}

func runInteractive(ctx context.Context, a *app, demo bool) error {
	observability.PrintBanner(os.Stdout)

	if demo {
		fmt.Println("📋 Running sample requests...")
		for i, req := range sampleRequests {
			fmt.Printf("\n%s\nSample %d/%d: %s\n", strings.Repeat("─", 60), i+1, len(sampleRequests), req)
			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			env := a.Pipeline.Run(runCtx, req)
			stop()
			fmt.Println(gateway.Render(env))
		}
		fmt.Println()
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("💬 Type a calculation (':ops', ':stats', or 'exit' to quit)")
	for {
		input, err := line.Prompt("🧮 You: ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println("\n👋 Bye!")
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case isExit(input):
			fmt.Println("👋 Bye!")
			return nil
		case input == ":ops":
			printOperations(os.Stdout, a)
			continue
		case input == ":stats":
			printStats(os.Stdout, a)
			continue
		}

		// Ctrl+C while a request runs cancels only that request.
		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		env := a.Pipeline.Run(runCtx, input)
		stop()
		fmt.Println(gateway.Render(env))
	}
}

func printOperations(w io.Writer, a *app) {
	for _, op := range a.Registry.List() {
		status := "allowed"
		if a.Gate.Enabled() {
			status = "blocked"
			for _, name := range a.Gate.Allowed() {
				if name == op.Name() {
					status = "allowed"
					break
				}
			}
		}
		fmt.Fprintf(w, "%-10s %-12s %-8s %s\n", op.Name(), op.Arity(), status, op.Description())
	}
	if !a.Gate.Enabled() {
		fmt.Fprintln(w, "(sandbox disabled: every registered operation may run)")
	}
}

func printStats(w io.Writer, a *app) {
	snap := a.Pipeline.Stats.Snapshot()
	fmt.Fprintf(w, "runs: %d  succeeded: %d  denials: %d\n", snap.Runs, snap.Succeeded(), a.Gate.Denials())

	kinds := make([]string, 0, len(snap.Failures))
	for k := range snap.Failures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-22s %d\n", k, snap.Failures[k])
	}
}

func runTelegram(cmd *cobra.Command, args []string) error {
	tgCfg, ok := cfg.GetTelegramConfig()
	if !ok {
		return errors.New("telegram gateway is not enabled or token is missing")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	tg, err := gateway.NewTelegramGateway(tgCfg.Token, a.Pipeline, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tg.Start(ctx)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if cfg.Security.AuditDB == "" {
		return errors.New("security.audit_db is not configured")
	}
	audit, err := store.NewAuditStore(cfg.Security.AuditDB)
	if err != nil {
		return err
	}
	defer audit.Close()

	denials, err := audit.RecentDenials(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(denials) == 0 {
		fmt.Fprintln(w, "no denials recorded")
		return nil
	}
	for _, d := range denials {
		fmt.Fprintf(w, "%s  %-10s  %s  %s\n", d.At.Local().Format("2006-01-02 15:04:05"), d.Operation, d.RunID, d.Reason)
	}
	return nil
}
