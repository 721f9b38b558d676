package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rahul/abacus/internal/agent"
)

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start(ctx context.Context) error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Runner answers a natural-language request with an envelope.
type Runner interface {
	Run(ctx context.Context, input string) agent.Envelope
}

// Render formats an envelope as a short chat reply.
func Render(env agent.Envelope) string {
	if !env.Success {
		return fmt.Sprintf("❌ Error: %s", env.Error)
	}
	if env.FinalResult == nil {
		return "🤷 Nothing to calculate."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Result: %s", formatNumber(*env.FinalResult))
	if env.StepsExecuted > 1 && env.Plan != nil {
		b.WriteString("\n")
		for i, r := range env.IntermediateResults {
			label := env.Plan.Steps[i].Description
			if label == "" {
				label = env.Plan.Steps[i].Operation
			}
			fmt.Fprintf(&b, "\n%d. %s → %s", i, label, formatNumber(r))
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
