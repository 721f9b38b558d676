package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rahul/abacus/internal/operations"
)

// DefaultPlannerPrompt is used when no planner.md override exists.
const DefaultPlannerPrompt = `You convert natural-language requests into a sequence of math operations.

RULES:
1. Return ONLY valid JSON.
2. Every step has: operation, args, description.
3. Use exact numbers (do not round).
4. The sequence must be executable in order.
5. Use "$result_N" to reference the result of step N (0-based). Only reference earlier steps.

EXAMPLE:
Input: "Add 5 and 3, then multiply by 2"
Output:
{
  "steps": [
    {"operation": "add", "args": [5, 3], "description": "Add 5 + 3"},
    {"operation": "multiply", "args": ["$result_0", 2], "description": "Multiply the previous result by 2"}
  ]
}`

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// GetPlannerPrompt returns planner.md from the prompt directory, or the
// built-in prompt when the directory or file does not exist.
func (pm *PromptManager) GetPlannerPrompt() (string, error) {
	if pm.Directory == "" {
		return DefaultPlannerPrompt, nil
	}
	path := filepath.Join(pm.Directory, "planner.md")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPlannerPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read planner prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DescribeOperations renders one line per operation for the planner prompt.
func DescribeOperations(ops []operations.Operation) string {
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, fmt.Sprintf("- %s (%s operand(s)): %s", op.Name(), op.Arity(), op.Description()))
	}
	return strings.Join(lines, "\n")
}
