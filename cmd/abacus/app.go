package main

import (
	"fmt"

	"github.com/rahul/abacus/internal/agent"
	"github.com/rahul/abacus/internal/governance"
	"github.com/rahul/abacus/internal/observability"
	"github.com/rahul/abacus/internal/operations"
	"github.com/rahul/abacus/internal/store"
	"github.com/rahul/abacus/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// app holds the wired pipeline and the resources it owns.
type app struct {
	Registry *operations.Registry
	Gate     *governance.Gate
	Pipeline *agent.Pipeline
	Audit    *store.AuditStore
}

func newApp(cfg *config.Config, logger *observability.Logger) (*app, error) {
	llm, err := newModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, logger, llm)
}

// assemble wires the pipeline around an already constructed model.
func assemble(cfg *config.Config, logger *observability.Logger, llm llms.Model) (*app, error) {
	a := &app{Registry: operations.NewDefaultRegistry()}

	gateOpts := []governance.Option{governance.WithLogger(logger)}
	if cfg.Security.AuditDB != "" {
		audit, err := store.NewAuditStore(cfg.Security.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		a.Audit = audit
		gateOpts = append(gateOpts, governance.WithDenialSink(audit))
	}
	a.Gate = governance.NewGate(governance.Config{
		Enabled: cfg.Security.SandboxEnabled,
		Allowed: cfg.Security.AllowedOperations,
	}, gateOpts...)

	planner := agent.NewLLMPlanner(llm, agent.NewPromptManager(cfg.Prompts.Dir), a.Registry, logger)
	planner.ModelName = cfg.LLM.Model
	planner.Temperature = cfg.LLM.Temperature
	planner.MaxTokens = cfg.LLM.MaxTokens
	planner.JSONMode = cfg.LLM.JSONMode

	interpreter := agent.NewInterpreter(a.Registry, a.Gate, logger)
	interpreter.StepTimeout = cfg.StepTimeout()

	a.Pipeline = agent.NewPipeline(planner, interpreter, logger)
	a.Pipeline.PlanningTimeout = cfg.PlanningTimeout()
	return a, nil
}

func (a *app) Close() error {
	if a.Audit != nil {
		return a.Audit.Close()
	}
	return nil
}

func newModel(c config.LLMConfig) (llms.Model, error) {
	switch c.Provider {
	case "ollama", "":
		opts := []ollama.Option{ollama.WithModel(c.Model)}
		if c.Endpoint != "" {
			opts = append(opts, ollama.WithServerURL(c.Endpoint))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(c.APIKey),
			openai.WithModel(c.Model),
		}
		if c.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(c.Endpoint))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("provider %s not yet implemented", c.Provider)
	}
}
