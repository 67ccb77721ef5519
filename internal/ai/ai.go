// Package ai drafts cover letters for tracked applications with a local
// Ollama model. Model output is structured JSON checked against an embedded
// schema before anything reaches the caller.
package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"

	"github.com/zmikicdroin/jobtracker/internal/config"
	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/ollama"
)

//go:embed draft_schema.json
var draftSchemaJSON []byte

// ErrBadModelOutput is returned when the model response is not the JSON
// object the schema demands.
var ErrBadModelOutput = errors.New("model returned malformed draft")

// Draft is the structured response we expect from the LLM.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Engine wraps an Ollama client and provides cover-letter drafting.
type Engine struct {
	client *ollama.Client
	cfg    config.EngineConfig
	schema *jsonschema.Schema
}

// NewEngine creates a new drafting engine.
func NewEngine(client *ollama.Client, cfg config.EngineConfig) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("ollama client is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(draftSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile draft schema: %w", err)
	}

	return &Engine{client: client, cfg: cfg, schema: rs}, nil
}

// DraftCoverLetter asks the model for a cover letter matching the given
// application and validates the structured output before returning it.
func (e *Engine) DraftCoverLetter(ctx context.Context, username string, app *models.Application) (*Draft, error) {
	if app == nil {
		return nil, fmt.Errorf("application is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	prompt := buildPrompt(username, app)
	res, err := e.client.Generate(ctx, e.cfg.Model, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("draft generation: %w", err)
	}

	out := strings.TrimSpace(res.Text)
	verrs, err := e.schema.ValidateBytes(ctx, []byte(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, verrs[0])
	}

	var d Draft
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}

	return &d, nil
}

func buildPrompt(username string, app *models.Application) string {
	var b strings.Builder
	b.WriteString("Write a short, professional cover letter for a job application.\n")
	fmt.Fprintf(&b, "Applicant: %s\nCompany: %s\nApplication date: %s\n", username, app.Company, app.ApplicationDate)
	if app.CoverLetter != "" {
		fmt.Fprintf(&b, "Notes from the applicant: %s\n", app.CoverLetter)
	}
	b.WriteString(`Respond with a single JSON object of the form {"subject": string, "body": string} and nothing else.`)
	return b.String()
}
