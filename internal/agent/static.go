// Package agent holds the process-wide agent configuration: the system
// prompt, the finalize_outcome tool schema and the static knowledge.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"voice-call-relay/internal/models"
	s3service "voice-call-relay/internal/services/s3"
)

var emptySchema = json.RawMessage(`{}`)

// Reader fetches the bytes behind a location.
type Reader interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

// FileReader reads from the local filesystem.
type FileReader struct{}

// Read implements Reader.
func (FileReader) Read(_ context.Context, location string) ([]byte, error) {
	return os.ReadFile(location)
}

// LoadOptions configures Load.
type LoadOptions struct {
	PromptPath string
	SchemaPath string
	Products   []string

	// Local serves plain paths, FileReader when nil.
	Local  Reader
	// Remote serves s3:// locations. Such locations fail to load when nil.
	Remote Reader
}

// Static is immutable once built and safe for concurrent use.
type Static struct {
	prompt       string
	schema       json.RawMessage
	products     []string
	promptLoaded bool
	schemaLoaded bool
}

// New builds a Static from values already in memory. An invalid schema is replaced by {}.
func New(prompt string, schema json.RawMessage, products []string) *Static {
	s := &Static{
		prompt:       prompt,
		schema:       emptySchema,
		products:     append([]string(nil), products...),
		promptLoaded: prompt != "",
	}
	if len(bytes.TrimSpace(schema)) > 0 && json.Valid(schema) {
		s.schema = append(json.RawMessage(nil), schema...)
		s.schemaLoaded = true
	}
	return s
}

// Load reads the prompt and schema once. Failures are logged and degrade to
// an empty prompt or an empty schema; they never abort startup.
func Load(ctx context.Context, opts LoadOptions, logger *zap.Logger) *Static {
	if logger == nil {
		logger = zap.NewNop()
	}

	prompt, err := read(ctx, opts, opts.PromptPath)
	if err != nil {
		logger.Warn("Failed to load agent prompt, continuing with empty prompt",
			zap.String("path", opts.PromptPath),
			zap.Error(err))
		prompt = nil
	}

	schema, err := read(ctx, opts, opts.SchemaPath)
	if err == nil && !json.Valid(schema) {
		err = errors.New("schema is not valid JSON")
	}
	if err != nil {
		logger.Warn("Failed to load tool schema, continuing with empty schema",
			zap.String("path", opts.SchemaPath),
			zap.Error(err))
		schema = nil
	}

	s := New(string(prompt), schema, opts.Products)
	logger.Info("Agent configuration loaded",
		zap.Bool("prompt_loaded", s.promptLoaded),
		zap.Int("prompt_bytes", len(s.prompt)),
		zap.Bool("schema_loaded", s.schemaLoaded),
		zap.Strings("products", s.products))
	return s
}

func read(ctx context.Context, opts LoadOptions, location string) ([]byte, error) {
	if location == "" {
		return nil, errors.New("no location configured")
	}
	if s3service.IsURI(location) {
		if opts.Remote == nil {
			return nil, fmt.Errorf("no reader configured for %s", location)
		}
		return opts.Remote.Read(ctx, location)
	}
	local := opts.Local
	if local == nil {
		local = FileReader{}
	}
	return local.Read(ctx, location)
}

// Prompt returns the system prompt, possibly empty.
func (s *Static) Prompt() string {
	return s.prompt
}

// Schema returns a copy of the finalize_outcome parameter schema.
func (s *Static) Schema() json.RawMessage {
	return append(json.RawMessage(nil), s.schema...)
}

// PromptLoaded reports whether a non-empty prompt was loaded.
func (s *Static) PromptLoaded() bool {
	return s.promptLoaded
}

// SchemaLoaded reports whether the schema came from its source rather than the fallback.
func (s *Static) SchemaLoaded() bool {
	return s.schemaLoaded
}

// Spec returns a fresh agent section for a call request.
func (s *Static) Spec() models.AgentSpec {
	return models.AgentSpec{
		SystemPrompt: s.prompt,
		Knowledge:    models.Knowledge{Products: append([]string{}, s.products...)},
		Tools: []models.Tool{
			{Name: models.ToolFinalizeOutcome, Schema: s.Schema()},
		},
	}
}
