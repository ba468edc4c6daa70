package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// defaultMaxTokens bounds answer length. Truncated answers are passed through
// as-is, never retried.
const defaultMaxTokens = 200

// Generator is the underlying vision generation capability. Implementations
// are not safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, conv Conversation, maxNewTokens int32) (string, error)
}

// Config selects and configures the generation backend.
type Config struct {
	// GeminiAPIKey authenticates against the hosted Gemini API. May be empty.
	GeminiAPIKey string
	// ServerURL, when set, points at a local llama.cpp server and takes
	// precedence over the hosted backend.
	ServerURL string
	// ModelDir is the local model artifact directory, if known. Used only for
	// the best-effort size probe.
	ModelDir string
	// GPULayers is the number of layers offloaded to the GPU by the local
	// server. Zero means full-precision CPU inference.
	GPULayers int
}

// ConfigFromEnv reads the backend configuration from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		ServerURL:    os.Getenv("LLAMA_SERVER_URL"),
		ModelDir:     os.Getenv("LLAMA_MODEL_DIR"),
	}
	if layers := os.Getenv("LLAMA_GPU_LAYERS"); layers != "" {
		n, err := strconv.Atoi(layers)
		if err != nil {
			return Config{}, fmt.Errorf("LLAMA_GPU_LAYERS must be an integer: %w", err)
		}
		cfg.GPULayers = n
	}
	return cfg, nil
}

// Engine is a handle to a ready generation backend. Create it once per batch
// with NewEngine and reuse it for every Answer call; it is read-only after
// construction and needs no teardown.
type Engine struct {
	gen      Generator
	backend  string
	modelDir string
}

// NewEngine selects a backend from cfg and constructs the engine. A local
// llama.cpp server is preferred when configured; otherwise the hosted Gemini
// API is used. Construction failure means no inference is possible at all.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.ServerURL != "" {
		gen := NewLlamaGenerator(cfg.ServerURL)
		if err := gen.Health(ctx); err != nil {
			return nil, fmt.Errorf("initialize engine: %w", err)
		}
		log.Info().
			Str("serverURL", cfg.ServerURL).
			Int("gpuLayers", cfg.GPULayers).
			Bool("accelerated", cfg.GPULayers > 0).
			Msg("using local llama.cpp backend")
		return &Engine{gen: gen, backend: "llamacpp", modelDir: cfg.ModelDir}, nil
	}

	gen, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("initialize engine: %w", err)
	}
	log.Info().Str("model", geminiModel).Msg("using gemini backend")
	return &Engine{gen: gen, backend: "gemini"}, nil
}

// Backend names the selected backend.
func (e *Engine) Backend() string { return e.backend }

// ModelDir is the local artifact directory, or empty when the backend has no
// local artifacts.
func (e *Engine) ModelDir() string { return e.modelDir }

// Answer runs one image through the model with the fixed coaching prompt and
// returns the raw answer text. Any underlying failure (unreadable file, API
// error, empty response) is returned wrapped; there is no retry.
func (e *Engine) Answer(ctx context.Context, imagePath string) (string, error) {
	text, err := e.gen.Generate(ctx, CoachingConversation(imagePath), defaultMaxTokens)
	if err != nil {
		return "", fmt.Errorf("analyze %s: %w", imagePath, err)
	}
	return text, nil
}

// Describe analyzes a single image with a throwaway engine, paying the full
// initialization cost. Batch callers should construct an Engine once with
// NewEngine and reuse it instead.
func Describe(ctx context.Context, cfg Config, imagePath string) (string, error) {
	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return "", err
	}
	return engine.Answer(ctx, imagePath)
}

// readImage loads the image bytes and resolves a MIME type from the file
// extension.
func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, mimeTypeFor(path), nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
