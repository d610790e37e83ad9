// Command askdoc is a retrieval-augmented question answering tool for local
// documents. It wires the driven adapters (parsing, storage, watsonx backends)
// into the core pipeline and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/verity-labs/askdoc/internal/adapters/driven/auth/iam"
	configfile "github.com/verity-labs/askdoc/internal/adapters/driven/config/file"
	embeddingwx "github.com/verity-labs/askdoc/internal/adapters/driven/embedding/watsonx"
	"github.com/verity-labs/askdoc/internal/adapters/driven/index/lexical"
	llmwx "github.com/verity-labs/askdoc/internal/adapters/driven/llm/watsonx"
	"github.com/verity-labs/askdoc/internal/adapters/driven/storage/sqlite"
	"github.com/verity-labs/askdoc/internal/adapters/driving/cli"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/core/services"
	"github.com/verity-labs/askdoc/internal/logger"
	"github.com/verity-labs/askdoc/internal/parsers"
	"github.com/verity-labs/askdoc/internal/postprocessors/chunker"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	embedder, generator := watsonxBackends(cfg)

	lexicalIndex := lexical.New()
	rehydrateLexical(store, lexicalIndex)

	pipeline := services.NewPipelineService(
		parsers.New(),
		chunker.New(),
		store.DocumentStore(),
		lexicalIndex,
		store.VectorIndex(embedder),
		generator,
	)
	documents := services.NewDocumentService(store.DocumentStore())

	cli.SetConfig(cli.Config{
		Pipeline:  pipeline,
		Documents: documents,
		Version:   version,
	})

	return cli.Execute()
}

// rehydrateLexical rebuilds the volatile in-memory lexical index from the
// durable chunk mirror. The CLI is one-shot, so without this a fresh process
// could answer only through the vector index, which is unavailable in local
// mode.
func rehydrateLexical(store *sqlite.Store, idx driven.LexicalIndex) {
	byUser, err := store.LoadChunks(context.Background())
	if err != nil {
		logger.Warn("Could not rebuild lexical index from store: %v", err)
		return
	}
	for userID, chunks := range byUser {
		idx.Add(userID, chunks)
	}
}

// watsonxBackends builds the hosted-model adapters from configuration. Both
// are optional: without credentials the pipeline runs fully local, answering
// from the lexical index with extractive answers.
func watsonxBackends(cfg driven.ConfigStore) (driven.EmbeddingService, driven.AnswerGenerator) {
	apiKey := cfg.GetString("watsonx.api_key")
	baseURL := cfg.GetString("watsonx.url")
	projectID := cfg.GetString("watsonx.project_id")
	if apiKey == "" || baseURL == "" || projectID == "" {
		// Local mode is a supported configuration, not a degradation.
		logger.Info("watsonx credentials not configured, running without hosted models")
		return nil, nil
	}

	tokens, err := iam.New(iam.Config{APIKey: apiKey})
	if err != nil {
		logger.Warn("IAM token provider unavailable: %v", err)
		return nil, nil
	}

	var embedder driven.EmbeddingService
	embedder, err = embeddingwx.New(embeddingwx.Config{
		BaseURL:   baseURL,
		ProjectID: projectID,
		Model:     cfg.GetString("watsonx.embedding_model"),
	}, tokens)
	if err != nil {
		logger.Warn("Embedding backend unavailable: %v", err)
		embedder = nil
	}

	var generator driven.AnswerGenerator
	generator, err = llmwx.New(llmwx.Config{
		BaseURL:   baseURL,
		ProjectID: projectID,
		Model:     cfg.GetString("watsonx.generation_model"),
	}, tokens)
	if err != nil {
		logger.Warn("Generation backend unavailable: %v", err)
		generator = nil
	}

	return embedder, generator
}
