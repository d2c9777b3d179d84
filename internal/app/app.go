package app

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"legal-llama/internal/adapter/congress"
	"legal-llama/internal/adapter/huggingface"
	"legal-llama/internal/adapter/memory"
	"legal-llama/internal/adapter/openai"
	"legal-llama/internal/adapter/propublica"
	"legal-llama/internal/config"
	"legal-llama/internal/logger"
	"legal-llama/internal/usecase/bill"
	"legal-llama/internal/usecase/chat"
	"legal-llama/internal/usecase/summary"
)

// NewLogger builds the process logger from the config.
func NewLogger(service string, cfg config.Config) *zap.Logger {
	return logger.New(service, logger.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
}

// NewModel returns the summarization backend selected by SUMMARIZER_BACKEND.
func NewModel(cfg config.Config) (summary.Model, error) {
	httpClient := &http.Client{Timeout: cfg.SummarizerTimeout}

	switch cfg.SummarizerBackend {
	case config.BackendHuggingFace:
		return huggingface.NewClient(cfg.HFEndpoint, cfg.HFToken, httpClient), nil
	case config.BackendOpenAI:
		return openai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.SummarizerBackend)
	}
}

// NewChatService wires retrieval, summarization and the conversation store.
// The model is loaded once and shared by every session.
func NewChatService(cfg config.Config, log *zap.Logger) (*chat.Service, error) {
	model, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	congressClient := congress.NewClient(cfg.CongressBaseURL, cfg.CongressKey, httpClient)
	retriever := bill.NewRetriever(
		propublica.NewClient(cfg.ProPublicaBaseURL, cfg.ProPublicaKey, httpClient),
		congressClient,
		congressClient,
		log.Named("bill"),
	)
	summarizer := summary.NewService(model, log.Named("summary"))

	log.Info("chat service ready",
		zap.String("summarizer", cfg.SummarizerBackend),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
	)

	return chat.NewService(
		memory.NewStore(),
		chat.NewDialogResponders(retriever, summarizer, log.Named("dialog")),
		log.Named("chat"),
	), nil
}
