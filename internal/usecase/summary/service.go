package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
)

const FallbackSummary = "Sorry, I couldn't summarize this bill. Please try again."

// Params are the generation settings sent with every request.
type Params struct {
	MaxInputTokens     int
	NumBeams           int
	NoRepeatNgramSize  int
	LengthPenalty      float64
	MinLength          int
	MaxLength          int
	NumReturnSequences int
}

func DefaultParams() Params {
	return Params{
		MaxInputTokens:     6144,
		NumBeams:           4,
		NoRepeatNgramSize:  3,
		LengthPenalty:      2.0,
		MinLength:          350,
		MaxLength:          500,
		NumReturnSequences: 1,
	}
}

type Request struct {
	Text   string
	Params Params
}

// Model is a loaded seq2seq model. Implementations are built once at startup
// and must be safe for concurrent use.
type Model interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}

type Service struct {
	model  Model
	params Params
	log    *zap.Logger
}

func NewService(model Model, log *zap.Logger) *Service {
	return &Service{
		model:  model,
		params: DefaultParams(),
		log:    logger.OrNop(log),
	}
}

// Summarize always returns text to show the user. On a model failure that text
// is FallbackSummary and the error wraps domain.ErrModel.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := s.generate(ctx, text)
	if err != nil {
		s.log.Error("summarize bill", zap.Int("input_chars", len(text)), zap.Error(err))
		return FallbackSummary, err
	}
	return summary, nil
}

func (s *Service) generate(ctx context.Context, text string) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: model panic: %v", domain.ErrModel, r)
		}
	}()

	if s.model == nil {
		return "", fmt.Errorf("%w: model not loaded", domain.ErrModel)
	}

	input := TruncateTokens(text, s.params.MaxInputTokens)
	if len(input) < len(text) {
		s.log.Debug("truncated summarizer input",
			zap.Int("max_tokens", s.params.MaxInputTokens),
			zap.Int("input_chars", len(text)),
			zap.Int("kept_chars", len(input)),
		)
	}

	seqs, err := s.model.Generate(ctx, Request{Text: input, Params: s.params})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModel, err)
	}
	if len(seqs) == 0 || strings.TrimSpace(seqs[0]) == "" {
		return "", fmt.Errorf("%w: empty generation", domain.ErrModel)
	}
	return seqs[0], nil
}

// TruncateTokens keeps the first max whitespace-separated tokens of text,
// preserving the original spacing between them.
func TruncateTokens(text string, max int) string {
	if max <= 0 {
		return ""
	}

	count := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inToken && count == max {
				return text[:i]
			}
			inToken = false
			continue
		}
		if !inToken {
			inToken = true
			count++
		}
	}
	return text
}
