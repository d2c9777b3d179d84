package summary_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"legal-llama/internal/domain"
	"legal-llama/internal/usecase/summary"
)

type stubModel struct {
	out   []string
	err   error
	panic bool
	reqs  []summary.Request
}

func (m *stubModel) Generate(_ context.Context, req summary.Request) ([]string, error) {
	m.reqs = append(m.reqs, req)
	if m.panic {
		panic("tensor shape mismatch")
	}
	return m.out, m.err
}

func TestSummarize(t *testing.T) {
	model := &stubModel{out: []string{"The bill reforms sentencing.", "second beam"}}
	svc := summary.NewService(model, nil)

	got, err := svc.Summarize(context.Background(), "SECTION 1. Sentencing reform.")
	require.NoError(t, err)
	require.Equal(t, "The bill reforms sentencing.", got)
	require.Len(t, model.reqs, 1)
	require.Equal(t, "SECTION 1. Sentencing reform.", model.reqs[0].Text)
	require.Equal(t, summary.DefaultParams(), model.reqs[0].Params)
}

func TestDefaultParams(t *testing.T) {
	p := summary.DefaultParams()
	require.Equal(t, 6144, p.MaxInputTokens)
	require.Equal(t, 4, p.NumBeams)
	require.Equal(t, 3, p.NoRepeatNgramSize)
	require.Equal(t, 2.0, p.LengthPenalty)
	require.Equal(t, 350, p.MinLength)
	require.Equal(t, 500, p.MaxLength)
	require.Equal(t, 1, p.NumReturnSequences)
}

func TestSummarizeTruncatesOversizedInput(t *testing.T) {
	model := &stubModel{out: []string{"summary"}}
	svc := summary.NewService(model, nil)

	words := make([]string, 7000)
	for i := range words {
		words[i] = "word"
	}

	got, err := svc.Summarize(context.Background(), strings.Join(words, " "))
	require.NoError(t, err)
	require.Equal(t, "summary", got)
	require.Len(t, model.reqs, 1)
	require.Len(t, strings.Fields(model.reqs[0].Text), 6144)
}

func TestSummarizeFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
	}{
		{name: "model error", model: &stubModel{err: errors.New("CUDA out of memory")}},
		{name: "empty output", model: &stubModel{}},
		{name: "blank sequence", model: &stubModel{out: []string{"  "}}},
		{name: "panic", model: &stubModel{panic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := summary.NewService(tt.model, nil).Summarize(context.Background(), "text")
			require.ErrorIs(t, err, domain.ErrModel)
			require.Equal(t, summary.FallbackSummary, got)
		})
	}
}

func TestSummarizeWithoutModel(t *testing.T) {
	got, err := summary.NewService(nil, nil).Summarize(context.Background(), "text")
	require.ErrorIs(t, err, domain.ErrModel)
	require.Equal(t, summary.FallbackSummary, got)
}

func TestTruncateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "under limit", text: "a b c", max: 5, want: "a b c"},
		{name: "exact", text: "a b c", max: 3, want: "a b c"},
		{name: "cut", text: "a b c d", max: 2, want: "a b"},
		{name: "keeps spacing", text: "  one\n\ttwo  three", max: 2, want: "  one\n\ttwo"},
		{name: "trailing space", text: "one two ", max: 2, want: "one two"},
		{name: "empty", text: "", max: 3, want: ""},
		{name: "zero max", text: "a b", max: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, summary.TruncateTokens(tt.text, tt.max))
		})
	}
}
