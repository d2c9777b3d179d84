// Package dialog tracks the single active intent of a conversation and turns
// it into a response.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
)

const (
	IntentBillSummarization = "bill_summarization"

	SlotBillQuery = "bill_query"
)

var ErrUnknownSlot = errors.New("unknown slot")

type BillRetriever interface {
	GetBillByQuery(ctx context.Context, query string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Frame is one recognized intent with its slots. A slot that is declared but
// not yet filled is absent from Values.
type Frame struct {
	Intent string
	Slots  []string
	Values map[string]string
}

func (f Frame) clone() Frame {
	values := make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		values[k] = v
	}
	return Frame{
		Intent: f.Intent,
		Slots:  append([]string(nil), f.Slots...),
		Values: values,
	}
}

func (f Frame) hasSlot(name string) bool {
	for _, s := range f.Slots {
		if s == name {
			return true
		}
	}
	return false
}

// Slot returns the slot value and whether it has been filled.
func (f Frame) Slot(name string) (string, bool) {
	v, ok := f.Values[name]
	return v, ok
}

func templates() map[string]Frame {
	return map[string]Frame{
		IntentBillSummarization: {
			Intent: IntentBillSummarization,
			Slots:  []string{SlotBillQuery},
		},
	}
}

// Manager holds at most one current frame. It is not safe for concurrent use;
// each conversation owns its own Manager.
type Manager struct {
	frames     map[string]Frame
	current    *Frame
	bills      BillRetriever
	summarizer Summarizer
	log        *zap.Logger
}

func NewManager(bills BillRetriever, summarizer Summarizer, log *zap.Logger) *Manager {
	return &Manager{
		frames:     templates(),
		bills:      bills,
		summarizer: summarizer,
		log:        logger.OrNop(log),
	}
}

// SetFrame replaces the current frame with a fresh copy of the intent's
// template holding slot as its query. An unknown intent clears the frame.
func (m *Manager) SetFrame(intent, slot string) error {
	tmpl, ok := m.frames[intent]
	if !ok {
		m.current = nil
		m.log.Warn("unrecognized intent", zap.String("intent", intent))
		return fmt.Errorf("%w: %q", domain.ErrUnknownIntent, intent)
	}

	frame := tmpl.clone()
	m.current = &frame
	return m.UpdateSlot(SlotBillQuery, slot)
}

// UpdateSlot fills a slot declared by the current frame.
func (m *Manager) UpdateSlot(name, value string) error {
	if m.current == nil || !m.current.hasSlot(name) {
		m.log.Warn("cannot update slot", zap.String("slot", name), zap.Bool("has_frame", m.current != nil))
		return fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	m.current.Values[name] = value
	return nil
}

// CurrentFrame returns a copy of the current frame.
func (m *Manager) CurrentFrame() (Frame, bool) {
	if m.current == nil {
		return Frame{}, false
	}
	return m.current.clone(), true
}

// GenerateResponse acts on the current frame. Without a frame it returns
// ErrNoFrame and touches nothing else. When summarization fails the
// summarizer's fallback text is returned together with the error.
func (m *Manager) GenerateResponse(ctx context.Context) (string, error) {
	if m.current == nil {
		m.log.Debug("no frame has been set")
		return "", domain.ErrNoFrame
	}

	frame := m.current
	switch frame.Intent {
	case IntentBillSummarization:
		return m.summarizeBill(ctx, frame.Values[SlotBillQuery])
	default:
		m.log.Warn("unrecognized frame intent", zap.String("intent", frame.Intent))
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownIntent, frame.Intent)
	}
}

func (m *Manager) summarizeBill(ctx context.Context, query string) (string, error) {
	text, err := m.bills.GetBillByQuery(ctx, query)
	if err != nil {
		m.log.Info("unable to retrieve bill text", zap.String("query", query), zap.Error(err))
		return "", err
	}

	summary, err := m.summarizer.Summarize(ctx, text)
	if err != nil {
		m.log.Warn("bill summarization failed", zap.String("query", query), zap.Error(err))
		return summary, err
	}
	if strings.TrimSpace(summary) == "" {
		m.log.Warn("unable to summarize bill text", zap.String("query", query))
		return "", fmt.Errorf("%w: empty summary", domain.ErrModel)
	}
	return summary, nil
}

// RecognizeIntent maps user text to an intent. Only bill summarization is
// supported, so every utterance is treated as a bill topic.
func RecognizeIntent(string) string {
	return IntentBillSummarization
}
