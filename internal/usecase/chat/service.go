package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
	"legal-llama/internal/usecase/dialog"
)

const Greeting = "Hello there! I'm Legal LLaMa, your friendly guide to the complex world of U.S. legislation.\n\n" +
	"Think of me as a law student who is always eager to learn and share knowledge. Right now, " +
	"my skills are a bit limited, but I can certainly help you understand the gist of the latest " +
	"bills proposed in the U.S. Congress. You just have to provide me with a topic - could be " +
	"climate change, prison reform, healthcare, you name it! I'll then fetch the latest related " +
	"bill and serve you up a digestible summary.\n\n" +
	"Remember, being a law student (and a LLaMa, no less!) is tough, so if I miss a step, bear with me. " +
	"I promise to get better with every interaction. So, what topic intrigues you today?"

const NoResultReply = "I couldn't find a recent bill with published text on that topic. Could you try another topic?"

var ErrEmptyMessage = errors.New("empty message")

// Responder is the per-conversation dialog state.
type Responder interface {
	SetFrame(intent, slot string) error
	GenerateResponse(ctx context.Context) (string, error)
}

// Reply is the assistant message shown to the user. Cause is nil when a
// summary was produced and otherwise records why it was not.
type Reply struct {
	Text  string
	Cause error
}

// Status classifies the reply for clients that want to render failures
// differently.
func (r Reply) Status() string {
	switch {
	case r.Cause == nil:
		return "ok"
	case errors.Is(r.Cause, domain.ErrNoBillText):
		return "not_found"
	case errors.Is(r.Cause, domain.ErrTransport), errors.Is(r.Cause, domain.ErrBadResponse):
		return "upstream_error"
	case errors.Is(r.Cause, domain.ErrModel):
		return "model_error"
	default:
		return "error"
	}
}

type conversation struct {
	mu        sync.Mutex
	responder Responder
}

type Service struct {
	store        domain.ConversationStore
	newResponder func() Responder
	log          *zap.Logger
	now          func() time.Time

	mu            sync.Mutex
	conversations map[string]*conversation
}

func NewService(store domain.ConversationStore, newResponder func() Responder, log *zap.Logger) *Service {
	return &Service{
		store:         store,
		newResponder:  newResponder,
		log:           logger.OrNop(log),
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

// NewDialogResponders returns a factory giving each conversation its own
// dialog manager over shared retrieval and summarization services.
func NewDialogResponders(bills dialog.BillRetriever, summarizer dialog.Summarizer, log *zap.Logger) func() Responder {
	return func() Responder {
		return dialog.NewManager(bills, summarizer, log)
	}
}

// Start opens the session if needed and returns its history, which always
// begins with the greeting.
func (s *Service) Start(sessionID string) []domain.Message {
	s.conversation(sessionID)
	return s.store.Messages(sessionID)
}

func (s *Service) History(sessionID string) []domain.Message {
	return s.store.Messages(sessionID)
}

func (s *Service) Exists(sessionID string) bool {
	return s.store.Exists(sessionID)
}

// HandleMessage runs one blocking turn: the user text becomes the bill query,
// the dialog produces a response and both sides are appended to the history.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	conv := s.conversation(sessionID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	s.store.Add(sessionID, domain.Message{
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: s.now(),
	})

	intent := dialog.RecognizeIntent(text)
	if err := conv.responder.SetFrame(intent, text); err != nil {
		s.log.Warn("set dialog frame", zap.String("session", sessionID), zap.Error(err))
	}

	reply := Reply{}
	started := s.now()
	resp, err := conv.responder.GenerateResponse(ctx)
	if err != nil {
		reply.Text = resp
		if reply.Text == "" {
			reply.Text = NoResultReply
		}
		reply.Cause = err
		s.log.Info("no summary for message",
			zap.String("session", sessionID),
			zap.String("query", text),
			zap.Error(err),
		)
	} else {
		reply.Text = resp
		s.log.Info("summary produced",
			zap.String("session", sessionID),
			zap.Duration("elapsed", s.now().Sub(started)),
		)
	}

	s.store.Add(sessionID, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply.Text,
		Timestamp: s.now(),
	})

	return reply, nil
}

func (s *Service) conversation(sessionID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[sessionID]
	if ok {
		return conv
	}

	conv = &conversation{responder: s.newResponder()}
	s.conversations[sessionID] = conv
	if !s.store.Exists(sessionID) {
		s.store.Add(sessionID, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   Greeting,
			Timestamp: s.now(),
		})
	}
	return conv
}
