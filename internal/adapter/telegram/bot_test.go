package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"legal-llama/internal/domain"
	"legal-llama/internal/usecase/chat"
)

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	actions int
	stopped bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.ChatActionConfig); ok {
		f.actions++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeConversations struct {
	reply    chat.Reply
	err      error
	started  map[string]bool
	sessions []string
	texts    []string
}

func newFakeConversations(reply chat.Reply, err error, started ...string) *fakeConversations {
	c := &fakeConversations{reply: reply, err: err, started: make(map[string]bool)}
	for _, id := range started {
		c.started[id] = true
	}
	return c
}

func (c *fakeConversations) Start(sessionID string) []domain.Message {
	c.sessions = append(c.sessions, sessionID)
	c.started[sessionID] = true
	return []domain.Message{{Role: domain.RoleAssistant, Content: chat.Greeting}}
}

func (c *fakeConversations) Exists(sessionID string) bool {
	return c.started[sessionID]
}

func (c *fakeConversations) HandleMessage(_ context.Context, sessionID, text string) (chat.Reply, error) {
	c.sessions = append(c.sessions, sessionID)
	c.texts = append(c.texts, text)
	return c.reply, c.err
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func commandMessage(chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(chatID, "/"+command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return msg
}

func TestHandleStartSendsGreeting(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{}, nil)
	bot := newBot(api, convs, nil)

	bot.handleMessage(context.Background(), commandMessage(42, "start"))

	require.Equal(t, []string{"tg:42"}, convs.sessions)
	require.Equal(t, []string{chat.Greeting}, api.sentTexts())
}

func TestHandleTextSendsReply(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{Text: "A summary."}, nil, "tg:42")
	bot := newBot(api, convs, nil)

	bot.handleMessage(context.Background(), textMessage(42, "climate change"))

	require.Equal(t, []string{"climate change"}, convs.texts)
	require.Equal(t, []string{"A summary."}, api.sentTexts())
	require.Equal(t, 7, api.sent[0].ReplyToMessageID)
	require.GreaterOrEqual(t, api.actions, 1)
}

func TestFirstTextMessageIsGreeted(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{Text: "A summary."}, nil)
	bot := newBot(api, convs, nil)

	bot.handleMessage(context.Background(), textMessage(9, "healthcare"))
	bot.handleMessage(context.Background(), textMessage(9, "taxes"))

	require.Equal(t, []string{chat.Greeting, "A summary.", "A summary."}, api.sentTexts())
	require.Equal(t, []string{"healthcare", "taxes"}, convs.texts)
}

func TestHandleNonTextMessage(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{}, nil)
	bot := newBot(api, convs, nil)

	bot.handleMessage(context.Background(), textMessage(1, ""))

	require.Empty(t, convs.texts)
	require.Len(t, api.sentTexts(), 1)
}

func TestHandleEmptyMessageError(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{}, chat.ErrEmptyMessage, "tg:1")
	bot := newBot(api, convs, nil)

	bot.handleMessage(context.Background(), textMessage(1, "   "))

	require.Equal(t, []string{"I need a topic to work with."}, api.sentTexts())
}

func TestRunStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	convs := newFakeConversations(chat.Reply{Text: "done"}, nil, "tg:5")
	bot := newBot(api, convs, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- bot.Run(ctx) }()

	api.updates <- tgbotapi.Update{Message: textMessage(5, "water")}
	api.updates <- tgbotapi.Update{}

	require.Eventually(t, func() bool {
		return len(api.sentTexts()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.True(t, api.stopped)
}

func TestSplitText(t *testing.T) {
	require.Equal(t, []string{"short"}, splitText("short", 10))
	require.Equal(t, []string{"abc", "def", "g"}, splitText("abcdefg", 3))
	require.Equal(t, []string{"ééé", "éé"}, splitText("ééééé", 3))
	require.Equal(t, []string{"x"}, splitText("x", 0))

	long := strings.Repeat("a", chunkSize*2+1)
	require.Len(t, splitText(long, chunkSize), 3)
}

func TestSessionKey(t *testing.T) {
	require.Equal(t, "tg:-100123", sessionKey(-100123))
}
