package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
	"legal-llama/internal/usecase/chat"
)

const (
	chunkSize      = 2048
	typingInterval = 4 * time.Second
)

type Conversations interface {
	Start(sessionID string) []domain.Message
	Exists(sessionID string) bool
	HandleMessage(ctx context.Context, sessionID, text string) (chat.Reply, error)
}

// botAPI is the subset of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api  botAPI
	chat Conversations
	log  *zap.Logger
}

func NewBot(token string, conversations Conversations, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log = logger.OrNop(log)
	log.Info("authorized telegram bot", zap.String("username", api.Self.UserName))

	return newBot(api, conversations, log), nil
}

func newBot(api botAPI, conversations Conversations, log *zap.Logger) *Bot {
	return &Bot{
		api:  api,
		chat: conversations,
		log:  logger.OrNop(log),
	}
}

// Run processes updates one at a time until ctx is canceled. Each turn blocks
// while the bill is retrieved and summarized.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	sessionID := sessionKey(msg.Chat.ID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.sendGreeting(msg.Chat.ID, sessionID)
		default:
			b.sendText(msg.Chat.ID, msg.MessageID, "I only understand bill topics. Try something like \"prison reform\".")
		}
		return
	}

	if msg.Text == "" {
		b.sendText(msg.Chat.ID, msg.MessageID, "Please send me a topic as text.")
		return
	}

	if !b.chat.Exists(sessionID) {
		b.sendGreeting(msg.Chat.ID, sessionID)
	}

	stop := b.showTyping(ctx, msg.Chat.ID)
	reply, err := b.chat.HandleMessage(ctx, sessionID, msg.Text)
	stop()

	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			b.sendText(msg.Chat.ID, msg.MessageID, "I need a topic to work with.")
			return
		}
		b.log.Error("handle message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, reply.Text)
}

// showTyping keeps the typing indicator visible until the returned func is
// called. Telegram clears the indicator after about five seconds.
func (b *Bot) showTyping(ctx context.Context, chatID int64) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			b.sendChatAction(chatID)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// sendGreeting opens the session if needed and sends its first message.
func (b *Bot) sendGreeting(chatID int64, sessionID string) {
	history := b.chat.Start(sessionID)
	if len(history) > 0 {
		b.sendText(chatID, 0, history[0].Content)
	}
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	for idx, chunk := range splitText(text, chunkSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if idx == 0 && replyTo != 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			b.log.Warn("send reply", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func (b *Bot) sendChatAction(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug("send chat action", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
