package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/format"
)

// SessionMessage represents a message to be processed by the chat worker.
type SessionMessage struct {
	Type string
	Ctx  context.Context
	Done chan struct{} // Closed when processing is complete (for synchronous dispatch)

	// Only one is set based on Type
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	Text          string
}

// MessageSender abstracts the ability to send Telegram messages.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageHandler is the interface for processing session messages.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *ChatSession, msg SessionMessage)
}

// ChatSession serializes the updates of one chat. A single worker goroutine
// processes the inbox, so a slow lookup in one chat never delays another and
// replies within a chat keep the order of the requests.
type ChatSession struct {
	chatID int64
	scope  format.Scope
	sender MessageSender

	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler
}

func newChatSession(chatID int64, scope format.Scope, sender MessageSender) *ChatSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatSession{
		chatID: chatID,
		scope:  scope,
		sender: sender,
		inbox:  make(chan SessionMessage, 10),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ChatID returns the chat the session answers in.
func (s *ChatSession) ChatID() int64 {
	return s.chatID
}

func (s *ChatSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Int64("chatId", s.chatID).Send()
	sentry.CaptureException(err)
	return s.reply(MsgUnexpectedErr)
}

// sendTypingAction shows the user that a lookup is in progress. The indicator
// expires by itself after a few seconds.
func (s *ChatSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.chatID, tgbotapi.ChatTyping)
	// sendChatAction returns a boolean, not a Message
	if _, err := s.sender.Request(action); err != nil {
		log.Debug().Err(err).Int64("chatId", s.chatID).Msg("failed to send typing action")
	}
}

func (s *ChatSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.chatID
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Info().Int64("chatId", s.chatID).Int("messageId", sent.MessageID).Msg("sent message")
	}

	return sent
}

// send delivers a formatted reply. Its text is already MarkdownV2 escaped.
func (s *ChatSession) send(reply format.Reply) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      reply.Text,
		ParseMode: tgbotapi.ModeMarkdownV2,
	}
	if len(reply.Actions) > 0 {
		msg.ReplyMarkup = inlineKeyboard(reply.Actions)
	}
	return s.replyWithMessage(msg)
}

func (s *ChatSession) reply(text string, a ...any) tgbotapi.Message {
	return s.send(format.Plain(formatReplyText(text, a...)))
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *ChatSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *ChatSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

func (s *ChatSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					if msg.Done != nil {
						close(msg.Done)
					}
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

func (s *ChatSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("chatId", s.chatID).
				Interface("panic", r).
				Msg("recovered from panic in chat worker")
			sentry.CurrentHub().Recover(r)
		}
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("chatId", s.chatID).Msg("session handler not set")
		return
	}

	ctx := msg.Ctx
	if ctx == nil {
		ctx = s.ctx
	}
	s.handler.HandleSessionMessage(ctx, s, msg)
}

// Send queues a message for processing by the worker.
// This is non-blocking - it returns immediately after queuing.
func (s *ChatSession) Send(msg SessionMessage) {
	if s.ctx.Err() != nil {
		if msg.Done != nil {
			close(msg.Done)
		}
		return
	}
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		if msg.Done != nil {
			close(msg.Done)
		}
	}
}

// SendSync queues a message and waits for it to be processed.
func (s *ChatSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop stops the worker and waits for it to finish.
func (s *ChatSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
