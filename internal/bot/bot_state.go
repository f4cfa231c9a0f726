package bot

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/format"
)

// BotState owns the chat workers.
type BotState struct {
	bot      *Bot
	mu       sync.Mutex
	sessions map[int64]*ChatSession
}

func (bs *BotState) getChatSession(chatID int64, scope format.Scope) *ChatSession {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if session, ok := bs.sessions[chatID]; ok {
		return session
	}

	session := newChatSession(chatID, scope, bs.bot.tg)
	session.SetHandler(bs.bot)
	session.StartWorker()
	bs.sessions[chatID] = session
	log.Debug().Int64("chatId", chatID).Msg("started chat worker")
	return session
}

// Len returns the number of chat workers.
func (bs *BotState) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.sessions)
}

func (b *Bot) NewBotState() BotState {
	return BotState{
		bot:      b,
		sessions: make(map[int64]*ChatSession),
	}
}

// Shutdown stops all session workers gracefully.
func (bs *BotState) Shutdown() {
	bs.mu.Lock()
	sessions := make([]*ChatSession, 0, len(bs.sessions))
	for _, session := range bs.sessions {
		sessions = append(sessions, session)
	}
	bs.mu.Unlock()

	// Stop all workers (outside the lock to avoid blocking)
	for _, session := range sessions {
		session.Stop()
	}
	log.Info().Int("count", len(sessions)).Msg("stopped all chat workers")
}
