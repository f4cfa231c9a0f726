package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/config"
	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/format"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
	"github.com/brickbot/bricklink-telegram-bot/internal/minifigs"
	"github.com/brickbot/bricklink-telegram-bot/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// SetSearcher finds sets by name.
type SetSearcher interface {
	SearchSets(ctx context.Context, query string) ([]catalog.SearchHit, error)
}

// MinifigIndex is the searchable minifigure name index.
type MinifigIndex interface {
	Search(ctx context.Context, query string) ([]minifigs.Minifig, error)
	Replace(ctx context.Context, figs []minifigs.Minifig) (int, error)
	Key() string
}

// UploadLog records index uploads for /status.
type UploadLog interface {
	RecordUpload(ctx context.Context, uploadedBy int64, objectKey string, entries int) (*storage.Upload, error)
	LatestUpload(ctx context.Context) (*storage.Upload, error)
}

// Opts holds the collaborators of a Bot. Sets, Minifigs and Uploads are
// optional; the features behind them reply with a notice when unset.
type Opts struct {
	Resolver     *catalog.Resolver
	Formatter    *format.Formatter
	Sets         SetSearcher
	Minifigs     MinifigIndex
	Uploads      UploadLog
	Admins       config.Admins
	BotName      string
	CacheBackend string
	Metrics      *metrics.Metrics
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg    BotAPI
	state BotState

	resolver     *catalog.Resolver
	formatter    *format.Formatter
	sets         SetSearcher
	minifigs     MinifigIndex
	uploads      UploadLog
	admins       config.Admins
	botName      string
	cacheBackend string
	metrics      *metrics.Metrics
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, opts Opts) *Bot {
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.New(nil)
	}
	bot := &Bot{
		tg:           tg,
		resolver:     opts.Resolver,
		formatter:    formatter,
		sets:         opts.Sets,
		minifigs:     opts.Minifigs,
		uploads:      opts.Uploads,
		admins:       opts.Admins,
		botName:      strings.TrimPrefix(opts.BotName, "@"),
		cacheBackend: opts.CacheBackend,
		metrics:      opts.Metrics,
	}
	bot.state = bot.NewBotState()
	return bot
}

// Shutdown stops all chat workers.
func (b *Bot) Shutdown() {
	b.state.Shutdown()
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like HandleUpdate but waits for message processing to complete.
// Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// updateChat returns the chat an update should be answered in. Callbacks
// from inline messages carry no chat and are answered privately.
func updateChat(update tgbotapi.Update) (int64, format.Scope, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message != nil && q.Message.Chat != nil {
			return q.Message.Chat.ID, chatScope(q.Message.Chat), true
		}
		if q.From != nil {
			return q.From.ID, format.ScopePrivate, true
		}
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, chatScope(update.Message.Chat), true
	}
	return 0, format.ScopePrivate, false
}

func chatScope(chat *tgbotapi.Chat) format.Scope {
	if chat.IsGroup() || chat.IsSuperGroup() || chat.IsChannel() {
		return format.ScopeGroup
	}
	return format.ScopePrivate
}

// dispatchUpdate routes updates to the appropriate chat worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	chatID, scope, ok := updateChat(update)
	if !ok {
		return
	}

	session := b.state.getChatSession(chatID, scope)

	send := func(msg SessionMessage) {
		b.metrics.RecordUpdate(msg.Type)
		if sync {
			session.SendSync(msg)
		} else {
			session.Send(msg)
		}
	}

	if update.CallbackQuery != nil {
		send(SessionMessage{
			Type:          "callback",
			Ctx:           ctx,
			CallbackQuery: update.CallbackQuery,
		})
		return
	}

	message := update.Message
	log.Info().Int64("chatId", chatID).Str("text", message.Text).Str("caption", message.Caption).Msg("got message")

	switch {
	case message.Document != nil:
		send(SessionMessage{Type: "document", Ctx: ctx, Message: message})
	case message.IsCommand():
		send(SessionMessage{Type: "command", Ctx: ctx, Message: message})
	case strings.TrimSpace(message.Text) != "":
		send(SessionMessage{Type: "text", Ctx: ctx, Message: message})
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the chat worker goroutine for sequential processing.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *ChatSession, msg SessionMessage) {
	switch msg.Type {
	case "callback":
		b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case "command":
		b.handleCommand(ctx, session, msg.Message)
	case "document":
		b.handleDocument(ctx, session, msg.Message)
	case "text":
		b.handleTextMessage(ctx, session, msg.Message)
	}
}

// handleTextMessage treats free text as an info lookup. Text without an item
// number becomes a search offer in private chats.
func (b *Bot) handleTextMessage(ctx context.Context, session *ChatSession, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)

	q, ok, err := b.resolver.Resolve(text, catalog.OpInfo)
	if err != nil {
		b.replyLookupError(session, catalog.OpInfo, err, text)
		return
	}
	if !ok {
		if session.scope == format.ScopeGroup {
			session.send(b.formatter.NothingFound(text))
			return
		}
		session.send(b.formatter.SearchDialog(text))
		return
	}
	b.answerQuery(ctx, session, q)
}

var commandOps = map[string]catalog.Operation{
	"/price": catalog.OpPrice,
	"/sold":  catalog.OpSold,
	"/stock": catalog.OpStock,
}

func (b *Bot) handleCommand(ctx context.Context, session *ChatSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	argText := strings.Join(args, " ")

	switch command {
	case "/start":
		if argText == "" {
			session.reply(MsgStart)
			return
		}
		b.lookupCommand(ctx, session, argText, catalog.OpInfo)
	case "/help":
		session.reply(MsgHelp)
	case "/info":
		if argText == "" {
			session.reply(MsgInfoUsage)
			return
		}
		q, ok, err := b.resolver.Resolve(message.Text, catalog.OpInfo)
		if err != nil || !ok {
			// Names are looked up as sets.
			b.searchSets(ctx, session, argText)
			return
		}
		b.answerQuery(ctx, session, q)
	case "/price", "/sold", "/stock":
		if argText == "" {
			session.reply(MsgPriceUsage, command)
			return
		}
		b.lookupCommand(ctx, session, message.Text, commandOps[command])
	case "/search", "/search_set":
		if argText == "" {
			session.reply(MsgSearchUsage)
			return
		}
		b.searchSets(ctx, session, argText)
	case "/search_fig":
		if argText == "" {
			session.reply(MsgSearchFigUsage)
			return
		}
		b.searchMinifigs(ctx, session, argText)
	case "/upload":
		b.handleUploadCommand(ctx, session, message)
	case "/status":
		b.handleStatus(ctx, session, message)
	default:
		if session.scope == format.ScopePrivate {
			session.reply(MsgUnknownCommand)
		}
	}
}

// handleCallbackQuery answers an inline button press. Every query is answered
// exactly once so the client stops showing a progress indicator.
func (b *Bot) handleCallbackQuery(ctx context.Context, session *ChatSession, query *tgbotapi.CallbackQuery) {
	p, err := catalog.ParsePayload(query.Data)
	if err != nil {
		log.Warn().Err(err).Str("data", query.Data).Msg("unknown callback payload")
		b.answerCallback(tgbotapi.NewCallback(query.ID, MsgNotImplemented))
		return
	}

	if p.Action == catalog.ActionMore {
		b.answerCallback(tgbotapi.CallbackConfig{
			CallbackQueryID: query.ID,
			URL:             deepLink(b.botName, p.Arg),
		})
		return
	}

	b.answerCallback(tgbotapi.NewCallback(query.ID, ""))

	switch p.Action {
	case catalog.ActionSetSearch:
		b.searchSets(ctx, session, p.Arg)
		return
	case catalog.ActionMinifigSearch:
		b.searchMinifigs(ctx, session, p.Arg)
		return
	}

	q, ok, err := b.resolver.ResolvePayload(p)
	if err != nil {
		op, _ := p.Operation()
		b.replyLookupError(session, op, err, p.Arg)
		return
	}
	if !ok {
		session.send(b.formatter.NothingFound(p.Arg))
		return
	}
	b.answerQuery(ctx, session, q)
}

func (b *Bot) answerCallback(config tgbotapi.CallbackConfig) {
	if _, err := b.tg.Request(config); err != nil {
		log.Error().Err(err).Str("queryId", config.CallbackQueryID).Msg("failed to answer callback query")
	}
}

// deepLink opens a private chat with the bot and starts it with arg.
func deepLink(botName, arg string) string {
	return "https://t.me/" + botName + "?start=" + arg
}
