package bot

import (
	"bytes"
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/format"
	"github.com/brickbot/bricklink-telegram-bot/internal/minifigs"
)

// maxUploadBytes is the largest file the Bot API lets bots download.
const maxUploadBytes = 20 << 20

func (b *Bot) isAdmin(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	return b.admins.Contains(user.ID, user.UserName)
}

// handleDocument handles files sent with an /upload caption. Other files are
// ignored in groups and answered with a hint in private chats.
func (b *Bot) handleDocument(ctx context.Context, session *ChatSession, message *tgbotapi.Message) {
	command, _ := parseCommand(message.Caption)
	if command == "/upload" {
		b.handleUpload(ctx, session, message.From, message.Document)
		return
	}
	if session.scope == format.ScopeGroup {
		return
	}
	if b.isAdmin(message.From) {
		session.reply(MsgUploadUsage)
		return
	}
	session.reply(MsgStart)
}

// handleUploadCommand handles /upload sent as a reply to a document.
func (b *Bot) handleUploadCommand(ctx context.Context, session *ChatSession, message *tgbotapi.Message) {
	var doc *tgbotapi.Document
	if message.ReplyToMessage != nil {
		doc = message.ReplyToMessage.Document
	}
	if doc == nil && b.isAdmin(message.From) {
		session.reply(MsgUploadUsage)
		return
	}
	b.handleUpload(ctx, session, message.From, doc)
}

// handleUpload replaces the minifigure index with the contents of doc.
func (b *Bot) handleUpload(ctx context.Context, session *ChatSession, from *tgbotapi.User, doc *tgbotapi.Document) {
	if !b.isAdmin(from) {
		log.Warn().Interface("from", from).Msg("upload refused for non-admin user")
		session.reply(MsgForbidden)
		return
	}
	if doc == nil {
		session.reply(MsgUploadUsage)
		return
	}
	if b.minifigs == nil {
		session.reply(MsgSearchUnavailable)
		return
	}
	if doc.FileSize > maxUploadBytes {
		session.reply(MsgUploadTooLarge)
		return
	}
	session.sendTypingAction()

	data, err := downloadFileID(ctx, b.tg.GetFileDirectURL, doc.FileID)
	if err != nil {
		session.replyWithError(err)
		return
	}

	figs, err := minifigs.ParseCatalogFile(bytes.NewReader(data))
	if errors.Is(err, minifigs.ErrUnknownFormat) {
		session.reply(MsgUploadUnknownFormat, doc.FileName)
		return
	}
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(figs) == 0 {
		session.reply(MsgUploadEmpty, doc.FileName)
		return
	}

	n, err := b.minifigs.Replace(ctx, figs)
	if err != nil {
		session.replyWithError(err)
		return
	}
	log.Info().Int64("userId", from.ID).Str("file", doc.FileName).Int("entries", n).Msg("replaced minifigure index")

	if b.uploads != nil {
		if _, err := b.uploads.RecordUpload(ctx, from.ID, b.minifigs.Key(), n); err != nil {
			log.Error().Err(err).Msg("failed to record index upload")
		}
	}
	session.reply(MsgUploadDone, n)
}

// handleStatus shows the cache backend and the latest index upload.
func (b *Bot) handleStatus(ctx context.Context, session *ChatSession, message *tgbotapi.Message) {
	if !b.isAdmin(message.From) {
		session.reply(MsgForbidden)
		return
	}

	lastUpload := MsgStatusNoUploads
	if b.uploads != nil {
		upload, err := b.uploads.LatestUpload(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to read latest upload")
		} else if upload != nil {
			lastUpload = formatReplyText(MsgStatusUpload,
				upload.Entries, upload.ObjectKey, upload.CreatedAt.UTC().Format(time.RFC3339), upload.UploadedBy)
		}
	}

	cacheBackend := b.cacheBackend
	if cacheBackend == "" {
		cacheBackend = "none"
	}
	session.reply(MsgStatus, cacheBackend, b.state.Len(), lastUpload)
}
