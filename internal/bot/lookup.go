package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/format"
)

// Lookup results recorded in metrics.
const (
	resultFound     = "found"
	resultEmpty     = "empty"
	resultMalformed = "malformed"
	resultError     = "error"
)

// lookupCommand resolves text for op and answers it. Text with a command
// marker but no item number gets a "can't find" reply.
func (b *Bot) lookupCommand(ctx context.Context, session *ChatSession, text string, op catalog.Operation) {
	q, ok, err := b.resolver.Resolve(text, op)
	if err != nil {
		b.replyLookupError(session, op, err, text)
		return
	}
	if !ok {
		session.send(b.formatter.NothingFound(text))
		return
	}
	b.answerQuery(ctx, session, q)
}

// answerQuery runs a resolved query and sends the formatted result.
func (b *Bot) answerQuery(ctx context.Context, session *ChatSession, q catalog.Query) {
	session.sendTypingAction()

	var (
		reply format.Reply
		found bool
		err   error
	)
	switch q.Op {
	case catalog.OpInfo:
		reply, found, err = b.info(ctx, session, q.Item)
	case catalog.OpPrice:
		var res *catalog.PriceSummaryResult
		res, err = b.resolver.PriceSummary(ctx, q.PriceQuery)
		found = res != nil
		if found {
			reply = b.formatter.PriceSummary(res)
		} else {
			reply = b.formatter.NoData(q.Item.Number)
		}
	case catalog.OpSold, catalog.OpStock:
		var res *catalog.ListingResult
		res, err = b.resolver.Listings(ctx, q.PriceQuery)
		if res != nil {
			found = len(res.Listings) > 0
			reply = b.formatter.Listings(res)
		}
	case catalog.OpSubsets:
		var res *catalog.RelationResult
		res, err = b.resolver.Subsets(ctx, q.Item)
		if res != nil {
			found = len(res.Related) > 0
			reply = b.formatter.Subsets(res, session.scope)
		}
	case catalog.OpSupersets:
		var res *catalog.RelationResult
		res, err = b.resolver.Supersets(ctx, q.Item)
		if res != nil {
			found = len(res.Related) > 0
			reply = b.formatter.Supersets(res, session.scope)
		}
	default:
		log.Error().Stringer("op", q.Op).Msg("unsupported query operation")
		session.send(b.formatter.NothingFound(q.Item.Number))
		return
	}

	if err != nil {
		b.replyLookupError(session, q.Op, err, q.Item.Number)
		return
	}
	if found {
		b.metrics.RecordLookup(q.Op.String(), resultFound)
	} else {
		b.metrics.RecordLookup(q.Op.String(), resultEmpty)
	}
	session.send(reply)
}

// info fetches the item and its availability.
func (b *Bot) info(ctx context.Context, session *ChatSession, ref catalog.ItemRef) (format.Reply, bool, error) {
	res, err := b.resolver.Info(ctx, ref)
	if err != nil {
		return format.Reply{}, false, err
	}
	if res == nil {
		return format.Plain(formatReplyText(MsgMissingFromCatalog, ref.Number)), false, nil
	}
	available, err := b.resolver.Availability(ctx, ref)
	if err != nil {
		return format.Reply{}, false, err
	}
	return b.formatter.Info(res, available, session.scope), true, nil
}

// replyLookupError turns resolver errors into replies. Nothing here leaves
// the chat without an answer.
func (b *Bot) replyLookupError(session *ChatSession, op catalog.Operation, err error, text string) {
	switch {
	case errors.Is(err, catalog.ErrMalformedRequest):
		b.metrics.RecordLookup(op.String(), resultMalformed)
		log.Warn().Err(err).Stringer("op", op).Msg("catalog rejected request")
		session.send(b.formatter.Malformed(err))
	case errors.Is(err, catalog.ErrUnresolvedCommand):
		b.metrics.RecordLookup(op.String(), resultEmpty)
		session.send(b.formatter.NothingFound(text))
	default:
		b.metrics.RecordLookup(op.String(), resultError)
		session.replyWithError(err)
	}
}
