package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// searchSets answers a set name search. Search failures are logged and shown
// as an empty result.
func (b *Bot) searchSets(ctx context.Context, session *ChatSession, query string) {
	if b.sets == nil {
		session.reply(MsgSearchUnavailable)
		return
	}
	session.sendTypingAction()

	hits, err := b.sets.SearchSets(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("set search failed")
		hits = nil
	}
	b.recordSearch("set_search", hits)
	session.send(b.formatter.SearchResults(query, hits, session.scope))
}

// searchMinifigs answers a minifigure name search from the index.
func (b *Bot) searchMinifigs(ctx context.Context, session *ChatSession, query string) {
	if b.minifigs == nil {
		session.reply(MsgSearchUnavailable)
		return
	}
	session.sendTypingAction()

	figs, err := b.minifigs.Search(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("minifigure search failed")
		figs = nil
	}
	hits := make([]catalog.SearchHit, len(figs))
	for i, f := range figs {
		hits[i] = f.Hit()
	}
	b.recordSearch("minifig_search", hits)
	session.send(b.formatter.SearchResults(query, hits, session.scope))
}

func (b *Bot) recordSearch(op string, hits []catalog.SearchHit) {
	if len(hits) > 0 {
		b.metrics.RecordLookup(op, resultFound)
	} else {
		b.metrics.RecordLookup(op, resultEmpty)
	}
}
