package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Gateway performs one authenticated catalog call and returns the payload of
// the response. Missing resources are reported by wrapping ErrNotFound.
// Errors implementing Malformed() bool that return true are surfaced to
// the user, every other error degrades to an empty result.
type Gateway interface {
	Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error)
}

// Resolver builds queries from text and runs them against a Gateway.
type Resolver struct {
	gateway  Gateway
	matcher  *Matcher
	currency string
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithMatcher replaces the default matcher.
func WithMatcher(m *Matcher) ResolverOption {
	return func(r *Resolver) {
		r.matcher = m
	}
}

// WithCurrency sets the currency of price queries.
func WithCurrency(currency string) ResolverOption {
	return func(r *Resolver) {
		if currency != "" {
			r.currency = currency
		}
	}
}

// NewResolver creates a resolver using gateway for all lookups.
func NewResolver(gateway Gateway, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		gateway:  gateway,
		matcher:  defaultMatcher,
		currency: DefaultCurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve turns text into a query for op. ok=false means the text holds no
// item and is not a command, so callers can offer a search instead.
func (r *Resolver) Resolve(text string, op Operation) (Query, bool, error) {
	ref, ok, err := r.matcher.Match(text)
	if err != nil || !ok {
		return Query{}, false, err
	}
	return r.build(ref, op, r.matcher.Hints(text)), true, nil
}

// ResolvePayload turns a parsed callback payload back into a query. Only the
// argument is matched, so the action keyword never leaks into the item match.
func (r *Resolver) ResolvePayload(p Payload) (Query, bool, error) {
	op, ok := p.Operation()
	if !ok {
		return Query{}, false, nil
	}
	ref, ok, err := r.matcher.Match(p.Arg)
	if err != nil || !ok {
		return Query{}, false, err
	}
	hints := Hints{Condition: p.Condition, HasCondition: p.HasCondition}
	return r.build(ref, op, hints), true, nil
}

func (r *Resolver) build(ref ItemRef, op Operation, hints Hints) Query {
	q := Query{
		Op: op,
		PriceQuery: PriceQuery{
			Item:      ref,
			Condition: ConditionNew,
			Mode:      ModeStock,
			Currency:  r.currency,
		},
	}
	if hints.HasCondition {
		q.Condition = hints.Condition
	}
	switch op {
	case OpSold:
		q.Mode = ModeSold
	case OpStock:
		q.Mode = ModeStock
	case OpPrice:
		if hints.HasMode {
			q.Mode = hints.Mode
		}
	}
	return q
}

// fetch runs one request. A nil payload with a nil error means there is no
// data, either because the item is unknown or the gateway failed.
func (r *Resolver) fetch(ctx context.Context, req Request) (json.RawMessage, error) {
	data, err := r.gateway.Get(ctx, req.Path, req.Params)
	if err != nil {
		if m, ok := asMalformed(err); ok {
			return nil, m
		}
		if errors.Is(err, ErrNotFound) {
			log.Debug().Str("path", req.Path).Msg("catalog item not found")
		} else {
			log.Error().Err(err).Str("path", req.Path).Interface("params", req.Params).Msg("catalog request failed")
		}
		return nil, nil
	}
	if isEmptyData(data) {
		return nil, nil
	}
	return data, nil
}

// Info returns the catalog entry of ref, or nil when there is none.
func (r *Resolver) Info(ctx context.Context, ref ItemRef) (*InfoResult, error) {
	q := Query{Op: OpInfo, PriceQuery: PriceQuery{Item: ref}}
	data, err := r.fetch(ctx, q.Requests()[0])
	if err != nil || data == nil {
		return nil, err
	}
	res, err := decodeInfo(ref, data)
	if err != nil {
		log.Error().Err(err).Str("item", ref.String()).Msg("invalid item payload")
		return nil, nil
	}
	return res, nil
}

func (r *Resolver) priceGuide(ctx context.Context, q PriceQuery, op Operation) (*priceGuideWire, error) {
	data, err := r.fetch(ctx, Query{Op: op, PriceQuery: q}.Requests()[0])
	if err != nil || data == nil {
		return nil, err
	}
	w, err := decodePriceGuide(data)
	if err != nil {
		log.Error().Err(err).Str("item", q.Item.String()).Msg("invalid price guide payload")
		return nil, nil
	}
	return w, nil
}

// PriceSummary returns the aggregate prices of q, or nil when there are none.
func (r *Resolver) PriceSummary(ctx context.Context, q PriceQuery) (*PriceSummaryResult, error) {
	w, err := r.priceGuide(ctx, q, OpPrice)
	if err != nil || w == nil {
		return nil, err
	}
	return w.summary(q), nil
}

// Listings returns the individual price guide rows of q. A result without
// rows is valid and means nothing is listed or sold.
func (r *Resolver) Listings(ctx context.Context, q PriceQuery) (*ListingResult, error) {
	op := OpStock
	if q.Mode == ModeSold {
		op = OpSold
	}
	w, err := r.priceGuide(ctx, q, op)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return &ListingResult{Item: q.Item, Condition: q.Condition, Mode: q.Mode, Currency: q.Currency}, nil
	}
	return w.listings(q), nil
}

func (r *Resolver) relations(ctx context.Context, ref ItemRef, op Operation) (*RelationResult, error) {
	data, err := r.fetch(ctx, Query{Op: op, PriceQuery: PriceQuery{Item: ref}}.Requests()[0])
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &RelationResult{Item: ref}, nil
	}
	res, err := decodeRelations(ref, data)
	if err != nil {
		log.Error().Err(err).Str("item", ref.String()).Msg("invalid relation payload")
		return &RelationResult{Item: ref}, nil
	}
	return res, nil
}

// Subsets lists the items ref consists of.
func (r *Resolver) Subsets(ctx context.Context, ref ItemRef) (*RelationResult, error) {
	return r.relations(ctx, ref, OpSubsets)
}

// Supersets lists the items ref appears in.
func (r *Resolver) Supersets(ctx context.Context, ref ItemRef) (*RelationResult, error) {
	return r.relations(ctx, ref, OpSupersets)
}

// Availability reports whether ref is currently for sale in any condition.
// Both conditions are queried concurrently.
func (r *Resolver) Availability(ctx context.Context, ref ItemRef) (bool, error) {
	reqs := Query{Op: OpAvailability, PriceQuery: PriceQuery{Item: ref}}.Requests()
	counts := make([]int, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			data, err := r.fetch(gctx, req)
			if err != nil || data == nil {
				return err
			}
			w, err := decodePriceGuide(data)
			if err != nil {
				log.Error().Err(err).Str("item", ref.String()).Msg("invalid availability payload")
				return nil
			}
			counts[i] = len(w.PriceDetail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return counts[0]+counts[1] > 0, nil
}
