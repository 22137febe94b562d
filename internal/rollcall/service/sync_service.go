package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// SyncService answers stateless delta-sync polls. The client holds the cursor.
type SyncService struct {
	events   store.EventStore
	people   store.PersonStore
	settings Settings
}

func NewSyncService(events store.EventStore, people store.PersonStore, settings Settings) *SyncService {
	return &SyncService{events: events, people: people, settings: settings.withDefaults()}
}

// Poll returns today's events with sequence > lastSeen, newest first. The
// returned LastID is the highest sequence returned, or lastSeen when nothing
// is new.
func (s *SyncService) Poll(ctx context.Context, lastSeen int64) (res types.PollResult, err error) {
	if lastSeen < 0 {
		return types.PollResult{}, ErrInvalidCursor
	}

	ctx, span := tracer.Start(ctx, "SyncService.Poll", trace.WithAttributes(
		attribute.Int64("rollcall.last_id", lastSeen),
	))
	defer func() { endSpan(span, err) }()

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	from, to := dayBounds(s.settings.now(), s.settings.Location)
	evs, err := s.events.ListAfter(sctx, lastSeen, from, to)
	if err != nil {
		return types.PollResult{}, unavailable("ListAfter", err)
	}

	res = types.PollResult{LastID: lastSeen, NewRecords: []types.EnrichedEvent{}}
	if len(evs) == 0 {
		return res, nil
	}

	byTag, err := lookupPeople(sctx, s.people, evs)
	if err != nil {
		return types.PollResult{}, err
	}

	res.HasUpdates = true
	res.NewRecords = enrich(evs, byTag, s.settings.Location)
	for _, ev := range evs {
		if ev.Sequence > res.LastID {
			res.LastID = ev.Sequence
		}
	}
	return res, nil
}
