package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// ScanService ingests badge scans: validate, derive the next presence state,
// append one event.
type ScanService struct {
	events   store.EventStore
	people   store.PersonStore
	locker   lock.Locker
	deriver  *Deriver
	settings Settings
}

func NewScanService(events store.EventStore, people store.PersonStore, locker lock.Locker, settings Settings) *ScanService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &ScanService{
		events:   events,
		people:   people,
		locker:   locker,
		deriver:  NewDeriver(events),
		settings: settings.withDefaults(),
	}
}

func (s *ScanService) Ingest(ctx context.Context, req types.ScanRequest) (res types.ScanResult, err error) {
	badgeID := strings.TrimSpace(req.Tag)
	if badgeID == "" {
		badgeID = strings.TrimSpace(req.TagID)
	}
	if badgeID == "" {
		return types.ScanResult{}, ErrMissingBadgeID
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = types.DefaultDeviceID
	}

	ctx, span := tracer.Start(ctx, "ScanService.Ingest", trace.WithAttributes(
		attribute.String("rollcall.badge_id", badgeID),
		attribute.String("rollcall.device_id", deviceID),
	))
	defer func() { endSpan(span, err) }()

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	ev, err := s.appendLocked(sctx, store.NewScan{
		BadgeID:        badgeID,
		DeviceID:       deviceID,
		SignalStrength: req.Signal,
		BatteryLevel:   req.Battery,
	})
	if err != nil {
		s.settings.Logger.Warn("scan not recorded",
			zap.String("badge_id", badgeID), zap.String("device_id", deviceID), zap.Error(err))
		return types.ScanResult{}, err
	}

	res = types.ScanResult{
		AttendanceType: ev.PresenceState,
		TagID:          ev.BadgeID,
		DeviceID:       ev.DeviceID,
		Sequence:       ev.Sequence,
		ScanTime:       ev.OccurredAt.In(s.settings.Location).Format(time.RFC3339),
	}

	if p, perr := s.people.GetPerson(sctx, badgeID); perr != nil {
		s.settings.Logger.Warn("identity lookup failed", zap.String("badge_id", badgeID), zap.Error(perr))
	} else if p != nil {
		res.UserName = p.Name
	}

	span.SetAttributes(attribute.String("rollcall.presence_state", string(ev.PresenceState)))
	s.settings.Logger.Info("scan recorded",
		zap.Int64("sequence", ev.Sequence),
		zap.String("badge_id", badgeID),
		zap.String("device_id", deviceID),
		zap.String("presence_state", string(ev.PresenceState)),
	)
	return res, nil
}

// appendLocked holds the badge lock only across derive and append. Stores
// that serialize the badge in their own transaction skip the Locker.
func (s *ScanService) appendLocked(ctx context.Context, scan store.NewScan) (types.ScanEvent, error) {
	if da, ok := s.events.(store.DerivingAppender); ok {
		ev, err := da.AppendNext(ctx, scan, NextState)
		if err != nil {
			return types.ScanEvent{}, unavailable("AppendNext", err)
		}
		return ev, nil
	}

	unlock, err := s.locker.Lock(ctx, scan.BadgeID)
	if err != nil {
		return types.ScanEvent{}, unavailable("Lock", err)
	}
	defer unlock()

	state, err := s.deriver.Next(ctx, scan.BadgeID)
	if err != nil {
		return types.ScanEvent{}, unavailable("LatestForBadge", err)
	}
	scan.PresenceState = state

	ev, err := s.events.Append(ctx, scan)
	if err != nil {
		return types.ScanEvent{}, unavailable("Append", err)
	}
	return ev, nil
}

// unavailable classifies any store-side failure as store.ErrUnavailable.
func unavailable(op string, err error) error {
	if err == nil || errors.Is(err, store.ErrUnavailable) {
		return err
	}
	return store.Unavailable(op, err)
}
