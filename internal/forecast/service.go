package forecast

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/enums"
	"github.com/angelmondragon/mise-backend/pkg/logger"
)

type snapshotReader interface {
	FetchSnapshot(ctx context.Context, tenantID uuid.UUID) (*inventory.Snapshot, error)
}

type relayOpener interface {
	Open(ctx context.Context, brief string) (*Stream, error)
}

// Insight is a started forecast: the baseline plus the open completion stream.
type Insight struct {
	Baseline []Suggestion
	Stream   *Stream
}

// Service runs the forecast pipeline for an already authorized tenant.
type Service interface {
	Baseline(ctx context.Context, tenantID uuid.UUID) ([]Suggestion, error)
	StartInsight(ctx context.Context, tenantID uuid.UUID, requestType enums.InsightRequestType) (*Insight, error)
}

type service struct {
	snapshots snapshotReader
	relay     relayOpener
	logg      *logger.Logger
}

// NewService builds the forecast service.
func NewService(snapshots snapshotReader, relay relayOpener, logg *logger.Logger) (Service, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot reader required")
	}
	if relay == nil {
		return nil, fmt.Errorf("relay required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{snapshots: snapshots, relay: relay, logg: logg}, nil
}

func (s *service) Baseline(ctx context.Context, tenantID uuid.UUID) ([]Suggestion, error) {
	snap, err := s.snapshots.FetchSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return Forecast(snap.Items), nil
}

// StartInsight reads the snapshot, computes the baseline, and opens the
// completion stream. Nothing has been written to the caller when it returns
// an error.
func (s *service) StartInsight(ctx context.Context, tenantID uuid.UUID, requestType enums.InsightRequestType) (*Insight, error) {
	snap, err := s.snapshots.FetchSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	baseline := Forecast(snap.Items)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"request_type": requestType.String(),
		"items":        len(snap.Items),
		"suggestions":  len(baseline),
	})
	if !requestType.IsValid() {
		s.logg.Warn(ctx, "insight.request_type.fallback")
	}

	stream, err := s.relay.Open(ctx, BuildBrief(snap, requestType))
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "insight.relay.opened")
	return &Insight{Baseline: baseline, Stream: stream}, nil
}
