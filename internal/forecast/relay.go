package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/mise-backend/pkg/completion"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/metrics"
)

// Completion parameters. Not user configurable.
const (
	MaxOutputTokens = 1500
	Temperature     = 0.7
)

// State is a relay's position in Idle → Requesting → Streaming → Completed|Errored.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Relay forwards streamed completion text to a caller. It never retries.
type Relay struct {
	streamer completion.Streamer
	metrics  *metrics.InsightMetrics
	logg     *logger.Logger
}

func NewRelay(streamer completion.Streamer, m *metrics.InsightMetrics, logg *logger.Logger) (*Relay, error) {
	if streamer == nil {
		return nil, fmt.Errorf("completion streamer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Relay{streamer: streamer, metrics: m, logg: logg}, nil
}

// Open submits brief plus the fixed user instruction. A setup failure is
// returned as an upstream error before any bytes reach the caller.
func (r *Relay) Open(ctx context.Context, brief string) (*Stream, error) {
	s := &Stream{relay: r, ctx: ctx, started: time.Now()}
	s.state.Store(int32(StateRequesting))

	upstream, err := r.streamer.StreamComplete(ctx, brief, UserInstruction(), completion.Params{
		MaxTokens:   MaxOutputTokens,
		Temperature: Temperature,
	})
	if err != nil {
		s.state.Store(int32(StateErrored))
		r.metrics.ObserveRelay(metrics.OutcomeSetup, time.Since(s.started))
		r.logg.Error(r.logg.WithField(ctx, "transient", completion.IsTransient(err)), "insight.relay.setup_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "start completion stream")
	}
	s.upstream = upstream
	return s, nil
}

// Stream is one open relay. Use it from a single goroutine.
type Stream struct {
	relay    *Relay
	ctx      context.Context
	upstream completion.ChunkStream
	started  time.Time
	state    atomic.Int32
	chunks   int
	piped    bool
}

// State reports the current relay state.
func (s *Stream) State() State {
	return State(s.state.Load())
}

// Pipe forwards every non-empty chunk to sink, in arrival order, until the
// upstream ends. Bytes already handed to sink are never retracted; a non-nil
// error means the caller received a truncated response.
func (s *Stream) Pipe(sink func(chunk string) error) error {
	if s.piped {
		return errors.New("stream already piped")
	}
	s.piped = true
	defer s.upstream.Close()

	for {
		chunk, err := s.upstream.Recv()
		if errors.Is(err, io.EOF) {
			s.finish(StateCompleted, nil)
			return nil
		}
		if err != nil {
			err = pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "completion stream interrupted")
			s.finish(StateErrored, err)
			return err
		}
		if chunk == "" {
			continue
		}
		s.state.CompareAndSwap(int32(StateRequesting), int32(StateStreaming))
		if err := sink(chunk); err != nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write chunk to caller")
			s.finish(StateErrored, err)
			return err
		}
		s.chunks++
		s.relay.metrics.IncChunks()
	}
}

// Close releases an upstream that will not be piped. It is a no-op after Pipe.
func (s *Stream) Close() error {
	if s.piped {
		return nil
	}
	s.piped = true
	return s.upstream.Close()
}

func (s *Stream) finish(state State, err error) {
	s.state.Store(int32(state))
	elapsed := time.Since(s.started)
	ctx := s.relay.logg.WithFields(s.ctx, map[string]any{
		"chunks":      s.chunks,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		s.relay.metrics.ObserveRelay(metrics.OutcomeErrored, elapsed)
		s.relay.logg.Error(ctx, "insight.relay.errored", err)
		return
	}
	s.relay.metrics.ObserveRelay(metrics.OutcomeCompleted, elapsed)
	s.relay.logg.Info(ctx, "insight.relay.completed")
}
