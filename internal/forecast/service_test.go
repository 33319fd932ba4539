package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
)

type stubSnapshots struct {
	snap     *inventory.Snapshot
	err      error
	tenantID uuid.UUID
}

func (s *stubSnapshots) FetchSnapshot(_ context.Context, tenantID uuid.UUID) (*inventory.Snapshot, error) {
	s.tenantID = tenantID
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func newTestService(t *testing.T, snaps *stubSnapshots, fs *fakeStreamer) Service {
	t.Helper()
	svc, err := NewService(snaps, newTestRelay(t, fs), nil)
	require.NoError(t, err)
	return svc
}

func TestServiceStartInsight(t *testing.T) {
	tenant := uuid.New()
	snaps := &stubSnapshots{snap: &inventory.Snapshot{
		TenantID: tenant,
		Items: []inventory.Item{
			item("Tomatoes", 5, 20, 10, rate(3.5)),
			item("Flour", 12, 20, 10, nil),
			item("Basil", 0, 10, 5, nil),
		},
	}}
	fs := &fakeStreamer{stream: &fakeChunks{chunks: []string{"Basil: 1 day"}}}
	svc := newTestService(t, snaps, fs)

	insight, err := svc.StartInsight(context.Background(), tenant, enums.InsightReorderForecast)
	require.NoError(t, err)

	assert.Equal(t, tenant, snaps.tenantID)
	require.Len(t, insight.Baseline, 2)
	assert.Equal(t, "Basil", insight.Baseline[0].Name)
	assert.Equal(t, "Tomatoes", insight.Baseline[1].Name)
	assert.Contains(t, fs.system, "| Flour |")
	assert.Contains(t, fs.system, "Task: produce a reorder forecast")

	text, err := collect(t, insight.Stream)
	require.NoError(t, err)
	merged := Reconcile(insight.Baseline, text)
	assert.Equal(t, 1, merged[0].DaysUntilStockout)
	assert.False(t, merged[1].AIEnhanced)
}

func TestServiceUnknownRequestTypeUsesGeneralTask(t *testing.T) {
	fs := &fakeStreamer{stream: &fakeChunks{}}
	svc := newTestService(t, &stubSnapshots{snap: &inventory.Snapshot{}}, fs)

	insight, err := svc.StartInsight(context.Background(), uuid.New(), "menu-engineering")
	require.NoError(t, err)
	assert.Empty(t, insight.Baseline)
	assert.Contains(t, fs.system, "Task: give general advice")
}

func TestServiceSnapshotFailureSkipsRelay(t *testing.T) {
	fs := &fakeStreamer{stream: &fakeChunks{}}
	snapErr := pkgerrors.Wrap(pkgerrors.CodeUpstream, errors.New("db down"), "read inventory snapshot")
	svc := newTestService(t, &stubSnapshots{err: snapErr}, fs)

	_, err := svc.StartInsight(context.Background(), uuid.New(), enums.InsightReorderForecast)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpstream))
	assert.Zero(t, fs.calls)
}

func TestServiceRelaySetupFailure(t *testing.T) {
	fs := &fakeStreamer{openErr: errors.New("503")}
	svc := newTestService(t, &stubSnapshots{snap: &inventory.Snapshot{}}, fs)

	insight, err := svc.StartInsight(context.Background(), uuid.New(), enums.InsightReorderForecast)
	require.Error(t, err)
	assert.Nil(t, insight)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpstream))
}

func TestServiceBaselineDoesNotCallCompletion(t *testing.T) {
	fs := &fakeStreamer{stream: &fakeChunks{}}
	snaps := &stubSnapshots{snap: &inventory.Snapshot{Items: []inventory.Item{item("Basil", 0, 10, 5, nil)}}}
	svc := newTestService(t, snaps, fs)

	out, err := svc.Baseline(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, enums.PriorityHigh, out[0].Priority)
	assert.Zero(t, fs.calls)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, &Relay{}, nil)
	assert.Error(t, err)
	_, err = NewService(&stubSnapshots{}, nil, nil)
	assert.Error(t, err)
}
