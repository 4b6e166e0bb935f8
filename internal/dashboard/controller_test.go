package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/models"
	"github.com/suricata-ml/dashboard/internal/testutil"
)

type recorded struct {
	mu       sync.Mutex
	offers   map[bool]int
	outcomes []error
}

func (r *recorded) FileOffered(_ Source, accepted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offers == nil {
		r.offers = make(map[bool]int)
	}
	r.offers[accepted]++
}

func (r *recorded) AnalysisFinished(_ string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, err)
}

func newTestController(a *testutil.FakeAnalyzer) (*Controller, *testutil.MockStorage, *recorded) {
	store := testutil.NewMockStorage()
	rec := &recorded{}
	return NewController("session-0123456789", store, a, rec), store, rec
}

func TestController_SelectStoresOnlyAcceptedFiles(t *testing.T) {
	c, store, rec := newTestController(testutil.NewFakeAnalyzer(analyzer.SampleResult()))

	require.NoError(t, c.Select("eve.log", strings.NewReader("x"), SourcePicker))
	assert.Equal(t, 0, store.GetFileCount())
	assert.Equal(t, models.ViewStateShowingError, c.Snapshot().State)

	require.NoError(t, c.Select("eve.json", strings.NewReader(strings.Repeat("a", 1536)), SourceDrop))
	assert.Equal(t, 1, store.GetFileCount())

	snap := c.Snapshot()
	assert.Equal(t, models.ViewStateFileSelected, snap.State)
	assert.Equal(t, "eve.json", snap.File.Name)
	assert.Equal(t, 1.5, snap.FileSizeKB)
	assert.True(t, snap.CanSubmit)
	assert.Empty(t, snap.Error)

	assert.Equal(t, 1, rec.offers[false])
	assert.Equal(t, 1, rec.offers[true])
}

func TestController_SelectReleasesReplacedAndRejectedFiles(t *testing.T) {
	c, store, _ := newTestController(testutil.NewFakeAnalyzer(analyzer.SampleResult()))

	require.NoError(t, c.Select("a.json", strings.NewReader("a"), SourcePicker))
	require.NoError(t, c.Select("b.json", strings.NewReader("b"), SourcePicker))
	assert.Equal(t, 1, store.GetFileCount())

	require.NoError(t, c.Select("c.txt", strings.NewReader("c"), SourcePicker))
	assert.Equal(t, 0, store.GetFileCount())
	assert.Nil(t, c.Snapshot().File)
}

func TestController_SelectStorageFailure(t *testing.T) {
	c, store, _ := newTestController(testutil.NewFakeAnalyzer(nil))
	store.SaveErr = errors.New("disk full")

	err := c.Select("eve.json", strings.NewReader("{}"), SourcePicker)
	assert.Error(t, err)
	assert.Equal(t, models.ViewStateIdle, c.Snapshot().State)
}

func TestController_DisplayedSize(t *testing.T) {
	tests := []struct {
		bytes int
		want  float64
	}{
		{bytes: 0, want: 0},
		{bytes: 1024, want: 1},
		{bytes: 1500, want: 1.46},
		{bytes: 2047, want: 2},
		{bytes: 123456, want: 120.56},
	}

	for _, tt := range tests {
		c, _, _ := newTestController(testutil.NewFakeAnalyzer(nil))
		require.NoError(t, c.Select("eve.json", strings.NewReader(strings.Repeat("x", tt.bytes)), SourcePicker))
		assert.Equal(t, tt.want, c.Snapshot().FileSizeKB, "bytes=%d", tt.bytes)
	}
}

func TestController_SubmitWithoutFile(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(analyzer.SampleResult())
	c, _, _ := newTestController(fake)
	before := c.Snapshot()

	assert.False(t, c.Submit(context.Background()))

	assert.Equal(t, 0, fake.Calls())
	assert.Equal(t, before, c.Snapshot())
}

func TestController_SubmitSuccess(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(analyzer.SampleResult())
	c, store, rec := newTestController(fake)
	require.NoError(t, c.Select("eve.json", strings.NewReader(`{"alert":{}}`), SourcePicker))

	assert.True(t, c.Submit(context.Background()))

	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, "eve.json", fake.LastName())
	assert.Equal(t, `{"alert":{}}`, fake.LastBody())

	snap := c.Snapshot()
	assert.Equal(t, models.ViewStateShowingResult, snap.State)
	assert.Equal(t, 156, snap.Result.TotalProcessed)
	assert.Nil(t, snap.File)
	assert.Equal(t, 0, store.GetFileCount(), "submitted file must be discarded")
	assert.Equal(t, []error{nil}, rec.outcomes)
}

func TestController_SubmitFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "backend message", err: &analyzer.BackendError{Status: 400, Message: "bad format"}, wantMsg: "bad format"},
		{name: "no body", err: &analyzer.BackendError{Status: 500}, wantMsg: FallbackErrorMessage},
		{name: "network", err: errors.New("dial tcp: connection refused"), wantMsg: FallbackErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeAnalyzer(nil)
			fake.Err = tt.err
			c, store, _ := newTestController(fake)
			require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))

			assert.True(t, c.Submit(context.Background()))

			snap := c.Snapshot()
			assert.Equal(t, tt.wantMsg, snap.Error)
			assert.Equal(t, models.ViewStateShowingError, snap.State)
			assert.Nil(t, snap.Result)
			assert.NotNil(t, snap.File, "file stays selected for resubmission")
			assert.True(t, snap.CanSubmit)
			assert.Equal(t, 1, store.GetFileCount())
		})
	}
}

func TestController_ConcurrentSubmitCallsBackendOnce(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(analyzer.SampleResult())
	fake.Gate = make(chan struct{})
	fake.Started = make(chan struct{}, 1)
	c, _, _ := newTestController(fake)
	require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))

	done := make(chan bool)
	go func() { done <- c.Submit(context.Background()) }()
	<-fake.Started

	snap := c.Snapshot()
	assert.Equal(t, models.ViewStateSubmitting, snap.State)
	assert.True(t, snap.Processing)
	assert.False(t, snap.CanSubmit)

	assert.False(t, c.Submit(context.Background()))
	assert.ErrorIs(t, c.Reset(), ErrBusy)
	assert.ErrorIs(t, c.ClearSelection(), ErrBusy)
	assert.ErrorIs(t, c.Select("other.json", strings.NewReader("{}"), SourceDrop), ErrBusy)

	close(fake.Gate)
	assert.True(t, <-done)
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, models.ViewStateShowingResult, c.Snapshot().State)
}

func TestController_Reset(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(analyzer.SampleResult())
	c, store, _ := newTestController(fake)
	require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))
	c.Submit(context.Background())

	require.NoError(t, c.Reset())

	snap := c.Snapshot()
	assert.Equal(t, models.ViewStateIdle, snap.State)
	assert.Nil(t, snap.File)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 0, store.GetFileCount())
}

func TestController_ClearSelection(t *testing.T) {
	c, store, _ := newTestController(testutil.NewFakeAnalyzer(nil))
	require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))

	require.NoError(t, c.ClearSelection())

	assert.Nil(t, c.Snapshot().File)
	assert.False(t, c.Snapshot().CanSubmit)
	assert.Equal(t, 0, store.GetFileCount())
}

func TestController_CloseReleasesFile(t *testing.T) {
	c, store, _ := newTestController(testutil.NewFakeAnalyzer(nil))
	require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))

	c.Close()
	assert.Equal(t, 0, store.GetFileCount())
}

func TestController_SelectAfterCloseStoresNothing(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(analyzer.SampleResult())
	c, store, _ := newTestController(fake)
	c.Close()

	err := c.Select("eve.json", strings.NewReader("{}"), SourcePicker)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, store.GetFileCount())

	assert.False(t, c.Submit(context.Background()))
	assert.Equal(t, 0, fake.Calls())
}

func TestController_CloseDuringSubmitReleasesAfterwards(t *testing.T) {
	fake := testutil.NewFakeAnalyzer(nil)
	fake.Err = errors.New("boom")
	fake.Gate = make(chan struct{})
	fake.Started = make(chan struct{}, 1)
	c, store, _ := newTestController(fake)
	require.NoError(t, c.Select("eve.json", strings.NewReader("{}"), SourcePicker))

	done := make(chan bool)
	go func() { done <- c.Submit(context.Background()) }()
	<-fake.Started

	c.Close()
	assert.Equal(t, 1, store.GetFileCount())

	close(fake.Gate)
	<-done
	assert.Equal(t, 0, store.GetFileCount())
}
