package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/crc-worker/internal/domain"
	"github.com/jonesrussell/crc-worker/internal/logging"
)

func TestPoller_DrainsQueueOnStart(t *testing.T) {
	details := &fakeDetails{rows: []domain.ActSectionRow{
		{Act: "Motor Vehicles Act", Section: "184"},
	}}
	f := newFixture(delhiLocation(), &fakeRetriever{hits: []*domain.CaseHit{matchingHit()}}, details)

	p := NewPoller(f.worker, logging.NewNop(), PollerConfig{PollInterval: time.Hour})

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.Eventually(t, func() bool {
		return f.reports.report != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, domain.CodeCompletedGreen, f.reports.report.Status)
}

func TestPoller_StartTwiceFails(t *testing.T) {
	f := newFixture(delhiLocation(), &fakeRetriever{}, &fakeDetails{})
	f.queue.idx = ""

	p := NewPoller(f.worker, logging.NewNop(), PollerConfig{PollInterval: time.Hour})

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Error(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())
}

func TestPoller_Stop(t *testing.T) {
	f := newFixture(delhiLocation(), &fakeRetriever{}, &fakeDetails{})
	f.queue.idx = ""

	p := NewPoller(f.worker, logging.NewNop(), PollerConfig{PollInterval: time.Hour})

	require.NoError(t, p.Start(context.Background()))
	p.Stop()

	assert.False(t, p.IsRunning())

	// A second Stop is a no-op, not a double close.
	p.Stop()
}

func TestPoller_IsRunningFromAnotherGoroutine(t *testing.T) {
	f := newFixture(delhiLocation(), &fakeRetriever{}, &fakeDetails{})
	f.queue.idx = ""

	p := NewPoller(f.worker, logging.NewNop(), PollerConfig{PollInterval: time.Hour})
	require.NoError(t, p.Start(context.Background()))

	// Race detector coverage: observers poll the flag while Stop flips it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			p.IsRunning()
		}
	}()

	p.Stop()
	<-done
	assert.False(t, p.IsRunning())
}
