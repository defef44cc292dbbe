package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	"github.com/stretchr/testify/assert"
)

type blockingSyncService struct {
	calls   int32
	release chan struct{}
	started chan struct{}
}

func (s *blockingSyncService) SyncAll(ctx context.Context) {
	atomic.AddInt32(&s.calls, 1)
	s.started <- struct{}{}
	<-s.release
}

func (s *blockingSyncService) SyncConnection(ctx context.Context, conn *models.Connection, opts *transfer.SyncOptions) (*transfer.SyncResult, error) {
	return &transfer.SyncResult{}, nil
}

func (s *blockingSyncService) SyncByID(ctx context.Context, userID, connectionID string, opts *transfer.SyncOptions) (*transfer.SyncResult, error) {
	return &transfer.SyncResult{}, nil
}

func TestRunSkipsOverlappingTicks(t *testing.T) {
	ss := &blockingSyncService{
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	j := NewSyncJob(ss)

	firstDone := make(chan struct{})
	go func() {
		j.Run()
		close(firstDone)
	}()
	<-ss.started

	// A tick firing mid-cycle must return without starting a second cycle.
	done := make(chan struct{})
	go func() {
		j.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overlapping Run did not return promptly")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&ss.calls))

	close(ss.release)
	<-firstDone

	// Once the cycle finishes the next tick runs again.
	go j.Run()
	select {
	case <-ss.started:
	case <-time.After(time.Second):
		t.Fatal("follow-up Run never started a cycle")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&ss.calls))
}
