package job

import (
	"context"
	"log/slog"
	"sync"

	"github.com/maheshrc27/socialbridge/internal/service"
)

// SyncJob is the cron entry point for the routine sync cycle. A tick that
// fires while the previous cycle is still running is skipped, so two cycles
// never race over the same connection watermark.
type SyncJob struct {
	ss service.SyncService

	mu sync.Mutex
}

func NewSyncJob(ss service.SyncService) *SyncJob {
	return &SyncJob{ss: ss}
}

func (j *SyncJob) Run() {
	if !j.mu.TryLock() {
		slog.Info("previous sync cycle still running, skipping tick")
		return
	}
	defer j.mu.Unlock()

	j.ss.SyncAll(context.Background())
}
