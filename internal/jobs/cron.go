// Package jobs owns the scheduled background work: the periodic pull of
// provider call records that catches webhooks the service missed.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/onehash/smartflow-bridge/internal/callsync"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// CronManager schedules the call-records poll.
type CronManager struct {
	cron     *cron.Cron
	records  *callsync.RecordsSync
	schedule string
	timeout  time.Duration
	logger   *logging.Logger
}

// NewCronManager creates a manager polling on the given cron schedule.
func NewCronManager(records *callsync.RecordsSync, schedule string, timeout time.Duration, logger *logging.Logger) *CronManager {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CronManager{
		cron:     cron.New(),
		records:  records,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start registers the poll job and starts the scheduler.
func (cm *CronManager) Start() error {
	_, err := cm.cron.AddFunc(cm.schedule, cm.runPoll)
	if err != nil {
		return err
	}
	cm.cron.Start()
	cm.logger.Info("call records poll scheduled", "schedule", cm.schedule)
	return nil
}

func (cm *CronManager) runPoll() {
	ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
	defer cancel()

	summary, err := cm.records.Run(ctx)
	if err != nil {
		cm.logger.Error("call records poll failed", "error", err)
		return
	}
	cm.logger.Info("call records poll completed",
		"fetched", summary.Fetched, "processed", summary.Processed, "skipped", summary.Skipped)
}

// Stop halts the scheduler and waits for a running poll to finish.
func (cm *CronManager) Stop() {
	ctx := cm.cron.Stop()
	<-ctx.Done()
	cm.logger.Info("call records poll stopped")
}
