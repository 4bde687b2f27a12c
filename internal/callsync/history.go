package callsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// HistorySyncer mirrors call-log records onto the calling history of every
// lead sharing the record's customer number.
type HistorySyncer struct {
	leads  leads.Repository
	logger *logging.Logger
}

// NewHistorySyncer creates a syncer over the given lead repository.
func NewHistorySyncer(repo leads.Repository, logger *logging.Logger) *HistorySyncer {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistorySyncer{leads: repo, logger: logger}
}

// Sync upserts one history entry per matching lead and refreshes each lead's
// call-status field. Re-running with the same record only updates entries in
// place; a record matching no lead is a successful no-op.
func (s *HistorySyncer) Sync(ctx context.Context, rec *calllog.Record) error {
	if rec == nil || rec.CustomerNumber == "" {
		return nil
	}
	matched, err := s.leads.FindByMobile(ctx, rec.CustomerNumber)
	if err != nil {
		return fmt.Errorf("callsync: find leads for %s: %w", rec.CustomerNumber, err)
	}

	entry := leads.CallingHistoryEntry{
		CallID:    rec.CallID,
		AgentName: rec.AgentName,
		CallType:  string(rec.CallType),
		Status:    string(rec.Status),
		CallDate:  rec.CallDate,
		CallTime:  rec.CallTime,
		Duration:  rec.Duration,
	}

	var errs []error
	for _, lead := range matched {
		if err := s.leads.UpdateCallStatus(ctx, lead.ID, string(rec.Status)); err != nil {
			s.logger.Error("update lead call status failed", "lead_id", lead.ID, "call_id", rec.CallID, "error", err)
			errs = append(errs, err)
			continue
		}
		if err := s.leads.SaveHistoryEntry(ctx, lead.ID, entry); err != nil {
			s.logger.Error("save history entry failed", "lead_id", lead.ID, "call_id", rec.CallID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
