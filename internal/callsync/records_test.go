package callsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
)

type stubRecordsFetcher struct {
	records []smartflow.CallRecord
	err     error
	calls   int
}

func (s *stubRecordsFetcher) FetchCallRecords(ctx context.Context) ([]smartflow.CallRecord, error) {
	s.calls++
	return s.records, s.err
}

func newRecordsSyncFixture(fetcher *stubRecordsFetcher) (*RecordsSync, *calllog.InMemoryRepository) {
	callLogs := calllog.NewInMemoryRepository()
	processor := NewProcessor(ProcessorConfig{
		CallLogs: callLogs,
		Leads:    leads.NewInMemoryRepository(),
	})
	return NewRecordsSync(fetcher, processor, nil, nil), callLogs
}

func pollRecord(callID string) smartflow.CallRecord {
	return smartflow.CallRecord{
		CallID:       callID,
		AgentName:    "Asha",
		AgentNumber:  "+918800112233",
		ClientNumber: "9876500000",
		Direction:    "inbound",
		Date:         "2025-03-14",
		Time:         "10:15:42",
		Status:       "missed",
	}
}

func TestRecordsSyncProcessesNewRecords(t *testing.T) {
	fetcher := &stubRecordsFetcher{records: []smartflow.CallRecord{
		pollRecord("rec-1"),
		pollRecord("rec-2"),
	}}
	sync, callLogs := newRecordsSyncFixture(fetcher)

	summary, err := sync.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Fetched: 2, Processed: 2}, summary)
	assert.Equal(t, 2, callLogs.Count())
}

func TestRecordsSyncSkipsDuplicates(t *testing.T) {
	fetcher := &stubRecordsFetcher{records: []smartflow.CallRecord{pollRecord("rec-1")}}
	sync, callLogs := newRecordsSyncFixture(fetcher)

	first, err := sync.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Processed)

	second, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Fetched: 1, Skipped: 1}, second)
	assert.Equal(t, 1, callLogs.Count())
}

func TestRecordsSyncCountsInvalidRecordsAsSkipped(t *testing.T) {
	fetcher := &stubRecordsFetcher{records: []smartflow.CallRecord{
		pollRecord("rec-1"),
		{Direction: "inbound"}, // no call id
	}}
	sync, callLogs := newRecordsSyncFixture(fetcher)

	summary, err := sync.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Fetched: 2, Processed: 1, Skipped: 1}, summary)
	assert.Equal(t, 1, callLogs.Count())
}

func TestRecordsSyncFetchError(t *testing.T) {
	fetcher := &stubRecordsFetcher{err: errors.New("provider unavailable")}
	sync, callLogs := newRecordsSyncFixture(fetcher)

	summary, err := sync.Run(context.Background())

	require.Error(t, err)
	assert.Zero(t, summary.Fetched)
	assert.Zero(t, callLogs.Count())
}
