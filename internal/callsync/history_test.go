package callsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/leads"
)

func TestHistorySyncNoMatchingLeads(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	syncer := NewHistorySyncer(repo, nil)

	err := syncer.Sync(context.Background(), &calllog.Record{
		CallID:         "call-1",
		CustomerNumber: "919876500000",
		Status:         calllog.StatusMissed,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, repo.Count())
}

func TestHistorySyncSkipsEmptyRecord(t *testing.T) {
	syncer := NewHistorySyncer(leads.NewInMemoryRepository(), nil)

	require.NoError(t, syncer.Sync(context.Background(), nil))
	require.NoError(t, syncer.Sync(context.Background(), &calllog.Record{CallID: "call-1"}))
}

func TestHistorySyncUpdatesEveryMatchingLead(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	first, err := repo.Create(context.Background(), &leads.Lead{FirstName: "Asha", MobileNo: "919876500000"})
	require.NoError(t, err)
	second, err := repo.Create(context.Background(), &leads.Lead{FirstName: "Priya", MobileNo: "919876500000"})
	require.NoError(t, err)
	other, err := repo.Create(context.Background(), &leads.Lead{FirstName: "Ravi", MobileNo: "919876511111"})
	require.NoError(t, err)

	syncer := NewHistorySyncer(repo, nil)
	err = syncer.Sync(context.Background(), &calllog.Record{
		CallID:         "call-1",
		AgentName:      "Meera",
		CallType:       calllog.CallTypeInbound,
		CallDate:       "2025-03-14",
		CallTime:       "10:15:42",
		Duration:       61,
		CustomerNumber: "919876500000",
		Status:         calllog.StatusAnswered,
	})
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		lead, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Answered", lead.CallStatus)

		history, err := repo.History(context.Background(), id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "call-1", history[0].CallID)
		assert.Equal(t, "Meera", history[0].AgentName)
		assert.Equal(t, "Inbound", history[0].CallType)
		assert.Equal(t, 61, history[0].Duration)
	}

	untouched, err := repo.GetByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, untouched.CallStatus)
	history, err := repo.History(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistorySyncRerunUpdatesInPlace(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	lead, err := repo.Create(context.Background(), &leads.Lead{FirstName: "Asha", MobileNo: "919876500000"})
	require.NoError(t, err)

	syncer := NewHistorySyncer(repo, nil)
	rec := &calllog.Record{
		CallID:         "call-1",
		CustomerNumber: "919876500000",
		Status:         calllog.StatusMissed,
	}
	require.NoError(t, syncer.Sync(context.Background(), rec))

	rec.Status = calllog.StatusAnswered
	rec.Duration = 28
	require.NoError(t, syncer.Sync(context.Background(), rec))

	history, err := repo.History(context.Background(), lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Answered", history[0].Status)
	assert.Equal(t, 28, history[0].Duration)

	got, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Answered", got.CallStatus)
}
