package callsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onehash/smartflow-bridge/internal/callevent"
	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
)

type processorFixture struct {
	processor *Processor
	callLogs  *calllog.InMemoryRepository
	leads     *leads.InMemoryRepository
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	callLogs := calllog.NewInMemoryRepository()
	leadRepo := leads.NewInMemoryRepository()
	p := NewProcessor(ProcessorConfig{
		CallLogs: callLogs,
		Leads:    leadRepo,
		Now:      func() time.Time { return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC) },
	})
	return &processorFixture{processor: p, callLogs: callLogs, leads: leadRepo}
}

func parseEvent(t *testing.T, body string) *callevent.CallEvent {
	t.Helper()
	evt, err := callevent.Parse([]byte(body))
	require.NoError(t, err)
	return evt
}

func TestProcessInboundMissedCallCreatesLead(t *testing.T) {
	f := newProcessorFixture(t)
	evt := parseEvent(t, `{
		"call_id": "call-100",
		"uuid": "uuid-100",
		"direction": "inbound",
		"caller_id_number": "+919876500000",
		"answered_agent_number": "+918800112233",
		"hangup_cause": "NO_ANSWER",
		"start_stamp": "2025-03-14 10:15:42"
	}`)

	res := f.processor.Process(context.Background(), evt)

	assert.True(t, res.Success)
	assert.Equal(t, "call event processed successfully", res.Message)

	rec, err := f.callLogs.GetByCallID(context.Background(), "call-100")
	require.NoError(t, err)
	assert.Equal(t, calllog.CallTypeInbound, rec.CallType)
	assert.Equal(t, calllog.StatusMissed, rec.Status)
	assert.Equal(t, "919876500000", rec.CustomerNumber)
	assert.Equal(t, "8800112233", rec.AgentNumber)
	assert.Equal(t, "2025-03-14", rec.CallDate)
	assert.Equal(t, "10:15:42", rec.CallTime)

	require.Equal(t, 1, f.leads.Count())
	matched, err := f.leads.FindByMobile(context.Background(), "919876500000")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, leads.DefaultFirstName, matched[0].FirstName)
	assert.Equal(t, leads.SourceMissedCalls, matched[0].Source)
	assert.Equal(t, string(calllog.StatusMissed), matched[0].CallStatus)

	history, err := f.leads.History(context.Background(), matched[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "call-100", history[0].CallID)
	assert.Equal(t, "Inbound", history[0].CallType)
	assert.Equal(t, "Missed", history[0].Status)
}

func TestProcessDuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newProcessorFixture(t)
	body := `{
		"call_id": "call-200",
		"direction": "inbound",
		"caller_id_number": "9876511111",
		"call_connected": "1",
		"answered_agent_name": "Asha"
	}`

	first := f.processor.Process(context.Background(), parseEvent(t, body))
	require.True(t, first.Success)
	assert.Equal(t, "call event processed successfully", first.Message)

	second := f.processor.Process(context.Background(), parseEvent(t, body))
	assert.True(t, second.Success)
	assert.Equal(t, "call event already processed", second.Message)

	assert.Equal(t, 1, f.callLogs.Count())
	assert.Equal(t, 1, f.leads.Count())

	matched, err := f.leads.FindByMobile(context.Background(), "919876511111")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	history, err := f.leads.History(context.Background(), matched[0].ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestProcessDuplicateDoesNotOverwriteStoredRecord(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "call-201",
		"direction": "inbound",
		"caller_id_number": "9876522222",
		"call_connected": 1,
		"answered_agent_name": "Asha"
	}`))
	require.True(t, res.Success)

	// Redelivery with contradictory fields must not touch the stored row.
	res = f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "call-201",
		"direction": "inbound",
		"caller_id_number": "9876522222",
		"hangup_cause": "NO_ANSWER"
	}`))
	assert.True(t, res.Success)

	rec, err := f.callLogs.GetByCallID(context.Background(), "call-201")
	require.NoError(t, err)
	assert.Equal(t, calllog.StatusAnswered, rec.Status)
	assert.Equal(t, "Asha", rec.AgentName)

	matched, err := f.leads.FindByMobile(context.Background(), "919876522222")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, string(calllog.StatusAnswered), matched[0].CallStatus)
}

func TestProcessMissingCallID(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.Process(context.Background(), parseEvent(t, `{"direction": "inbound"}`))

	assert.False(t, res.Success)
	assert.Equal(t, "invalid webhook data: missing call id", res.Message)
	assert.Equal(t, 0, f.callLogs.Count())

	res = f.processor.Process(context.Background(), nil)
	assert.False(t, res.Success)
}

func TestProcessOutboundCallCreatesNoLead(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "call-300",
		"direction": "clicktocall",
		"destination": "+919876533333",
		"billsec": "42"
	}`))

	require.True(t, res.Success)
	rec, err := f.callLogs.GetByCallID(context.Background(), "call-300")
	require.NoError(t, err)
	assert.Equal(t, calllog.CallTypeOutbound, rec.CallType)
	assert.Equal(t, calllog.StatusAnswered, rec.Status)
	assert.Equal(t, 0, f.leads.Count())
}

func TestProcessInboundExistingLeadReused(t *testing.T) {
	f := newProcessorFixture(t)
	existing, err := f.leads.Create(context.Background(), &leads.Lead{
		FirstName: "Priya",
		Source:    "Website",
		MobileNo:  "919876544444",
	})
	require.NoError(t, err)

	res := f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "call-400",
		"direction": "inbound",
		"caller_id_number": "9876544444",
		"hangup_cause": "NO_ANSWER"
	}`))

	require.True(t, res.Success)
	assert.Equal(t, 1, f.leads.Count())

	lead, err := f.leads.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priya", lead.FirstName)
	assert.Equal(t, string(calllog.StatusMissed), lead.CallStatus)

	history, err := f.leads.History(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "call-400", history[0].CallID)
}

func TestProcessStoresMissedAgentsAndHangupRecords(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "call-500",
		"direction": "inbound",
		"caller_id_number": "9876555555",
		"hangup_cause": "NO_ANSWER",
		"missed_agents": [
			{"name": "Asha", "number": "+918800112233"},
			{"agent_name": "Ravi", "number": "+918800445566"}
		],
		"call_flow": [
			{"id": 7, "name": "Asha", "disposition": "NO_ANSWER", "time": "2025-03-14 10:16:00"}
		]
	}`))
	require.True(t, res.Success)

	missed, err := f.callLogs.MissedAgents(context.Background(), "call-500")
	require.NoError(t, err)
	require.Len(t, missed, 2)
	assert.Equal(t, "Asha", missed[0].AgentName)
	assert.Equal(t, "Ravi", missed[1].AgentName)

	hangups, err := f.callLogs.HangupRecords(context.Background(), "call-500")
	require.NoError(t, err)
	require.Len(t, hangups, 1)
	assert.Equal(t, "7", hangups[0].ID)
	assert.Equal(t, "NO_ANSWER", hangups[0].Disposition)
	assert.Equal(t, "2025-03-14 10:16:00", hangups[0].HangupTime)
}

func TestProcessRecordFromPoll(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.ProcessRecord(context.Background(), smartflow.CallRecord{
		CallID:       "rec-100",
		AgentName:    "Asha",
		AgentNumber:  "+918800112233",
		ClientNumber: "9876566666",
		Direction:    "inbound",
		Date:         "2025-03-13",
		Time:         "18:04:10",
		CallDuration: 35,
		Status:       "answered",
		RecordingURL: "https://recordings.example.com/rec-100.mp3",
	})

	require.True(t, res.Success)
	assert.Equal(t, "call event processed successfully", res.Message)

	rec, err := f.callLogs.GetByCallID(context.Background(), "rec-100")
	require.NoError(t, err)
	assert.Equal(t, calllog.CallTypeInbound, rec.CallType)
	assert.Equal(t, calllog.StatusAnswered, rec.Status)
	assert.Equal(t, "919876566666", rec.CustomerNumber)
	assert.Equal(t, "8800112233", rec.AgentNumber)
	assert.Equal(t, 35, rec.Duration)
	assert.Equal(t, "2025-03-13", rec.CallDate)
	assert.Equal(t, "18:04:10", rec.CallTime)

	assert.Equal(t, 1, f.leads.Count())
}

func TestProcessRecordAfterWebhookIsDuplicate(t *testing.T) {
	f := newProcessorFixture(t)

	first := f.processor.Process(context.Background(), parseEvent(t, `{
		"call_id": "rec-200",
		"direction": "inbound",
		"caller_id_number": "9876577777",
		"call_connected": "1"
	}`))
	require.True(t, first.Success)

	second := f.processor.ProcessRecord(context.Background(), smartflow.CallRecord{
		CallID:       "rec-200",
		ClientNumber: "9876577777",
		Direction:    "inbound",
		Status:       "answered",
	})
	assert.True(t, second.Success)
	assert.Equal(t, "call event already processed", second.Message)
	assert.Equal(t, 1, f.callLogs.Count())
}

func TestProcessRecordMissingCallID(t *testing.T) {
	f := newProcessorFixture(t)

	res := f.processor.ProcessRecord(context.Background(), smartflow.CallRecord{Direction: "inbound"})

	assert.False(t, res.Success)
	assert.Equal(t, "invalid call record: missing call id", res.Message)
}
