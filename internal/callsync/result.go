package callsync

// Result is the structured outcome every call-event entry point returns.
// Failures are reported here rather than propagated: webhook senders treat
// non-2xx as a retry trigger, so the transport layer always answers 200 and
// this payload carries the real outcome.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Messages for the two success outcomes of the upsert pipeline.
const (
	MessageProcessed = "call event processed successfully"
	MessageDuplicate = "call event already processed"
)

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

func success(message string) Result {
	return Result{Success: true, Message: message}
}
