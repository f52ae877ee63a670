package ports

import "context"

// ExtractionRequest is what the language model is asked to analyse
type ExtractionRequest struct {
	Scenario string
	Title    string
}

// ExtractionSource opens a token-delta stream for one scenario
type ExtractionSource interface {
	Open(ctx context.Context, req ExtractionRequest) (DeltaStream, error)
}

// DeltaStream yields text fragments of the model's JSON answer.
// Recv returns io.EOF once the model has finished; any other error is a
// transport failure. Close must be safe to call more than once.
type DeltaStream interface {
	Recv(ctx context.Context) (string, error)
	Close() error
}

// EventSink receives the progress events of a streaming generation,
// e.g. an SSE response or a WebSocket connection
type EventSink interface {
	Send(ctx context.Context, eventType string, payload interface{}) error
}

// Metrics records business-level measurements of the pipeline
type Metrics interface {
	RecordCategory(category string, items int)
	RecordResolution(category, quality string)
	RecordDropped(category, reason string)
	RecordGeneration(mode, outcome string, seconds float64)
	RecordEdit(operation string)
	RecordQuery(queryType, outcome string, seconds float64)
}
