package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"journeymap/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	calls [][]types.PutEventsRequestEntry
	out   *eventbridge.PutEventsOutput
	err   error
}

func (f *fakeClient) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in.Entries)
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func edgeEvents(n int) []events.DomainEvent {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewEdgeDeleted("journey-1", "edge-0", i+1, now)
	}
	return out
}

func TestPublisher_PublishBatchChunks(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	p := NewPublisher(client, "bus", "journeymap", zap.NewNop())

	// Act
	err := p.PublishBatch(context.Background(), edgeEvents(23))

	// Assert
	require.NoError(t, err)
	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0], 10)
	assert.Len(t, client.calls[2], 3)

	entry := client.calls[0][0]
	assert.Equal(t, "bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, "journeymap", aws.ToString(entry.Source))
	assert.Equal(t, "edge.deleted", aws.ToString(entry.DetailType))
	assert.Contains(t, aws.ToString(entry.Detail), `"aggregate_id":"journey-1"`)
	assert.Equal(t, []string{"journey/journey-1"}, entry.Resources)
}

func TestPublisher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		wantErr string
	}{
		{
			name:    "transport",
			client:  &fakeClient{err: errors.New("throttled")},
			wantErr: "failed to publish events to EventBridge",
		},
		{
			name: "rejected entries",
			client: &fakeClient{out: &eventbridge.PutEventsOutput{
				FailedEntryCount: 1,
				Entries: []types.PutEventsResultEntry{
					{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
				},
			}},
			wantErr: "1 events failed to publish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublisher(tt.client, "bus", "journeymap", zap.NewNop())

			err := p.Publish(context.Background(), edgeEvents(1)[0])

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPublisher_EmptyBatch(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "bus", "journeymap", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, client.calls)
}
