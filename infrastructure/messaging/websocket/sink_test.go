package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePoster struct {
	posts []*apigatewaymanagementapi.PostToConnectionInput
	errs  []error
}

func (f *fakePoster) PostToConnection(ctx context.Context, in *apigatewaymanagementapi.PostToConnectionInput, _ ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	f.posts = append(f.posts, in)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func newTestSink(p *fakePoster) *Sink {
	s := NewSink(p, "conn-1", zap.NewNop())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestSink_SendFramesMessage(t *testing.T) {
	// Arrange
	poster := &fakePoster{}
	sink := newTestSink(poster)

	// Act
	err := sink.Send(context.Background(), "actors", []string{"Driver"})

	// Assert
	require.NoError(t, err)
	require.Len(t, poster.posts, 1)
	assert.Equal(t, "conn-1", aws.ToString(poster.posts[0].ConnectionId))

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(poster.posts[0].Data, &msg))
	assert.Equal(t, "actors", msg["type"])
	assert.Equal(t, float64(1700000000), msg["timestamp"])
	assert.Equal(t, []interface{}{"Driver"}, msg["data"])
}

func TestSink_GoneStopsSending(t *testing.T) {
	// Arrange
	poster := &fakePoster{errs: []error{&apigwTypes.GoneException{}}}
	sink := newTestSink(poster)

	// Act
	first := sink.Send(context.Background(), "start", nil)
	second := sink.Send(context.Background(), "actors", nil)

	// Assert
	assert.ErrorIs(t, first, ErrClientGone)
	assert.ErrorIs(t, second, ErrClientGone)
	assert.Len(t, poster.posts, 1)
}

func TestSink_TransportError(t *testing.T) {
	poster := &fakePoster{errs: []error{errors.New("throttled")}}
	sink := newTestSink(poster)

	err := sink.Send(context.Background(), "start", nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClientGone)
	assert.Contains(t, err.Error(), "throttled")
}
