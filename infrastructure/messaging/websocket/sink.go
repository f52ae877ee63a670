package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journeymap/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// ErrClientGone is returned once the connection has been closed by the client
var ErrClientGone = errors.New("websocket client disconnected")

// Poster is the part of the API Gateway Management API the sink uses
type Poster interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// Message is the frame sent to clients
type Message struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sink pushes generation events to one API Gateway WebSocket connection
type Sink struct {
	client       Poster
	connectionID string
	now          func() time.Time
	logger       *zap.Logger
	gone         bool
}

// NewSink creates a sink for connectionID
func NewSink(client Poster, connectionID string, logger *zap.Logger) *Sink {
	return &Sink{
		client:       client,
		connectionID: connectionID,
		now:          time.Now,
		logger:       logger,
	}
}

var _ ports.EventSink = (*Sink)(nil)

// NewClient creates a management API client for a stage endpoint such as
// "abc123.execute-api.us-west-2.amazonaws.com/prod"
func NewClient(cfg aws.Config, endpoint string) *apigatewaymanagementapi.Client {
	return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String("https://" + endpoint)
	})
}

// Send posts one event. A GoneException marks the sink closed and every
// later call returns ErrClientGone without touching the network.
func (s *Sink) Send(ctx context.Context, eventType string, payload interface{}) error {
	if s.gone {
		return ErrClientGone
	}

	data, err := json.Marshal(Message{
		Type:      eventType,
		Timestamp: s.now().Unix(),
		Data:      payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = s.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(s.connectionID),
		Data:         data,
	})
	if err != nil {
		var goneErr *apigwTypes.GoneException
		if errors.As(err, &goneErr) {
			s.gone = true
			s.logger.Info("Connection is gone, stopping stream",
				zap.String("connectionID", s.connectionID),
				zap.String("eventType", eventType),
			)
			return ErrClientGone
		}
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
