package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"journeymap/domain/layout"
	"journeymap/infrastructure/config"
	"journeymap/infrastructure/di"
	"journeymap/infrastructure/messaging/websocket"
	"journeymap/pkg/auth"
	"journeymap/tests/fixtures"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPoster struct {
	endpoint string
	frames   []websocket.Message
}

func (p *recordingPoster) PostToConnection(ctx context.Context, in *apigatewaymanagementapi.PostToConnectionInput, _ ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	var msg websocket.Message
	if err := json.Unmarshal(in.Data, &msg); err != nil {
		return nil, err
	}
	p.frames = append(p.frames, msg)
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func (p *recordingPoster) types() []string {
	out := make([]string, 0, len(p.frames))
	for _, f := range p.frames {
		out = append(out, f.Type)
	}
	return out
}

func newStreamer(t *testing.T, validator *auth.JWTValidator) (*streamer, *recordingPoster) {
	t.Helper()
	replayFile := filepath.Join(t.TempDir(), "answer.json")
	require.NoError(t, os.WriteFile(replayFile, []byte(fixtures.WarehouseAnswer), 0o600))

	container, cleanup, err := di.InitializeContainer(context.Background(), &config.Config{
		Environment:        "test",
		AWSRegion:          "us-west-2",
		StorageBackend:     "memory",
		ReplayFile:         replayFile,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Second,
		IntersectionPolicy: "keep-suggested",
		Layout:             layout.DefaultSettings(),
		HistoryLimit:       10,
		QueryCacheTTL:      30,
		GenerateRate:       1,
		GenerateBurst:      1,
		LogLevel:           "error",
		AuthDisabled:       true,
		MetricsBackend:     "none",
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	poster := &recordingPoster{}
	return &streamer{
		commandBus: container.CommandBus,
		validator:  validator,
		newPoster: func(endpoint string) websocket.Poster {
			poster.endpoint = endpoint
			return poster
		},
		flush:  func(context.Context) {},
		logger: zap.NewNop(),
	}, poster
}

func request(body string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: "conn-1",
			DomainName:   "abc.execute-api.us-west-2.amazonaws.com",
			Stage:        "prod",
		},
	}
}

func TestStreamer_Generate(t *testing.T) {
	// Arrange
	s, poster := newStreamer(t, nil)

	// Act
	resp, err := s.handle(context.Background(), request(`{"action":"generate","scenario":"A picker hands totes to an AGV."}`))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc.execute-api.us-west-2.amazonaws.com/prod", poster.endpoint)
	types := poster.types()
	require.NotEmpty(t, types)
	assert.Equal(t, "start", types[0])
	assert.Equal(t, "complete", types[len(types)-1])
}

func TestStreamer_Rejects(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "s"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *auth.JWTValidator
		body      string
		status    int
	}{
		{"malformed frame", nil, `{"action":`, http.StatusBadRequest},
		{"unknown action", nil, `{"action":"delete"}`, http.StatusBadRequest},
		{"empty scenario", nil, `{"action":"generate","scenario":" "}`, http.StatusBadRequest},
		{"missing token", validator, `{"action":"generate","scenario":"x"}`, http.StatusUnauthorized},
		{"bad token", validator, `{"action":"generate","scenario":"x","token":"nope"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, poster := newStreamer(t, tt.validator)

			resp, err := s.handle(context.Background(), request(tt.body))

			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, []string{"error"}, poster.types())
		})
	}
}

func TestStreamer_AuthorizerIdentityWins(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "s"})
	require.NoError(t, err)
	s, _ := newStreamer(t, validator)
	req := request(`{}`)
	req.RequestContext.Authorizer = map[string]interface{}{"principalId": "user-9"}

	userID, err := s.resolveUser(req, "")

	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}
