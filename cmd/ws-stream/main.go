// Package main implements the WebSocket Lambda that streams journey
// generation to the calling connection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	"journeymap/domain/core/valueobjects"
	"journeymap/infrastructure/config"
	"journeymap/infrastructure/di"
	"journeymap/infrastructure/messaging/websocket"
	"journeymap/interfaces/http/rest/middleware"
	"journeymap/pkg/auth"
	pkgerrors "journeymap/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// GenerateRequest is the frame a client sends on the generate route
type GenerateRequest struct {
	Action   string `json:"action"`
	Scenario string `json:"scenario"`
	Title    string `json:"title,omitempty"`
	Token    string `json:"token,omitempty"`
}

// streamer turns generate frames into StreamJourneyCommands
type streamer struct {
	commandBus *bus.CommandBus
	validator  *auth.JWTValidator
	endpoint   string
	newPoster  func(endpoint string) websocket.Poster
	flush      func(ctx context.Context)
	logger     *zap.Logger
}

func (s *streamer) handle(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := req.RequestContext.ConnectionID
	endpoint := s.endpoint
	if endpoint == "" {
		endpoint = req.RequestContext.DomainName + "/" + req.RequestContext.Stage
	}
	sink := websocket.NewSink(s.newPoster(endpoint), connectionID, s.logger)
	defer s.flush(ctx)

	var body GenerateRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return s.reject(ctx, sink, http.StatusBadRequest, pkgerrors.NewValidationError("invalid message body"))
	}
	if body.Action != "generate" {
		return s.reject(ctx, sink, http.StatusBadRequest, pkgerrors.NewValidationError("unsupported action: "+body.Action))
	}

	userID, err := s.resolveUser(req, body.Token)
	if err != nil {
		s.logger.Info("Rejected websocket stream",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return s.reject(ctx, sink, http.StatusUnauthorized, pkgerrors.NewUnauthorizedError("Unauthorized"))
	}

	journeyID := valueobjects.NewJourneyID().String()
	tracked := &trackedSink{next: sink}
	err = s.commandBus.Send(ctx, commands.StreamJourneyCommand{
		JourneyID: journeyID,
		UserID:    userID,
		Scenario:  body.Scenario,
		Title:     body.Title,
		Sink:      tracked,
	})
	switch {
	case err == nil:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	case errors.Is(err, websocket.ErrClientGone):
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	case !tracked.started:
		// Rejected before generation started, so the client has no error frame yet
		status := http.StatusInternalServerError
		if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
			status = appErr.HTTPStatus
		}
		return s.reject(ctx, sink, status, err)
	default:
		s.logger.Warn("Journey stream failed",
			zap.String("journeyID", journeyID),
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
}

// trackedSink remembers whether any event reached the client
type trackedSink struct {
	next    ports.EventSink
	started bool
}

func (t *trackedSink) Send(ctx context.Context, eventType string, payload interface{}) error {
	t.started = true
	return t.next.Send(ctx, eventType, payload)
}

func (s *streamer) reject(ctx context.Context, sink *websocket.Sink, status int, err error) (events.APIGatewayProxyResponse, error) {
	message := err.Error()
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		message = appErr.Message
	}
	if sendErr := sink.Send(ctx, "error", map[string]string{"message": message}); sendErr != nil {
		s.logger.Debug("Failed to send error frame", zap.Error(sendErr))
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Body: message}, nil
}

// resolveUser prefers the identity a Lambda authorizer attached on $connect,
// then a token in the frame, then the anonymous user when auth is disabled
func (s *streamer) resolveUser(req events.APIGatewayWebsocketProxyRequest, token string) (string, error) {
	if ctx, ok := req.RequestContext.Authorizer.(map[string]interface{}); ok {
		if id, ok := ctx["principalId"].(string); ok && id != "" {
			return id, nil
		}
	}
	if s.validator == nil {
		return middleware.AnonymousUserID, nil
	}
	if strings.TrimSpace(token) == "" {
		return "", auth.ErrMissingToken
	}
	claims, err := s.validator.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	s := &streamer{
		commandBus: container.CommandBus,
		validator:  container.JWTValidator,
		endpoint:   cfg.WebSocketEndpoint,
		newPoster: func(endpoint string) websocket.Poster {
			return websocket.NewClient(container.AWSConfig, endpoint)
		},
		flush:  container.FlushMetrics,
		logger: container.Logger,
	}
	lambda.Start(s.handle)
}
