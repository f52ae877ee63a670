package commands

import (
	"context"
	"testing"

	pkgerrors "journeymap/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const journeyID = "6f1d3b2a-9c4e-4b7a-8e21-3f5c6d7e8a90"

type nopSink struct{}

func (nopSink) Send(context.Context, string, interface{}) error { return nil }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		cmd     interface{ Validate() error }
		wantErr bool
	}{
		{name: "create ok", cmd: CreateJourneyCommand{JourneyID: journeyID, UserID: "u", Scenario: "Guests check in"}},
		{name: "create whitespace scenario", cmd: CreateJourneyCommand{JourneyID: journeyID, UserID: "u", Scenario: " \n\t "}, wantErr: true},
		{name: "create bad journey id", cmd: CreateJourneyCommand{JourneyID: "abc", UserID: "u", Scenario: "s"}, wantErr: true},
		{name: "create missing user", cmd: CreateJourneyCommand{JourneyID: journeyID, Scenario: "s"}, wantErr: true},
		{name: "stream ok", cmd: StreamJourneyCommand{JourneyID: journeyID, UserID: "u", Scenario: "s", Sink: nopSink{}}},
		{name: "stream without sink", cmd: StreamJourneyCommand{JourneyID: journeyID, UserID: "u", Scenario: "s"}, wantErr: true},
		{name: "update needs a field", cmd: UpdateJourneyCommand{UserID: "u", JourneyID: journeyID}, wantErr: true},
		{name: "update title", cmd: UpdateJourneyCommand{UserID: "u", JourneyID: journeyID, Title: strPtr("t")}},
		{name: "update node needs a field", cmd: UpdateNodeCommand{UserID: "u", JourneyID: journeyID, NodeID: "node-0"}, wantErr: true},
		{name: "update node bad emotion", cmd: UpdateNodeCommand{UserID: "u", JourneyID: journeyID, NodeID: "node-0", Emotion: strPtr("ecstatic")}, wantErr: true},
		{name: "update node score out of range", cmd: UpdateNodeCommand{UserID: "u", JourneyID: journeyID, NodeID: "node-0", EmotionScore: floatPtr(2)}, wantErr: true},
		{name: "update node ok", cmd: UpdateNodeCommand{UserID: "u", JourneyID: journeyID, NodeID: "node-0", Emotion: strPtr("negative"), EmotionScore: floatPtr(-0.5)}},
		{name: "move ok", cmd: MoveNodeCommand{UserID: "u", JourneyID: journeyID, NodeID: "node-0", X: 10, Y: 20}},
		{name: "move missing node", cmd: MoveNodeCommand{UserID: "u", JourneyID: journeyID}, wantErr: true},
		{name: "connect missing target", cmd: ConnectNodesCommand{UserID: "u", JourneyID: journeyID, FromNodeID: "node-0"}, wantErr: true},
		{name: "reconnect ok", cmd: ReconnectEdgeCommand{UserID: "u", JourneyID: journeyID, EdgeID: "edge-0", FromNodeID: "node-0", ToNodeID: "node-1"}},
		{name: "delete edge ok", cmd: DeleteEdgeCommand{UserID: "u", JourneyID: journeyID, EdgeID: "edge-0"}},
		{name: "undo bad id", cmd: UndoJourneyCommand{UserID: "u", JourneyID: "x"}, wantErr: true},
		{name: "redo ok", cmd: RedoJourneyCommand{UserID: "u", JourneyID: journeyID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
