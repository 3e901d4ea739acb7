package room

import (
	"encoding/json"
	"fmt"
	"gato/Gato-Game/internal/events"
	"gato/Gato-Game/pkg/proto"
)

// toServerMessage converts a session event into the message pushed to the client.
func toServerMessage(event events.Event) (*proto.ServerToClientMessage, error) {
	message := &proto.ServerToClientMessage{Type: event.Type}

	switch event.Type {
	case events.TypeState, events.TypeComputerThinking:
		var payload events.StatePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
		}
		message.Session = &payload.Session

	case events.TypeGameOver:
		var payload events.GameOverPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
		}
		message.Outcome = &payload.Outcome
		message.Message = payload.Message
		message.Stats = &payload.Stats

	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	return message, nil
}
