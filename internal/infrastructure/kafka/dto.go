package kafka

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
)

// EventMessage is the wire form of a delivery event on the events topic
type EventMessage entities.Event

// CommandMessage is received on the commands topic.
// user_id may be a JSON number or a numeric string.
type CommandMessage struct {
	Type   string      `json:"type"`
	UserID json.Number `json:"user_id"`
}

// ToCommand validates the message
func (m CommandMessage) ToCommand() (entities.Command, error) {
	userID, err := m.UserID.Int64()
	if err != nil || userID <= 0 {
		return entities.Command{}, fmt.Errorf("invalid user_id %q", m.UserID)
	}

	return entities.Command{
		Type:   entities.CommandType(strings.ToLower(strings.TrimSpace(m.Type))),
		UserID: userID,
	}, nil
}
