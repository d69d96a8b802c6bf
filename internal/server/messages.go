// Package server implements the WebSocket game protocol and its HTTP
// debug surface.
package server

import (
	"encoding/json"
	"strings"
)

// Kind tags an inbound message after decoding. Unrecognized messages map
// to KindUnknown rather than falling through key-presence checks.
type Kind int

const (
	KindUnknown Kind = iota
	KindSetTarget
	KindAssignTarget
	KindSetDominance
	KindStopTarget
	KindImage
)

// Message is an inbound client message decoded once into a tagged union.
// Only the fields relevant to the Kind are populated.
type Message struct {
	Kind       Kind
	Sign       string // KindSetTarget
	Difficulty string // KindAssignTarget
	Dominance  string // KindSetDominance
	ImageData  string // KindImage, still base64
	PlayerID   string // optional client-chosen id, any kind
}

// envelope covers every field any client variant sends. Older clients use
// "command" where newer ones use "type", and "data" where newer ones use
// "image_data"; both spellings stay accepted.
type envelope struct {
	Type       string          `json:"type"`
	Command    string          `json:"command"`
	Sign       string          `json:"sign"`
	Difficulty string          `json:"difficulty"`
	Dominance  string          `json:"dominance"`
	ImageData  string          `json:"image_data"`
	Data       string          `json:"data"`
	PlayerID   json.RawMessage `json:"player_id"`
}

// ParseMessage decodes one wire message. A JSON error is returned to the
// caller for a structured error reply; anything decodable but unrecognized
// becomes KindUnknown.
func ParseMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, err
	}

	msg := Message{Kind: KindUnknown}

	if len(env.PlayerID) > 0 {
		var id string
		if err := json.Unmarshal(env.PlayerID, &id); err != nil {
			// Numeric ids from old clients.
			id = strings.TrimSpace(string(env.PlayerID))
		}
		msg.PlayerID = id
	}

	kind := strings.ToUpper(env.Command)
	if kind == "" {
		kind = strings.ToUpper(env.Type)
	}

	switch kind {
	case "SET_TARGET":
		msg.Kind = KindSetTarget
		msg.Sign = env.Sign
	case "ASSIGN_TARGET":
		msg.Kind = KindAssignTarget
		msg.Difficulty = env.Difficulty
	case "SET_DOMINANCE", "PLAYER_CONFIG":
		msg.Kind = KindSetDominance
		msg.Dominance = env.Dominance
	case "STOP_TARGET":
		msg.Kind = KindStopTarget
	case "IMAGE":
		msg.Kind = KindImage
		msg.ImageData = env.ImageData
		if msg.ImageData == "" {
			msg.ImageData = env.Data
		}
	}

	return msg, nil
}
