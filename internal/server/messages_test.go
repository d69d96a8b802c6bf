package server

import "testing"

func TestParseMessage_CommandAndTypeSpellings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"set target command", `{"command":"SET_TARGET","sign":"a"}`, KindSetTarget},
		{"set target type", `{"type":"set_target","sign":"a"}`, KindSetTarget},
		{"assign target", `{"type":"assign_target","difficulty":"EASY"}`, KindAssignTarget},
		{"set dominance command", `{"command":"SET_DOMINANCE","dominance":"LEFT"}`, KindSetDominance},
		{"player config type", `{"type":"player_config","dominance":"LEFT"}`, KindSetDominance},
		{"stop target command", `{"command":"STOP_TARGET"}`, KindStopTarget},
		{"stop target type", `{"type":"stop_target"}`, KindStopTarget},
		{"image", `{"type":"image","image_data":"aGk="}`, KindImage},
		{"unknown", `{"command":"DANCE"}`, KindUnknown},
		{"empty object", `{}`, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Kind != tt.want {
				t.Errorf("kind = %v, want %v", msg.Kind, tt.want)
			}
		})
	}
}

func TestParseMessage_ImageDataFallback(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"image","data":"aGk="}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ImageData != "aGk=" {
		t.Errorf("expected legacy data field honored, got %q", msg.ImageData)
	}
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"command":`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseMessage_PlayerID(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"command":"SET_TARGET","sign":"a","player_id":"godot-7"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.PlayerID != "godot-7" {
		t.Errorf("expected player id carried through, got %q", msg.PlayerID)
	}

	// Old clients send numeric ids.
	msg, err = ParseMessage([]byte(`{"command":"SET_TARGET","sign":"a","player_id":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.PlayerID != "3" {
		t.Errorf("expected numeric player id stringified, got %q", msg.PlayerID)
	}
}
