package avakit

import "encoding/json"

// Data-channel wire format. Every payload on the reliable channel is a JSON
// object with a "type" discriminator; chat flows client -> avatar, the rest
// flow avatar -> client. Unknown discriminators are dropped by the
// normalizer, never raised.
const (
	wireChat     = "chat"
	wireStatus   = "status"
	wireResponse = "response"
	wireError    = "error"
)

type wireEnvelope struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Status string `json:"status,omitempty"`
}

func encodeChat(text string) ([]byte, error) {
	return json.Marshal(wireEnvelope{Type: wireChat, Text: text})
}
