package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// PandaDocService verifies e-signature webhooks. PandaDoc signs the raw body
// with HMAC-SHA256 using the shared key and sends the hex digest in the
// "signature" query parameter.
type PandaDocService struct {
	SharedKey string
}

const PandaDocCompleted = "document.completed"

// PandaDocEvent is one entry of the webhook payload array.
type PandaDocEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Metadata struct {
			UserID string `json:"userId"`
		} `json:"metadata"`
	} `json:"data"`
}

func (s *PandaDocService) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.SharedKey))
	mac.Write(body)
	expected := mac.Sum(nil)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sigBytes)
}

// Sign returns the hex signature for a payload. Used by tests.
func (s *PandaDocService) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.SharedKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParsePandaDocEvents decodes the webhook body, which is an array of events.
func ParsePandaDocEvents(body []byte) ([]PandaDocEvent, error) {
	var events []PandaDocEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, errors.New("pandadoc payload contains no events")
	}
	return events, nil
}
