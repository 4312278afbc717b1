package services

import "testing"

func TestPandaDocVerifySignature(t *testing.T) {
	svc := &PandaDocService{SharedKey: "shared"}
	body := []byte(`[{"event":"document_state_changed"}]`)

	if !svc.VerifySignature(body, svc.Sign(body)) {
		t.Fatal("expected own signature to verify")
	}
	if svc.VerifySignature([]byte("tampered"), svc.Sign(body)) {
		t.Fatal("expected tampered body to fail")
	}
	if svc.VerifySignature(body, "zz-not-hex") {
		t.Fatal("expected non-hex signature to fail")
	}

	other := &PandaDocService{SharedKey: "other"}
	if svc.VerifySignature(body, other.Sign(body)) {
		t.Fatal("expected wrong key to fail")
	}
}

func TestParsePandaDocEvents(t *testing.T) {
	body := []byte(`[{
		"event": "document_state_changed",
		"data": {"id": "doc_1", "status": "document.completed", "metadata": {"userId": "42"}}
	}]`)
	events, err := ParsePandaDocEvents(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Data.Status != PandaDocCompleted {
		t.Fatalf("expected completed status, got %s", events[0].Data.Status)
	}
	if events[0].Data.Metadata.UserID != "42" {
		t.Fatalf("expected userId 42, got %s", events[0].Data.Metadata.UserID)
	}

	if _, err := ParsePandaDocEvents([]byte(`[]`)); err == nil {
		t.Fatal("expected error for empty event array")
	}
	if _, err := ParsePandaDocEvents([]byte(`{}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}
