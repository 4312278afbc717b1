package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindaudit/internal/services"
)

type activatorStub struct {
	calls []int
	err   error
}

func (a *activatorStub) ActivateContract(_ context.Context, userID int) error {
	a.calls = append(a.calls, userID)
	return a.err
}

func newPandaDocRequest(pandadoc *services.PandaDocService) (*http.Request, []byte) {
	body := []byte(`[{
		"event": "document_state_changed",
		"data": {"id": "doc_1", "status": "document.completed", "metadata": {"userId": "42"}}
	}]`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pandadoc?signature="+pandadoc.Sign(body), bytes.NewReader(body))
	return req, body
}

func TestPandaDocWebhookRejectsBadSignature(t *testing.T) {
	h := &PandaDocWebhookHandler{
		PandaDoc: &services.PandaDocService{SharedKey: "shared"},
		ErrorLog: log.New(bytes.NewBuffer(nil), "", 0),
	}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pandadoc?signature=bad", bytes.NewReader([]byte(`[]`)))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPandaDocWebhookActivatesAndMarks(t *testing.T) {
	pandadoc := &services.PandaDocService{SharedKey: "shared"}
	marker := &markerStub{}
	activator := &activatorStub{}
	h := &PandaDocWebhookHandler{
		PandaDoc:      pandadoc,
		Collaborators: activator,
		Events:        marker,
		ErrorLog:      log.New(bytes.NewBuffer(nil), "", 0),
	}

	req, _ := newPandaDocRequest(pandadoc)
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if len(activator.calls) != 1 || activator.calls[0] != 42 {
		t.Fatalf("expected activation for user 42, got %v", activator.calls)
	}
	if len(marker.marks) != 1 || marker.marks[0] != "pandadoc:doc_1" {
		t.Fatalf("expected document marked after activation, got %v", marker.marks)
	}
}

func TestPandaDocWebhookFailureLeavesNoMarker(t *testing.T) {
	pandadoc := &services.PandaDocService{SharedKey: "shared"}
	marker := &markerStub{}
	activator := &activatorStub{err: errors.New("store unavailable")}
	h := &PandaDocWebhookHandler{
		PandaDoc:      pandadoc,
		Collaborators: activator,
		Events:        marker,
		ErrorLog:      log.New(bytes.NewBuffer(nil), "", 0),
	}

	req, _ := newPandaDocRequest(pandadoc)
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if len(marker.marks) != 0 {
		t.Fatalf("failed activation must not mark the document, got %v", marker.marks)
	}
}

func TestPandaDocWebhookReplaySkipped(t *testing.T) {
	pandadoc := &services.PandaDocService{SharedKey: "shared"}
	marker := &markerStub{seen: true}
	activator := &activatorStub{}
	h := &PandaDocWebhookHandler{
		PandaDoc:      pandadoc,
		Collaborators: activator,
		Events:        marker,
		ErrorLog:      log.New(bytes.NewBuffer(nil), "", 0),
	}

	req, _ := newPandaDocRequest(pandadoc)
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if len(activator.calls) != 0 {
		t.Fatalf("replay must not activate again, got %v", activator.calls)
	}
}
