package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mindaudit/internal/models"
	"mindaudit/internal/services"
	"mindaudit/utils"
)

type ConsultationHandler struct {
	Service *services.ConsultationService

	// Broadcast pushes a new thread message to connected websocket clients.
	Broadcast func(consultationID int64, msg models.ConsultationMessage)
}

func consultationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(":id"), 10, 64)
	return id, err == nil
}

func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateConsultationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	consultation, err := h.Service.Create(r.Context(), actorFromRequest(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, consultation)
}

func (h *ConsultationHandler) List(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.Service.List(r.Context(), actorFromRequest(r), r.URL.Query().Get("status"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultations)
}

func (h *ConsultationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	consultation, reopens, err := h.Service.Detail(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consultation": consultation,
		"reopens":      reopens,
	})
}

func (h *ConsultationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	var input struct {
		RequiredHours float64 `json:"required_hours"`
		AuditorID     *int    `json:"auditor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	consultation, err := h.Service.Quote(r.Context(), actorFromRequest(r), id,
		models.HoursFromDecimal(input.RequiredHours), input.AuditorID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	consultation, err := h.Service.Accept(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	consultation, err := h.Service.Reject(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	consultation, err := h.Service.Complete(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	consultation, err := h.Service.Reopen(r.Context(), actorFromRequest(r), id, input.Reason)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	var input struct {
		Date time.Time `json:"date"`
		Link string    `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	consultation, err := h.Service.ScheduleMeeting(r.Context(), actorFromRequest(r), id, input.Date, input.Link)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultation)
}

func (h *ConsultationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	var input struct {
		Content string  `json:"content"`
		FileURL *string `json:"file_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	message, err := h.Service.SendMessage(r.Context(), actorFromRequest(r), id, input.Content, input.FileURL)
	if err != nil {
		serviceError(w, err)
		return
	}
	if h.Broadcast != nil {
		h.Broadcast(id, message)
	}
	writeJSON(w, http.StatusCreated, message)
}

func (h *ConsultationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(r)
	if !ok {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	messages, err := h.Service.Messages(r.Context(), actorFromRequest(r), id, page, pageSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// UploadFile stores a multipart attachment and returns its URL for use in a
// thread message or a consultation request.
func (h *ConsultationHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileName := uuid.New().String() + filepath.Ext(header.Filename)

	url, err := utils.UploadFileToS3(data, fileName, "consultations", contentType)
	if err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"url":          url,
		"size":         header.Size,
		"content_type": contentType,
	})
}
