package models

import "time"

// Meeting statuses for a scheduled consultation call.
const (
	MeetingProposed  = "proposed"
	MeetingConfirmed = "confirmed"
	MeetingCancelled = "cancelled"
)

type Consultation struct {
	ID             int64  `json:"id"`
	CollaboratorID int    `json:"collaborator_id"`
	AuditorID      *int   `json:"auditor_id,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Urgent         bool   `json:"urgent"`
	VideoRequired  bool   `json:"video_required"`
	CategoryID     *int   `json:"category_id,omitempty"`

	// RequiredHours is set at quoting time, hundredths of an hour.
	RequiredHours int64 `json:"required_hours"`

	// ChargedHours tracks how much has actually been debited for this
	// consultation. Acceptance and the meeting surcharge only ever debit the
	// difference up to the new total, so nothing is charged twice.
	ChargedHours int64 `json:"charged_hours"`

	Status string `json:"status"`

	MeetingDate        *time.Time `json:"meeting_date,omitempty"`
	MeetingLink        *string    `json:"meeting_link,omitempty"`
	MeetingStatus      *string    `json:"meeting_status,omitempty"`
	MeetingRequestedBy *string    `json:"meeting_requested_by,omitempty"`

	ReopenCount int        `json:"reopen_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	Files []ConsultationFile `json:"files,omitempty"`
}

// ConsultationReopen is one entry of the reopening audit trail.
type ConsultationReopen struct {
	ID             int64     `json:"id"`
	ConsultationID int64     `json:"consultation_id"`
	Reason         string    `json:"reason"`
	ReopenedBy     int       `json:"reopened_by"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConsultationMessage is one entry of the append-only chat thread.
type ConsultationMessage struct {
	ID             int64     `json:"id"`
	ConsultationID int64     `json:"consultation_id"`
	SenderID       int       `json:"sender_id"`
	Content        string    `json:"content"`
	FileURL        *string   `json:"file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConsultationFile struct {
	ID             int64  `json:"id"`
	ConsultationID int64  `json:"consultation_id"`
	URL            string `json:"url"`
	Size           int64  `json:"size"`
	ContentType    string `json:"content_type"`
}

// ConsultationCategory maps a category to its hours estimate.
type ConsultationCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Hours int64  `json:"hours"` // hundredths
}
