package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mindaudit/internal/fsm"
	"mindaudit/internal/models"
)

// ConsultationService drives the consultation lifecycle. Every transition that
// touches the hours balance runs the status flip and the debit in one
// transaction, so a consultation can never end up accepted but uncharged.
type ConsultationService struct {
	DB               *sql.DB
	ConsultationRepo ConsultationStore
	CollaboratorRepo CollaboratorLedger
	MessageRepo      MessageStore
	AuditRepo        AuditTrail
	Notifications    *NotificationService
}

type CreateConsultationInput struct {
	Title         string                    `json:"title"`
	Description   string                    `json:"description"`
	Urgent        bool                      `json:"urgent"`
	VideoRequired bool                      `json:"video_required"`
	CategoryID    *int                      `json:"category_id"`
	Files         []models.ConsultationFile `json:"files"`
}

// canAccess reports whether the actor may see or act on the consultation.
func canAccess(actor models.ActingUser, c models.Consultation) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.RoleCollaborator && actor.CollaboratorID == c.CollaboratorID
}

// debitDelta returns how many hundredths still need debiting to bring the
// consultation's charged total up to target. Never negative.
func debitDelta(target, charged int64) int64 {
	if target <= charged {
		return 0
	}
	return target - charged
}

// validReopenReason requires at least 10 non-space characters of explanation.
func validReopenReason(reason string) bool {
	return len(strings.TrimSpace(reason)) >= 10
}

// Create opens a draft request. When the category carries an hours estimate
// the consultation is born pre-quoted; otherwise an admin quotes it later.
func (s *ConsultationService) Create(ctx context.Context, actor models.ActingUser, input CreateConsultationInput) (models.Consultation, error) {
	if actor.Role != models.RoleCollaborator {
		return models.Consultation{}, models.ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return models.Consultation{}, models.ErrMissingFields
	}

	collab, err := s.CollaboratorRepo.GetByID(ctx, actor.CollaboratorID)
	if err != nil {
		return models.Consultation{}, err
	}
	if collab.Status != models.CollaboratorActive {
		return models.Consultation{}, models.ErrCollaboratorInactive
	}

	c := models.Consultation{
		CollaboratorID: actor.CollaboratorID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Urgent:         input.Urgent,
		VideoRequired:  input.VideoRequired,
		Status:         fsm.StatusRequested,
		Files:          input.Files,
	}
	if input.CategoryID != nil {
		category, err := s.ConsultationRepo.GetCategory(ctx, *input.CategoryID)
		if err != nil {
			return models.Consultation{}, err
		}
		c.CategoryID = input.CategoryID
		c.RequiredHours = category.Hours
		c.Status = fsm.StatusQuoted
	}

	created, err := s.ConsultationRepo.Create(ctx, c)
	if err != nil {
		return models.Consultation{}, err
	}

	s.Notifications.NotifyAdmins(ctx, "New consultation request", created.Title,
		map[string]string{"consultation_id": formatID(created.ID)})
	return created, nil
}

// Quote sets the required hours on a requested consultation. Admin only.
func (s *ConsultationService) Quote(ctx context.Context, actor models.ActingUser, id int64, requiredHours int64, auditorID *int) (models.Consultation, error) {
	if !actor.IsAdmin() {
		return models.Consultation{}, models.ErrForbidden
	}
	if requiredHours <= 0 {
		return models.Consultation{}, models.ErrInvalidQuote
	}
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if c.Status != fsm.StatusRequested && c.Status != fsm.StatusQuoted {
		return models.Consultation{}, models.ErrInvalidTransition
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if c.Status == fsm.StatusRequested {
			if err := fsm.Apply(ctx, tx, id, fsm.StatusRequested, fsm.StatusQuoted); err != nil {
				if err == sql.ErrNoRows {
					return models.ErrInvalidTransition
				}
				return err
			}
		}
		if err := s.ConsultationRepo.SetQuoteTx(ctx, tx, id, requiredHours, auditorID); err != nil {
			if err == sql.ErrNoRows {
				// Accepted or rejected under us; too late to requote.
				return models.ErrInvalidTransition
			}
			return err
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:     actor.ID,
			Role:        actor.Role,
			Action:      "consultation.quote",
			EntityType:  "consultation",
			EntityID:    id,
			Description: "quoted at " + models.FormatHours(requiredHours) + " hours",
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}

	updated, err := s.ConsultationRepo.GetByID(ctx, id)
	if err == nil {
		s.notifyCollaborator(ctx, updated, "Consultation quoted",
			"Your consultation was quoted at "+models.FormatHours(requiredHours)+" hours")
	}
	return updated, err
}

// Accept moves a quoted consultation to accepted, debiting the outstanding
// hours atomically. Insufficient balance rolls everything back and the
// consultation stays quoted.
func (s *ConsultationService) Accept(ctx context.Context, actor models.ActingUser, id int64) (models.Consultation, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !canAccess(actor, c) || actor.IsAdmin() {
		return models.Consultation{}, models.ErrForbidden
	}
	if c.Status != fsm.StatusQuoted {
		return models.Consultation{}, models.ErrInvalidTransition
	}

	debit := debitDelta(c.RequiredHours, c.ChargedHours)
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := fsm.Apply(ctx, tx, id, fsm.StatusQuoted, fsm.StatusAccepted); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrInvalidTransition
			}
			return err
		}
		if debit > 0 {
			if err := s.CollaboratorRepo.DebitHoursTx(ctx, tx, c.CollaboratorID, debit); err != nil {
				return err
			}
			if err := s.ConsultationRepo.AddChargedHoursTx(ctx, tx, id, c.ChargedHours, debit); err != nil {
				if err == sql.ErrNoRows {
					// Charged total moved since our read; start over.
					return models.ErrInvalidTransition
				}
				return err
			}
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:     actor.ID,
			Role:        actor.Role,
			Action:      "consultation.accept",
			EntityType:  "consultation",
			EntityID:    id,
			Description: "accepted, debited " + models.FormatHours(debit) + " hours",
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}

	updated, err := s.ConsultationRepo.GetByID(ctx, id)
	if err == nil {
		s.Notifications.NotifyAdmins(ctx, "Consultation accepted", updated.Title,
			map[string]string{"consultation_id": formatID(id)})
	}
	return updated, err
}

// Reject declines a quote. No hours move.
func (s *ConsultationService) Reject(ctx context.Context, actor models.ActingUser, id int64) (models.Consultation, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !canAccess(actor, c) || actor.IsAdmin() {
		return models.Consultation{}, models.ErrForbidden
	}
	if c.Status != fsm.StatusQuoted {
		return models.Consultation{}, models.ErrInvalidTransition
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := fsm.Apply(ctx, tx, id, fsm.StatusQuoted, fsm.StatusRejected); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrInvalidTransition
			}
			return err
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:    actor.ID,
			Role:       actor.Role,
			Action:     "consultation.reject",
			EntityType: "consultation",
			EntityID:   id,
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}
	return s.ConsultationRepo.GetByID(ctx, id)
}

// Complete closes an accepted consultation. Admin only.
func (s *ConsultationService) Complete(ctx context.Context, actor models.ActingUser, id int64) (models.Consultation, error) {
	if !actor.IsAdmin() {
		return models.Consultation{}, models.ErrForbidden
	}
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if c.Status != fsm.StatusAccepted {
		return models.Consultation{}, models.ErrInvalidTransition
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := fsm.Apply(ctx, tx, id, fsm.StatusAccepted, fsm.StatusCompleted); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrInvalidTransition
			}
			return err
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:    actor.ID,
			Role:       actor.Role,
			Action:     "consultation.complete",
			EntityType: "consultation",
			EntityID:   id,
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}

	updated, err := s.ConsultationRepo.GetByID(ctx, id)
	if err == nil {
		s.notifyCollaborator(ctx, updated, "Consultation completed", updated.Title)
	}
	return updated, err
}

// Reopen returns a closed consultation to the quoting path. The reason is
// mandatory and lands on an append-only trail. Hours already charged stay
// charged; a later re-acceptance only debits any increase in the quote.
func (s *ConsultationService) Reopen(ctx context.Context, actor models.ActingUser, id int64, reason string) (models.Consultation, error) {
	if !validReopenReason(reason) {
		return models.Consultation{}, models.ErrReasonTooShort
	}
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !canAccess(actor, c) {
		return models.Consultation{}, models.ErrForbidden
	}
	if !fsm.IsTerminal(c.Status) {
		return models.Consultation{}, models.ErrInvalidTransition
	}

	target := fsm.StatusQuoted
	if c.RequiredHours == 0 {
		target = fsm.StatusRequested
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := fsm.Apply(ctx, tx, id, c.Status, target); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrInvalidTransition
			}
			return err
		}
		if err := s.ConsultationRepo.AppendReopenTx(ctx, tx, id, strings.TrimSpace(reason), actor.ID, actor.Role); err != nil {
			return err
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:     actor.ID,
			Role:        actor.Role,
			Action:      "consultation.reopen",
			EntityType:  "consultation",
			EntityID:    id,
			Description: strings.TrimSpace(reason),
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}

	updated, err := s.ConsultationRepo.GetByID(ctx, id)
	if err == nil {
		if actor.IsAdmin() {
			s.notifyCollaborator(ctx, updated, "Consultation reopened", reason)
		} else {
			s.Notifications.NotifyAdmins(ctx, "Consultation reopened", reason,
				map[string]string{"consultation_id": formatID(id)})
		}
	}
	return updated, err
}

// ScheduleMeeting books a call on an accepted consultation. The first booking
// raises the consultation's total cost by the meeting surcharge; the delta is
// debited in the same transaction, and rebooking never charges again.
func (s *ConsultationService) ScheduleMeeting(ctx context.Context, actor models.ActingUser, id int64, date time.Time, link string) (models.Consultation, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	if !canAccess(actor, c) {
		return models.Consultation{}, models.ErrForbidden
	}
	if c.Status != fsm.StatusAccepted {
		return models.Consultation{}, models.ErrInvalidTransition
	}
	if date.Before(time.Now()) {
		return models.Consultation{}, models.ErrMeetingInPast
	}

	debit := debitDelta(models.SurchargedHours(c.RequiredHours), c.ChargedHours)
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if debit > 0 {
			// The conditional increment serializes concurrent bookings: the
			// one whose snapshot is stale fails here before any debit.
			if err := s.ConsultationRepo.AddChargedHoursTx(ctx, tx, id, c.ChargedHours, debit); err != nil {
				if err == sql.ErrNoRows {
					return models.ErrInvalidTransition
				}
				return err
			}
			if err := s.CollaboratorRepo.DebitHoursTx(ctx, tx, c.CollaboratorID, debit); err != nil {
				return err
			}
		}
		if err := s.ConsultationRepo.UpdateMeetingTx(ctx, tx, id, date, link, models.MeetingProposed, actor.Role); err != nil {
			return err
		}
		return s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
			ActorID:     actor.ID,
			Role:        actor.Role,
			Action:      "consultation.meeting",
			EntityType:  "consultation",
			EntityID:    id,
			Description: "meeting scheduled, debited " + models.FormatHours(debit) + " surcharge hours",
		})
	})
	if err != nil {
		return models.Consultation{}, err
	}

	updated, err := s.ConsultationRepo.GetByID(ctx, id)
	if err == nil {
		if actor.IsAdmin() {
			s.notifyCollaborator(ctx, updated, "Meeting proposed", link)
		} else {
			s.Notifications.NotifyAdmins(ctx, "Meeting proposed", updated.Title,
				map[string]string{"consultation_id": formatID(id)})
		}
	}
	return updated, err
}

// SendMessage appends to the thread. Either content or a file is required.
func (s *ConsultationService) SendMessage(ctx context.Context, actor models.ActingUser, id int64, content string, fileURL *string) (models.ConsultationMessage, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.ConsultationMessage{}, err
	}
	if !canAccess(actor, c) {
		return models.ConsultationMessage{}, models.ErrForbidden
	}
	if strings.TrimSpace(content) == "" && fileURL == nil {
		return models.ConsultationMessage{}, models.ErrEmptyMessage
	}
	return s.MessageRepo.CreateMessage(ctx, models.ConsultationMessage{
		ConsultationID: id,
		SenderID:       actor.ID,
		Content:        strings.TrimSpace(content),
		FileURL:        fileURL,
	})
}

// Messages returns a page of the thread.
func (s *ConsultationService) Messages(ctx context.Context, actor models.ActingUser, id int64, page, pageSize int) ([]models.ConsultationMessage, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, c) {
		return nil, models.ErrForbidden
	}
	return s.MessageRepo.ListByConsultation(ctx, id, page, pageSize)
}

// Detail returns the consultation with its reopen trail.
func (s *ConsultationService) Detail(ctx context.Context, actor models.ActingUser, id int64) (models.Consultation, []models.ConsultationReopen, error) {
	c, err := s.ConsultationRepo.GetByID(ctx, id)
	if err != nil {
		return models.Consultation{}, nil, err
	}
	if !canAccess(actor, c) {
		return models.Consultation{}, nil, models.ErrForbidden
	}
	reopens, err := s.ConsultationRepo.ListReopens(ctx, id)
	if err != nil {
		return models.Consultation{}, nil, err
	}
	return c, reopens, nil
}

// List returns all consultations for admins and own consultations for
// collaborators.
func (s *ConsultationService) List(ctx context.Context, actor models.ActingUser, status string) ([]models.Consultation, error) {
	if actor.IsAdmin() {
		return s.ConsultationRepo.ListAll(ctx, status)
	}
	if actor.Role != models.RoleCollaborator {
		return nil, models.ErrForbidden
	}
	return s.ConsultationRepo.ListByCollaborator(ctx, actor.CollaboratorID)
}

func (s *ConsultationService) notifyCollaborator(ctx context.Context, c models.Consultation, title, body string) {
	collab, err := s.CollaboratorRepo.GetByID(ctx, c.CollaboratorID)
	if err != nil {
		return
	}
	s.Notifications.NotifyUser(ctx, collab.UserID, title, body,
		map[string]string{"consultation_id": formatID(c.ID)})
}

func (s *ConsultationService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
