package services

import (
	"context"
	"log"
	"strconv"

	"firebase.google.com/go/messaging"

	"mindaudit/internal/repositories"
)

// NotificationService delivers FCM push notifications. Delivery is best
// effort: failures are logged and never bubble into the calling flow.
type NotificationService struct {
	Client   *messaging.Client
	UserRepo *repositories.UserRepository
	ErrorLog *log.Logger
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *NotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	_, err := s.Client.Send(ctx, message)
	return err
}

// NotifyUser pushes to every registered device of a user.
func (s *NotificationService) NotifyUser(ctx context.Context, userID int, title, body string, data map[string]string) {
	if s == nil || s.Client == nil {
		return
	}
	tokens, err := s.UserRepo.GetNotifyTokens(ctx, userID)
	if err != nil {
		s.ErrorLog.Printf("fetch notify tokens for user %d: %v", userID, err)
		return
	}
	for _, token := range tokens {
		if err := s.send(ctx, token, title, body, data); err != nil {
			s.ErrorLog.Printf("push to token %s: %v", token, err)
		}
	}
}

// NotifyAdmins pushes to every admin user.
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, body string, data map[string]string) {
	if s == nil || s.Client == nil {
		return
	}
	admins, err := s.UserRepo.ListAdmins(ctx)
	if err != nil {
		s.ErrorLog.Printf("list admins for notification: %v", err)
		return
	}
	for _, admin := range admins {
		s.NotifyUser(ctx, admin.ID, title, body, data)
	}
}
