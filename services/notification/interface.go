package notification

import (
	"context"
	"fmt"

	companyRepo "wheelhouse/database/repository/company"
	userRepo "wheelhouse/database/repository/user"
	"wheelhouse/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends push and email notifications about bookings.
// Every call may fail independently; callers log failures and move on.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	SendCompanyPushNotification(ctx context.Context, companyID, title, body string, data map[string]string) error
	SendBookingConfirmationEmail(ctx context.Context, email, name string, summary models.BookingSummary, isCompany bool) error
	SendBookingEmail(ctx context.Context, email, name, subject, intro string, summary models.BookingSummary) error
}

// PushSender delivers one FCM message. *messaging.Client satisfies it.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users     userRepo.UserRepository
	Companies companyRepo.CompanyRepository
	Push      PushSender
	Mail      Mailer
	Logger    *zap.Logger
}

func NewDefaultNotificationService(
	users userRepo.UserRepository,
	companies companyRepo.CompanyRepository,
	push PushSender,
	mail Mailer,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if users == nil || companies == nil {
		return nil, fmt.Errorf("notification service initialization error: user or company repository is nil")
	}
	return &DefaultNotificationService{
		Users:     users,
		Companies: companies,
		Push:      push,
		Mail:      mail,
		Logger:    logger,
	}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}
	return s.send(ctx, u.FCMToken, title, body, withRole(data, "user"))
}

// SendCompanyPushNotification looks up a rental company's FCM token and sends a push.
func (s *DefaultNotificationService) SendCompanyPushNotification(ctx context.Context, companyID, title, body string, data map[string]string) error {
	c, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("SendCompanyPushNotification: could not find company %s: %w", companyID, err)
	}
	if c.FCMToken == "" {
		return fmt.Errorf("SendCompanyPushNotification: company %s has no FCM token", companyID)
	}
	return s.send(ctx, c.FCMToken, title, body, withRole(data, "company"))
}

func (s *DefaultNotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s.Push == nil {
		s.Logger.Debug("Push disabled, dropping notification", zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.Push.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	s.Logger.Debug("Push sent", zap.String("messageId", id), zap.String("title", title))
	return nil
}

func withRole(data map[string]string, role string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	if _, ok := out["role"]; !ok {
		out["role"] = role
	}
	return out
}
