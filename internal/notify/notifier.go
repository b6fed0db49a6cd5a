// internal/notify/notifier.go
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	commonaws "rotationhub/internal/common/aws"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

var _ EmailSender = (*commonaws.SESClient)(nil)

// EmailNotifier emails applicants when their application status changes.
// Delivery is best effort: failures are logged and never surface to the
// operation that triggered them.
type EmailNotifier struct {
	db        *sql.DB
	sender    EmailSender
	fromEmail string
	logger    logger.Logger
}

func NewEmailNotifier(db *sql.DB, sender EmailSender, fromEmail string, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		db:        db,
		sender:    sender,
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// NotifyStatusChange sends the applicant a status-change email. Errors are
// swallowed after logging.
func (n *EmailNotifier) NotifyStatusChange(ctx context.Context, app *models.Application) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	email, fullName, programTitle, err := n.lookupRecipient(ctx, app)
	if err != nil {
		n.logger.Warn("skipping status notification", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return
	}

	subject, body := statusMessage(app.Status, fullName, programTitle)

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	if _, err := n.sender.SendEmail(ctx, input); err != nil {
		n.logger.Error("failed to send status notification", map[string]interface{}{
			"applicationId": app.ID,
			"status":        string(app.Status),
			"error":         err.Error(),
		})
		return
	}

	n.logger.Info("status notification sent", map[string]interface{}{
		"applicationId": app.ID,
		"status":        string(app.Status),
	})
}

func (n *EmailNotifier) lookupRecipient(ctx context.Context, app *models.Application) (email, fullName, programTitle string, err error) {
	err = n.db.QueryRowContext(ctx, `
		SELECT a.email, a.full_name, p.title
		FROM applicants a, programs p
		WHERE a.id = $1 AND p.id = $2`,
		app.ApplicantID, app.ProgramID,
	).Scan(&email, &fullName, &programTitle)
	if err != nil {
		return "", "", "", fmt.Errorf("recipient lookup: %w", err)
	}
	return email, fullName, programTitle, nil
}

func statusMessage(status models.ApplicationStatus, fullName, programTitle string) (subject, body string) {
	switch status {
	case models.StatusAccepted:
		subject = fmt.Sprintf("You're in: %s", programTitle)
		body = fmt.Sprintf("Dear %s,\n\nCongratulations! Your application to %s has been accepted. You will receive onboarding details from the program coordinator shortly.\n", fullName, programTitle)
	case models.StatusRejected:
		subject = fmt.Sprintf("Update on your application to %s", programTitle)
		body = fmt.Sprintf("Dear %s,\n\nWe're sorry to let you know that your application to %s was not successful this time. Your seat has been released and you are welcome to apply to other programs.\n", fullName, programTitle)
	case models.StatusWaitlisted:
		subject = fmt.Sprintf("You're on the waitlist for %s", programTitle)
		body = fmt.Sprintf("Dear %s,\n\nYour application to %s has been placed on the waitlist. We'll notify you as soon as a decision is made.\n", fullName, programTitle)
	default:
		subject = fmt.Sprintf("Your application to %s", programTitle)
		body = fmt.Sprintf("Dear %s,\n\nYour application to %s is now %s.\n", fullName, programTitle, status)
	}
	return subject, body
}
