package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service whose sends are no-ops.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{debug: debug, appBaseURL: appBaseURL}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing SES email service: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail tells a new user how to sign in
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName, temporaryPassword string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	lines := []string{
		"An account has been created for you on LearnPlay.",
		"Sign in with your email address and this temporary password: " + temporaryPassword,
		"Please change it after your first sign-in.",
	}
	return s.send(ctx, toEmail, "Welcome to LearnPlay!", toName, lines, s.appBaseURL+"/login", "Sign in")
}

// SendAssignmentEmail tells a student about a new assignment
func (s *EmailService) SendAssignmentEmail(ctx context.Context, toEmail, toName, title, gameTitle string, due *time.Time) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): assignment %q to %s", title, toEmail)
		return nil
	}

	lines := []string{
		fmt.Sprintf("Your teacher has set a new assignment: %s.", title),
		fmt.Sprintf("Play %s to complete it.", gameTitle),
	}
	if due != nil {
		lines = append(lines, "It is due on "+due.Format("Monday, 2 January 2006")+".")
	}
	return s.send(ctx, toEmail, "New assignment: "+title, toName, lines, s.appBaseURL+"/student/assignments", "Open assignments")
}

// send renders a short message as HTML and plain text
func (s *EmailService) send(ctx context.Context, toEmail, subject, toName string, lines []string, link, linkText string) error {
	var h, t strings.Builder
	fmt.Fprintf(&h, `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<p>Hi %s,</p>
`, html.EscapeString(toName))
	fmt.Fprintf(&t, "Hi %s,\n\n", toName)
	for _, line := range lines {
		fmt.Fprintf(&h, "<p>%s</p>\n", html.EscapeString(line))
		fmt.Fprintf(&t, "%s\n", line)
	}
	fmt.Fprintf(&h, `<p style="text-align: center;"><a href="%s" style="display: inline-block; padding: 12px 30px; background-color: #7c3aed; color: white; text-decoration: none; border-radius: 5px;">%s</a></p>
<p style="font-size: 12px; color: #666;">This is an automated email from LearnPlay. Please do not reply.</p>
</div>
</body>
</html>
`, html.EscapeString(link), html.EscapeString(linkText))
	fmt.Fprintf(&t, "\n%s: %s\n\n---\nThis is an automated email from LearnPlay. Please do not reply.\n", linkText, link)

	return s.sendEmail(ctx, toEmail, subject, h.String(), t.String())
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: from=%s to=%s subject=%q (%d bytes html)", fromAddress, toEmail, subject, len(htmlBody))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message id: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
