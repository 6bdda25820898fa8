package email

import (
	"fmt"
	"html"
	"time"

	"botusage/internal/models"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sender is the subset of the SendGrid client used for delivery
type sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// AlertService sends budget overrun alerts via SendGrid
type AlertService struct {
	client    sender
	fromEmail string
	toEmail   string
}

// NewAlertService creates a new alert service instance
func NewAlertService(apiKey, fromEmail, toEmail string) (*AlertService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SendGrid API key not configured")
	}
	return newAlertService(sendgrid.NewSendClient(apiKey), fromEmail, toEmail)
}

func newAlertService(client sender, fromEmail, toEmail string) (*AlertService, error) {
	if toEmail == "" {
		return nil, fmt.Errorf("alert recipient email not configured")
	}
	if fromEmail == "" {
		fromEmail = "noreply@botusage.dev"
	}
	return &AlertService{
		client:    client,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}, nil
}

// SendBudgetAlert emails the projected overrun of a project
func (as *AlertService) SendBudgetAlert(alert models.BudgetAlert) error {
	from := mail.NewEmail("Bot Usage Analytics", as.fromEmail)
	to := mail.NewEmail("Budget Owner", as.toEmail)

	subject := fmt.Sprintf("AI spend alert: project %s is projected over budget", alert.ProjectID)
	body := alertBody(alert)

	message := mail.NewSingleEmail(from, subject, to, body, alertHTML(body))

	response, err := as.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// alertHTML keeps the plain-text layout intact in HTML mail clients
func alertHTML(body string) string {
	return `<pre style="font-family: monospace">` + html.EscapeString(body) + "</pre>"
}

func alertBody(alert models.BudgetAlert) string {
	p := alert.Projection
	return fmt.Sprintf(`Projected AI spend for project %s exceeds its monthly limit.

Window: %s to %s
Spend in window: $%.2f
Average daily cost: $%.4f
Projected monthly cost: $%.2f
Monthly spend limit: $%.2f (%.0f%% projected)

Generated: %s`,
		alert.ProjectID,
		alert.StartDate, alert.EndDate,
		alert.TotalCost,
		p.AverageDailyCost,
		p.ProjectedMonthlyCost,
		p.SpendLimit, p.PercentOfLimit,
		time.Now().UTC().Format(time.RFC3339))
}
