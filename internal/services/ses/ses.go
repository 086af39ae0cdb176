// Package ses sends lead alert digests via AWS SES
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client       *ses.Client
	fromEmail    string
	alertEmail   string
	dashboardURL string
	logger       *zap.Logger
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// DigestParams is the data rendered into a lead alert digest.
type DigestParams struct {
	BatchID      string
	Alerts       []models.LeadAlert
	DashboardURL string
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:       ses.NewFromConfig(cfg),
		fromEmail:    appCfg.SESSenderEmail,
		alertEmail:   appCfg.LeadAlertEmail,
		dashboardURL: appCfg.DashboardBaseURL,
		logger:       utils.Component("ses"),
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// NotifyLeadAlerts emails the sales desk one digest of the leads that turned
// hot or urgent in a recalculation batch.
func (s *Service) NotifyLeadAlerts(ctx context.Context, batchID string, alerts []models.LeadAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	if s.fromEmail == "" || s.alertEmail == "" {
		return errors.New("lead alert email is not configured")
	}

	params := BuildDigestParams(batchID, alerts, s.dashboardURL)

	htmlBody, err := RenderDigestHTML(params)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	_, err = s.SendEmail(ctx, EmailParams{
		To:       s.alertEmail,
		Subject:  DigestSubject(params),
		HTMLBody: htmlBody,
		TextBody: RenderDigestText(params),
	})
	return err
}

// BuildDigestParams orders alerts urgent first, then by descending score.
func BuildDigestParams(batchID string, alerts []models.LeadAlert, dashboardURL string) DigestParams {
	sorted := make([]models.LeadAlert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		ui := sorted[i].Priority == models.PriorityUrgent
		uj := sorted[j].Priority == models.PriorityUrgent
		if ui != uj {
			return ui
		}
		return sorted[i].Score > sorted[j].Score
	})

	return DigestParams{
		BatchID:      batchID,
		Alerts:       sorted,
		DashboardURL: dashboardURL,
	}
}

// DigestSubject returns the digest subject line.
func DigestSubject(params DigestParams) string {
	urgent := 0
	for _, alert := range params.Alerts {
		if alert.Priority == models.PriorityUrgent {
			urgent++
		}
	}
	return fmt.Sprintf("%d leads need attention (%d urgent)", len(params.Alerts), urgent)
}

var digestTemplate = template.Must(template.New("lead_digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Helvetica, Arial, sans-serif; color: #333; max-width: 640px; margin: 0 auto; padding: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
        .urgent { color: #c0392b; font-weight: bold; }
        .footer { margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <h2>Leads needing attention</h2>
    <table>
        <tr><th>Customer</th><th>Score</th><th>Temperature</th><th>Priority</th><th>Days in stage</th></tr>
        {{range .Alerts}}
        <tr>
            <td>{{.Name}}<br><small>{{.Email}}</small></td>
            <td>{{.Score}}</td>
            <td>{{.Temperature}}</td>
            <td{{if eq .Priority "urgent"}} class="urgent"{{end}}>{{.Priority}}</td>
            <td>{{.DaysInStage}}</td>
        </tr>
        {{end}}
    </table>
    {{if .DashboardURL}}<p><a href="{{.DashboardURL}}/leads">Open the lead board</a></p>{{end}}
    <p class="footer">Recalculation batch {{.BatchID}}</p>
</body>
</html>`))

// RenderDigestHTML renders the HTML digest.
func RenderDigestHTML(params DigestParams) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderDigestText renders the plain text digest.
func RenderDigestText(params DigestParams) string {
	var buf bytes.Buffer

	buf.WriteString("Leads needing attention:\n\n")
	for i, alert := range params.Alerts {
		buf.WriteString(fmt.Sprintf("%d. %s <%s>\n", i+1, alert.Name, alert.Email))
		buf.WriteString(fmt.Sprintf("   Score %d, %s, priority %s, %d days in stage\n\n",
			alert.Score, alert.Temperature, alert.Priority, alert.DaysInStage))
	}

	if params.DashboardURL != "" {
		buf.WriteString(fmt.Sprintf("Lead board: %s/leads\n\n", params.DashboardURL))
	}
	buf.WriteString(fmt.Sprintf("Batch %s\n", params.BatchID))

	return buf.String()
}
