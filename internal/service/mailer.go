package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Mailer delivers plain-text e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

type mailRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// MailClient posts messages to an HTTP mail gateway.
type MailClient struct {
	httpClient *resty.Client
	url        string
	from       string
	logger     *zap.Logger
}

func NewMailClient(url, apiKey, from string, logger *zap.Logger) *MailClient {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &MailClient{httpClient: client, url: url, from: from, logger: logger}
}

func (c *MailClient) Send(ctx context.Context, to, subject, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(mailRequest{From: c.from, To: to, Subject: subject, Text: text}).
		Post(c.url)
	if err != nil {
		c.logger.Error("Mail gateway request failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("Mail gateway rejected message",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("send mail: gateway returned %d", resp.StatusCode())
	}
	c.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when no
// gateway is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer { return &LogMailer{logger: logger} }

func (m *LogMailer) Send(_ context.Context, to, subject, text string) error {
	m.logger.Warn("MAIL_API_URL not set; mail not delivered",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("text", text),
	)
	return nil
}
