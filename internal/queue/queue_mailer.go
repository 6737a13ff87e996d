package queue

import (
	"encoding/json"
	"net/http"

	"github.com/openlearn/certforge/internal/mailer"
)

// QueueMailer satisfies mailer.Client by publishing the mail onto the queue
// instead of sending it. The consumer picks it up and does the actual send,
// which keeps slow SMTP round trips out of request handlers.
type QueueMailer struct {
	rabbitMQ *RabbitMQ
}

func NewQueueMailer(rabbitMQ *RabbitMQ) *QueueMailer {
	return &QueueMailer{rabbitMQ: rabbitMQ}
}

func (qm *QueueMailer) Send(templateFile mailer.MailTemplateFile, toUsername, toEmail string, data any) (int, error) {
	payload, err := NewMailJobPayload(toUsername, toEmail, templateFile, data)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	if err := qm.rabbitMQ.Publish(QueueMail, payloadBytes); err != nil {
		return http.StatusInternalServerError, err
	}

	return http.StatusAccepted, nil
}
