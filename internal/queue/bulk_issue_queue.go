package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/mailer"
	"github.com/openlearn/certforge/internal/repository"
	"go.uber.org/zap"
)

type ConsumerContext struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	// Logger lol....
	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	S3 *minio.Client
}

type BulkIssuePayload struct {
	TemplateID   string   `json:"template_id"`
	StudentIDs   []string `json:"student_ids"`
	CourseID     *string  `json:"course_id,omitempty"`
	ClassID      *string  `json:"class_id,omitempty"`
	Notes        string   `json:"notes"`
	SkipExisting bool     `json:"skip_existing"`
	Actor        string   `json:"actor"`
	CreatedAt    string   `json:"created_at"`
	Retry        int      `json:"retry" default:"0"`
}

func NewBulkIssuePayload(templateId string, studentIds []string, courseId, classId *string, notes string, skipExisting bool, actor string) BulkIssuePayload {
	return BulkIssuePayload{
		TemplateID:   templateId,
		StudentIDs:   studentIds,
		CourseID:     courseId,
		ClassID:      classId,
		Notes:        notes,
		SkipExisting: skipExisting,
		Actor:        actor,
		CreatedAt:    time.Now().Format(time.RFC3339),
		Retry:        0,
	}
}

// The handler returns whether the job should be requeued on error. Per-student
// failures inside the batch are not errors here, the coordinator collects them;
// a handler error means the whole batch could not run.
type BulkIssueJobHandler func(jobPayload BulkIssuePayload, app *ConsumerContext) (bool, error)

func (r *RabbitMQ) ConsumeBulkIssueJob(handler BulkIssueJobHandler, maxWorker int, app *ConsumerContext) error {
	msgs, err := r.Consume(QueueBulkIssue)
	if err != nil {
		return err
	}

	for i := range maxWorker {
		go func(workerID int) {
			for msg := range msgs {
				if msg.Body == nil {
					log.Printf("[Worker %d] Received empty message body", workerID)
					// Acknowledge the message and remove it from the queue
					_ = r.Nack(msg, false)
					continue
				}

				var jobPayload BulkIssuePayload
				if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
					log.Printf("[Worker %d] Invalid payload: %v", workerID, err)
					// Acknowledge the message and remove it from the queue
					_ = r.Nack(msg, false)
					continue
				}

				jobPayload.Retry++
				if jobPayload.Retry > MAX_QUEUE_RETRY {
					log.Printf("[Worker %d] Max retries reached", workerID)
					// Acknowledge the message and remove it from the queue
					_ = r.Nack(msg, false)
					continue
				}
				lastRetry := jobPayload.Retry == MAX_QUEUE_RETRY

				shouldRequeue, err := handler(jobPayload, app)
				if err != nil {
					log.Printf("[Worker %d] Handler error: %v", workerID, err)

					if !shouldRequeue || lastRetry {
						log.Printf("[Worker %d] Dropped bulk job for template %s after %d retries", workerID, jobPayload.TemplateID, jobPayload.Retry)
						_ = r.Nack(msg, false)
						continue
					}

					payloadBytes, err := json.Marshal(jobPayload)
					if err != nil {
						log.Printf("[Worker %d] Failed to marshal job payload: %v", workerID, err)
						_ = r.Nack(msg, false)
						continue
					}

					// requeue with updated retry count
					if err := r.Publish(QueueBulkIssue, payloadBytes); err != nil {
						log.Printf("[Worker %d] Failed to requeue job: %v", workerID, err)
						// Acknowledge the message and remove it from the queue
						_ = r.Nack(msg, false)
						continue
					}

					log.Printf("[Worker %d] Requeued bulk job for template %s, %d students, retry: %d", workerID, jobPayload.TemplateID, len(jobPayload.StudentIDs), jobPayload.Retry)
					_ = r.Ack(msg)
					continue
				}

				log.Printf("[Worker %d] Successfully processed bulk job for template %s, %d students", workerID, jobPayload.TemplateID, len(jobPayload.StudentIDs))
				_ = r.Ack(msg)
			}
		}(i + 1)
	}

	return nil
}
