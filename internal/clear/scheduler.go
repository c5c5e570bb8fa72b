// Package clear deletes exchanged messages, either immediately or after a
// per-user privacy delay.
package clear

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deleter removes a single message from a chat. Implemented by the
// Telegram adapter; tests supply fakes.
type Deleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Job is a handle to one pending delayed clear.
type Job struct {
	ID     string
	chatID int64
	done   chan struct{}
	once   sync.Once
}

// Cancel stops the job if it has not fired yet. Safe to call more than
// once and after the job has fired.
func (j *Job) Cancel() {
	j.once.Do(func() { close(j.done) })
}

// Scheduler runs delayed best-effort message deletions. Each scheduled
// job owns its message set and fires independently; jobs for the same
// chat coexist, and callers cancel a specific job through its handle.
type Scheduler struct {
	deleter Deleter
	logger  *zap.Logger
}

// NewScheduler creates a Scheduler that deletes through d.
func NewScheduler(d Deleter, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		deleter: d,
		logger:  logger,
	}
}

// Schedule registers a delayed deletion of messageIDs in chatID and
// returns the handle to cancel it. A zero or negative delay is the
// caller's mistake; Schedule still honors it by firing on the next tick.
func (s *Scheduler) Schedule(chatID int64, messageIDs []int, delay time.Duration) *Job {
	ids := append([]int(nil), messageIDs...)
	job := &Job{
		ID:     uuid.NewString(),
		chatID: chatID,
		done:   make(chan struct{}),
	}

	s.logger.Info("scheduled auto-clear",
		zap.String("job_id", job.ID),
		zap.Int64("chat_id", chatID),
		zap.Int("messages", len(ids)),
		zap.Duration("delay", delay),
	)

	go s.run(job, ids, delay)
	return job
}

func (s *Scheduler) run(job *Job, ids []int, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-job.done:
		s.logger.Info("auto-clear cancelled",
			zap.String("job_id", job.ID), zap.Int64("chat_id", job.chatID))
		return
	case <-timer.C:
	}

	s.DeleteNow(context.Background(), job.chatID, ids)
	s.logger.Info("auto-clear fired",
		zap.String("job_id", job.ID), zap.Int64("chat_id", job.chatID))
}

// DeleteNow attempts deletion of each message id independently. Failures
// are logged and never stop the remaining ids or reach the caller; a
// message already gone counts as cleared.
func (s *Scheduler) DeleteNow(ctx context.Context, chatID int64, messageIDs []int) {
	for _, id := range messageIDs {
		if err := s.deleter.DeleteMessage(ctx, chatID, id); err != nil {
			s.logger.Warn("could not delete message",
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", id),
				zap.Error(err),
			)
		}
	}
}
