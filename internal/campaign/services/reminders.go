package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const reminderLockKey = "stormbringer:lock:campaign-reminders"

// Locker serializes the reminder sweep across server instances
type Locker interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

// ReminderScheduler runs the upcoming session sweep on a cron schedule
type ReminderScheduler struct {
	service  *Service
	locker   Locker
	schedule string
	cron     *cron.Cron
	owner    string

	mu      sync.Mutex
	running bool
}

// NewReminderScheduler creates a scheduler for schedule. locker may be nil
// on single-instance deployments.
func NewReminderScheduler(service *Service, locker Locker, schedule string) *ReminderScheduler {
	return &ReminderScheduler{
		service:  service,
		locker:   locker,
		schedule: schedule,
		cron:     cron.New(),
		owner:    uuid.NewString(),
	}
}

// Start registers the sweep and starts the cron loop
func (r *ReminderScheduler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("reminder scheduler is already running")
	}
	if _, err := r.cron.AddFunc(r.schedule, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.running = true

	slog.InfoContext(ctx, "Campaign reminder scheduler started", "schedule", r.schedule)
	return nil
}

// Stop waits for a running sweep and stops the cron loop
func (r *ReminderScheduler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	cronCtx := r.cron.Stop()
	<-cronCtx.Done()
	r.running = false
	slog.Info("Campaign reminder scheduler stopped")
}

// RunOnce performs one sweep, skipping it when another instance holds the lock
func (r *ReminderScheduler) RunOnce(ctx context.Context) {
	if r.locker != nil {
		ok, err := r.locker.AcquireLock(ctx, reminderLockKey, r.owner, 5*time.Minute)
		if err != nil {
			slog.WarnContext(ctx, "Reminder lock unavailable", "error", err)
			return
		}
		if !ok {
			slog.DebugContext(ctx, "Reminder sweep running elsewhere")
			return
		}
		defer func() {
			if err := r.locker.ReleaseLock(ctx, reminderLockKey, r.owner); err != nil {
				slog.WarnContext(ctx, "Failed to release reminder lock", "error", err)
			}
		}()
	}

	sent, err := r.service.SendReminders(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Reminder sweep failed", "sent", sent, "error", err)
		return
	}
	if sent > 0 {
		slog.InfoContext(ctx, "Reminder sweep finished", "sent", sent)
	}
}
