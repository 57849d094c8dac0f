// Package reminder periodically looks for overdue loans and hands them to the
// notification workers.
package reminder

import (
	"context"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/notification"
	"notebook-loans-backend/internal/parse"
	"notebook-loans-backend/internal/store"
)

// LoanSource lists the loans still owed a reminder on a day.
type LoanSource interface {
	ListLoansToRemind(ctx context.Context, day time.Time) ([]model.Loan, error)
}

type workerPool interface {
	Start(ctx context.Context)
	Dispatch(ctx context.Context, job notification.Job) error
	Wait()
}

// Service drives the reminder loop.
type Service struct {
	cfg   config.ReminderConfig
	loans LoanSource
	pool  workerPool
	loc   *time.Location
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service, *[]notification.Option)

// WithClock replaces time.Now when picking the current day.
func WithClock(now func() time.Time) Option {
	return func(s *Service, _ *[]notification.Option) { s.now = now }
}

// WithSender replaces the web push sender of the worker pool.
func WithSender(sender notification.NotificationSender) Option {
	return func(_ *Service, poolOpts *[]notification.Option) {
		*poolOpts = append(*poolOpts, notification.WithSender(sender))
	}
}

// NewService wires the reminder loop to the store and a web push worker pool.
func NewService(cfg *config.Config, st store.Store, webpushOptions *webpush.Options, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		cfg:   cfg.Reminder,
		loans: st,
		loc:   loc,
		now:   time.Now,
	}
	var poolOpts []notification.Option
	for _, opt := range opts {
		opt(s, &poolOpts)
	}
	s.pool = notification.NewWorkerPool(cfg.Reminder.WorkerPoolSize, st, webpushOptions, poolOpts...)
	return s
}

// Run sweeps once immediately and then every configured interval until ctx
// is done. It returns after the workers have stopped.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Reminders are disabled. Not starting.")
		return
	}
	log.Println("Starting reminder service...")

	s.pool.Start(ctx)
	defer s.pool.Wait()

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce dispatches a job for every overdue loan not yet reminded today
// and returns how many were queued.
func (s *Service) SweepOnce(ctx context.Context) int {
	today := parse.Day(s.now(), s.loc)
	loans, err := s.loans.ListLoansToRemind(ctx, today)
	if err != nil {
		log.Printf("Error listing overdue loans: %v", err)
		return 0
	}
	if len(loans) == 0 {
		return 0
	}

	log.Printf("Found %d overdue loans to remind on %s", len(loans), today.Format(parse.DateLayout))
	queued := 0
	for _, l := range loans {
		if err := s.pool.Dispatch(ctx, notification.Job{LoanID: l.ID, Day: today}); err != nil {
			log.Printf("Reminder sweep interrupted: %v", err)
			break
		}
		queued++
	}
	return queued
}
