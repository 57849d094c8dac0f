package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"notebook-loans-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Store is the part of the persistence layer the workers use.
type Store interface {
	GetLoan(ctx context.Context, id int64) (*model.Loan, error)
	NotebookAssetTags(ctx context.Context, ids []int64) (map[int64]string, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	MarkLoanReminded(ctx context.Context, id int64, day time.Time) error
}

// Job asks for an overdue reminder about one loan on Day.
type Job struct {
	LoanID int64
	Day    time.Time
}

// Message is the JSON payload the service worker displays.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   Store
	webpush *webpush.Options
	sender  NotificationSender
	wg      sync.WaitGroup
}

// Option configures a WorkerPool.
type Option func(*WorkerPool)

// WithSender replaces the web push sender.
func WithSender(s NotificationSender) Option {
	return func(wp *WorkerPool) { wp.sender = s }
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, st Store, webpushOptions *webpush.Options, opts ...Option) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
	for _, opt := range opts {
		opt(wp)
	}
	return wp
}

// Start launches the worker goroutines. They stop when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.remind(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job, blocking while every worker is busy.
func (wp *WorkerPool) Dispatch(ctx context.Context, job Job) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// remind pushes the reminder for one loan to every subscription and records
// the day once at least one browser accepted it.
func (wp *WorkerPool) remind(ctx context.Context, job Job) {
	loan, err := wp.store.GetLoan(ctx, job.LoanID)
	if err != nil {
		log.Printf("Error fetching loan %d: %v", job.LoanID, err)
		return
	}
	if !loan.IsOverdue(job.Day) {
		return
	}

	subscriptions, err := wp.store.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching subscriptions for loan %d: %v", loan.ID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	tags, err := wp.store.NotebookAssetTags(ctx, loan.NotebookIDs)
	if err != nil {
		log.Printf("Error fetching asset tags for loan %d: %v", loan.ID, err)
	}
	payload, err := json.Marshal(ReminderMessage(loan, tags, job.Day))
	if err != nil {
		log.Printf("Error encoding reminder for loan %d: %v", loan.ID, err)
		return
	}

	log.Printf("Sending %d notifications for loan %d", len(subscriptions), loan.ID)
	delivered := 0
	for _, sub := range subscriptions {
		if wp.sendNotification(ctx, sub, payload) {
			delivered++
		}
	}
	if delivered == 0 {
		return
	}
	if err := wp.store.MarkLoanReminded(ctx, loan.ID, job.Day); err != nil {
		log.Printf("Error marking loan %d reminded: %v", loan.ID, err)
	}
}

// sendNotification sends a single web push notification and reports whether
// the push service accepted it.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return false
	case resp.StatusCode >= 300:
		log.Printf("Push service rejected notification to %s with status %d", sub.Endpoint, resp.StatusCode)
		return false
	}
	return true
}

// ReminderMessage builds the notification for an overdue loan. Notebooks
// missing from tags are shown by id.
func ReminderMessage(loan *model.Loan, tags map[int64]string, day time.Time) Message {
	labels := make([]string, 0, len(loan.NotebookIDs))
	for _, id := range loan.NotebookIDs {
		if tag, ok := tags[id]; ok && tag != "" {
			labels = append(labels, tag)
		} else {
			labels = append(labels, fmt.Sprintf("#%d", id))
		}
	}

	days := int(day.Sub(loan.DueDate.UTC()).Hours() / 24)
	unit := "dias"
	if days == 1 {
		unit = "dia"
	}
	return Message{
		Title: "Empréstimo em atraso",
		Body: fmt.Sprintf("%s (%s) está com %s há %d %s além do prazo (%s).",
			loan.RequesterName, loan.Department, strings.Join(labels, ", "), days, unit,
			loan.DueDate.UTC().Format("02/01/2006")),
		URL: fmt.Sprintf("/emprestimos/%d", loan.ID),
		Tag: fmt.Sprintf("emprestimo-%d", loan.ID),
	}
}
