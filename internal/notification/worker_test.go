package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notebook-loans-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func statusResponse(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewBufferString(""))}
}

type fakeStore struct {
	mu       sync.Mutex
	loans    map[int64]*model.Loan
	tags     map[int64]string
	subs     []model.PushSubscription
	deleted  []string
	reminded map[int64]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{loans: map[int64]*model.Loan{}, tags: map[int64]string{}, reminded: map[int64]time.Time{}}
}

func (f *fakeStore) GetLoan(_ context.Context, id int64) (*model.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) NotebookAssetTags(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			out[id] = tag
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubscriptions(context.Context) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PushSubscription(nil), f.subs...), nil
}

func (f *fakeStore) DeleteSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeStore) MarkLoanReminded(_ context.Context, id int64, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded[id] = day
	return nil
}

var (
	day     = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	dueDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
)

func overdueLoan(id int64) *model.Loan {
	return &model.Loan{
		ID:            id,
		RequesterName: "Maria",
		Department:    "SME",
		DueDate:       dueDate,
		Status:        model.LoanActive,
		NotebookIDs:   []int64{1, 2},
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newFakeStore(), &webpush.Options{})

	require.NoError(t, wp.Dispatch(context.Background(), Job{LoanID: 123, Day: day}))

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job.LoanID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchHonorsContext(t *testing.T) {
	wp := NewWorkerPool(1, newFakeStore(), &webpush.Options{})
	require.NoError(t, wp.Dispatch(context.Background(), Job{LoanID: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wp.Dispatch(ctx, Job{LoanID: 2}), context.Canceled)
}

func TestWorkerPool_Remind(t *testing.T) {
	tests := []struct {
		name         string
		loan         *model.Loan
		subs         []string
		status       map[string]int
		wantSent     int
		wantDeleted  []string
		wantReminded bool
	}{
		{
			name:         "sends to every subscription",
			loan:         overdueLoan(1),
			subs:         []string{"https://push.example.com/a", "https://push.example.com/b"},
			wantSent:     2,
			wantReminded: true,
		},
		{
			name:         "deletes expired subscriptions",
			loan:         overdueLoan(1),
			subs:         []string{"https://push.example.com/gone", "https://push.example.com/ok"},
			status:       map[string]int{"https://push.example.com/gone": http.StatusGone},
			wantSent:     2,
			wantDeleted:  []string{"https://push.example.com/gone"},
			wantReminded: true,
		},
		{
			name:         "nothing delivered leaves the loan unmarked",
			loan:         overdueLoan(1),
			subs:         []string{"https://push.example.com/gone"},
			status:       map[string]int{"https://push.example.com/gone": http.StatusNotFound},
			wantSent:     1,
			wantDeleted:  []string{"https://push.example.com/gone"},
			wantReminded: false,
		},
		{
			name: "returned loans are skipped",
			loan: func() *model.Loan {
				l := overdueLoan(1)
				l.Status = model.LoanReturned
				return l
			}(),
			subs: []string{"https://push.example.com/a"},
		},
		{
			name: "no subscriptions",
			loan: overdueLoan(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			st.loans[tt.loan.ID] = tt.loan
			st.tags = map[int64]string{1: "PAT-001", 2: "PAT-002"}
			for _, ep := range tt.subs {
				st.subs = append(st.subs, model.PushSubscription{Endpoint: ep, P256DH: "k", Auth: "a"})
			}

			var mu sync.Mutex
			var sent []string
			wp := NewWorkerPool(1, st, &webpush.Options{})
			wp.sender = &mockSender{
				SendFunc: func(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
					var msg Message
					require.NoError(t, json.Unmarshal(payload, &msg))
					assert.Equal(t, "Empréstimo em atraso", msg.Title)
					mu.Lock()
					sent = append(sent, sub.Endpoint)
					mu.Unlock()
					if code, ok := tt.status[sub.Endpoint]; ok {
						return statusResponse(code), nil
					}
					return statusResponse(http.StatusCreated), nil
				},
			}

			// Processing inline keeps the assertions free of timing.
			wp.remind(context.Background(), Job{LoanID: tt.loan.ID, Day: day})

			assert.Len(t, sent, tt.wantSent)
			assert.Equal(t, tt.wantDeleted, st.deleted)
			_, reminded := st.reminded[tt.loan.ID]
			assert.Equal(t, tt.wantReminded, reminded)
		})
	}
}

func TestWorkerPool_SendError(t *testing.T) {
	st := newFakeStore()
	st.loans[1] = overdueLoan(1)
	st.subs = []model.PushSubscription{{Endpoint: "https://push.example.com/a"}}

	wp := NewWorkerPool(1, st, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	wp.remind(context.Background(), Job{LoanID: 1, Day: day})

	assert.Empty(t, st.reminded)
	assert.Empty(t, st.deleted)
}

func TestWorkerPool_Workers(t *testing.T) {
	st := newFakeStore()
	st.loans[7] = overdueLoan(7)
	st.subs = []model.PushSubscription{{Endpoint: "https://push.example.com/a"}}

	done := make(chan struct{})
	wp := NewWorkerPool(2, st, &webpush.Options{}, WithSender(&mockSender{
		SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
			close(done)
			return statusResponse(http.StatusCreated), nil
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	require.NoError(t, wp.Dispatch(ctx, Job{LoanID: 7, Day: day}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the notification")
	}
	cancel()
	wp.Wait()

	assert.Contains(t, st.reminded, int64(7))
}

func TestReminderMessage(t *testing.T) {
	tests := []struct {
		name     string
		day      time.Time
		tags     map[int64]string
		wantBody string
	}{
		{
			name:     "several days",
			day:      day,
			tags:     map[int64]string{1: "PAT-001", 2: "PAT-002"},
			wantBody: "Maria (SME) está com PAT-001, PAT-002 há 5 dias além do prazo (05/03/2024).",
		},
		{
			name:     "one day and a missing tag",
			day:      dueDate.AddDate(0, 0, 1),
			tags:     map[int64]string{1: "PAT-001"},
			wantBody: "Maria (SME) está com PAT-001, #2 há 1 dia além do prazo (05/03/2024).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ReminderMessage(overdueLoan(3), tt.tags, tt.day)
			assert.Equal(t, tt.wantBody, msg.Body)
			assert.Equal(t, "/emprestimos/3", msg.URL)
			assert.Equal(t, "emprestimo-3", msg.Tag)
		})
	}
}
