package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/query"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListNotebooks(ctx context.Context, q query.Query) ([]model.Notebook, int64, error)
	GetNotebook(ctx context.Context, id int64) (*model.Notebook, error)
	CreateNotebook(ctx context.Context, n *model.Notebook) error
	UpdateNotebook(ctx context.Context, n *model.Notebook) error
	DeleteNotebook(ctx context.Context, id int64) error
	ListNotebooksByStatus(ctx context.Context, status model.NotebookStatus) ([]model.Notebook, error)
	NotebookAssetTags(ctx context.Context, ids []int64) (map[int64]string, error)
	NotebookStatusCounts(ctx context.Context) (map[model.NotebookStatus]int64, error)

	ListLoans(ctx context.Context, q query.Query) ([]model.Loan, int64, error)
	GetLoan(ctx context.Context, id int64) (*model.Loan, error)
	CreateLoan(ctx context.Context, l *model.Loan) error
	UpdateLoan(ctx context.Context, l *model.Loan) error
	DeleteLoan(ctx context.Context, id int64) error
	CountLoansByStatus(ctx context.Context, status model.LoanStatus) (int64, error)
	ListOverdueLoans(ctx context.Context, day time.Time) ([]model.Loan, error)
	ListLoansToRemind(ctx context.Context, day time.Time) ([]model.Loan, error)
	MarkLoanReminded(ctx context.Context, id int64, day time.Time) error

	ListUsers(ctx context.Context, q query.Query) ([]model.User, int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// Option configures a gormStore.
type Option func(*gormStore)

// WithClock replaces time.Now for lifecycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *gormStore) { s.now = now }
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts ...Option) Store {
	s := &gormStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// timestamp is the current time as stored: UTC at microsecond precision.
func (s *gormStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// uniqueField is one column that must not repeat across rows.
type uniqueField struct {
	column string
	value  string
}

// checkUnique looks for another row holding any of the given values.
func checkUnique(tx *gorm.DB, m any, resource string, id int64, fields ...uniqueField) error {
	for _, f := range fields {
		var n int64
		q := tx.Model(m).Where(f.column+" = ?", f.value)
		if id != 0 {
			q = q.Where("id <> ?", id)
		}
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("check unique %s: %w", f.column, err)
		}
		if n > 0 {
			return &apperr.ConflictError{Resource: resource, Field: f.column, Value: f.value}
		}
	}
	return nil
}

// conflictFrom maps a driver-level duplicate key error that slipped past
// checkUnique (a concurrent writer) to a ConflictError.
func conflictFrom(err error, resource string, fields ...uniqueField) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) || len(fields) == 0 {
		return err
	}
	for _, f := range fields {
		if strings.Contains(err.Error(), f.column) {
			return &apperr.ConflictError{Resource: resource, Field: f.column, Value: f.value}
		}
	}
	return &apperr.ConflictError{Resource: resource, Field: fields[0].column, Value: fields[0].value}
}

func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// list counts the filtered rows, checks the requested page and loads it.
func list[T any](ctx context.Context, db *gorm.DB, fields query.Fields, q query.Query) ([]T, int64, error) {
	base := fields.Where(db.WithContext(ctx).Model(new(T)), q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	if err := q.Page.Check(total); err != nil {
		return nil, total, err
	}

	var items []T
	if err := q.Paginate(fields.OrderBy(base, q)).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return items, total, nil
}
