package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/query"
)

const loanResource = "Empréstimo"

var loanColumns = []string{
	"loan_type", "requester_name", "department", "event_description", "checkout_date", "due_date",
	"return_date", "return_condition", "return_notes", "receipt_url", "status", "responsible_technician",
}

func (s *gormStore) ListLoans(ctx context.Context, q query.Query) ([]model.Loan, int64, error) {
	loans, total, err := list[model.Loan](ctx, s.db, LoanFields, q)
	if err != nil {
		return nil, total, err
	}
	if err := attachNotebookIDs(s.db.WithContext(ctx), loans); err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

func (s *gormStore) GetLoan(ctx context.Context, id int64) (*model.Loan, error) {
	var l model.Loan
	db := s.db.WithContext(ctx)
	if err := db.First(&l, id).Error; err != nil {
		return nil, notFound(err, loanResource, id)
	}
	loans := []model.Loan{l}
	if err := attachNotebookIDs(db, loans); err != nil {
		return nil, err
	}
	return &loans[0], nil
}

// CreateLoan inserts the loan and its notebook links in one transaction.
func (s *gormStore) CreateLoan(ctx context.Context, l *model.Loan) error {
	l.ID = 0
	l.OnCreate(s.timestamp())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNotebooksExist(tx, l.NotebookIDs); err != nil {
			return err
		}
		if err := tx.Create(l).Error; err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		return linkNotebooks(tx, l.ID, l.NotebookIDs)
	})
}

// UpdateLoan writes every writable column. A non-nil NotebookIDs replaces
// the notebook links; nil keeps them and reloads NotebookIDs from the table.
func (s *gormStore) UpdateLoan(ctx context.Context, l *model.Loan) error {
	l.OnUpdate(s.timestamp())
	relink := l.NotebookIDs != nil
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if relink {
			if err := checkNotebooksExist(tx, l.NotebookIDs); err != nil {
				return err
			}
		}
		res := tx.Model(l).Select(loanColumns).Updates(l)
		if res.Error != nil {
			return fmt.Errorf("update loan %d: %w", l.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, loanResource, l.ID)
		}
		if !relink {
			loans := []model.Loan{*l}
			if err := attachNotebookIDs(tx, loans); err != nil {
				return err
			}
			l.NotebookIDs = loans[0].NotebookIDs
			return nil
		}
		if err := tx.Where("loan_id = ?", l.ID).Delete(&model.LoanNotebook{}).Error; err != nil {
			return fmt.Errorf("unlink notebooks of loan %d: %w", l.ID, err)
		}
		return linkNotebooks(tx, l.ID, l.NotebookIDs)
	})
}

func (s *gormStore) DeleteLoan(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", id).Delete(&model.LoanNotebook{}).Error; err != nil {
			return fmt.Errorf("unlink notebooks of loan %d: %w", id, err)
		}
		res := tx.Delete(&model.Loan{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete loan %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, loanResource, id)
		}
		return nil
	})
}

func (s *gormStore) CountLoansByStatus(ctx context.Context, status model.LoanStatus) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Loan{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count loans: %w", err)
	}
	return n, nil
}

// ListOverdueLoans returns active loans due before day, oldest due first.
func (s *gormStore) ListOverdueLoans(ctx context.Context, day time.Time) ([]model.Loan, error) {
	return s.findLoans(ctx, s.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", model.LoanActive, day))
}

// ListLoansToRemind is ListOverdueLoans minus the loans already reminded on day.
func (s *gormStore) ListLoansToRemind(ctx context.Context, day time.Time) ([]model.Loan, error) {
	return s.findLoans(ctx, s.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", model.LoanActive, day).
		Where("reminded_on IS NULL OR reminded_on < ?", day))
}

func (s *gormStore) findLoans(ctx context.Context, tx *gorm.DB) ([]model.Loan, error) {
	var loans []model.Loan
	if err := tx.Order("due_date ASC, id ASC").Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	if err := attachNotebookIDs(s.db.WithContext(ctx), loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *gormStore) MarkLoanReminded(ctx context.Context, id int64, day time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.Loan{}).Where("id = ?", id).Update("reminded_on", day).Error
	if err != nil {
		return fmt.Errorf("mark loan %d reminded: %w", id, err)
	}
	return nil
}

// checkNotebooksExist reports the first id with no notebook behind it.
func checkNotebooksExist(tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return apperr.FieldError("notebooks", "Esta lista não pode estar vazia.")
	}
	var found []int64
	if err := tx.Model(&model.Notebook{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("check notebooks: %w", err)
	}
	for _, id := range ids {
		if !slices.Contains(found, id) {
			return apperr.FieldError("notebooks", fmt.Sprintf("Pk inválido \"%d\" - objeto não existe.", id))
		}
	}
	return nil
}

func linkNotebooks(tx *gorm.DB, loanID int64, ids []int64) error {
	links := make([]model.LoanNotebook, 0, len(ids))
	for _, id := range ids {
		links = append(links, model.LoanNotebook{LoanID: loanID, NotebookID: id})
	}
	if len(links) == 0 {
		return nil
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link notebooks to loan %d: %w", loanID, err)
	}
	return nil
}

// attachNotebookIDs fills NotebookIDs for every loan with one query.
func attachNotebookIDs(db *gorm.DB, loans []model.Loan) error {
	if len(loans) == 0 {
		return nil
	}
	loanIDs := make([]int64, len(loans))
	for i := range loans {
		loanIDs[i] = loans[i].ID
	}

	var links []model.LoanNotebook
	if err := db.Where("loan_id IN ?", loanIDs).Order("notebook_id ASC").Find(&links).Error; err != nil {
		return fmt.Errorf("load loan notebooks: %w", err)
	}

	byLoan := make(map[int64][]int64, len(loans))
	for _, link := range links {
		byLoan[link.LoanID] = append(byLoan[link.LoanID], link.NotebookID)
	}
	for i := range loans {
		loans[i].NotebookIDs = byLoan[loans[i].ID]
		if loans[i].NotebookIDs == nil {
			loans[i].NotebookIDs = []int64{}
		}
	}
	return nil
}
