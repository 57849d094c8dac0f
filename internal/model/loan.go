package model

import "time"

const LoanNotebookTable = "loan_notebooks"

// Loan is a checkout record covering one or more notebooks.
type Loan struct {
	ID                    int64      `gorm:"primaryKey"`
	LoanType              LoanType   `gorm:"size:16;not null"`
	RequesterName         string     `gorm:"size:128;index;not null"`
	Department            string     `gorm:"size:128;index;not null"`
	EventDescription      string     `gorm:"size:128;not null"`
	CheckoutDate          time.Time  `gorm:"type:date;not null"`
	DueDate               time.Time  `gorm:"type:date;index;not null"`
	ReturnDate            *time.Time `gorm:"type:date"`
	ReturnCondition       string     `gorm:"size:16;not null"`
	ReturnNotes           string     `gorm:"type:text;not null"`
	ReceiptURL            string     `gorm:"column:receipt_url;size:256;not null"`
	Status                LoanStatus `gorm:"size:16;index;not null"`
	ResponsibleTechnician string     `gorm:"size:128;not null"`
	// RemindedOn is the last day an overdue reminder went out. Internal only.
	RemindedOn *time.Time `gorm:"type:date"`
	CreatedAt  time.Time  `gorm:"column:created_date;not null;autoCreateTime:false"`

	// NotebookIDs mirrors the loan_notebooks rows; the store keeps it in sync.
	NotebookIDs []int64 `gorm:"-"`
}

// OnCreate stamps the creation time.
func (l *Loan) OnCreate(now time.Time) {
	l.CreatedAt = now
}

// OnUpdate is a no-op: loans carry no update timestamp.
func (l *Loan) OnUpdate(time.Time) {}

// IsOverdue reports whether an active loan is past its due date on day.
func (l *Loan) IsOverdue(day time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(day)
}

// LoanNotebook is one row of the loan ↔ notebook relation.
type LoanNotebook struct {
	LoanID     int64 `gorm:"primaryKey;autoIncrement:false"`
	NotebookID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (LoanNotebook) TableName() string { return LoanNotebookTable }
