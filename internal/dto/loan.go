package dto

import (
	"slices"
	"time"

	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/parse"
)

// LoanInput is the writable part of a loan payload.
type LoanInput struct {
	Notebooks             []int64          `json:"notebooks" validate:"min=1"`
	LoanType              model.LoanType   `json:"loan_type" validate:"required,choice"`
	RequesterName         string           `json:"requester_name" validate:"required,max=128"`
	Department            string           `json:"department" validate:"required,max=128"`
	EventDescription      string           `json:"event_description" validate:"max=128"`
	CheckoutDate          time.Time        `json:"checkout_date" validate:"required"`
	DueDate               time.Time        `json:"due_date" validate:"required"`
	ReturnDate            *time.Time       `json:"return_date"`
	ReturnCondition       string           `json:"return_condition" validate:"max=16"`
	ReturnNotes           string           `json:"return_notes"`
	ReceiptURL            string           `json:"receipt_url" validate:"max=256"`
	Status                model.LoanStatus `json:"status" validate:"choice"`
	ResponsibleTechnician string           `json:"responsible_technician" validate:"required,max=128"`

	// notebooksSet is false when a partial update left the links alone.
	notebooksSet bool
}

// NewLoanInput returns an input carrying the create defaults.
func NewLoanInput() LoanInput {
	return LoanInput{Status: model.LoanActive}
}

func (in *LoanInput) binding() schema {
	return schema{
		fields: fieldSet{
			"notebooks":              ids(&in.Notebooks),
			"loan_type":              choice(&in.LoanType),
			"requester_name":         str(&in.RequesterName),
			"department":             str(&in.Department),
			"event_description":      str(&in.EventDescription),
			"checkout_date":          date(&in.CheckoutDate),
			"due_date":               date(&in.DueDate),
			"return_date":            nullableDate(&in.ReturnDate),
			"return_condition":       str(&in.ReturnCondition),
			"return_notes":           str(&in.ReturnNotes),
			"receipt_url":            str(&in.ReceiptURL),
			"status":                 choice(&in.Status),
			"responsible_technician": str(&in.ResponsibleTechnician),
		},
		required: []string{
			"notebooks", "loan_type", "requester_name", "department",
			"checkout_date", "due_date", "responsible_technician",
		},
		readOnly: []string{"id", "created_date"},
	}
}

// Decode overlays body on in. Seed in with NewLoanInput or LoanInputFrom first.
func (in *LoanInput) Decode(body []byte, mode Mode) error {
	present, err := decode(body, in, in.binding(), mode)
	in.notebooksSet = present["notebooks"]
	return err
}

// Apply copies the input onto l. NotebookIDs is left nil when the payload
// did not carry notebooks, which tells the store to keep the current links.
func (in LoanInput) Apply(l *model.Loan) {
	l.NotebookIDs = nil
	if in.notebooksSet {
		l.NotebookIDs = slices.Clone(in.Notebooks)
	}
	l.LoanType = in.LoanType
	l.RequesterName = in.RequesterName
	l.Department = in.Department
	l.EventDescription = in.EventDescription
	l.CheckoutDate = in.CheckoutDate
	l.DueDate = in.DueDate
	l.ReturnDate = in.ReturnDate
	l.ReturnCondition = in.ReturnCondition
	l.ReturnNotes = in.ReturnNotes
	l.ReceiptURL = in.ReceiptURL
	l.Status = in.Status
	l.ResponsibleTechnician = in.ResponsibleTechnician
}

func LoanInputFrom(l *model.Loan) LoanInput {
	return LoanInput{
		Notebooks:             slices.Clone(l.NotebookIDs),
		LoanType:              l.LoanType,
		RequesterName:         l.RequesterName,
		Department:            l.Department,
		EventDescription:      l.EventDescription,
		CheckoutDate:          l.CheckoutDate,
		DueDate:               l.DueDate,
		ReturnDate:            l.ReturnDate,
		ReturnCondition:       l.ReturnCondition,
		ReturnNotes:           l.ReturnNotes,
		ReceiptURL:            l.ReceiptURL,
		Status:                l.Status,
		ResponsibleTechnician: l.ResponsibleTechnician,
	}
}

// LoanResponse renders calendar dates as YYYY-MM-DD.
type LoanResponse struct {
	ID                    int64            `json:"id"`
	Notebooks             []int64          `json:"notebooks"`
	LoanType              model.LoanType   `json:"loan_type"`
	RequesterName         string           `json:"requester_name"`
	Department            string           `json:"department"`
	EventDescription      string           `json:"event_description"`
	CheckoutDate          string           `json:"checkout_date"`
	DueDate               string           `json:"due_date"`
	ReturnDate            *string          `json:"return_date"`
	ReturnCondition       string           `json:"return_condition"`
	ReturnNotes           string           `json:"return_notes"`
	ReceiptURL            string           `json:"receipt_url"`
	Status                model.LoanStatus `json:"status"`
	ResponsibleTechnician string           `json:"responsible_technician"`
	CreatedDate           time.Time        `json:"created_date"`
}

func NewLoanResponse(l *model.Loan) LoanResponse {
	notebooks := l.NotebookIDs
	if notebooks == nil {
		notebooks = []int64{}
	}
	return LoanResponse{
		ID:                    l.ID,
		Notebooks:             notebooks,
		LoanType:              l.LoanType,
		RequesterName:         l.RequesterName,
		Department:            l.Department,
		EventDescription:      l.EventDescription,
		CheckoutDate:          FormatDate(l.CheckoutDate),
		DueDate:               FormatDate(l.DueDate),
		ReturnDate:            formatNullableDate(l.ReturnDate),
		ReturnCondition:       l.ReturnCondition,
		ReturnNotes:           l.ReturnNotes,
		ReceiptURL:            l.ReceiptURL,
		Status:                l.Status,
		ResponsibleTechnician: l.ResponsibleTechnician,
		CreatedDate:           l.CreatedAt.UTC(),
	}
}

func NewLoanResponses(ls []model.Loan) []LoanResponse {
	out := make([]LoanResponse, 0, len(ls))
	for i := range ls {
		out = append(out, NewLoanResponse(&ls[i]))
	}
	return out
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(parse.DateLayout)
}

func formatNullableDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}
