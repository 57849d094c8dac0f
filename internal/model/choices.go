package model

// NotebookStatus is the inventory state of a notebook.
type NotebookStatus string

const (
	NotebookAvailable   NotebookStatus = "disponivel"
	NotebookLoaned      NotebookStatus = "emprestado"
	NotebookMaintenance NotebookStatus = "manutencao"
)

// NotebookStatuses lists every NotebookStatus in declaration order.
var NotebookStatuses = []NotebookStatus{NotebookAvailable, NotebookLoaned, NotebookMaintenance}

func (s NotebookStatus) Valid() bool {
	switch s {
	case NotebookAvailable, NotebookLoaned, NotebookMaintenance:
		return true
	}
	return false
}

// LoanType tells an individual checkout from an event checkout.
type LoanType string

const (
	LoanIndividual LoanType = "individual"
	LoanEvent      LoanType = "evento"
)

func (t LoanType) Valid() bool {
	switch t {
	case LoanIndividual, LoanEvent:
		return true
	}
	return false
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive   LoanStatus = "ativo"
	LoanReturned LoanStatus = "devolvido"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanReturned:
		return true
	}
	return false
}

// UserRole separates administrators from technicians.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician:
		return true
	}
	return false
}
