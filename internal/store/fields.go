package store

import (
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/query"
)

// NotebookFields is the query allow-list for notebooks.
var NotebookFields = query.Fields{
	Filters: map[string]query.Filter{
		"status":      {Column: "status"},
		"brand_model": {Column: "brand_model"},
		"asset_tag":   {Column: "asset_tag"},
	},
	Search: []string{
		query.Icontains("asset_tag"),
		query.Icontains("brand_model"),
		query.Icontains("serial_number"),
		query.Icontains("custodian"),
	},
	Order: map[string]string{
		"asset_tag":     "asset_tag",
		"brand_model":   "brand_model",
		"serial_number": "serial_number",
		"status":        "status",
		"created_date":  "created_date",
		"updated_date":  "updated_date",
	},
	Default: "id ASC",
}

// LoanFields is the query allow-list for loans. Search also matches the
// asset tag of any linked notebook.
var LoanFields = query.Fields{
	Filters: map[string]query.Filter{
		"status":         {Column: "loans.status"},
		"loan_type":      {Column: "loans.loan_type"},
		"requester_name": {Column: "loans.requester_name"},
		"department":     {Column: "loans.department"},
	},
	Search: []string{
		query.Icontains("loans.requester_name"),
		query.Icontains("loans.department"),
		query.Icontains("loans.event_description"),
		query.Icontains("loans.responsible_technician"),
		"EXISTS (SELECT 1 FROM " + model.LoanNotebookTable + " ln JOIN notebooks nb ON nb.id = ln.notebook_id" +
			" WHERE ln.loan_id = loans.id AND " + query.Icontains("nb.asset_tag") + ")",
	},
	Order: map[string]string{
		"checkout_date":  "loans.checkout_date",
		"due_date":       "loans.due_date",
		"return_date":    "loans.return_date",
		"created_date":   "loans.created_date",
		"requester_name": "loans.requester_name",
		"department":     "loans.department",
		"status":         "loans.status",
	},
	Default: "loans.id ASC",
}

// UserFields is the query allow-list for users.
var UserFields = query.Fields{
	Filters: map[string]query.Filter{
		"role":      {Column: "role"},
		"is_active": {Column: "is_active", Convert: query.Bool},
	},
	Search: []string{
		query.Icontains("username"),
		query.Icontains("email"),
		query.Icontains("first_name"),
		query.Icontains("last_name"),
	},
	Order: map[string]string{
		"username":    "username",
		"email":       "email",
		"date_joined": "date_joined",
		"last_login":  "last_login",
	},
	Default: "id ASC",
}
