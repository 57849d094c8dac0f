package dto

import (
	"time"

	"notebook-loans-backend/internal/model"
)

// NotebookInput is the writable part of a notebook payload.
type NotebookInput struct {
	AssetTag     string               `json:"asset_tag" validate:"required,max=32"`
	BrandModel   string               `json:"brand_model" validate:"required,max=128"`
	SerialNumber string               `json:"serial_number" validate:"required,max=64"`
	Custodian    string               `json:"custodian" validate:"max=128"`
	Status       model.NotebookStatus `json:"status" validate:"required,choice"`
	Notes        string               `json:"notes"`
}

func (in *NotebookInput) binding() schema {
	return schema{
		fields: fieldSet{
			"asset_tag":     str(&in.AssetTag),
			"brand_model":   str(&in.BrandModel),
			"serial_number": str(&in.SerialNumber),
			"custodian":     str(&in.Custodian),
			"status":        choice(&in.Status),
			"notes":         str(&in.Notes),
		},
		required: []string{"asset_tag", "brand_model", "serial_number", "status"},
		readOnly: []string{"id", "created_date", "updated_date"},
	}
}

// Decode overlays body on in. For updates, seed in with NotebookInputFrom first.
func (in *NotebookInput) Decode(body []byte, mode Mode) error {
	_, err := decode(body, in, in.binding(), mode)
	return err
}

// Apply copies the input onto n.
func (in NotebookInput) Apply(n *model.Notebook) {
	n.AssetTag = in.AssetTag
	n.BrandModel = in.BrandModel
	n.SerialNumber = in.SerialNumber
	n.Custodian = in.Custodian
	n.Status = in.Status
	n.Notes = in.Notes
}

// NotebookInputFrom seeds an input with the stored values of n.
func NotebookInputFrom(n *model.Notebook) NotebookInput {
	return NotebookInput{
		AssetTag:     n.AssetTag,
		BrandModel:   n.BrandModel,
		SerialNumber: n.SerialNumber,
		Custodian:    n.Custodian,
		Status:       n.Status,
		Notes:        n.Notes,
	}
}

type NotebookResponse struct {
	ID           int64                `json:"id"`
	AssetTag     string               `json:"asset_tag"`
	BrandModel   string               `json:"brand_model"`
	SerialNumber string               `json:"serial_number"`
	Custodian    string               `json:"custodian"`
	Status       model.NotebookStatus `json:"status"`
	Notes        string               `json:"notes"`
	CreatedDate  time.Time            `json:"created_date"`
	UpdatedDate  time.Time            `json:"updated_date"`
}

func NewNotebookResponse(n *model.Notebook) NotebookResponse {
	return NotebookResponse{
		ID:           n.ID,
		AssetTag:     n.AssetTag,
		BrandModel:   n.BrandModel,
		SerialNumber: n.SerialNumber,
		Custodian:    n.Custodian,
		Status:       n.Status,
		Notes:        n.Notes,
		CreatedDate:  n.CreatedAt.UTC(),
		UpdatedDate:  n.UpdatedAt.UTC(),
	}
}

func NewNotebookResponses(ns []model.Notebook) []NotebookResponse {
	out := make([]NotebookResponse, 0, len(ns))
	for i := range ns {
		out = append(out, NewNotebookResponse(&ns[i]))
	}
	return out
}
