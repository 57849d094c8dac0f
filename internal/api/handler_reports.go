package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/model"
)

const (
	formatCSV   = "csv"
	csvMimeType = "text/csv; charset=utf-8"
	utf8BOM     = "\ufeff"
)

type notebookTotals struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"disponivel"`
	Loaned      int64 `json:"emprestado"`
	Maintenance int64 `json:"manutencao"`
}

type loanTotals struct {
	Active  int64 `json:"ativos"`
	Overdue int64 `json:"atrasados"`
}

type summaryResponse struct {
	Date      string         `json:"date"`
	Notebooks notebookTotals `json:"notebooks"`
	Loans     loanTotals     `json:"emprestimos"`
}

// overdueLoan is a loan row of the overdue report.
type overdueLoan struct {
	dto.LoanResponse
	AssetTags   []string `json:"asset_tags"`
	DaysOverdue int      `json:"days_overdue"`
}

// Summary handles GET /reports/summary/.
func (h *Handler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	today := h.today()

	counts, err := h.store.NotebookStatusCounts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	active, err := h.store.CountLoansByStatus(ctx, model.LoanActive)
	if err != nil {
		respondError(c, err)
		return
	}
	overdue, err := h.store.ListOverdueLoans(ctx, today)
	if err != nil {
		respondError(c, err)
		return
	}

	nt := notebookTotals{
		Available:   counts[model.NotebookAvailable],
		Loaned:      counts[model.NotebookLoaned],
		Maintenance: counts[model.NotebookMaintenance],
	}
	nt.Total = nt.Available + nt.Loaned + nt.Maintenance

	c.JSON(http.StatusOK, summaryResponse{
		Date:      dto.FormatDate(today),
		Notebooks: nt,
		Loans:     loanTotals{Active: active, Overdue: int64(len(overdue))},
	})
}

// Overdue handles GET /reports/overdue/[?format=csv].
func (h *Handler) Overdue(c *gin.Context) {
	ctx := c.Request.Context()
	today := h.today()

	loans, err := h.store.ListOverdueLoans(ctx, today)
	if err != nil {
		respondError(c, err)
		return
	}
	var ids []int64
	for _, l := range loans {
		ids = append(ids, l.NotebookIDs...)
	}
	tags, err := h.store.NotebookAssetTags(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]overdueLoan, 0, len(loans))
	for i := range loans {
		l := &loans[i]
		row := overdueLoan{
			LoanResponse: dto.NewLoanResponse(l),
			AssetTags:    make([]string, 0, len(l.NotebookIDs)),
			DaysOverdue:  int(today.Sub(l.DueDate.UTC()).Hours() / 24),
		}
		for _, id := range l.NotebookIDs {
			row.AssetTags = append(row.AssetTags, tags[id])
		}
		rows = append(rows, row)
	}

	if c.Query("format") != formatCSV {
		c.JSON(http.StatusOK, gin.H{"date": dto.FormatDate(today), "count": len(rows), "results": rows})
		return
	}

	records := [][]string{{
		"ID", "Solicitante", "Secretaria", "Tipo", "Notebooks", "Retirada", "Prazo", "Dias em atraso", "Técnico",
	}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.ID, 10),
			r.RequesterName,
			r.Department,
			string(r.LoanType),
			strings.Join(r.AssetTags, ", "),
			r.CheckoutDate,
			r.DueDate,
			strconv.Itoa(r.DaysOverdue),
			r.ResponsibleTechnician,
		})
	}
	writeCSV(c, "emprestimos_atrasados_"+dto.FormatDate(today)+".csv", records)
}

// Available handles GET /reports/available/[?format=csv].
func (h *Handler) Available(c *gin.Context) {
	notebooks, err := h.store.ListNotebooksByStatus(c.Request.Context(), model.NotebookAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") != formatCSV {
		results := dto.NewNotebookResponses(notebooks)
		c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
		return
	}

	records := [][]string{{"Patrimônio", "Marca/Modelo", "Número de série", "Responsável", "Observações"}}
	for _, n := range notebooks {
		records = append(records, []string{n.AssetTag, n.BrandModel, n.SerialNumber, n.Custodian, n.Notes})
	}
	writeCSV(c, "notebooks_disponiveis_"+dto.FormatDate(h.today())+".csv", records)
}

// writeCSV sends ';'-separated records with a UTF-8 BOM so spreadsheet
// tools pick the right encoding.
func writeCSV(c *gin.Context, filename string, records [][]string) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.WriteAll(records); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, csvMimeType, buf.Bytes())
}
