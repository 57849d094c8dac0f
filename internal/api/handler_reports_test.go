package api

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// seedReports leaves one overdue loan, one loan due in the future and one
// returned loan.
func seedReports(t *testing.T, env *testEnv) {
	t.Helper()
	nb1 := itoa(env.mustNotebook(t, "PAT-001", "SN1", "emprestado"))
	nb2 := itoa(env.mustNotebook(t, "PAT-002", "SN2", "emprestado"))
	env.mustNotebook(t, "PAT-003", "SN3", "disponivel")
	env.mustNotebook(t, "PAT-004", "SN4", "manutencao")

	env.mustCreate(t, "/api/emprestimos/", loanBody("["+nb1+","+nb2+"]", "Ana", "", "2024-03-05"))
	env.mustCreate(t, "/api/emprestimos/", loanBody("["+nb1+"]", "Bruno", "", "2024-03-20"))
	env.mustCreate(t, "/api/emprestimos/", loanBody("["+nb2+"]", "Carla", "devolvido", "2024-03-01"))
}

func TestReports_Summary(t *testing.T) {
	env := newTestEnv(t, withToday(reportDay))
	seedReports(t, env)

	w := env.do(http.MethodGet, "/api/reports/summary/", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"date": "2024-03-10",
		"notebooks": {"total": 4, "disponivel": 1, "emprestado": 2, "manutencao": 1},
		"emprestimos": {"ativos": 2, "atrasados": 1}
	}`, w.Body.String())
}

func TestReports_Overdue(t *testing.T) {
	env := newTestEnv(t, withToday(reportDay))
	seedReports(t, env)

	w := env.do(http.MethodGet, "/api/reports/overdue/", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeJSON(t, w)
	assert.EqualValues(t, 1, body["count"])
	row := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "Ana", row["requester_name"])
	assert.EqualValues(t, 5, row["days_overdue"])
	assert.ElementsMatch(t, []any{"PAT-001", "PAT-002"}, row["asset_tags"])
}

func TestReports_CSV(t *testing.T) {
	env := newTestEnv(t, withToday(reportDay))
	seedReports(t, env)

	tests := []struct {
		path         string
		wantFilename string
		wantRows     int
		wantCell     string
	}{
		{"/api/reports/overdue/?format=csv", "emprestimos_atrasados_2024-03-10.csv", 2, "Ana"},
		{"/api/reports/available/?format=csv", "notebooks_disponiveis_2024-03-10.csv", 2, "PAT-003"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(http.MethodGet, tt.path, env.techToken, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.wantFilename)

			raw := w.Body.String()
			require.True(t, strings.HasPrefix(raw, "\ufeff"), "missing BOM")
			r := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, "\ufeff")))
			r.Comma = ';'
			records, err := r.ReadAll()
			require.NoError(t, err)
			require.Len(t, records, tt.wantRows)
			assert.Contains(t, records[1], tt.wantCell)
		})
	}
}

func TestReports_Available(t *testing.T) {
	env := newTestEnv(t, withToday(reportDay))
	seedReports(t, env)

	w := env.do(http.MethodGet, "/api/reports/available/", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "PAT-003", body["results"].([]any)[0].(map[string]any)["asset_tag"])
}

func TestReports_CacheFlushedOnWrite(t *testing.T) {
	env := newTestEnv(t, withToday(reportDay))
	env.mustNotebook(t, "PAT-001", "SN1", "disponivel")

	w := env.do(http.MethodGet, "/api/reports/available/", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))

	w = env.do(http.MethodGet, "/api/reports/available/", env.techToken, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.EqualValues(t, 1, decodeJSON(t, w)["count"])

	env.mustNotebook(t, "PAT-002", "SN2", "disponivel")

	w = env.do(http.MethodGet, "/api/reports/available/", env.techToken, "")
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, decodeJSON(t, w)["count"])
}
