package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebooks_CreateAndRetrieve(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/notebooks/", env.techToken,
		`{"asset_tag":"PAT-001","brand_model":"Dell Latitude","serial_number":"SN123","status":"disponivel"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeJSON(t, w)
	assert.Equal(t, "", created["custodian"])
	assert.NotEmpty(t, created["created_date"])

	id := created["id"].(float64)
	w = env.do(http.MethodGet, "/api/notebooks/"+itoa(int64(id))+"/", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON(t, w)
	assert.Equal(t, "PAT-001", got["asset_tag"])
	assert.Equal(t, "Dell Latitude", got["brand_model"])
	assert.Equal(t, "SN123", got["serial_number"])
	assert.Equal(t, "disponivel", got["status"])
	assert.Equal(t, created["created_date"], got["created_date"])
}

func TestNotebooks_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.mustNotebook(t, "PAT-001", "SN123", "disponivel")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKeys   []string
	}{
		{
			name:       "duplicate asset tag",
			body:       `{"asset_tag":"PAT-001","brand_model":"HP","serial_number":"SN999","status":"disponivel"}`,
			wantStatus: http.StatusConflict,
			wantKeys:   []string{"asset_tag"},
		},
		{
			name:       "duplicate serial number",
			body:       `{"asset_tag":"PAT-002","brand_model":"HP","serial_number":"SN123","status":"disponivel"}`,
			wantStatus: http.StatusConflict,
			wantKeys:   []string{"serial_number"},
		},
		{
			name:       "unknown status",
			body:       `{"asset_tag":"PAT-003","brand_model":"HP","serial_number":"SN3","status":"quebrado"}`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"status"},
		},
		{
			name:       "missing fields",
			body:       `{"asset_tag":"PAT-004"}`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"brand_model", "serial_number", "status"},
		},
		{
			name:       "unknown field",
			body:       `{"asset_tag":"PAT-005","brand_model":"HP","serial_number":"SN5","status":"disponivel","color":"black"}`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"color"},
		},
		{
			name:       "not an object",
			body:       `[1,2]`,
			wantStatus: http.StatusBadRequest,
			wantKeys:   []string{"non_field_errors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/notebooks/", env.techToken, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decodeJSON(t, w)
			for _, key := range tt.wantKeys {
				assert.Contains(t, body, key)
			}
		})
	}

	w := env.do(http.MethodPost, "/api/notebooks/", env.techToken,
		`{"asset_tag":"PAT-001","brand_model":"HP","serial_number":"SN999","status":"disponivel"}`)
	assert.JSONEq(t, `{"asset_tag":["Notebook com este asset_tag já existe."]}`, w.Body.String())
}

func TestNotebooks_UpdateMovesUpdatedDate(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustNotebook(t, "PAT-001", "SN123", "disponivel")
	path := "/api/notebooks/" + itoa(id) + "/"

	w := env.do(http.MethodPatch, path, env.techToken, `{"status":"emprestado"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeJSON(t, w)
	assert.Equal(t, "emprestado", body["status"])
	assert.Equal(t, "PAT-001", body["asset_tag"])

	created, err := time.Parse(time.RFC3339Nano, body["created_date"].(string))
	require.NoError(t, err)
	updated, err := time.Parse(time.RFC3339Nano, body["updated_date"].(string))
	require.NoError(t, err)
	assert.True(t, updated.After(created))

	w = env.do(http.MethodGet, path, env.techToken, "")
	assert.Equal(t, "emprestado", decodeJSON(t, w)["status"])
}

func TestNotebooks_Replace(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustNotebook(t, "PAT-001", "SN123", "disponivel")
	path := "/api/notebooks/" + itoa(id) + "/"

	w := env.do(http.MethodPut, path, env.techToken, `{"status":"manutencao"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w), "asset_tag")

	w = env.do(http.MethodPut, path, env.techToken,
		`{"asset_tag":"PAT-001","brand_model":"Lenovo","serial_number":"SN123","status":"manutencao","notes":"tela"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeJSON(t, w)
	assert.Equal(t, "Lenovo", body["brand_model"])
	assert.Equal(t, "tela", body["notes"])
}

func TestNotebooks_Delete(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustNotebook(t, "PAT-001", "SN123", "disponivel")
	path := "/api/notebooks/" + itoa(id) + "/"

	w := env.do(http.MethodDelete, path, env.techToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		w = env.do(method, path, env.techToken, `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}

	w = env.do(http.MethodGet, "/api/notebooks/abc/", env.techToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Não encontrado."}`, w.Body.String())
}

func TestNotebooks_List(t *testing.T) {
	env := newTestEnv(t)
	env.mustNotebook(t, "PAT-001", "SN1", "disponivel")
	env.mustNotebook(t, "PAT-002", "SN2", "emprestado")
	env.mustNotebook(t, "PAT-003", "SN3", "disponivel")

	tests := []struct {
		name     string
		query    string
		wantTags []string
	}{
		{"default order", "", []string{"PAT-001", "PAT-002", "PAT-003"}},
		{"status filter", "?status=disponivel", []string{"PAT-001", "PAT-003"}},
		{"invalid status filter", "?status=quebrado", []string{}},
		{"search", "?search=pat-002", []string{"PAT-002"}},
		{"ordering", "?ordering=-asset_tag", []string{"PAT-003", "PAT-002", "PAT-001"}},
		{"unknown ordering ignored", "?ordering=bogus", []string{"PAT-001", "PAT-002", "PAT-003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/notebooks/"+tt.query, env.techToken, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			body := decodeJSON(t, w)
			assert.EqualValues(t, len(tt.wantTags), body["count"])
			tags := []string{}
			for _, r := range body["results"].([]any) {
				tags = append(tags, r.(map[string]any)["asset_tag"].(string))
			}
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestNotebooks_Pagination(t *testing.T) {
	env := newTestEnv(t)
	env.mustNotebook(t, "PAT-001", "SN1", "disponivel")
	env.mustNotebook(t, "PAT-002", "SN2", "disponivel")
	env.mustNotebook(t, "PAT-003", "SN3", "disponivel")

	w := env.do(http.MethodGet, "/api/notebooks/?page_size=2", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["results"], 2)
	assert.Equal(t, "http://example.com/api/notebooks/?page=2&page_size=2", body["next"])
	assert.Nil(t, body["previous"])

	w = env.do(http.MethodGet, "/api/notebooks/?page=2&page_size=2", env.techToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	assert.Len(t, body["results"], 1)
	assert.Nil(t, body["next"])
	assert.Equal(t, "http://example.com/api/notebooks/?page_size=2", body["previous"])

	for _, q := range []string{"?page=3&page_size=2", "?page=0", "?page=abc", "?page=4611686018427387905&page_size=4"} {
		w = env.do(http.MethodGet, "/api/notebooks/"+q, env.techToken, "")
		assert.Equal(t, http.StatusNotFound, w.Code, q)
		assert.JSONEq(t, `{"detail":"Página inválida."}`, w.Body.String())
	}
}
