package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPaginationParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&page_size=10", 3, 10, 20},
		{"capped", "page_size=500", 1, 100, 0},
		{"invalid", "page=-1&page_size=abc", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/journeys?"+tt.query, nil)

			p := ExtractPaginationParams(r)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
			assert.Equal(t, tt.offset, p.CalculateOffset())
		})
	}
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := BuildPaginationMeta(2, 10, 25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
	assert.Zero(t, CalculateTotalPages(5, 0))
}

func TestRespondWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondWithMeta(rec, http.StatusOK, []string{"a"}, &MetaInfo{RequestID: "req-1"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["meta"].(map[string]interface{})["request_id"])
}

func TestParseJSONBody(t *testing.T) {
	type payload struct {
		Scenario string `json:"scenario"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"scenario":"dock"}`, false},
		{"unknown field", `{"scenario":"dock","extra":1}`, true},
		{"too large", `{"scenario":"` + strings.Repeat("x", 100) + `"}`, true},
		{"malformed", `{"scenario":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload

			err := ParseJSONBody(httptest.NewRecorder(), r, &p, 64)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "dock", p.Scenario)
			}
		})
	}
}
