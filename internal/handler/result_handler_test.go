package handler

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// playSessions создает и завершает сессии категории Science: одну идеально, одну досрочным выходом
func playSessions(t *testing.T, api *testAPI) {
	t.Helper()
	id, ticket := api.startSessionIn(t, 1, "Science")
	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/guess", map[string]int{"choice": 0}, "X-Session-Ticket", ticket)
	require.Equal(t, http.StatusOK, w.Code)

	id, ticket = api.startSessionIn(t, 2, "Science")
	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/quit", nil, "X-Session-Ticket", ticket)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResultHandler_ListAndStats(t *testing.T) {
	// Arrange
	api := newTestAPI(t, stubSource{}, nil)
	playSessions(t, api)

	// Act
	w := api.do(t, http.MethodGet, "/api/results?page=1&page_size=1", nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	list := parseJSONResponse(t, w)
	assert.Equal(t, float64(2), list["total"])
	assert.Len(t, list["results"], 1)
	assert.Equal(t, float64(1), list["per_page"])

	w = api.do(t, http.MethodGet, "/api/results/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := parseJSONResponse(t, w)
	assert.Equal(t, float64(2), stats["sessions"])
	assert.Equal(t, float64(1), stats["completed"])
	assert.Equal(t, float64(1), stats["abandoned"])
	assert.Equal(t, float64(1), stats["perfect"])
}

func TestResultHandler_GetResult(t *testing.T) {
	// Arrange
	api := newTestAPI(t, stubSource{}, nil)
	id, ticket := api.startSessionIn(t, 2, "Science")
	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/quit", nil, "X-Session-Ticket", ticket)
	require.Equal(t, http.StatusOK, w.Code)

	// Act
	w = api.do(t, http.MethodGet, "/api/results/"+id, nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := parseJSONResponse(t, w)
	assert.Equal(t, id, result["session_id"])
	assert.Equal(t, "abandoned", result["status"])
	assert.Equal(t, float64(2), result["total"])
	assert.Equal(t, "Science", result["category"])
}

func TestResultHandler_GetResult_Errors(t *testing.T) {
	api := newTestAPI(t, stubSource{}, nil)

	w := api.do(t, http.MethodGet, "/api/results/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/results/6f1c1a8e-3b1f-4a57-9a0e-3f2b9c1d2e4f", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultHandler_Export_RequiresAdmin(t *testing.T) {
	api := newTestAPI(t, stubSource{}, nil)

	w := api.do(t, http.MethodGet, "/api/results/export", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResultHandler_ExportCSV(t *testing.T) {
	api := newTestAPI(t, stubSource{}, nil)
	playSessions(t, api)

	w := api.do(t, http.MethodGet, "/api/results/export?format=csv", nil, "X-Admin-Key", testAdminKey)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	body := w.Body.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "CSV начинается с BOM")
	lines := strings.Split(strings.TrimSpace(string(body[3:])), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Сессия,Статус"))
	assert.Contains(t, w.Body.String(), "Прервана")
	assert.Contains(t, w.Body.String(), "Завершена")
}

func TestResultHandler_ExportXLSX(t *testing.T) {
	// Arrange
	api := newTestAPI(t, stubSource{}, nil)
	playSessions(t, api)

	// Act
	w := api.do(t, http.MethodGet, "/api/results/export?format=xlsx", nil, "X-Admin-Key", testAdminKey)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Результаты")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Сессия", rows[0][0])
	require.GreaterOrEqual(t, len(rows[1]), 9)
	assert.Equal(t, "Категория", rows[0][8])
	assert.Equal(t, "Science", rows[1][8])
	assert.Equal(t, "Science", rows[2][8])
}

func TestResultHandler_Export_UnknownFormat(t *testing.T) {
	api := newTestAPI(t, stubSource{}, nil)

	w := api.do(t, http.MethodGet, "/api/results/export?format=pdf", nil, "X-Admin-Key", testAdminKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitizeForExcel("=SUM(A1)"))
	assert.Equal(t, "'@cmd", sanitizeForExcel("@cmd"))
	assert.Equal(t, "History", sanitizeForExcel("History"))
	assert.Equal(t, "", sanitizeForExcel(""))
}
