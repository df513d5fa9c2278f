package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/handler/dto"
	"github.com/yourusername/trivia-engine/internal/service"
)

// ResultHandler обрабатывает запросы к истории результатов
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler создает обработчик результатов
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ResultSessionIDKey - ключ контекста для id сессии в маршрутах результатов
const ResultSessionIDKey = "resultSessionID"

// GetResult возвращает сохраненный итог одной сессии
func (h *ResultHandler) GetResult(c *gin.Context) {
	result, err := h.resultService.GetBySessionID(c.GetString(ResultSessionIDKey))
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultResponse(result))
}

// ListResults возвращает страницу результатов
func (h *ResultHandler) ListResults(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	results, total, err := h.resultService.GetResults(page, pageSize)
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResultResponse(results, total, page, pageSize))
}

// GetStats возвращает агрегированную статистику
func (h *ResultHandler) GetStats(c *gin.Context) {
	stats, err := h.resultService.GetStats()
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportResults выгружает все результаты в CSV или XLSX
func (h *ResultHandler) ExportResults(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "bad_request"})
		return
	}

	results, err := h.resultService.GetAllResults()
	if err != nil {
		handleError(c, "ResultHandler", err)
		return
	}

	filename := fmt.Sprintf("quiz_results_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

var exportHeaders = []string{"Сессия", "Статус", "Очки", "Всего вопросов", "Отвечено", "Доля", "Идеально", "Зачет", "Категория", "Сложность", "Завершено"}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

func translateStatus(status string) string {
	switch status {
	case entity.ResultStatusCompleted:
		return "Завершена"
	case entity.ResultStatusAbandoned:
		return "Прервана"
	default:
		return status
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *ResultHandler) exportCSV(c *gin.Context, results []entity.Result, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range results {
		writer.Write([]string{
			r.SessionID,
			translateStatus(r.Status),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Answered),
			strconv.FormatFloat(r.Ratio, 'f', 2, 64),
			yesNo(r.IsPerfect),
			yesNo(r.IsPassing),
			sanitizeForExcel(r.Category),
			sanitizeForExcel(r.Difficulty),
			r.CompletedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *ResultHandler) exportXLSX(c *gin.Context, results []entity.Result, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ResultHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, title := range exportHeaders {
		headers[i] = title
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ResultHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range results {
		rowNum := i + 2 // 1 - заголовки
		row := []interface{}{
			r.SessionID,
			translateStatus(r.Status),
			r.Score,
			r.Total,
			r.Answered,
			r.Ratio,
			yesNo(r.IsPerfect),
			yesNo(r.IsPassing),
			sanitizeForExcel(r.Category),
			sanitizeForExcel(r.Difficulty),
			r.CompletedAt.Format(time.RFC3339),
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[ResultHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ResultHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResultHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
