package middleware

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/trivia-engine/pkg/auth"
)

// ContextSessionID - ключ контекста Gin с id сессии из проверенного тикета
const ContextSessionID = "session_id"

// Заголовки тикета и админ-ключа
const (
	TicketHeader   = "X-Session-Ticket"
	AdminKeyHeader = "X-Admin-Key"
)

// TicketVerifier проверяет тикет игровой сессии
type TicketVerifier interface {
	VerifySessionTicket(ticket, sessionID string) (*auth.TicketClaims, error)
}

// AuthMiddleware обеспечивает доступ к сессии только владельцу тикета
type AuthMiddleware struct {
	tickets  TicketVerifier
	adminKey string
}

// NewAuthMiddleware создает middleware; пустой adminKey закрывает административные маршруты
func NewAuthMiddleware(tickets TicketVerifier, adminKey string) *AuthMiddleware {
	return &AuthMiddleware{tickets: tickets, adminKey: adminKey}
}

// RequireSessionTicket проверяет, что тикет выдан для сессии из параметра маршрута.
// Тикет берется из X-Session-Ticket, Authorization: Bearer или query ?ticket=.
func (m *AuthMiddleware) RequireSessionTicket(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticket, errType := extractTicket(c)
		if ticket == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ticket is required", "error_type": errType})
			c.Abort()
			return
		}

		sessionID := c.Param(paramName)
		claims, err := m.tickets.VerifySessionTicket(ticket, sessionID)
		if err != nil {
			if errors.Is(err, auth.ErrTicketMismatch) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Ticket does not belong to this session", "error_type": "ticket_mismatch"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket", "error_type": "ticket_invalid"})
			}
			c.Abort()
			return
		}

		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}

func extractTicket(c *gin.Context) (string, string) {
	if ticket := c.GetHeader(TicketHeader); ticket != "" {
		return ticket, ""
	}
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "ticket_format"
		}
		return parts[1], ""
	}
	// Браузерный WebSocket не умеет передавать заголовки
	if ticket := c.Query("ticket"); ticket != "" {
		return ticket, ""
	}
	return "", "ticket_missing"
}

// AdminOnly пропускает запрос только с правильным X-Admin-Key
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.adminKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access is disabled", "error_type": "admin_disabled"})
			c.Abort()
			return
		}
		key := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(m.adminKey)) != 1 {
			log.Printf("[AuthMiddleware] Отказано в административном доступе для IP=%s path=%s", c.ClientIP(), c.FullPath())
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "error_type": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
