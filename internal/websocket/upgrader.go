package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpgrader создает upgrader с проверкой Origin по списку разрешенных.
// "*" в списке разрешает любой origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Если Origin пустой - это не браузерный клиент (мобильное приложение, curl и т.д.)
			if origin == "" {
				return true
			}
			if allowed["*"] || allowed[origin] {
				return true
			}

			log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
			return false
		},
	}
}
