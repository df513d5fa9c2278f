package websocket

import "encoding/json"

// Сообщения сервера
const (
	// QUESTION_START передает текущий вопрос сессии
	QUESTION_START = "QUESTION_START"

	// ANSWER_RESULT сообщает, был ли ответ правильным
	ANSWER_RESULT = "ANSWER_RESULT"

	// QUIZ_END передает итог; после него соединение закрывается
	QUIZ_END = "QUIZ_END"

	// ERROR сообщает об ошибке обработки сообщения клиента
	ERROR = "ERROR"
)

// Сообщения клиента
const (
	// GUESS - ответ на текущий вопрос: {"type":"GUESS","data":{"choice":n}}
	GUESS = "GUESS"

	// QUIT - досрочное завершение сессии
	QUIT = "QUIT"
)

// Message - входящее сообщение клиента
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event - исходящее сообщение сервера
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// GuessData - данные сообщения GUESS
type GuessData struct {
	Choice *int `json:"choice"`
}

// ErrorData - данные сообщения ERROR
type ErrorData struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}
