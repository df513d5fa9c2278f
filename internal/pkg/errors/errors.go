package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный или просроченный тикет).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда тикет выдан для другой сессии.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, сессия уже занята другим ответом).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется, когда внешний источник вопросов недоступен или ограничил запросы.
	ErrUnavailable = errors.New("upstream unavailable")
)
