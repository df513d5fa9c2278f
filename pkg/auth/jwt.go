package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

const (
	// UsagePlay - назначение тикета: право играть в конкретной сессии
	UsagePlay = "quiz_play"

	ticketIssuer   = "trivia-engine"
	ticketAudience = "trivia-play"
)

var (
	ErrTicketExpired  = fmt.Errorf("%w: ticket is expired", apperrors.ErrUnauthorized)
	ErrTicketInvalid  = fmt.Errorf("%w: invalid ticket", apperrors.ErrUnauthorized)
	ErrTicketMismatch = fmt.Errorf("%w: ticket issued for another session", apperrors.ErrForbidden)
)

// TicketClaims содержит поля тикета игровой сессии
type TicketClaims struct {
	SessionID string `json:"session_id"`
	Usage     string `json:"usage"`
	jwt.RegisteredClaims
}

// TicketService выдает и проверяет тикеты (HMAC JWT), привязывающие клиента к сессии
type TicketService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTicketService создает сервис тикетов
func NewTicketService(secret string, expiry time.Duration) (*TicketService, error) {
	if secret == "" {
		return nil, errors.New("ticket secret is required")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("ticket expiry must be positive, got %v", expiry)
	}
	return &TicketService{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Expiry возвращает время жизни тикета
func (s *TicketService) Expiry() time.Duration { return s.expiry }

// GenerateTicket создает тикет для сессии
func (s *TicketService) GenerateTicket(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := s.now()
	claims := &TicketClaims{
		SessionID: sessionID,
		Usage:     UsagePlay,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    ticketIssuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{ticketAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[Ticket] Ошибка генерации тикета для сессии %s: %v", sessionID, err)
		return "", err
	}
	return tokenString, nil
}

// ParseTicket проверяет подпись, срок действия и назначение тикета
func (s *TicketService) ParseTicket(ticketString string) (*TicketClaims, error) {
	claims := &TicketClaims{}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}

	// Временные поля проверяются ниже по часам сервиса, а не по jwt.TimeFunc
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(ticketString, claims, keyFunc)
	if err != nil {
		log.Printf("[Ticket] Ошибка при разборе тикета: %v", err)
		return nil, ErrTicketInvalid
	}
	if !token.Valid {
		return nil, ErrTicketInvalid
	}

	now := s.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, ErrTicketExpired
	}
	if !claims.VerifyIssuedAt(now, false) || !claims.VerifyNotBefore(now, false) {
		return nil, fmt.Errorf("%w: ticket used before issue time", ErrTicketInvalid)
	}

	if claims.Usage != UsagePlay {
		return nil, fmt.Errorf("%w: unexpected usage %q", ErrTicketInvalid, claims.Usage)
	}
	if !claims.VerifyAudience(ticketAudience, true) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrTicketInvalid)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrTicketInvalid)
	}
	return claims, nil
}

// VerifySessionTicket проверяет тикет и что он выдан именно для sessionID
func (s *TicketService) VerifySessionTicket(ticketString, sessionID string) (*TicketClaims, error) {
	claims, err := s.ParseTicket(ticketString)
	if err != nil {
		return nil, err
	}
	if claims.SessionID != sessionID {
		return nil, ErrTicketMismatch
	}
	return claims, nil
}
