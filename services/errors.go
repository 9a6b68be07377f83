package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ошибки валидации, все оборачивают ErrValidationFailed
	ErrValidationFailed   = errors.New("validation failed")
	ErrPlayerNameRequired = fmt.Errorf("%w: player name is required", ErrValidationFailed)
	ErrPlayerNameTooLong  = fmt.Errorf("%w: player name is too long", ErrValidationFailed)
	ErrInvalidPlayerID    = fmt.Errorf("%w: player id must be positive", ErrValidationFailed)
	ErrSelfMatch          = fmt.Errorf("%w: a player cannot win against themselves", ErrValidationFailed)

	// Ресурс не найден
	ErrPlayerNotFound = errors.New("player not found")

	// Конфликты
	ErrPlayersHaveMatches = errors.New("players cannot be deleted while matches are recorded; delete matches first")

	// Аутентификация
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthNotConfigured  = errors.New("organizer authentication is not configured")
)
