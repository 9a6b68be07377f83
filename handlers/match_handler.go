package handlers

import (
	"net/http"

	_ "github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
)

type MatchHandler struct {
	tournamentService services.TournamentService
}

func NewMatchHandler(tournamentService services.TournamentService) *MatchHandler {
	return &MatchHandler{tournamentService: tournamentService}
}

// ReportMatch godoc
// @Summary Записать результат матча
// @Tags matches
// @Description Ничьих нет: указывается победитель и проигравший.
// @Accept json
// @Produce json
// @Param body body services.ReportMatchInput true "Победитель и проигравший"
// @Success 201 {object} models.Match
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) ReportMatch(w http.ResponseWriter, r *http.Request) {
	var input services.ReportMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.ReportMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches godoc
// @Summary Список сыгранных матчей
// @Tags matches
// @Produce json
// @Success 200 {array} models.Match
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Router /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.tournamentService.ListMatches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteMatches godoc
// @Summary Удалить все матчи
// @Tags matches
// @Description Игроки остаются, их счёт обнуляется. Повторный вызов безопасен.
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /matches [delete]
func (h *MatchHandler) DeleteMatches(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tournamentService.DeleteMatches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
