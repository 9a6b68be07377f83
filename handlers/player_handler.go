package handlers

import (
	"net/http"

	_ "github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
)

type PlayerHandler struct {
	tournamentService services.TournamentService
}

func NewPlayerHandler(tournamentService services.TournamentService) *PlayerHandler {
	return &PlayerHandler{tournamentService: tournamentService}
}

// RegisterPlayer godoc
// @Summary Зарегистрировать игрока
// @Tags players
// @Description Добавляет игрока в турнир. Имена не обязаны быть уникальными.
// @Accept json
// @Produce json
// @Param body body services.RegisterPlayerInput true "Имя игрока"
// @Success 201 {object} models.Player
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /players [post]
func (h *PlayerHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.tournamentService.RegisterPlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, player, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayers godoc
// @Summary Список игроков
// @Tags players
// @Produce json
// @Success 200 {array} models.Player
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Router /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.tournamentService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, players, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CountPlayers godoc
// @Summary Количество зарегистрированных игроков
// @Tags players
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Router /players/count [get]
func (h *PlayerHandler) CountPlayers(w http.ResponseWriter, r *http.Request) {
	count, err := h.tournamentService.CountPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"count": count}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayers godoc
// @Summary Удалить всех игроков
// @Tags players
// @Description Сначала нужно удалить матчи, иначе 409.
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 409 {object} map[string]string "Есть записанные матчи"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /players [delete]
func (h *PlayerHandler) DeletePlayers(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tournamentService.DeletePlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
