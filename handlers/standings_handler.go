package handlers

import (
	"net/http"

	"github.com/Dosada05/swiss-tournament/brackets"
	_ "github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
)

type StandingsHandler struct {
	tournamentService services.TournamentService
}

func NewStandingsHandler(tournamentService services.TournamentService) *StandingsHandler {
	return &StandingsHandler{tournamentService: tournamentService}
}

// GetStandings godoc
// @Summary Текущая таблица
// @Tags standings
// @Description Сортировка по победам, при равенстве по ID игрока. format=text возвращает выровненную таблицу.
// @Produce json
// @Produce plain
// @Param format query string false "json (по умолчанию) или text"
// @Success 200 {array} models.Standing
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Router /standings [get]
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.tournamentService.PlayerStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if wantsText(r) {
		err = writeText(w, http.StatusOK, brackets.BuildStandingsOutput(standings))
	} else {
		err = writeJSON(w, http.StatusOK, standings, nil)
	}
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPairings godoc
// @Summary Пары следующего тура
// @Tags standings
// @Description Соседи по таблице играют друг с другом: 1-2, 3-4 и т.д.
// @Produce json
// @Produce plain
// @Param format query string false "json (по умолчанию) или text"
// @Success 200 {array} models.Pairing
// @Failure 409 {object} map[string]interface{} "Нечётное число игроков"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Router /pairings [get]
func (h *StandingsHandler) GetPairings(w http.ResponseWriter, r *http.Request) {
	pairings, err := h.tournamentService.SwissPairings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if wantsText(r) {
		err = writeText(w, http.StatusOK, brackets.BuildPairingsOutput(pairings))
	} else {
		err = writeJSON(w, http.StatusOK, pairings, nil)
	}
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
