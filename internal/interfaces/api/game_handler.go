package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/internal/usecase"
)

// GameHandler serves the game endpoints
type GameHandler struct {
	games *usecase.GameUseCase
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *usecase.GameUseCase) *GameHandler {
	return &GameHandler{games: games}
}

// RegisterRoutes mounts the game routes on r
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/recent", h.recent)
		r.Get("/recent/{limit}", h.recent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Put("/buyin", h.buyIn)
			r.Put("/cashout", h.cashOut)
			r.Post("/end", h.end)
		})
	})
}

func (h *GameHandler) create(w http.ResponseWriter, r *http.Request) {
	var in entities.Game
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	game, err := h.games.CreateGame(r.Context(), callerFrom(r), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (h *GameHandler) list(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "skip")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	games, err := h.games.ListGames(r.Context(), callerFrom(r), repositories.GameFilter{
		TableID: q.Get("table_id"),
		Status:  entities.GameStatus(q.Get("status")),
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := chi.URLParam(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, errMalformedBody)
			return
		}
		limit = n
	}
	games, err := h.games.RecentGames(r.Context(), callerFrom(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) get(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.GetGame(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) update(w http.ResponseWriter, r *http.Request) {
	var upd entities.GameUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	game, err := h.games.UpdateGame(r.Context(), callerFrom(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) buyIn(w http.ResponseWriter, r *http.Request) {
	var in entities.BuyIn
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	game, err := h.games.AddBuyIn(r.Context(), callerFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) cashOut(w http.ResponseWriter, r *http.Request) {
	var in entities.CashOut
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	game, err := h.games.CashOut(r.Context(), callerFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) end(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.EndGame(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}
