package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/usecase"
)

// TableHandler serves the table endpoints
type TableHandler struct {
	tables *usecase.TableUseCase
}

// NewTableHandler creates a new table handler
func NewTableHandler(tables *usecase.TableUseCase) *TableHandler {
	return &TableHandler{tables: tables}
}

// RegisterRoutes mounts the table routes on r
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
			r.Post("/invite", h.invite)
			r.Put("/invite", h.invite)
			r.Put("/respond", h.respond)
			r.Put("/{status}", h.respond)
		})
	})
}

// InviteRequest lists the players to invite
type InviteRequest struct {
	Players []entities.PlayerStatus `json:"players"`
}

// RespondRequest carries an answer to an invitation
type RespondRequest struct {
	Status entities.PlayerStatusValue `json:"status"`
}

func (h *TableHandler) create(w http.ResponseWriter, r *http.Request) {
	var in entities.Table
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	table, err := h.tables.CreateTable(r.Context(), callerFrom(r), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

func (h *TableHandler) list(w http.ResponseWriter, r *http.Request) {
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
	status := entities.GameStatus(r.URL.Query().Get("status"))
	tables, err := h.tables.ListTables(r.Context(), callerFrom(r), status, offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *TableHandler) get(w http.ResponseWriter, r *http.Request) {
	table, err := h.tables.GetTable(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *TableHandler) update(w http.ResponseWriter, r *http.Request) {
	var upd entities.TableUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	table, err := h.tables.UpdateTable(r.Context(), callerFrom(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *TableHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tables.DeleteTable(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TableHandler) invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	table, err := h.tables.InvitePlayers(r.Context(), callerFrom(r), chi.URLParam(r, "id"), req.Players)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// respond accepts the answer either in the body or as the last path segment
func (h *TableHandler) respond(w http.ResponseWriter, r *http.Request) {
	answer := entities.PlayerStatusValue(chi.URLParam(r, "status"))
	if answer == "" {
		var req RespondRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		answer = req.Status
	}
	table, err := h.tables.RespondToInvite(r.Context(), callerFrom(r), chi.URLParam(r, "id"), answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
