package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chesspie/internal/api/middleware"
	"github.com/mcoot/chesspie/internal/api/request"
	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/api/sse"
	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/services/game"
)

// GameHandler handles game endpoints
type GameHandler struct {
	gameController game.ControllerInterface
	hubManager     *sse.HubManager
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. hubManager may be nil, in
// which case the event stream endpoint is unavailable.
func NewGameHandler(gameController game.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
		logger:         logger,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.gameController.CreateGame(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(g.ID), g)
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if games == nil {
		games = []model.GameInfo{}
	}
	response.JSON(w, http.StatusOK, response.GameList{Games: games})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if err := h.gameController.DeleteGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	if h.hubManager != nil {
		h.hubManager.RemoveHub(id)
	}
	response.NoContent(w)
}

// Move handles POST /api/v1/games/{id}/moves
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.From == "" || req.To == "" {
		WriteError(w, NewInvalidRequestError("from and to are required"))
		return
	}

	result, err := h.gameController.MakeMove(r.Context(), gameID(r), req.From, req.To, model.MoveOptions{
		Promotion: req.Promotion,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// LegalMoves handles GET /api/v1/games/{id}/moves?from=e2
func (h *GameHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if from == "" {
		WriteError(w, NewInvalidRequestError("from query parameter is required"))
		return
	}

	moves, err := h.gameController.LegalMoves(r.Context(), gameID(r), from)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LegalMoves{From: from, Moves: moves})
}

// Undo handles POST /api/v1/games/{id}/undo
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.Undo(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

// End handles POST /api/v1/games/{id}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	var req request.EndGameRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	g, err := h.gameController.EndGame(r.Context(), gameID(r), req.Winner, req.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

// Summary handles GET /api/v1/games/{id}/summary
func (h *GameHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.gameController.GetSummary(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, s)
}

// Events handles GET /api/v1/games/{id}/events as a server-sent event stream
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hubManager == nil {
		WriteError(w, NewInternalError())
		return
	}

	id := gameID(r)
	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	clientID := middleware.RequestID(r.Context())
	if clientID == "" {
		clientID = r.RemoteAddr
	}
	h.logger.Debug("sse client connecting",
		slog.String("game_id", string(id)),
		slog.String("client_id", clientID))

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(id), clientID)
}
