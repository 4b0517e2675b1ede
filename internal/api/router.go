package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chesspie/internal/api/handler"
	"github.com/mcoot/chesspie/internal/api/middleware"
	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/api/sse"
	"github.com/mcoot/chesspie/internal/services/game"
	"github.com/mcoot/chesspie/internal/services/library"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController game.ControllerInterface
	LibraryService library.ServiceInterface
	HubManager     *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.HubManager, cfg.Logger)
	pieceHandler := handler.NewPieceHandler(cfg.LibraryService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Game routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/games/{id}/moves", gameHandler.Move).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/moves", gameHandler.LegalMoves).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/undo", gameHandler.Undo).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/end", gameHandler.End).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/summary", gameHandler.Summary).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Piece library routes
	api.HandleFunc("/pieces", pieceHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/pieces", pieceHandler.Save).Methods(http.MethodPost)
	api.HandleFunc("/pieces/{id}", pieceHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/pieces/{id}", pieceHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.LibraryService)).Methods(http.MethodGet)

	return r
}

func healthHandler(libraryService library.ServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:     "ok",
			PieceCount: libraryService.Count(),
		})
	}
}
