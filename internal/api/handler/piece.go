package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/services/library"
)

// PieceHandler handles piece library endpoints
type PieceHandler struct {
	libraryService library.ServiceInterface
}

// NewPieceHandler creates a new piece handler
func NewPieceHandler(libraryService library.ServiceInterface) *PieceHandler {
	return &PieceHandler{libraryService: libraryService}
}

// List handles GET /api/v1/pieces
func (h *PieceHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PieceList{Pieces: h.libraryService.Definitions()})
}

// Save handles POST /api/v1/pieces. The body is either an array of
// definitions or an object with a "pieces" array.
func (h *PieceHandler) Save(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}
	defs, err := library.Decode(body)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.libraryService.Save(r.Context(), defs); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.PiecesSaved{
		Saved: len(defs),
		Total: h.libraryService.Count(),
	})
}

// Get handles GET /api/v1/pieces/{id}
func (h *PieceHandler) Get(w http.ResponseWriter, r *http.Request) {
	def, err := h.libraryService.Get(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, def)
}

// Delete handles DELETE /api/v1/pieces/{id}
func (h *PieceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.libraryService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
