package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/chesspie/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeGameNotFound            = "GAME_NOT_FOUND"
	CodeInvalidConfig           = "INVALID_CONFIG"
	CodeMoveRejected            = "MOVE_REJECTED"
	CodeGameEnded               = "GAME_ENDED"
	CodeInvalidSquare           = "INVALID_SQUARE"
	CodePieceNotFound           = "PIECE_NOT_FOUND"
	CodeNothingToUndo           = "NOTHING_TO_UNDO"
	CodeInvalidColor            = "INVALID_COLOR"
	CodeReplayMismatch          = "REPLAY_MISMATCH"
	CodePieceDefinitionNotFound = "PIECE_DEFINITION_NOT_FOUND"
	CodeInvalidPieceDefinition  = "INVALID_PIECE_DEFINITION"
	CodeInternalError           = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// domainErrors maps model errors to status and code. Order matters:
// ErrInvalidPieceDefinition may wrap ErrInvalidColor, and ErrInvalidConfig
// may wrap either.
var domainErrors = []struct {
	target error
	status int
	code   string
}{
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
	{model.ErrPieceDefinitionNotFound, http.StatusNotFound, CodePieceDefinitionNotFound},
	{model.ErrInvalidConfig, http.StatusBadRequest, CodeInvalidConfig},
	{model.ErrInvalidPieceDefinition, http.StatusBadRequest, CodeInvalidPieceDefinition},
	{model.ErrInvalidColor, http.StatusBadRequest, CodeInvalidColor},
	{model.ErrInvalidSquare, http.StatusBadRequest, CodeInvalidSquare},
	{model.ErrPieceNotFound, http.StatusNotFound, CodePieceNotFound},
	{model.ErrMoveRejected, http.StatusUnprocessableEntity, CodeMoveRejected},
	{model.ErrGameEnded, http.StatusConflict, CodeGameEnded},
	{model.ErrNothingToUndo, http.StatusConflict, CodeNothingToUndo},
	{model.ErrReplayMismatch, http.StatusConflict, CodeReplayMismatch},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}

	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
