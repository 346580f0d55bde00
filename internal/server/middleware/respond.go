package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/freema/shortcutd/internal/apperror"
)

// writeError renders a middleware rejection as JSON, with the status taken
// from the error itself.
func writeError(w http.ResponseWriter, code string, err *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": err.Error(),
	})
}
