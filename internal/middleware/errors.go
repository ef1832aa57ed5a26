package middleware

import (
	"net/http"

	json "github.com/goccy/go-json"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeError writes the API's standard error body. Middleware cannot reach
// the handler package's helpers, so it renders the same shape here.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}})
}
