package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError answers in the backend's single-op envelope so API clients can
// parse middleware rejections like any other failure.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": status, "data": nil, "msg": msg})
}
