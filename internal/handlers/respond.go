package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"crunchpunch/internal/composition"
	applog "crunchpunch/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Index *int   `json:"index,omitempty"`
	Food  string `json:"foodExtid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeValidationError reports the first rule a composition violates.
func writeValidationError(w http.ResponseWriter, result composition.Result) {
	resp := errorResponse{
		Error: result.Message(),
		Code:  string(result.Code),
		Food:  result.FoodRef,
	}
	if result.Index >= 0 {
		index := result.Index
		resp.Index = &index
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// resourcePath strips prefix from the request path and splits the remainder
// into its segments.
func resourcePath(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
