package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type errorJSON struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

// parseLimit parses an optional row cap; anything invalid means no cap.
func parseLimit(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// parseID parses a positive path identifier.
func parseID(v string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
