package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/filter"
)

const (
	kindSessionNotFound = "session_not_found"
	kindInvalidRequest  = "invalid_request"
	kindUploadTooLarge  = "upload_too_large"
	kindInternal        = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// errorKind names the typed error behind err for API clients.
func errorKind(err error) string {
	var (
		le *dataset.LoadError
		fe *filter.FilterError
		ae *analysis.AggregationError
		ee *dataset.EntryError
	)
	switch {
	case errors.As(err, &le):
		return le.Kind.String()
	case errors.As(err, &fe):
		return fe.Kind.String()
	case errors.As(err, &ae):
		return ae.Kind.String()
	case errors.As(err, &ee):
		return "invalid_entry"
	default:
		return kindInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
