package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
)

// ManualRequest lists the points to map. With no points, Count default points
// are used instead.
type ManualRequest struct {
	Points []dataset.PointInput `json:"points"`
	Count  int                  `json:"count,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	logging.WithContext(r.Context(), s.log).Info("session created", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.dropSession(id) {
		writeError(w, http.StatusNotFound, kindSessionNotFound, "session not found: "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadBuiltin(w http.ResponseWriter, r *http.Request, sess *dashboard.Session) {
	s.respondLoad(w, r, sess.Handle(dashboard.Event{Kind: dashboard.EventLoadBuiltin}))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, sess *dashboard.Session) {
	limit := s.cfg.MaxUploadBytes
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, kindUploadTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", limit))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, kindUploadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", limit))
			return
		}
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, `missing form file "file"`)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "read upload: "+err.Error())
		return
	}
	u := sess.Handle(dashboard.Event{Kind: dashboard.EventUpload, UploadName: header.Filename, UploadData: data})
	s.respondLoad(w, r, u)
}

// respondLoad reports a failed load as 422; the session keeps the degraded
// panels for later GETs.
func (s *Server) respondLoad(w http.ResponseWriter, r *http.Request, u dashboard.Update) {
	if err := u.LoadErr; err != nil {
		logging.WithContext(r.Context(), s.log).Info("dataset load failed", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, errorKind(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request, sess *dashboard.Session) {
	writeJSON(w, http.StatusOK, sess.Overview())
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request, sess *dashboard.Session) {
	var req dashboard.MapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u := sess.Handle(dashboard.Event{Kind: dashboard.EventExplore, Map: req})
	writeJSON(w, http.StatusOK, u.Map)
}

func (s *Server) handleStatistics(w http.ResponseWriter, _ *http.Request, sess *dashboard.Session) {
	writeJSON(w, http.StatusOK, sess.Statistics())
}

// handleRows pages the raw data table with ?offset= and ?limit=.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request, sess *dashboard.Session) {
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Rows(offset, limit))
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return n, true
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request, sess *dashboard.Session) {
	var req ManualRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u := sess.Handle(dashboard.Event{Kind: dashboard.EventManualPoints, Points: req.Points, DefaultPoints: req.Count})
	writeJSON(w, http.StatusOK, u.Manual)
}

// decodeBody decodes a JSON body into v. An empty body leaves v zero.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
