package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forPelevin/scenarist/internal/types"
	"github.com/forPelevin/scenarist/internal/usecase"
)

// SessionView is the full session as returned by every script mutation.
type SessionView struct {
	State         usecase.State     `json:"state"`
	Roster        []types.Character `json:"roster"`
	CanGenerate   bool              `json:"can_generate"`
	CanTranscribe bool              `json:"can_transcribe"`
}

type textRequest struct {
	Text string `json:"text"`
}

type formatRequest struct {
	Mode usecase.FormatMode `json:"mode"`
}

type filenameRequest struct {
	Filename string `json:"filename"`
}

type rewriteRequest struct {
	types.RewriteOptions
	// Questioners left out selects the whole roster.
	Questioners []string `json:"questioners"`
}

type adoptRequest struct {
	// Index picks a variation (0-based). Left out adopts the single result.
	Index *int `json:"index"`
}

// decodeJSON reads v from the body. An empty body leaves v untouched when
// optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return badRequest{fmt.Errorf("invalid JSON: %w", err)}
	}
	return nil
}

// locked runs fn with the session held and answers with the session view.
func (s *Server) locked(w http.ResponseWriter, status int, fn func(sess *usecase.Session) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, s.view())
}

func (s *Server) view() SessionView {
	return SessionView{
		State:         s.sess.Snapshot(),
		Roster:        s.sess.Roster(),
		CanGenerate:   s.sess.CanGenerate(),
		CanTranscribe: s.sess.CanTranscribe(),
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	s.locked(w, http.StatusOK, func(*usecase.Session) error { return nil })
}

func (s *Server) listCast(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	roster := s.sess.Roster()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) addCast(w http.ResponseWriter, r *http.Request) {
	var c types.Character
	if err := decodeJSON(r, &c, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusCreated, func(sess *usecase.Session) error { return sess.AddCharacter(c) })
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when it
// is set, and the parameter is still escaped only in that case.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (s *Server) removeCast(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, badRequest{err})
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.RemoveCharacter(name) })
}

func (s *Server) getTemplates(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg := s.sess.Templates()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) putTemplates(w http.ResponseWriter, r *http.Request) {
	var cfg types.TemplateConfig
	if err := decodeJSON(r, &cfg, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.SetTemplates(cfg); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Templates())
}

// formFile returns the multipart "file" part.
func formFile(r *http.Request) (multipart.File, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, "", badRequest{fmt.Errorf("invalid multipart body: %w", err)}
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", badRequest{fmt.Errorf("file part: %w", err)}
	}
	return f, hdr.Filename, nil
}

func (s *Server) ingestMedia(w http.ResponseWriter, r *http.Request) {
	f, name, err := formFile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer f.Close()
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.IngestMedia(r.Context(), name, f) })
}

func (s *Server) ingestText(w http.ResponseWriter, r *http.Request) {
	f, name, err := formFile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer f.Close()
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.IngestTextFile(name, f) })
}

func (s *Server) ingestPaste(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.IngestPaste(req.Text) })
}

func (s *Server) format(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.Format(r.Context(), req.Mode) })
}

func (s *Server) putFilename(w http.ResponseWriter, r *http.Request) {
	var req filenameRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.SetFilename(req.Filename) })
}

func (s *Server) putText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.Edit(req.Text) })
}

func (s *Server) putResult(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.EditResult(req.Text) })
}

func (s *Server) putVariation(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, badRequest{fmt.Errorf("invalid index: %w", err)})
		return
	}
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.EditVariation(i, req.Text) })
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error {
		return sess.Rewrite(r.Context(), usecase.RewriteRequest{Options: req.RewriteOptions, Questioners: req.Questioners})
	})
}

func (s *Server) adopt(w http.ResponseWriter, r *http.Request) {
	var req adoptRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error {
		if req.Index != nil {
			return sess.SelectVariation(*req.Index)
		}
		return sess.Adopt()
	})
}

func (s *Server) discard(w http.ResponseWriter, r *http.Request) {
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.Discard() })
}

func (s *Server) generateMetadata(w http.ResponseWriter, r *http.Request) {
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.GenerateMetadata(r.Context()) })
}

func (s *Server) putMetadata(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	s.locked(w, http.StatusOK, func(sess *usecase.Session) error { return sess.EditMetadata(req.Text) })
}

func (s *Server) exportArtifacts() ([]usecase.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Export()
}

func (s *Server) listExport(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.exportArtifacts()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifacts)
}

func (s *Server) downloadExport(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, badRequest{err})
		return
	}
	artifacts, err := s.exportArtifacts()
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, a := range artifacts {
		if a.Name != name {
			continue
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(a.Name))
		_, _ = io.WriteString(w, a.Content)
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("no artifact %q", name)})
}
