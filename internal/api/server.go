package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/usecase"
)

// maxUpload bounds multipart bodies kept in memory; larger parts spill to disk.
const maxUpload = 32 << 20

// Server exposes one session over a local JSON API. Session calls are
// serialized, so one action runs at a time.
type Server struct {
	router *chi.Mux
	addr   string
	log    zerolog.Logger

	mu   sync.Mutex
	sess *usecase.Session
}

func NewServer(addr string, sess *usecase.Session, log zerolog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		addr:   addr,
		log:    log,
		sess:   sess,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", s.session)

		r.Get("/cast", s.listCast)
		r.Post("/cast", s.addCast)
		r.Delete("/cast/{name}", s.removeCast)

		r.Get("/templates", s.getTemplates)
		r.Put("/templates", s.putTemplates)

		r.Post("/ingest/media", s.ingestMedia)
		r.Post("/ingest/text", s.ingestText)
		r.Post("/ingest/paste", s.ingestPaste)

		r.Post("/format", s.format)
		r.Put("/filename", s.putFilename)
		r.Put("/text", s.putText)
		r.Put("/result", s.putResult)
		r.Put("/variations/{index}", s.putVariation)

		r.Post("/rewrite", s.rewrite)
		r.Post("/adopt", s.adopt)
		r.Post("/discard", s.discard)

		r.Post("/metadata", s.generateMetadata)
		r.Put("/metadata", s.putMetadata)

		r.Get("/export", s.listExport)
		r.Get("/export/{name}", s.downloadExport)
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("API server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		s.log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, usecase.ErrEmptyInput),
		errors.Is(err, usecase.ErrInvalidOptions),
		errors.Is(err, usecase.ErrInvalidCharacter):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrCharacterNotFound),
		errors.Is(err, usecase.ErrNoSuchVariation):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidStage),
		errors.Is(err, usecase.ErrDuplicateCharacter),
		errors.Is(err, usecase.ErrRosterFull):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrMissingCredentials):
		return http.StatusPreconditionFailed
	case errors.Is(err, usecase.ErrNoCast):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrGenerationFailed),
		errors.Is(err, ports.ErrUpload),
		errors.Is(err, ports.ErrTranscription),
		errors.Is(err, ports.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
