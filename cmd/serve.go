package cmd

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/db"
	"github.com/jsphweid/perfdex/logger"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/project"
)

func init() {
	addProjectFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <score> <performance>",
	Short: "Serves an alignment for interactive editing",
	Long: `Serves the alignment of a performance with its score over HTTP. Edits mark the
performance description stale; it is rebuilt once edits settle or on the next read.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		cobra.CheckErr(err)
		p, err := openProject(context.Background(), args[0], args[1], store)
		cobra.CheckErr(err)

		addr := ":" + constants.GetPort()
		log.Info("serving", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, NewRouter(p, store, log)); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	},
}

type server struct {
	project *project.Project
	store   db.Store
	logger  *zap.Logger
}

// NewRouter exposes a project over HTTP, with CORS open for browser editors.
func NewRouter(p *project.Project, store db.Store, l *zap.Logger) http.Handler {
	s := &server{project: p, store: store, logger: logger.OrNop(l)}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/alignment", s.handleGetAlignment).Methods(http.MethodGet)
	router.HandleFunc("/alignment", s.handleLink).Methods(http.MethodPost)
	router.HandleFunc("/alignment", s.handleUnlink).Methods(http.MethodDelete)
	router.HandleFunc("/alignment/motivation", s.handleMotivation).Methods(http.MethodPut)
	router.HandleFunc("/alignment/save/{id}", s.handleSave).Methods(http.MethodPost)
	router.HandleFunc("/alignment/load/{id}", s.handleLoad).Methods(http.MethodPost)
	router.HandleFunc("/document", s.handleDocument).Methods(http.MethodGet)
	router.HandleFunc("/regenerate", s.handleRegenerate).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}).Handler(router)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("could not write response", zap.Error(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, project.ErrUnknownNote), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrNotAligned):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func (s *server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logger.Info("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func (s *server) decode(r *http.Request) (model.AlignRequest, error) {
	var req model.AlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.Wrap(err, "Could not unmarshal request body")
	}
	return req, nil
}

func (s *server) handleGetAlignment(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.project.Triples())
}

func (s *server) handleLink(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	pair, err := s.project.Link(req.ScoreNoteID, req.PerformedNoteID, req.Motivation)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.Triple{
		ScoreNoteID:     pair.ScoreNote.ID,
		PerformedNoteID: pair.PerformedNote.ID,
		Motivation:      pair.Motivation.String(),
	})
}

func (s *server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.project.Unlink(req.ScoreNoteID); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMotivation(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.project.SetMotivation(req.ScoreNoteID, req.PerformedNoteID, req.Motivation); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.project.Save(r.Context(), s.store, id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.project.Load(r.Context(), s.store, id); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.project.Triples())
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.project.Document())
}

func (s *server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.RegenerateResponse{Statuses: s.project.Regenerate()})
}
