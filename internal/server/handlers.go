package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"cuentomagico/internal/generate"
	"cuentomagico/internal/session"
	"cuentomagico/internal/story"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// currentSession resolves the request's session, or reports 500.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(sessionIDFrom(r))
	if err != nil {
		s.log.Error().Err(err).Msg("resolving session")
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return sess, true
}

func (s *Server) writeEventOutcome(w http.ResponseWriter, sess *session.Session, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stateView(sess))
	case errors.Is(err, session.ErrInvalidEvent):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrConfirmationRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrUnknownStory):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error().Err(err).Msg("applying event")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// event builds a handler that applies one fixed session event.
func (s *Server) event(ev session.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(w, r)
		if !ok {
			return
		}
		s.writeEventOutcome(w, sess, sess.Apply(ev))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex consumes the payment-outcome query parameter exactly once,
// then redirects to the bare path so a refresh cannot replay it.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if outcome := r.URL.Query().Get("payment"); outcome == "success" || outcome == "cancel" {
		sess, ok := s.currentSession(w, r)
		if !ok {
			return
		}
		if err := sess.Apply(session.PaymentRedirect{Outcome: outcome}); err != nil {
			s.log.Error().Err(err).Str("outcome", outcome).Msg("payment redirect recovery")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.log.Error().Err(err).Msg("rendering index")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

type stateResponse struct {
	Screen             string   `json:"screen"`
	Paid               bool     `json:"paid"`
	Page               int      `json:"page"`
	TotalPages         int      `json:"totalPages"`
	PaywallOpen        bool     `json:"paywallOpen"`
	PendingPaywallPage int      `json:"pendingPaywallPage"`
	StoryID            string   `json:"storyId,omitempty"`
	Title              string   `json:"title,omitempty"`
	PageParagraphs     []string `json:"pageParagraphs,omitempty"`
	ChildName          string   `json:"childName,omitempty"`
	Error              string   `json:"error,omitempty"`
}

func stateView(sess *session.Session) stateResponse {
	st := sess.State()
	resp := stateResponse{
		Screen:             string(st.Screen),
		Paid:               st.Paid,
		Page:               st.Page,
		PaywallOpen:        st.PaywallOpen,
		PendingPaywallPage: st.PendingPaywallPage,
		Error:              st.LastError,
	}
	if st.Prefs != nil {
		resp.ChildName = st.Prefs.Name
	}
	if st.Story != nil {
		resp.StoryID = st.Story.ID
		resp.Title = st.Story.Title
		resp.TotalPages = len(st.Story.Pages)
		if st.Page >= 0 && st.Page < len(st.Story.Pages) {
			resp.PageParagraphs = st.Story.Pages[st.Page]
		}
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateView(sess))
}

type generateForm struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Interests string `json:"interests"`
	StoryType string `json:"storyType"`
	Language  string `json:"language"`
}

// handleGenerate is the customization form submit: validate, enter the
// generating screen, and run the generation asynchronously.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var form generateForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := story.NewPreferences(form.Name, form.Age, story.Gender(form.Gender), form.Interests, story.StoryType(form.StoryType), form.Language)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := sess.Apply(session.SubmitPreferences{Prefs: prefs}); err != nil {
		s.writeEventOutcome(w, sess, err)
		return
	}

	prog := s.progressFor(sess.ID(), true)
	go s.runGeneration(sess, prog, prefs)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"sessionId": sess.ID(),
		"status":    "started",
	})
}

func (s *Server) runGeneration(sess *session.Session, prog *generate.Progress, prefs story.UserPreferences) {
	defer s.releaseProgress(sess.ID(), prog)
	defer prog.Close()

	prog.Update(generate.StateGenerating, generate.LoadingMessages[0])

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2500 * time.Millisecond)
		defer ticker.Stop()
		i := 1
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				prog.Update(generate.StateGenerating, generate.LoadingMessages[i%len(generate.LoadingMessages)])
				i++
			}
		}
	}()

	st, err := s.generator.Generate(context.Background(), prefs)
	close(done)

	if err != nil {
		s.log.Error().Err(err).Str("session", sess.ID()).Msg("generation failed")
		if applyErr := sess.Apply(session.GenerationFailed{Err: err}); applyErr != nil {
			s.log.Error().Err(applyErr).Msg("reporting generation failure")
		}
		prog.Update(generate.StateError, "Hubo un error al crear la magia. Por favor, inténtalo de nuevo.")
		return
	}

	if applyErr := sess.Apply(session.GenerationSucceeded{Story: st}); applyErr != nil {
		s.log.Error().Err(applyErr).Msg("delivering generated story")
	}
	prog.Update(generate.StateCompleted, "✨ ¡Tu cuento está listo!")
}

type selectForm struct {
	ID string `json:"id"`
}

func (s *Server) handleLibrarySelect(w http.ResponseWriter, r *http.Request) {
	var form selectForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil || form.ID == "" {
		writeError(w, http.StatusBadRequest, "story id required")
		return
	}
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	s.writeEventOutcome(w, sess, sess.Apply(session.SelectStory{ID: form.ID}))
}

func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	ev := session.DeleteStory{
		ID:        chi.URLParam(r, "id"),
		Confirmed: r.URL.Query().Get("confirm") == "true",
	}
	s.writeEventOutcome(w, sess, sess.Apply(ev))
}

type libraryEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	stories := sess.Library()
	entries := make([]libraryEntry, 0, len(stories))
	for _, st := range stories {
		entries = append(entries, libraryEntry{
			ID:        st.ID,
			Title:     st.Title,
			Pages:     len(st.Pages),
			CreatedAt: st.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleDownload exports the story on demand and serves the PDF.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	st, found := sess.FindStory(chi.URLParam(r, "id"))
	if !found {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}

	recipient := ""
	if state := sess.State(); state.Prefs != nil {
		recipient = state.Prefs.Name
	}
	path, err := s.exporter.Export(st, recipient)
	if err != nil {
		s.log.Error().Err(err).Str("story", st.ID).Msg("exporting story")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filepath.Base(path)))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}
