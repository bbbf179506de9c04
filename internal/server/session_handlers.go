package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/quiz"
	"github.com/abhisek/lectura/internal/report"
)

type loginReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginResp struct {
	SessionID string        `json:"sessionId"`
	Token     string        `json:"token"`
	Snapshot  quiz.Snapshot `json:"snapshot"`
}

type answerReq struct {
	Answer string `json:"answer"`
}

type answerResp struct {
	Feedback quiz.Feedback `json:"feedback"`
	Snapshot quiz.Snapshot `json:"snapshot"`
}

type advanceResp struct {
	Done     bool          `json:"done"`
	Snapshot quiz.Snapshot `json:"snapshot"`
}

type resultsResp struct {
	quiz.Results
	Remediation string `json:"remediation"`
}

// POST /api/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	ctrl := quiz.New(s.deps.Bank, quiz.Options{
		Grader:             s.deps.Grader,
		Remediator:         s.deps.Remediator,
		Recorder:           s.deps.Recorder,
		GradingTimeout:     s.cfg.GradingTimeout,
		RemediationTimeout: s.cfg.RemediationTimeout,
		Now:                s.deps.Now,
	})
	if err := ctrl.Login(req.FirstName, req.LastName); err != nil {
		writeQuizError(w, err)
		return
	}

	snap := ctrl.Snapshot()
	tok, err := s.tokens.Issue(ctrl.SessionID(), snap.Profile.FullName())
	if err != nil {
		ctrl.Abandon()
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	s.sessions.Add(ctrl)
	writeJSON(w, http.StatusCreated, loginResp{SessionID: ctrl.SessionID(), Token: tok, Snapshot: snap})
}

type ctrlKey struct{}

// withSession loads the controller named in the URL and checks that the
// bearer token was issued for it. Tokens nearing expiry on a live session
// are renewed through HeaderRenewedToken.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.SessionID != id {
			writeError(w, http.StatusForbidden, "token does not grant this session")
			return
		}
		ctrl, ok := s.sessions.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		if tok, err := s.tokens.Renew(claims); err != nil {
			slog.WarnContext(r.Context(), "renew session token", "session_id", id, "error", err)
		} else if tok != "" {
			w.Header().Set(HeaderRenewedToken, tok)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctrlKey{}, ctrl)))
	})
}

func controllerFrom(r *http.Request) *quiz.Controller {
	return r.Context().Value(ctrlKey{}).(*quiz.Controller)
}

// GET /api/sessions/{sessionID}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, controllerFrom(r).Snapshot())
}

// POST /api/sessions/{sessionID}/start
func (s *Server) startQuiz(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r)
	if err := ctrl.StartQuiz(); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/sessions/{sessionID}/text
func (s *Server) jumpToText(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r)
	if err := ctrl.JumpToText(); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// POST /api/sessions/{sessionID}/answers
func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	ctrl := controllerFrom(r)

	// A dropped connection must not turn into a consumed try; the grading
	// deadline still applies.
	fb, err := ctrl.Submit(context.WithoutCancel(r.Context()), req.Answer)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResp{Feedback: fb, Snapshot: ctrl.Snapshot()})
}

// POST /api/sessions/{sessionID}/advance
func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r)
	done, err := ctrl.Advance()
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advanceResp{Done: done, Snapshot: ctrl.Snapshot()})
}

// GET /api/sessions/{sessionID}/results
func (s *Server) results(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r)
	res, err := ctrl.Results()
	if err != nil {
		writeQuizError(w, err)
		return
	}
	text, err := ctrl.Remediate(r.Context())
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResp{Results: res, Remediation: text})
}

// GET /api/sessions/{sessionID}/report.pdf
func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r)
	res, err := ctrl.Results()
	if err != nil {
		writeQuizError(w, err)
		return
	}
	text, err := ctrl.Remediate(r.Context())
	if err != nil {
		writeQuizError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Exporter.Export(&buf, report.FromResults(res, text, s.deps.Now())); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(res.Profile)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// DELETE /api/sessions/{sessionID}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

type publicQuestion struct {
	ID       int              `json:"id"`
	Text     string           `json:"text"`
	Category content.Category `json:"category"`
	Label    string           `json:"label"`
}

type contentResp struct {
	Version   string                  `json:"version"`
	Title     string                  `json:"title"`
	Story     string                  `json:"story"`
	Glossary  []content.GlossaryEntry `json:"glossary"`
	Questions []publicQuestion        `json:"questions"`
}

// GET /api/content
//
// Answers and hints are withheld.
func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	b := s.deps.Bank
	resp := contentResp{
		Version:  b.Version(),
		Title:    b.Title(),
		Story:    b.Story(),
		Glossary: b.Glossary(),
	}
	for _, q := range b.Questions() {
		resp.Questions = append(resp.Questions, publicQuestion{
			ID: q.ID, Text: q.Text, Category: q.Category, Label: q.Category.Label(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
