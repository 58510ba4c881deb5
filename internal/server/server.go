// Package server exposes the game over a JSON HTTP API: character management,
// the turn loop, the end-of-chapter flow and the journal views.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/store"
)

const sessionCookie = "daydream_session"

type Server struct {
	store    *store.Store
	engine   *engine.Engine
	chapters *eoc.Controller
	gateway  narration.Gateway
	repo     *content.Repository
	mux      *http.ServeMux
}

func New(st *store.Store, eng *engine.Engine, chapters *eoc.Controller, gw narration.Gateway, repo *content.Repository) *Server {
	s := &Server{
		store:    st,
		engine:   eng,
		chapters: chapters,
		gateway:  gw,
		repo:     repo,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/archetypes", s.handleArchetypes)
	s.mux.HandleFunc("GET /api/profile", s.handleProfile)
	s.mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	s.mux.HandleFunc("POST /api/characters", s.handleCreateCharacter)
	s.mux.HandleFunc("GET /api/characters/{id}", s.handleGetCharacter)
	s.mux.HandleFunc("DELETE /api/characters/{id}", s.handleDeleteCharacter)
	s.mux.HandleFunc("POST /api/characters/{id}/turn", s.handleTurn)
	s.mux.HandleFunc("POST /api/characters/{id}/chapter/begin", s.handleChapterBegin)
	s.mux.HandleFunc("POST /api/characters/{id}/chapter/answers", s.handleChapterAnswers)
	s.mux.HandleFunc("POST /api/characters/{id}/chapter/ack", s.handleChapterAck)
	s.mux.HandleFunc("GET /api/characters/{id}/journal", s.handleJournal)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// userID identifies the caller via the session cookie, minting a fresh
// anonymous identity on first contact.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// character loads the record addressed by the request path for the calling
// user, writing the error response itself on failure.
func (s *Server) character(w http.ResponseWriter, r *http.Request) (*models.Character, bool) {
	userID := s.userID(w, r)
	ch, err := s.store.Character(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "character not found")
		return nil, false
	}
	if err != nil {
		log.Printf("server: loading character: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load character")
		return nil, false
	}
	ch.EnsureDefaults()
	return ch, true
}

func (s *Server) handleArchetypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"setting":      s.repo.Setting(),
		"races":        s.repo.Races(),
		"classes":      s.repo.Classes(),
		"philosophies": s.repo.Philosophies(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.Profile(r.Context(), s.userID(w, r))
	if err != nil {
		log.Printf("server: loading profile: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_player_xp": profile.TotalXP,
		"player_level":    profile.Level,
		"has_seen_intro":  profile.HasSeenIntro,
	})
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := s.store.Characters(r.Context(), s.userID(w, r))
	if err != nil {
		log.Printf("server: listing characters: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list characters")
		return
	}
	summaries := make([]map[string]any, 0, len(chars))
	for _, ch := range chars {
		summaries = append(summaries, map[string]any{
			"id":          ch.ID,
			"name":        ch.Name,
			"race_name":   ch.Race,
			"class_name":  ch.Class,
			"location":    ch.CurrentLocation,
			"quest_title": ch.CurrentQuestTitle,
			"chapters":    len(ch.ReportSummaries),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"characters": summaries})
}

type createCharacterRequest struct {
	Name       string `json:"name"`
	Race       string `json:"race_name"`
	Class      string `json:"class_name"`
	Philosophy string `json:"philosophy_name"`
	Backstory  string `json:"backstory"`
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := s.userID(w, r)

	var req createCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 50 {
		writeError(w, http.StatusBadRequest, "name must be 1-50 characters")
		return
	}
	if s.repo.Race(req.Race) == nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown race %q", req.Race))
		return
	}
	if s.repo.Class(req.Class) == nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown class %q", req.Class))
		return
	}
	if _, ok := s.repo.Philosophies()[req.Philosophy]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown philosophy %q", req.Philosophy))
		return
	}

	ch := models.NewCharacter(userID, req.Name, req.Race, req.Class, req.Philosophy)
	ch.Backstory = strings.TrimSpace(req.Backstory)
	ch.Abilities = s.repo.Abilities(req.Race, req.Class)
	ch.CurrentLocation = content.StartingLocation
	if q := s.repo.Quest(content.StarterQuest); q != nil {
		ch.CurrentQuestID = content.StarterQuest
		ch.CurrentStepID = q.StartingStep
		ch.CurrentQuestTitle = q.Title
		if step := q.Steps[q.StartingStep]; step != nil {
			ch.CurrentStepDescription = step.Description
		}
	}

	showIntro := s.narrateOpening(r, ch, userID)

	if err := s.store.SaveCharacter(ctx, ch); err != nil {
		log.Printf("server: saving new character: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save character")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"character":  ch,
		"show_intro": showIntro,
	})
}

// narrateOpening seeds a new character's log with the Storyteller's opening
// scene and reports whether the one-time world introduction should also be
// shown. Failures fall back to the location blurb so a new character never
// starts with an empty transcript.
func (s *Server) narrateOpening(r *http.Request, ch *models.Character, userID string) bool {
	ctx := r.Context()

	loc := s.repo.Location(ch.CurrentLocation)
	if loc == nil {
		loc = &content.Location{}
	}
	text, err := s.gateway.InitialSetup(ctx, narration.SetupInput{
		Base: narration.TurnContext{
			PlayerName:      ch.Name,
			Race:            ch.Race,
			Class:           ch.Class,
			Philosophy:      ch.Philosophy,
			FatePoints:      int(ch.FatePoints),
			Location:        ch.CurrentLocation,
			QuestTitle:      ch.CurrentQuestTitle,
			StepDescription: ch.CurrentStepDescription,
		},
		LocationDescription: loc.Description,
		Mood:                loc.Mood,
		NPCs:                s.repo.NPCsAt(ch.CurrentLocation),
	})
	if err != nil {
		log.Printf("server: opening narration failed for %s: %v", ch.ID, err)
		text = loc.Description
	}
	if text != "" {
		ch.AppendConversation(models.SpeakerStoryteller, text)
	}

	profile, err := s.store.Profile(ctx, userID)
	if err != nil {
		log.Printf("server: loading profile for intro flag: %v", err)
		return false
	}
	if profile.HasSeenIntro {
		return false
	}
	if err := s.store.SetHasSeenIntro(ctx, userID, true); err != nil {
		log.Printf("server: marking intro seen for %s: %v", userID, err)
	}
	return true
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"character": ch})
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(w, r)
	err := s.store.DeleteCharacter(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}
	if err != nil {
		log.Printf("server: deleting character: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete character")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var viewNames = map[engine.View]string{
	engine.ViewGame:           "game",
	engine.ViewCharacterSheet: "character_sheet",
	engine.ViewVocabReport:    "vocab_report",
}

type turnRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.engine.ProcessTurn(r.Context(), ch, req.Input)
	if errors.Is(err, engine.ErrChapterInProgress) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":         "end-of-chapter flow in progress",
			"chapter_state": ch.ChapterState,
		})
		return
	}
	if err != nil {
		log.Printf("server: turn failed for %s: %v", ch.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to process turn")
		return
	}

	resp := map[string]any{
		"view":          viewNames[out.View],
		"entries":       out.Entries,
		"chapter_ended": out.ChapterEnded,
		"character":     ch,
	}
	if out.XPGained > 0 {
		resp["xp_gained"] = out.XPGained
		resp["new_words"] = out.NewWords
	}
	if out.LeveledUp {
		resp["leveled_up"] = true
		resp["player_level"] = out.PlayerLevel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChapterBegin(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}
	questions, err := s.chapters.Begin(r.Context(), ch)
	if errors.Is(err, eoc.ErrWrongState) {
		writeError(w, http.StatusConflict, "no chapter is concluding")
		return
	}
	if err != nil {
		log.Printf("server: chapter begin failed for %s: %v", ch.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to begin chapter review")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

type chapterAnswersRequest struct {
	Answers []string `json:"answers"`
}

func (s *Server) handleChapterAnswers(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}
	var req chapterAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.chapters.SubmitAnswers(r.Context(), ch, req.Answers)
	if errors.Is(err, eoc.ErrWrongState) {
		writeError(w, http.StatusConflict, "chapter is not awaiting answers")
		return
	}
	if errors.Is(err, eoc.ErrIncompleteAnswers) {
		writeError(w, http.StatusBadRequest, "all questions must be answered")
		return
	}
	if err != nil {
		log.Printf("server: chapter answers failed for %s: %v", ch.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to score chapter")
		return
	}

	resp := map[string]any{
		"report":              result.Report,
		"xp_gained":           result.XPGained,
		"comprehension_score": result.Comprehension,
	}
	if result.LeveledUp {
		resp["leveled_up"] = true
		resp["player_level"] = result.PlayerLevel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChapterAck(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}
	seed, err := s.chapters.Acknowledge(r.Context(), ch)
	if errors.Is(err, eoc.ErrWrongState) {
		writeError(w, http.StatusConflict, "no report is awaiting acknowledgement")
		return
	}
	if err != nil {
		log.Printf("server: chapter ack failed for %s: %v", ch.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to start next chapter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"next_quest": seed,
		"character":  ch,
	})
}
