package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/store"
)

// stubGateway narrates every call with canned text and answers every
// evaluation negatively, so game flow is driven purely by the deterministic
// core.
type stubGateway struct{}

func (stubGateway) InitialSetup(context.Context, narration.SetupInput) (string, error) {
	return "Welcome to Thetopia.", nil
}
func (stubGateway) Describe(context.Context, narration.DescribeInput) (string, error) {
	return "The square hums with gearwork.", nil
}
func (stubGateway) AbilityUse(context.Context, narration.AbilityInput) (string, error) {
	return "Sparks fly.", nil
}
func (stubGateway) InvalidDirection(context.Context, narration.MoveInput) (string, error) {
	return "A wall of scrap blocks the way.", nil
}
func (stubGateway) InvalidAbility(context.Context, narration.AbilityInput) (string, error) {
	return "Nothing happens.", nil
}
func (stubGateway) InterpretCommand(context.Context, narration.CommandInput) (string, error) {
	return "The Storyteller nods.", nil
}
func (stubGateway) EvaluateStepCompletion(context.Context, narration.StepCheckInput) (bool, error) {
	return false, nil
}
func (stubGateway) CheckChapterProgress(context.Context, narration.ProgressInput) (narration.Verdict, error) {
	return narration.VerdictNo, nil
}
func (stubGateway) InitiateSideQuest(context.Context, narration.SideQuestInput) (string, error) {
	return "Perhaps a small task first.", nil
}
func (stubGateway) ConvertSideQuestIdea(context.Context, narration.SideQuestInput) (string, error) {
	return "Inspect the fountain valves.", nil
}
func (stubGateway) ScoreComprehension(context.Context, narration.ComprehensionInput) (float64, error) {
	return 7, nil
}
func (stubGateway) AnalyzeWriting(context.Context, narration.AnalysisInput) (models.WritingAnalysis, error) {
	return models.WritingAnalysis{}, nil
}
func (stubGateway) GenerateNextQuest(context.Context, narration.NextQuestInput) (narration.QuestSeed, error) {
	return narration.QuestSeed{}, fmt.Errorf("generation disabled")
}

// client wraps the test server and carries the session cookie between
// requests.
type client struct {
	t       *testing.T
	srv     *Server
	cookies []*http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	repo, err := content.Load()
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gw := stubGateway{}
	eng := engine.New(gw, st, repo)
	chapters := eoc.New(gw, st, repo)
	return &client{t: t, srv: New(st, eng, chapters, gw, repo)}
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encoding request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = append(c.cookies, set...)
	}

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			c.t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func (c *client) createCharacter() string {
	c.t.Helper()
	rec, body := c.do("POST", "/api/characters", map[string]string{
		"name":            "Bolt",
		"race_name":       "Android",
		"class_name":      "Inventor",
		"philosophy_name": "Becoming Awesome",
	})
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("create character: status %d body %s", rec.Code, rec.Body)
	}
	ch := body["character"].(map[string]any)
	return ch["id"].(string)
}

func TestArchetypesListsContent(t *testing.T) {
	c := newClient(t)
	rec, body := c.do("GET", "/api/archetypes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	races := body["races"].(map[string]any)
	if _, ok := races["Android"]; !ok {
		t.Errorf("races = %v", races)
	}
	if body["setting"] == "" {
		t.Error("setting missing")
	}
}

func TestCreateCharacterValidation(t *testing.T) {
	c := newClient(t)
	for _, req := range []map[string]string{
		{"name": "", "race_name": "Android", "class_name": "Inventor", "philosophy_name": "Becoming Awesome"},
		{"name": "Bolt", "race_name": "Elf", "class_name": "Inventor", "philosophy_name": "Becoming Awesome"},
		{"name": "Bolt", "race_name": "Android", "class_name": "Wizard", "philosophy_name": "Becoming Awesome"},
		{"name": "Bolt", "race_name": "Android", "class_name": "Inventor", "philosophy_name": "Nihilism"},
	} {
		rec, _ := c.do("POST", "/api/characters", req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("create %v: status %d, want 400", req, rec.Code)
		}
	}
}

func TestCreateCharacterSeedsQuestAndIntro(t *testing.T) {
	c := newClient(t)
	rec, body := c.do("POST", "/api/characters", map[string]string{
		"name":            "Bolt",
		"race_name":       "Android",
		"class_name":      "Inventor",
		"philosophy_name": "Becoming Awesome",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	ch := body["character"].(map[string]any)
	if ch["current_quest_id"] != content.StarterQuest {
		t.Errorf("quest id = %v", ch["current_quest_id"])
	}
	if ch["current_location"] != content.StartingLocation {
		t.Errorf("location = %v", ch["current_location"])
	}
	log := ch["conversation_log"].([]any)
	if len(log) != 1 {
		t.Fatalf("opening log = %v", log)
	}
	entry := log[0].(map[string]any)
	if entry["text"] != "Welcome to Thetopia." {
		t.Errorf("opening entry = %v", entry)
	}
	if body["show_intro"] != true {
		t.Errorf("show_intro = %v, want true on first character", body["show_intro"])
	}

	// Every character gets an opening scene, but the world intro shows once
	// per user.
	_, body = c.do("POST", "/api/characters", map[string]string{
		"name":            "Rivet",
		"race_name":       "Android",
		"class_name":      "Inventor",
		"philosophy_name": "Becoming Awesome",
	})
	second := body["character"].(map[string]any)
	if secondLog := second["conversation_log"].([]any); len(secondLog) != 1 {
		t.Errorf("second character opening log = %v", secondLog)
	}
	if body["show_intro"] != false {
		t.Errorf("show_intro = %v, want false on repeat user", body["show_intro"])
	}
}

func TestTurnNarratesAndPersists(t *testing.T) {
	c := newClient(t)
	id := c.createCharacter()

	rec, body := c.do("POST", "/api/characters/"+id+"/turn", map[string]string{"input": "look"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	entries := body["entries"].([]any)
	if len(entries) < 2 {
		t.Fatalf("entries = %v", entries)
	}
	if body["view"] != "game" {
		t.Errorf("view = %v", body["view"])
	}

	// The turn count change must survive a reload.
	_, body = c.do("GET", "/api/characters/"+id, nil)
	ch := body["character"].(map[string]any)
	if ch["turn_count"].(float64) != 1 {
		t.Errorf("turn_count = %v", ch["turn_count"])
	}
}

func TestTurnConflictsDuringChapterFlow(t *testing.T) {
	c := newClient(t)
	id := c.createCharacter()
	forceChapterState(t, c, id, models.ChapterStart)

	rec, body := c.do("POST", "/api/characters/"+id+"/turn", map[string]string{"input": "look"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	if body["chapter_state"] != string(models.ChapterStart) {
		t.Errorf("chapter_state = %v", body["chapter_state"])
	}
}

func TestChapterEndpoints(t *testing.T) {
	c := newClient(t)
	id := c.createCharacter()
	forceChapterState(t, c, id, models.ChapterStart)

	rec, body := c.do("POST", "/api/characters/"+id+"/chapter/begin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("begin: status %d body %s", rec.Code, rec.Body)
	}
	if questions := body["questions"].([]any); len(questions) != 3 {
		t.Fatalf("questions = %v", questions)
	}

	rec, _ = c.do("POST", "/api/characters/"+id+"/chapter/answers", map[string]any{
		"answers": []string{"only one"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete answers: status %d, want 400", rec.Code)
	}

	rec, body = c.do("POST", "/api/characters/"+id+"/chapter/answers", map[string]any{
		"answers": []string{"fixing the fountain", "met Widget", "carefully"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("answers: status %d body %s", rec.Code, rec.Body)
	}
	if body["comprehension_score"].(float64) != 7 {
		t.Errorf("comprehension = %v", body["comprehension_score"])
	}
	if body["report"] == "" {
		t.Error("report missing")
	}

	// Generation is stubbed to fail, so ack binds the fallback quest.
	rec, body = c.do("POST", "/api/characters/"+id+"/chapter/ack", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ack: status %d body %s", rec.Code, rec.Body)
	}
	next := body["next_quest"].(map[string]any)
	if next["title"] != "Explore Thetopia" {
		t.Errorf("next quest = %v", next)
	}
	ch := body["character"].(map[string]any)
	if state, ok := ch["chapter_state"]; ok && state != "" {
		t.Errorf("chapter_state = %v, want idle", state)
	}

	rec, _ = c.do("POST", "/api/characters/"+id+"/chapter/ack", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat ack: status %d, want 409", rec.Code)
	}
}

func TestJournalViews(t *testing.T) {
	c := newClient(t)
	id := c.createCharacter()

	rec, body := c.do("GET", "/api/characters/"+id+"/journal", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	sheet := body["character_sheet"].(map[string]any)
	if sheet["name"] != "Bolt" || sheet["race_name"] != "Android" {
		t.Errorf("sheet = %v", sheet)
	}
	report := body["vocab_report"].(map[string]any)
	if report["word_count"].(float64) != 0 {
		t.Errorf("word_count = %v", report["word_count"])
	}
	if report["player_level"].(float64) != 1 {
		t.Errorf("player_level = %v", report["player_level"])
	}

	rec, body = c.do("GET", "/api/characters/"+id+"/journal?view=sheet", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if _, ok := body["vocab_report"]; ok {
		t.Error("sheet view leaked the vocab report")
	}
}

func TestCharacterScopedToSession(t *testing.T) {
	c := newClient(t)
	id := c.createCharacter()

	// A second visitor must not see the first visitor's character.
	other := &client{t: t, srv: c.srv}
	rec, _ := other.do("GET", "/api/characters/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user read: status %d, want 404", rec.Code)
	}
}

// forceChapterState rewrites the stored record's chapter state through the
// API-visible store.
func forceChapterState(t *testing.T, c *client, id string, state models.ChapterState) {
	t.Helper()
	_, body := c.do("GET", "/api/characters/"+id, nil)
	userID := body["character"].(map[string]any)["user_id"].(string)

	ch, err := c.srv.store.Character(context.Background(), userID, id)
	if err != nil {
		t.Fatalf("loading character: %v", err)
	}
	ch.ChapterState = state
	ch.ChapterInputs = []string{"I inspect the fountain", "I talk to Widget"}
	if err := c.srv.store.SaveCharacter(context.Background(), ch); err != nil {
		t.Fatalf("saving character: %v", err)
	}
}
