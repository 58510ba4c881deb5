package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/store"
)

type fakeGateway struct {
	calls []string

	verdict       narration.Verdict
	verdictErr    error
	stepYes       bool
	stepErr       error
	objective     string
	objectiveErr  error
	narrationText string
}

func (f *fakeGateway) record(name string) string {
	f.calls = append(f.calls, name)
	if f.narrationText != "" {
		return f.narrationText
	}
	return "The Storyteller narrates " + name + "."
}

func (f *fakeGateway) InitialSetup(_ context.Context, _ narration.SetupInput) (string, error) {
	return f.record("initial_setup"), nil
}
func (f *fakeGateway) Describe(_ context.Context, _ narration.DescribeInput) (string, error) {
	return f.record("describe"), nil
}
func (f *fakeGateway) AbilityUse(_ context.Context, _ narration.AbilityInput) (string, error) {
	return f.record("ability_use"), nil
}
func (f *fakeGateway) InvalidDirection(_ context.Context, _ narration.MoveInput) (string, error) {
	return f.record("invalid_direction"), nil
}
func (f *fakeGateway) InvalidAbility(_ context.Context, _ narration.AbilityInput) (string, error) {
	return f.record("invalid_ability"), nil
}
func (f *fakeGateway) InterpretCommand(_ context.Context, _ narration.CommandInput) (string, error) {
	return f.record("interpret_command"), nil
}
func (f *fakeGateway) EvaluateStepCompletion(_ context.Context, _ narration.StepCheckInput) (bool, error) {
	f.calls = append(f.calls, "evaluate_step")
	return f.stepYes, f.stepErr
}
func (f *fakeGateway) CheckChapterProgress(_ context.Context, _ narration.ProgressInput) (narration.Verdict, error) {
	f.calls = append(f.calls, "chapter_progress")
	return f.verdict, f.verdictErr
}
func (f *fakeGateway) InitiateSideQuest(_ context.Context, _ narration.SideQuestInput) (string, error) {
	return f.record("side_quest_offer"), nil
}
func (f *fakeGateway) ConvertSideQuestIdea(_ context.Context, _ narration.SideQuestInput) (string, error) {
	f.calls = append(f.calls, "side_quest_idea")
	return f.objective, f.objectiveErr
}
func (f *fakeGateway) ScoreComprehension(_ context.Context, _ narration.ComprehensionInput) (float64, error) {
	return 7, nil
}
func (f *fakeGateway) AnalyzeWriting(_ context.Context, _ narration.AnalysisInput) (models.WritingAnalysis, error) {
	return models.WritingAnalysis{}, nil
}
func (f *fakeGateway) GenerateNextQuest(_ context.Context, _ narration.NextQuestInput) (narration.QuestSeed, error) {
	return narration.QuestSeed{}, errors.New("not used")
}

func (f *fakeGateway) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

type fakeStore struct {
	saves   int
	saveErr error
	xpAdded int
}

func (s *fakeStore) SaveCharacter(_ context.Context, _ *models.Character) error {
	s.saves++
	return s.saveErr
}

func (s *fakeStore) AddPlayerXP(_ context.Context, _ string, xp int) (store.Profile, bool, error) {
	s.xpAdded += xp
	return store.Profile{TotalXP: s.xpAdded, Level: 1}, false, nil
}

func testEngine(t *testing.T) (*Engine, *fakeGateway, *fakeStore) {
	t.Helper()
	repo, err := content.Load()
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	gw := &fakeGateway{}
	st := &fakeStore{}
	return New(gw, st, repo), gw, st
}

func testCharacter() *models.Character {
	ch := models.NewCharacter("u1", "Bolt", "Android", "Inventor", "Becoming Awesome")
	ch.Abilities = []string{"Tinker", "Fortunate Find"}
	ch.CurrentLocation = content.StartingLocation
	return ch
}

func lastEntry(t *testing.T, out *TurnOutcome) models.ConversationEntry {
	t.Helper()
	if len(out.Entries) == 0 {
		t.Fatal("no entries appended")
	}
	return out.Entries[len(out.Entries)-1]
}

func TestEmptyInputIgnored(t *testing.T) {
	e, _, st := testEngine(t)
	ch := testCharacter()
	out, err := e.ProcessTurn(context.Background(), ch, "   ")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(out.Entries) != 0 || ch.TurnCount != 0 || st.saves != 0 {
		t.Errorf("empty input mutated state: entries=%d turns=%d saves=%d",
			len(out.Entries), ch.TurnCount, st.saves)
	}
}

func TestOverlongInputRejected(t *testing.T) {
	e, gw, _ := testEngine(t)
	ch := testCharacter()
	out, err := e.ProcessTurn(context.Background(), ch, strings.Repeat("a", MaxInputLength+1))
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.TurnCount != 0 {
		t.Error("overlong input incremented the turn counter")
	}
	if len(gw.calls) != 0 {
		t.Errorf("overlong input reached the gateway: %v", gw.calls)
	}
	if entry := lastEntry(t, out); entry.Speaker != models.SpeakerSystem || !strings.Contains(entry.Text, "too long") {
		t.Errorf("rejection entry = %+v", entry)
	}
}

func TestJournalShortcuts(t *testing.T) {
	e, gw, st := testEngine(t)
	ch := testCharacter()

	for input, want := range map[string]View{
		"inventory": ViewCharacterSheet,
		"sheet":     ViewCharacterSheet,
		"vocab":     ViewVocabReport,
		"journal":   ViewVocabReport,
	} {
		out, err := e.ProcessTurn(context.Background(), ch, input)
		if err != nil {
			t.Fatalf("ProcessTurn(%q): %v", input, err)
		}
		if out.View != want {
			t.Errorf("view for %q = %v, want %v", input, out.View, want)
		}
	}
	if ch.TurnCount != 0 || len(ch.ConversationLog) != 0 || len(gw.calls) != 0 || st.saves != 0 {
		t.Error("journal shortcut touched game state")
	}
}

func TestMovementAppendsDescriptionAfterQuestLogic(t *testing.T) {
	e, gw, _ := testEngine(t)
	ch := testCharacter()

	out, err := e.ProcessTurn(context.Background(), ch, "go north")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.CurrentLocation != "Thetopia - Maker's Alley" {
		t.Errorf("location = %q", ch.CurrentLocation)
	}
	if !gw.called("describe") {
		t.Error("no description fetched after moving")
	}
	// Move confirmation first, description last.
	if first := out.Entries[1]; !strings.Contains(first.Text, "You move north") {
		t.Errorf("confirmation entry = %+v", first)
	}
	if ch.TurnCount != 1 {
		t.Errorf("turn count = %d", ch.TurnCount)
	}
}

func TestMovementAbbreviationAndInvalidDirection(t *testing.T) {
	e, gw, _ := testEngine(t)
	ch := testCharacter()

	if _, err := e.ProcessTurn(context.Background(), ch, "e"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.CurrentLocation != "Thetopia - Archive of Lost Ideas" {
		t.Errorf("abbreviated move landed at %q", ch.CurrentLocation)
	}

	// No exit west of the Archive... there is one. Use "up" which exists nowhere.
	if _, err := e.ProcessTurn(context.Background(), ch, "up"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !gw.called("invalid_direction") {
		t.Error("blocked direction did not reach the gateway")
	}
}

func TestAbilityUse(t *testing.T) {
	e, gw, _ := testEngine(t)
	ch := testCharacter()

	if _, err := e.ProcessTurn(context.Background(), ch, "use tinker"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !gw.called("ability_use") {
		t.Error("owned ability did not narrate")
	}

	if _, err := e.ProcessTurn(context.Background(), ch, "use dream surge"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !gw.called("invalid_ability") {
		t.Error("unowned ability did not reject")
	}
}

func TestVocabularyCredit(t *testing.T) {
	e, _, st := testEngine(t)
	ch := testCharacter()

	out, err := e.ProcessTurn(context.Background(), ch, "I analyse the fountain")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if out.XPGained != 3 || len(out.NewWords) != 1 || !ch.LearnedVocab["analyse"] {
		t.Errorf("vocab outcome = xp %d words %v", out.XPGained, out.NewWords)
	}
	if st.xpAdded != 3 {
		t.Errorf("profile xp added = %d", st.xpAdded)
	}

	// Same word never credits twice.
	out, err = e.ProcessTurn(context.Background(), ch, "again I analyse it")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if out.XPGained != 0 {
		t.Errorf("repeat credit xp = %d", out.XPGained)
	}
}

func TestEOCConfirmLoop(t *testing.T) {
	e, _, _ := testEngine(t)
	ch := testCharacter()
	ch.EOCPrompted = true
	ch.TurnCount = 12

	// Ambiguous answer re-prompts forever.
	out, err := e.ProcessTurn(context.Background(), ch, "maybe later")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !ch.EOCPrompted {
		t.Error("ambiguous answer cleared the prompt flag")
	}
	if entry := lastEntry(t, out); !strings.Contains(entry.Text, "'yes' or 'no'") {
		t.Errorf("re-prompt entry = %+v", entry)
	}

	// Declining continues the adventure.
	out, err = e.ProcessTurn(context.Background(), ch, "NO")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.EOCPrompted || out.ChapterEnded {
		t.Error("decline mishandled")
	}
	if entry := lastEntry(t, out); !strings.Contains(entry.Text, "continuing the adventure") {
		t.Errorf("decline entry = %+v", entry)
	}

	// Accepting enters the chapter flow and resets the turn counter.
	ch.EOCPrompted = true
	out, err = e.ProcessTurn(context.Background(), ch, " Yes ")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !out.ChapterEnded || ch.ChapterState != models.ChapterStart || ch.TurnCount != 0 {
		t.Errorf("accept: ended=%v state=%q turns=%d", out.ChapterEnded, ch.ChapterState, ch.TurnCount)
	}
}

func TestSideQuestProposalFailureStaysProposing(t *testing.T) {
	e, gw, _ := testEngine(t)
	gw.objectiveErr = errors.New("model hiccup")
	ch := testCharacter()
	ch.SideQuestActive = true

	out, err := e.ProcessTurn(context.Background(), ch, "I want to count every gear in town")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.SideQuestObjective != "" || !ch.SideQuestActive {
		t.Error("failed conversion should stay in proposing state")
	}
	if entry := lastEntry(t, out); !strings.Contains(entry.Text, "Let's try simpler") {
		t.Errorf("retry entry = %+v", entry)
	}
}

func TestSideQuestRunsThreeTurnsThenEndsChapter(t *testing.T) {
	e, gw, _ := testEngine(t)
	gw.objective = "Observe the fountain crowd for a moment."
	ch := testCharacter()
	ch.SideQuestActive = true

	// Proposal turn.
	if _, err := e.ProcessTurn(context.Background(), ch, "watch the crowd"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.SideQuestObjective == "" || ch.SideQuestTurns != 0 {
		t.Fatalf("proposal not accepted: %+v", ch)
	}

	var out *TurnOutcome
	var err error
	for i := 0; i < sideQuestMaxTurns; i++ {
		out, err = e.ProcessTurn(context.Background(), ch, "I keep watching")
		if err != nil {
			t.Fatalf("ProcessTurn: %v", err)
		}
	}
	if !out.ChapterEnded || ch.ChapterState != models.ChapterStart {
		t.Error("side quest did not hand off to the chapter flow after three turns")
	}
	if ch.SideQuestActive || ch.SideQuestObjective != "" || ch.SideQuestTurns != 0 {
		t.Errorf("side quest state not cleared: %+v", ch)
	}
	if ch.TurnCount != 0 {
		t.Errorf("turn count = %d, want 0", ch.TurnCount)
	}
	if entry := lastEntry(t, out); !strings.Contains(entry.Text, "Finished with that detour") {
		t.Errorf("transition entry = %+v", entry)
	}
}

func bindQuest(ch *models.Character, repo *content.Repository, questID, stepID string) {
	q := repo.Quest(questID)
	ch.CurrentQuestID = questID
	ch.CurrentStepID = stepID
	ch.CurrentQuestTitle = q.Title
	ch.CurrentStepDescription = q.Steps[stepID].Description
}

func TestStepCompletionAdvances(t *testing.T) {
	e, _, _ := testEngine(t)
	ch := testCharacter()
	bindQuest(ch, e.repo, "Q_B1_FAULTY_FOUNTAIN", "STEP_03_ACQUIRE_PARTS")
	ch.Inventory = []string{"Hydro-Spanner", "Type-3 Cogwheel"}

	out, err := e.ProcessTurn(context.Background(), ch, "I check my satchel")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ch.CurrentStepID != "STEP_04_ATTEMPT_REPAIR" {
		t.Errorf("step = %q", ch.CurrentStepID)
	}
	var sawComplete, sawNew bool
	for _, entry := range out.Entries {
		if strings.HasPrefix(entry.Text, "Objective Complete:") {
			sawComplete = true
		}
		if strings.HasPrefix(entry.Text, "New Objective:") {
			sawNew = true
		}
	}
	if !sawComplete || !sawNew {
		t.Errorf("missing announcements in %+v", out.Entries)
	}
}

func TestMajorStepEndsChapterWhenInputsSuffice(t *testing.T) {
	e, _, _ := testEngine(t)
	ch := testCharacter()
	bindQuest(ch, e.repo, "Q_B1_FAULTY_FOUNTAIN", "STEP_05_CHECK_RESULTS")
	ch.QuestFlags["repair_attempted"] = true
	for i := 0; i < minInputsForEOC; i++ {
		ch.ChapterInputs = append(ch.ChapterInputs, "earlier input")
	}

	out, err := e.ProcessTurn(context.Background(), ch, "I watch the fountain")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !out.ChapterEnded || ch.ChapterState != models.ChapterStart {
		t.Error("major final step with enough inputs should end the chapter")
	}
	if ch.OnQuest() {
		t.Error("quest pointer not cleared")
	}
	if !ch.QuestFlags["quest_Q_B1_FAULTY_FOUNTAIN_completed"] {
		t.Error("quest not flagged completed")
	}
	if ch.FatePoints != models.BaseFatePoints+1 {
		t.Errorf("fate points = %d, step reward not applied", ch.FatePoints)
	}
	if ch.TurnCount != 0 {
		t.Errorf("turn count = %d", ch.TurnCount)
	}
}

func TestMidQuestMajorStepEndsChapterWithoutCompletingQuest(t *testing.T) {
	e, _, _ := testEngine(t)
	e.repo.Quests()["Q_T1_GEAR_CENSUS"] = &content.Quest{
		Title:        "The Gear Census",
		StartingStep: "STEP_01_TALLY",
		Steps: map[string]*content.Step{
			"STEP_01_TALLY": {
				Description:      "Tally the gears turning in the square.",
				TriggerCondition: "state_var:tally_done == True",
				MajorPlotPoint:   true,
				NextStep:         "STEP_02_REPORT",
			},
			"STEP_02_REPORT": {
				Description:      "Report the tally to Widget.",
				TriggerCondition: "ai_check:the player reported the tally to Widget",
			},
		},
	}
	ch := testCharacter()
	bindQuest(ch, e.repo, "Q_T1_GEAR_CENSUS", "STEP_01_TALLY")
	ch.QuestFlags["tally_done"] = true
	for i := 0; i < minInputsForEOC; i++ {
		ch.ChapterInputs = append(ch.ChapterInputs, "earlier input")
	}

	out, err := e.ProcessTurn(context.Background(), ch, "I finish the tally")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !out.ChapterEnded || ch.ChapterState != models.ChapterStart {
		t.Error("major mid-quest step with enough inputs should end the chapter")
	}
	if ch.OnQuest() {
		t.Error("quest pointer not cleared")
	}
	// Only the final step completes the quest; a plot point partway through
	// ends the chapter with the quest left unfinished.
	if ch.QuestFlags["quest_Q_T1_GEAR_CENSUS_completed"] {
		t.Error("mid-quest plot point must not mark the quest completed")
	}
	if ch.TurnCount != 0 {
		t.Errorf("turn count = %d", ch.TurnCount)
	}
}

func TestFinalStepBelowThresholdFinalizesSilently(t *testing.T) {
	e, _, _ := testEngine(t)
	ch := testCharacter()
	bindQuest(ch, e.repo, "Q_B1_FAULTY_FOUNTAIN", "STEP_05_CHECK_RESULTS")
	ch.QuestFlags["repair_attempted"] = true
	// Only a few chapter inputs so far.

	out, err := e.ProcessTurn(context.Background(), ch, "I watch the fountain")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if out.ChapterEnded || ch.ChapterState != models.ChapterIdle {
		t.Error("thin chapter must not end on quest completion")
	}
	if ch.OnQuest() {
		t.Error("quest pointer should be cleared after silent finalize")
	}
	if !ch.QuestFlags["quest_Q_B1_FAULTY_FOUNTAIN_completed"] {
		t.Error("quest not flagged completed")
	}
}

func TestEOCSuggestionSchedule(t *testing.T) {
	e, gw, _ := testEngine(t)
	gw.verdict = narration.VerdictYes
	ch := testCharacter()
	ch.TurnCount = 9 // becomes 10 this turn

	out, err := e.ProcessTurn(context.Background(), ch, "I wander the square")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !gw.called("chapter_progress") {
		t.Fatal("turn 10 did not run the readiness check")
	}
	if !ch.EOCPrompted {
		t.Error("YES verdict did not set the confirm flag")
	}
	if entry := lastEntry(t, out); !strings.Contains(entry.Text, "Shall we conclude it? (yes/no)") {
		t.Errorf("prompt entry = %+v", entry)
	}

	// Off-schedule turns skip the check.
	gw.calls = nil
	ch.EOCPrompted = false
	if _, err := e.ProcessTurn(context.Background(), ch, "still wandering"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if gw.called("chapter_progress") {
		t.Error("turn 11 should not run the readiness check")
	}
}

func TestEOCSuggestionSuggestTaskEntersSideQuest(t *testing.T) {
	e, gw, _ := testEngine(t)
	gw.verdict = narration.VerdictSuggestTask
	ch := testCharacter()
	ch.TurnCount = 13 // becomes 14 this turn, congruent with the schedule

	if _, err := e.ProcessTurn(context.Background(), ch, "I idle by the fountain"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !ch.SideQuestActive || ch.SideQuestObjective != "" {
		t.Errorf("side quest state = active %v objective %q", ch.SideQuestActive, ch.SideQuestObjective)
	}
	if ch.EOCPrompted {
		t.Error("confirm flag must stay clear on SUGGEST_TASK")
	}
	if !gw.called("side_quest_offer") {
		t.Error("initiation narration not invoked")
	}
}

func TestSaveFailureIsFatal(t *testing.T) {
	e, _, st := testEngine(t)
	st.saveErr = errors.New("disk gone")
	ch := testCharacter()

	if _, err := e.ProcessTurn(context.Background(), ch, "look"); err == nil {
		t.Fatal("persistence failure must surface as an error")
	}
}

func TestChapterInProgressRejectsTurns(t *testing.T) {
	e, _, _ := testEngine(t)
	ch := testCharacter()
	ch.ChapterState = models.ChapterAwaitAnswers

	if _, err := e.ProcessTurn(context.Background(), ch, "look"); !errors.Is(err, ErrChapterInProgress) {
		t.Errorf("err = %v, want ErrChapterInProgress", err)
	}
}

func TestMatchNPCLongestWins(t *testing.T) {
	roster := []string{"Widget", "Info-Broker Silas", "Forge-Mother Anvi"}
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"talk to widget", "Widget", true},
		{"ask info-broker silas about parts", "Info-Broker Silas", true},
		{"greet forge-mother anvi warmly", "Forge-Mother Anvi", true},
		{"talk to the wind", "", false},
		{"inspect widget", "", false}, // not an interaction verb
	}
	for _, tt := range tests {
		got, ok := matchNPC(tt.input, roster)
		if got != tt.want || ok != tt.ok {
			t.Errorf("matchNPC(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
