// Package tui is the terminal client: character creation, the play loop and
// the end-of-chapter review, against the same engine the HTTP server uses.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/store"
	"github.com/tatianab/daydream/internal/vocab"
)

// localUser is the profile identity for single-player terminal sessions.
const localUser = "local"

type sessionState int

const (
	stateCreateName sessionState = iota
	stateCreateRace
	stateCreateClass
	stateCreatePhilosophy
	stateLoading
	statePlaying
	stateQuiz
	stateReport
	stateError
)

// Deps bundles everything the client needs to run a session.
type Deps struct {
	Engine   *engine.Engine
	Chapters *eoc.Controller
	Store    *store.Store
	Gateway  narration.Gateway
	Repo     *content.Repository
}

type model struct {
	state sessionState
	deps  Deps

	character *models.Character
	draft     struct {
		name, race, class string
	}

	questions []string
	answers   []string

	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(deps Deps) model {
	ti := textinput.New()
	ti.Placeholder = "Name your character..."
	ti.Focus()
	ti.CharLimit = engine.MaxInputLength
	ti.Width = 60

	return model{
		state:     stateCreateName,
		deps:      deps,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCharacter())
}

type characterLoadedMsg struct {
	character *models.Character
}

type characterCreatedMsg struct {
	character *models.Character
}

type turnDoneMsg struct {
	outcome *engine.TurnOutcome
	err     error
}

type quizStartedMsg struct {
	questions []string
	err       error
}

type scoredMsg struct {
	result *eoc.Result
	err    error
}

type nextChapterMsg struct {
	seed narration.QuestSeed
	err  error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == statePlaying {
			m.viewport.SetContent(m.gameLog)
		}

	case characterLoadedMsg:
		if msg.character == nil {
			// No save yet; stay in the creation flow.
			return m, nil
		}
		m.adoptCharacter(msg.character)
		return m, nil

	case characterCreatedMsg:
		m.adoptCharacter(msg.character)
		return m, nil

	case turnDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.renderOutcome(msg.outcome)
		if msg.outcome.ChapterEnded {
			m.state = stateLoading
			return m, m.beginQuiz()
		}
		return m, nil

	case quizStartedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.questions = msg.questions
		m.answers = nil
		m.state = stateQuiz
		m.textInput.Placeholder = "Your answer..."
		m.textInput.Reset()
		return m, nil

	case scoredMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.appendLog(systemStyle.Width(m.logWidth()).Render(msg.result.Report))
		if msg.result.LeveledUp {
			m.appendLog(systemStyle.Render(
				fmt.Sprintf("Congratulations! You've reached Player Level %d!", msg.result.PlayerLevel)))
		}
		m.state = stateReport
		return m, nil

	case nextChapterMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.appendLog(systemStyle.Render("New Chapter: " + msg.seed.Title))
		if msg.seed.StartingStepDescription != "" {
			m.appendLog(gameStyle.Render("Objective: " + msg.seed.StartingStepDescription))
		}
		m.state = statePlaying
		m.textInput.Placeholder = "What do you do?"
		m.textInput.Reset()
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state != stateLoading && m.state != stateError {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.textInput.Value())

	switch m.state {
	case stateCreateName:
		if value == "" {
			return m, nil
		}
		m.draft.name = value
		m.state = stateCreateRace
		m.textInput.Placeholder = "Choose a race..."
		m.textInput.Reset()

	case stateCreateRace:
		if m.deps.Repo.Race(value) == nil {
			return m, nil
		}
		m.draft.race = value
		m.state = stateCreateClass
		m.textInput.Placeholder = "Choose a class..."
		m.textInput.Reset()

	case stateCreateClass:
		if m.deps.Repo.Class(value) == nil {
			return m, nil
		}
		m.draft.class = value
		m.state = stateCreatePhilosophy
		m.textInput.Placeholder = "Choose a philosophy..."
		m.textInput.Reset()

	case stateCreatePhilosophy:
		if _, ok := m.deps.Repo.Philosophies()[value]; !ok {
			return m, nil
		}
		m.state = stateLoading
		return m, m.createCharacter(m.draft.name, m.draft.race, m.draft.class, value)

	case statePlaying:
		if value == "" {
			return m, nil
		}
		m.textInput.Reset()
		if value == "/quit" {
			return m, tea.Quit
		}
		m.appendLog(userStyle.Width(m.logWidth()).Render("> " + value))
		return m, m.processTurn(value)

	case stateQuiz:
		if value == "" {
			return m, nil
		}
		m.answers = append(m.answers, value)
		m.textInput.Reset()
		if len(m.answers) == len(m.questions) {
			m.state = stateLoading
			return m, m.submitAnswers(m.answers)
		}

	case stateReport:
		m.state = stateLoading
		return m, m.acknowledge()
	}
	return m, nil
}

func (m *model) adoptCharacter(ch *models.Character) {
	m.character = ch
	m.state = statePlaying
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), m.height-6)
	}
	m.gameLog = gameStyle.Bold(true).Render(ch.Name+" in "+ch.CurrentLocation) + "\n"
	for _, entry := range ch.ConversationLog {
		m.appendLog(renderEntry(entry, m.logWidth()))
	}
	m.textInput.Placeholder = "What do you do?"
	m.textInput.Reset()
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m *model) appendLog(line string) {
	m.gameLog += "\n" + line + "\n"
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m *model) renderOutcome(out *engine.TurnOutcome) {
	switch out.View {
	case engine.ViewCharacterSheet:
		m.appendLog(stateStyle.Width(m.logWidth()).Render(m.characterSheet()))
		return
	case engine.ViewVocabReport:
		m.appendLog(stateStyle.Width(m.logWidth()).Render(m.vocabReport()))
		return
	}
	for _, entry := range out.Entries {
		if entry.Speaker == models.SpeakerPlayer {
			// Already echoed when the player hit enter.
			continue
		}
		m.appendLog(renderEntry(entry, m.logWidth()))
	}
	if out.XPGained > 0 {
		m.appendLog(systemStyle.Render(
			fmt.Sprintf("+%d XP (new words: %s)", out.XPGained, strings.Join(out.NewWords, ", "))))
	}
}

func renderEntry(entry models.ConversationEntry, width int) string {
	switch entry.Speaker {
	case models.SpeakerPlayer:
		return userStyle.Width(width).Render("> " + entry.Text)
	case models.SpeakerSystem:
		return systemStyle.Width(width).Render(entry.Text)
	default:
		return gameStyle.Width(width).Render(entry.Text)
	}
}

func (m model) logWidth() int {
	w := int(float64(m.width) * 0.75)
	if w < 20 {
		return 60
	}
	return w
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateCreateName:
		s = fmt.Sprintf("Welcome to Daydream!\n\n%s\n\n%s",
			"Every discarded idea drifts to Thetopia. Who arrives today?",
			m.textInput.View())

	case stateCreateRace:
		s = m.optionPrompt("Choose a race:", sortedKeys(m.deps.Repo.Races()))

	case stateCreateClass:
		s = m.optionPrompt("Choose a class:", sortedKeys(m.deps.Repo.Classes()))

	case stateCreatePhilosophy:
		s = m.optionPrompt("Choose a philosophy:", sortedKeys(m.deps.Repo.Philosophies()))

	case stateLoading:
		s = "\n  The Storyteller is thinking...\n"

	case statePlaying, stateQuiz, stateReport:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderState())
		prompt := m.textInput.View()
		help := helpStyle.Render("Type commands, 'sheet', 'journal', or /quit.")
		if m.state == stateQuiz {
			prompt = titleStyle.Render(fmt.Sprintf("Question %d/%d", len(m.answers)+1, len(m.questions))) +
				"\n" + m.questions[len(m.answers)] + "\n" + m.textInput.View()
			help = helpStyle.Render("Answer each reflection question to close the chapter.")
		}
		if m.state == stateReport {
			prompt = helpStyle.Render("Press Enter to continue to the next chapter.")
			help = ""
		}
		s = lipgloss.JoinVertical(lipgloss.Left, mainView, "\n"+prompt, "\n"+help)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) optionPrompt(title string, options []string) string {
	return fmt.Sprintf("%s\n\n- %s\n\n%s",
		titleStyle.Render(title), strings.Join(options, "\n- "), m.textInput.View())
}

func (m model) renderState() string {
	ch := m.character
	if ch == nil {
		return ""
	}

	location := titleStyle.Render("LOCATION") + "\n" + ch.CurrentLocation + "\n\n"

	objective := titleStyle.Render("OBJECTIVE") + "\n"
	if ch.OnQuest() || ch.CurrentQuestTitle != "" {
		objective += ch.CurrentQuestTitle + "\n" + ch.CurrentStepDescription + "\n\n"
	} else {
		objective += "Exploring freely\n\n"
	}

	stats := titleStyle.Render("STATS") + "\n" +
		fmt.Sprintf("Fate Points: %d\nTurn: %d\nChapters: %d\n\n",
			int(ch.FatePoints), ch.TurnCount, len(ch.ReportSummaries))

	inventory := titleStyle.Render("INVENTORY") + "\n"
	if len(ch.Inventory) == 0 {
		inventory += "(empty)"
	} else {
		inventory += "- " + strings.Join(ch.Inventory, "\n- ")
	}

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(
		location + objective + stats + inventory)
}

func (m model) characterSheet() string {
	ch := m.character
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s %s\n", ch.Name, ch.Race, ch.Class)
	fmt.Fprintf(&b, "Philosophy: %s\n", ch.Philosophy)
	fmt.Fprintf(&b, "Abilities: %s\n", strings.Join(ch.Abilities, ", "))
	fmt.Fprintf(&b, "Fate Points: %d\n", int(ch.FatePoints))
	if len(ch.Inventory) > 0 {
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(ch.Inventory, ", "))
	}
	for name, score := range ch.Relationships {
		fmt.Fprintf(&b, "%s: %+d\n", name, score)
	}
	return b.String()
}

func (m model) vocabReport() string {
	ch := m.character
	var b strings.Builder
	fmt.Fprintf(&b, "Words learned: %d\n", len(ch.LearnedVocab))
	words := make([]string, 0, len(ch.LearnedVocab))
	for w := range ch.LearnedVocab {
		words = append(words, fmt.Sprintf("%s (+%d)", w, vocab.XPFor(w)))
	}
	sort.Strings(words)
	if len(words) > 0 {
		b.WriteString(strings.Join(words, ", ") + "\n")
	}
	fmt.Fprintf(&b, "Chapters completed: %d\n", len(ch.ReportSummaries))
	for _, r := range ch.ReportSummaries {
		fmt.Fprintf(&b, "  Chapter %d: %.1f/10 comprehension, +%d XP\n",
			r.Chapter, r.ComprehensionScore, r.PlayerXPGained)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m model) loadCharacter() tea.Cmd {
	return func() tea.Msg {
		chars, err := m.deps.Store.Characters(context.Background(), localUser)
		if err != nil {
			return errMsg{err}
		}
		if len(chars) == 0 {
			return characterLoadedMsg{}
		}
		ch := chars[0]
		ch.EnsureDefaults()
		return characterLoadedMsg{character: ch}
	}
}

func (m model) createCharacter(name, race, class, philosophy string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		ch := models.NewCharacter(localUser, name, race, class, philosophy)
		ch.Abilities = deps.Repo.Abilities(race, class)
		ch.CurrentLocation = content.StartingLocation
		if q := deps.Repo.Quest(content.StarterQuest); q != nil {
			ch.CurrentQuestID = content.StarterQuest
			ch.CurrentStepID = q.StartingStep
			ch.CurrentQuestTitle = q.Title
			if step := q.Steps[q.StartingStep]; step != nil {
				ch.CurrentStepDescription = step.Description
			}
		}

		loc := deps.Repo.Location(ch.CurrentLocation)
		if loc == nil {
			loc = &content.Location{}
		}
		text, err := deps.Gateway.InitialSetup(ctx, narration.SetupInput{
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
			NPCs:                deps.Repo.NPCsAt(ch.CurrentLocation),
		})
		if err != nil {
			text = loc.Description
		}
		if text != "" {
			ch.AppendConversation(models.SpeakerStoryteller, text)
		}
		_ = deps.Store.SetHasSeenIntro(ctx, localUser, true)

		if err := deps.Store.SaveCharacter(ctx, ch); err != nil {
			return errMsg{err}
		}
		return characterCreatedMsg{character: ch}
	}
}

func (m model) processTurn(input string) tea.Cmd {
	deps, ch := m.deps, m.character
	return func() tea.Msg {
		out, err := deps.Engine.ProcessTurn(context.Background(), ch, input)
		return turnDoneMsg{outcome: out, err: err}
	}
}

func (m model) beginQuiz() tea.Cmd {
	deps, ch := m.deps, m.character
	return func() tea.Msg {
		questions, err := deps.Chapters.Begin(context.Background(), ch)
		return quizStartedMsg{questions: questions, err: err}
	}
}

func (m model) submitAnswers(answers []string) tea.Cmd {
	deps, ch := m.deps, m.character
	return func() tea.Msg {
		result, err := deps.Chapters.SubmitAnswers(context.Background(), ch, answers)
		return scoredMsg{result: result, err: err}
	}
}

func (m model) acknowledge() tea.Cmd {
	deps, ch := m.deps, m.character
	return func() tea.Msg {
		seed, err := deps.Chapters.Acknowledge(context.Background(), ch)
		return nextChapterMsg{seed: seed, err: err}
	}
}

// Run starts the terminal client and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
