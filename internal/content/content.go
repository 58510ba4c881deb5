// Package content holds the static game content: quests, world lore, the
// ability roster and the Hero's Journey stages. The repository is loaded
// once at startup from embedded YAML and never mutated afterwards.
package content

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/quests.yaml data/lore.yaml
var dataFS embed.FS

// StartingLocation is where every new character begins.
const StartingLocation = "Thetopia - Town Square"

// StarterQuest is the authored quest bound to every new character's first
// chapter. Later chapters use generated quests.
const StarterQuest = "Q_B1_FAULTY_FOUNTAIN"

// Reward describes a structured reward attached to a quest step or to quest
// completion. Type selects the variant; the other fields are per-variant.
// SetFlag values are loosely typed on purpose: malformed entries are skipped
// one by one at apply time instead of failing the whole reward.
type Reward struct {
	Type    string         `yaml:"type" json:"type"`
	Value   int            `yaml:"value,omitempty" json:"value,omitempty"`
	SetFlag map[string]any `yaml:"set_flag,omitempty" json:"set_flag,omitempty"`
	Details string         `yaml:"details,omitempty" json:"details,omitempty"`
	Name    string         `yaml:"name,omitempty" json:"name,omitempty"`
	Target  string         `yaml:"target,omitempty" json:"target,omitempty"`
	Change  int            `yaml:"change,omitempty" json:"change,omitempty"`
	Silent  bool           `yaml:"silent,omitempty" json:"silent,omitempty"`
}

// Step is one atomic quest objective.
type Step struct {
	Description      string  `yaml:"description"`
	TriggerCondition string  `yaml:"trigger_condition"`
	StepReward       *Reward `yaml:"step_reward,omitempty"`
	// NextStep is empty for the final step of a quest.
	NextStep string `yaml:"next_step,omitempty"`
	// MajorPlotPoint marks steps whose completion can end the chapter even
	// when more steps remain.
	MajorPlotPoint bool `yaml:"is_major_plot_point,omitempty"`
}

// Quest is a named sequence of steps with an overall completion reward.
type Quest struct {
	Title            string           `yaml:"title"`
	ChapterTheme     string           `yaml:"chapter_theme,omitempty"`
	Description      string           `yaml:"description"`
	StartingStep     string           `yaml:"starting_step"`
	CompletionReward *Reward          `yaml:"completion_reward,omitempty"`
	Steps            map[string]*Step `yaml:"steps"`
}

// Location is one node of the static world map.
type Location struct {
	Description string            `yaml:"description"`
	Mood        string            `yaml:"mood,omitempty"`
	Exits       map[string]string `yaml:"exits,omitempty"`
	NPCs        []string          `yaml:"present_npcs,omitempty"`
}

// NPC holds the lore backing a non-player character.
type NPC struct {
	Description string   `yaml:"description"`
	Personality []string `yaml:"personality,omitempty"`
	Knowledge   []string `yaml:"knowledge,omitempty"`
	Greetings   []string `yaml:"greetings,omitempty"`
}

// Archetype is a race or class entry with its granted abilities.
type Archetype struct {
	Description string   `yaml:"description"`
	Abilities   []string `yaml:"abilities,omitempty"`
}

// Stage is one of the twelve Hero's Journey stages that theme chapters.
type Stage struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

type loreFile struct {
	Setting      string                `yaml:"setting"`
	Locations    map[string]*Location  `yaml:"locations"`
	NPCs         map[string]*NPC       `yaml:"npcs"`
	Races        map[string]*Archetype `yaml:"races"`
	Classes      map[string]*Archetype `yaml:"classes"`
	Philosophies map[string]string     `yaml:"philosophies"`
	Stages       []Stage               `yaml:"hero_journey_stages"`
}

// Repository is the read-only content arena handed to the turn orchestrator
// and the chapter lifecycle controller.
type Repository struct {
	quests       map[string]*Quest
	lore         loreFile
	abilityNames map[string]string
}

// Load parses the embedded content files into a repository.
func Load() (*Repository, error) {
	questData, err := dataFS.ReadFile("data/quests.yaml")
	if err != nil {
		return nil, fmt.Errorf("read quest content: %w", err)
	}
	var quests map[string]*Quest
	if err := yaml.Unmarshal(questData, &quests); err != nil {
		return nil, fmt.Errorf("parse quest content: %w", err)
	}

	loreData, err := dataFS.ReadFile("data/lore.yaml")
	if err != nil {
		return nil, fmt.Errorf("read lore content: %w", err)
	}
	var lore loreFile
	if err := yaml.Unmarshal(loreData, &lore); err != nil {
		return nil, fmt.Errorf("parse lore content: %w", err)
	}
	if len(lore.Stages) == 0 {
		return nil, fmt.Errorf("lore content defines no hero's journey stages")
	}
	if _, ok := lore.Locations[StartingLocation]; !ok {
		return nil, fmt.Errorf("lore content missing starting location %q", StartingLocation)
	}

	repo := &Repository{
		quests:       quests,
		lore:         lore,
		abilityNames: map[string]string{},
	}
	for _, arch := range lore.Races {
		for _, a := range arch.Abilities {
			repo.abilityNames[strings.ToLower(a)] = a
		}
	}
	for _, arch := range lore.Classes {
		for _, a := range arch.Abilities {
			repo.abilityNames[strings.ToLower(a)] = a
		}
	}
	return repo, nil
}

// Quest returns a quest by id, or nil.
func (r *Repository) Quest(id string) *Quest {
	return r.quests[id]
}

// Step returns a step of a quest, or nil if either is unknown.
func (r *Repository) Step(questID, stepID string) *Step {
	q := r.quests[questID]
	if q == nil {
		return nil
	}
	return q.Steps[stepID]
}

// Quests returns the full quest table, keyed by id.
func (r *Repository) Quests() map[string]*Quest {
	return r.quests
}

// Location returns a world map node by key, or nil.
func (r *Repository) Location(key string) *Location {
	return r.lore.Locations[key]
}

// NPC returns the lore entry for a named NPC, or nil.
func (r *Repository) NPC(name string) *NPC {
	return r.lore.NPCs[name]
}

// NPCsAt returns the NPC roster for a location, in declaration order.
func (r *Repository) NPCsAt(key string) []string {
	loc := r.lore.Locations[key]
	if loc == nil {
		return nil
	}
	return loc.NPCs
}

// Setting returns the general world lore blurb.
func (r *Repository) Setting() string {
	return r.lore.Setting
}

// Race returns a race archetype by name, or nil.
func (r *Repository) Race(name string) *Archetype {
	return r.lore.Races[name]
}

// Class returns a class archetype by name, or nil.
func (r *Repository) Class(name string) *Archetype {
	return r.lore.Classes[name]
}

// Philosophy returns the blurb for a philosophy, or "".
func (r *Repository) Philosophy(name string) string {
	return r.lore.Philosophies[name]
}

// Races returns the full race table, keyed by name.
func (r *Repository) Races() map[string]*Archetype {
	return r.lore.Races
}

// Classes returns the full class table, keyed by name.
func (r *Repository) Classes() map[string]*Archetype {
	return r.lore.Classes
}

// Philosophies returns the philosophy table, keyed by name.
func (r *Repository) Philosophies() map[string]string {
	return r.lore.Philosophies
}

// Abilities returns the combined ability grant for a race and class pair, in
// race-then-class order with duplicates removed.
func (r *Repository) Abilities(race, class string) []string {
	var out []string
	seen := map[string]bool{}
	for _, arch := range []*Archetype{r.lore.Races[race], r.lore.Classes[class]} {
		if arch == nil {
			continue
		}
		for _, a := range arch.Abilities {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

// Stages returns the Hero's Journey cycle.
func (r *Repository) Stages() []Stage {
	return r.lore.Stages
}

// StageFor returns the journey stage theming the given chapter number,
// wrapping around the twelve-stage cycle. Chapter numbers start at 1.
func (r *Repository) StageFor(chapter int) Stage {
	n := len(r.lore.Stages)
	idx := (chapter - 1) % n
	if idx < 0 {
		idx = 0
	}
	return r.lore.Stages[idx]
}

// NormalizeAbility maps player input to the canonical ability name. Unknown
// names fall back to title-casing the input so the rejection message can
// still quote something sensible.
func (r *Repository) NormalizeAbility(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if canonical, ok := r.abilityNames[key]; ok {
		return canonical
	}
	words := strings.Fields(key)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
