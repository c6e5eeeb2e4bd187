// Package ruleset holds the immutable classic map, objective deck and numeric
// constants. A Ruleset is loaded and validated once at process start and is
// read-only afterwards, so it may be shared freely between goroutines.
package ruleset

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
)

//go:embed data/*.json
var embedded embed.FS

const (
	constantsFile  = "constants.json"
	mapFile        = "map.json"
	objectivesFile = "objectives.json"

	// DefaultStartingArmies is used when the constants omit a player count.
	DefaultStartingArmies = 20
)

// Color identifies a player's army color.
type Color string

const (
	ColorRed    Color = "RED"
	ColorBlue   Color = "BLUE"
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
	ColorBlack  Color = "BLACK"
	ColorWhite  Color = "WHITE"
)

// Colors is the fixed palette, in canonical order.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorBlack, ColorWhite}

// PredicateKind names an objective predicate.
type PredicateKind string

const (
	KindControlContinents        PredicateKind = "CONTROL_CONTINENTS"
	KindControlContinentsPlusAny PredicateKind = "CONTROL_CONTINENTS_PLUS_ANY"
	KindControlTerritories       PredicateKind = "CONTROL_TERRITORIES"
	KindEliminateColor           PredicateKind = "ELIMINATE_COLOR"
)

// Territory is a node of the map graph.
type Territory struct {
	ID          string   `json:"id"`
	NamePt      string   `json:"namePt"`
	NameEn      string   `json:"nameEn"`
	ContinentID string   `json:"continentId"`
	CardSymbol  string   `json:"cardSymbol"`
	Neighbors   []string `json:"neighbors"`
}

// Continent groups territories and grants Bonus armies when fully owned.
type Continent struct {
	ID           string   `json:"id"`
	NamePt       string   `json:"namePt"`
	NameEn       string   `json:"nameEn"`
	Bonus        int      `json:"bonus"`
	TerritoryIDs []string `json:"territoryIds"`
}

// Predicate is the win condition of an objective card. Which fields are
// meaningful depends on Kind.
type Predicate struct {
	Kind                PredicateKind `json:"kind"`
	ContinentIDs        []string      `json:"continentIds,omitempty"`
	Required            []string      `json:"required,omitempty"`
	AdditionalCount     int           `json:"additionalCount,omitempty"`
	Count               int           `json:"count,omitempty"`
	MinArmiesEach       int           `json:"minArmiesEach,omitempty"`
	Color               Color         `json:"color,omitempty"`
	FallbackObjectiveID string        `json:"fallbackObjectiveId,omitempty"`
	SelfTargetHandling  string        `json:"selfTargetHandling,omitempty"`
}

// Objective is one card of the objective deck.
type Objective struct {
	ID        string    `json:"id"`
	TextPt    string    `json:"textPt"`
	TextEn    string    `json:"textEn"`
	Predicate Predicate `json:"predicate"`
}

// Text returns the objective text in the given locale ("pt" or "en").
func (o Objective) Text(locale string) string {
	if locale == "en" {
		return o.TextEn
	}
	return o.TextPt
}

// Constants are the numeric rules of the classic game.
type Constants struct {
	RulesetID string `json:"rulesetId"`
	Players   struct {
		Min                         int            `json:"min"`
		Max                         int            `json:"max"`
		Colors                      []Color        `json:"colors"`
		StartingArmiesByPlayerCount map[string]int `json:"startingArmiesByPlayerCount"`
	} `json:"players"`
	Turn struct {
		Phases []string `json:"phases"`
	} `json:"turn"`
	Reinforcement struct {
		Minimum          int `json:"minimum"`
		TerritoryDivisor int `json:"territoryDivisor"`
	} `json:"reinforcement"`
	Combat struct {
		AttackDiceMax   int  `json:"attackDiceMax"`
		DefenseDiceMax  int  `json:"defenseDiceMax"`
		DefenseWinsTies bool `json:"defenseWinsTies"`
	} `json:"combat"`
	Objectives struct {
		DefaultObjectiveID string `json:"defaultObjectiveId"`
	} `json:"objectives"`
}

// MapData is the continent/territory graph as stored on disk.
type MapData struct {
	RulesetID   string      `json:"rulesetId"`
	Continents  []Continent `json:"continents"`
	Territories []Territory `json:"territories"`
}

// ObjectiveDeck is the objective list as stored on disk.
type ObjectiveDeck struct {
	RulesetID  string      `json:"rulesetId"`
	Objectives []Objective `json:"objectives"`
}

// Ruleset is the validated, indexed ruleset.
type Ruleset struct {
	Constants  Constants
	Map        MapData
	Objectives ObjectiveDeck

	territories map[string]*Territory
	continents  map[string]*Continent
	objectives  map[string]*Objective
	adjacency   map[string]map[string]struct{}
}

// Default loads the embedded classic ruleset.
func Default() (*Ruleset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded ruleset: %w", err)
	}
	return Load(sub)
}

// Load reads constants.json, map.json and objectives.json from fsys,
// validates them and builds the lookup indexes.
func Load(fsys fs.FS) (*Ruleset, error) {
	var r Ruleset
	if err := readJSON(fsys, constantsFile, &r.Constants); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, mapFile, &r.Map); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, objectivesFile, &r.Objectives); err != nil {
		return nil, err
	}
	if err := Validate(&r); err != nil {
		return nil, fmt.Errorf("validate ruleset: %w", err)
	}
	r.index()
	return &r, nil
}

func readJSON(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (r *Ruleset) index() {
	r.territories = make(map[string]*Territory, len(r.Map.Territories))
	r.adjacency = make(map[string]map[string]struct{}, len(r.Map.Territories))
	for i := range r.Map.Territories {
		t := &r.Map.Territories[i]
		r.territories[t.ID] = t
		neighbors := make(map[string]struct{}, len(t.Neighbors))
		for _, n := range t.Neighbors {
			neighbors[n] = struct{}{}
		}
		r.adjacency[t.ID] = neighbors
	}
	r.continents = make(map[string]*Continent, len(r.Map.Continents))
	for i := range r.Map.Continents {
		c := &r.Map.Continents[i]
		r.continents[c.ID] = c
	}
	r.objectives = make(map[string]*Objective, len(r.Objectives.Objectives))
	for i := range r.Objectives.Objectives {
		o := &r.Objectives.Objectives[i]
		r.objectives[o.ID] = o
	}
}

// ID returns the ruleset identifier.
func (r *Ruleset) ID() string {
	return r.Constants.RulesetID
}

// Territory looks up a territory by id.
func (r *Ruleset) Territory(id string) (Territory, bool) {
	t, ok := r.territories[id]
	if !ok {
		return Territory{}, false
	}
	return *t, true
}

// Continent looks up a continent by id.
func (r *Ruleset) Continent(id string) (Continent, bool) {
	c, ok := r.continents[id]
	if !ok {
		return Continent{}, false
	}
	return *c, true
}

// Objective looks up an objective card by id.
func (r *Ruleset) Objective(id string) (Objective, bool) {
	o, ok := r.objectives[id]
	if !ok {
		return Objective{}, false
	}
	return *o, true
}

// Adjacent reports whether a and b share a border.
func (r *Ruleset) Adjacent(a, b string) bool {
	_, ok := r.adjacency[a][b]
	return ok
}

// TerritoryIDs returns every territory id in map order.
func (r *Ruleset) TerritoryIDs() []string {
	ids := make([]string, len(r.Map.Territories))
	for i, t := range r.Map.Territories {
		ids[i] = t.ID
	}
	return ids
}

// ObjectiveIDs returns every objective id in deck order.
func (r *Ruleset) ObjectiveIDs() []string {
	ids := make([]string, len(r.Objectives.Objectives))
	for i, o := range r.Objectives.Objectives {
		ids[i] = o.ID
	}
	return ids
}

// StartingArmies is the initial army pool per player for a game of
// playerCount players.
func (r *Ruleset) StartingArmies(playerCount int) int {
	if n, ok := r.Constants.Players.StartingArmiesByPlayerCount[strconv.Itoa(playerCount)]; ok {
		return n
	}
	return DefaultStartingArmies
}

// MinPlayers and MaxPlayers bound the size of a match.
func (r *Ruleset) MinPlayers() int { return r.Constants.Players.Min }
func (r *Ruleset) MaxPlayers() int { return r.Constants.Players.Max }

// DefaultObjectiveID is dealt when legitimate redraws are exhausted.
func (r *Ruleset) DefaultObjectiveID() string {
	return r.Constants.Objectives.DefaultObjectiveID
}

// PlayerColors returns the palette colors are dealt from.
func (r *Ruleset) PlayerColors() []Color {
	return slices.Clone(r.Constants.Players.Colors)
}

// AttackDiceMax and DefenseDiceMax cap the dice rolled by each side.
func (r *Ruleset) AttackDiceMax() int  { return r.Constants.Combat.AttackDiceMax }
func (r *Ruleset) DefenseDiceMax() int { return r.Constants.Combat.DefenseDiceMax }
