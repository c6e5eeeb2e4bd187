package game

// ActionType tags an inbound game action.
type ActionType string

const (
	ActionPlaceReinforcement ActionType = "PLACE_REINFORCEMENT"
	ActionAttack             ActionType = "ATTACK"
	ActionEndAttackPhase     ActionType = "END_ATTACK_PHASE"
	ActionFortify            ActionType = "FORTIFY"
	ActionEndTurn            ActionType = "END_TURN"
)

// Action is the envelope a client sends to act on its turn. Which payload
// fields are read depends on Type.
type Action struct {
	Type    ActionType `json:"type"`
	Payload Payload    `json:"payload"`
}

// Payload carries the arguments of every action variant.
type Payload struct {
	TerritoryID     string `json:"territoryId,omitempty"`
	FromTerritoryID string `json:"fromTerritoryId,omitempty"`
	ToTerritoryID   string `json:"toTerritoryId,omitempty"`
	AttackDice      int    `json:"attackDice,omitempty"`
	Armies          int    `json:"armies,omitempty"`
}

// ActionResult is returned by a successful Apply. Battle is set for attacks only.
type ActionResult struct {
	Battle *BattleResult `json:"battle,omitempty"`
}

// BattleResult records one attack for display and audit.
type BattleResult struct {
	FromTerritoryID string `json:"fromTerritoryId"`
	ToTerritoryID   string `json:"toTerritoryId"`
	AttackRolls     []int  `json:"attackRolls"`
	DefenseRolls    []int  `json:"defenseRolls"`
	AttackerLosses  int    `json:"attackerLosses"`
	DefenderLosses  int    `json:"defenderLosses"`
	Conquered       bool   `json:"conquered"`
	MovedArmies     int    `json:"movedArmies"`
}
