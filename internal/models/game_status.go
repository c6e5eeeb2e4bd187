package models

// Status is the lifecycle state of a room and of the game it hosts.
// A game is only ever StatusInProgress or StatusFinished.
type Status string

const (
	StatusLobby      Status = "LOBBY"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

// Phase is the sub-state within a player's turn.
type Phase string

const (
	PhaseReinforce Phase = "REINFORCE"
	PhaseAttack    Phase = "ATTACK"
	PhaseFortify   Phase = "FORTIFY"
)
