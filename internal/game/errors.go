package game

import "fmt"

// Kind groups failures the way callers react to them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindPrecondition  Kind = "precondition"
	KindCapacity      Kind = "capacity"
)

// Error is a named, user-facing failure. Two errors match under errors.Is
// when their codes are equal, so a detailed copy made with With still
// matches its sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e with a more specific message.
func (e *Error) With(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Input validation
var (
	ErrInvalidRoomID     = newError(KindValidation, "INVALID_ROOM_ID", "room id must be 3-12 letters or digits")
	ErrInvalidPlayerName = newError(KindValidation, "INVALID_PLAYER_NAME", "player name must be 2-24 characters")
	ErrInvalidAction     = newError(KindValidation, "INVALID_ACTION", "invalid action payload")
	ErrUnknownTerritory  = newError(KindValidation, "UNKNOWN_TERRITORY", "unknown territory")
	ErrInvalidArmies     = newError(KindValidation, "INVALID_ARMIES", "armies must be a positive integer")
)

// Authorization
var (
	ErrNotYourTurn       = newError(KindAuthorization, "NOT_YOUR_TURN", "not your turn")
	ErrNotHost           = newError(KindAuthorization, "NOT_HOST", "only the host can start the game")
	ErrInactiveTransport = newError(KindAuthorization, "INACTIVE_TRANSPORT", "this connection no longer controls the player")
	ErrIdentityMismatch  = newError(KindAuthorization, "IDENTITY_MISMATCH", "player name belongs to a different identity")
)

// State preconditions
var (
	ErrGameNotInProgress  = newError(KindPrecondition, "GAME_NOT_IN_PROGRESS", "the game is not in progress")
	ErrPlayerEliminated   = newError(KindPrecondition, "PLAYER_ELIMINATED", "this player has been eliminated")
	ErrWrongPhase         = newError(KindPrecondition, "WRONG_PHASE", "action not allowed in the current phase")
	ErrNoReserve          = newError(KindPrecondition, "NO_RESERVE", "no reserve armies left")
	ErrNotOwner           = newError(KindPrecondition, "NOT_OWNER", "territory is not yours")
	ErrNotEnemy           = newError(KindPrecondition, "NOT_ENEMY", "attack target must be an enemy territory")
	ErrNotAdjacent        = newError(KindPrecondition, "NOT_ADJACENT", "territories are not adjacent")
	ErrInsufficientArmies = newError(KindPrecondition, "INSUFFICIENT_ARMIES", "not enough armies")
	ErrAlreadyFortified   = newError(KindPrecondition, "ALREADY_FORTIFIED", "only one fortify move is allowed per turn")
	ErrReserveRemaining   = newError(KindPrecondition, "RESERVE_REMAINING", "place all reinforcement armies before ending the turn")
	ErrRoomNotFound       = newError(KindPrecondition, "ROOM_NOT_FOUND", "room not found")
	ErrGameAlreadyStarted = newError(KindPrecondition, "GAME_ALREADY_STARTED", "the game has already started")
	ErrGameNotStarted     = newError(KindPrecondition, "GAME_NOT_STARTED", "the game has not started")
	ErrNameTaken          = newError(KindPrecondition, "NAME_TAKEN", "player name already in use")
	ErrAlreadyInRoom      = newError(KindPrecondition, "ALREADY_IN_ROOM", "connection already joined a room")
	ErrAlreadyConnected   = newError(KindPrecondition, "ALREADY_CONNECTED", "player is already connected elsewhere")
	ErrNotInRoom          = newError(KindPrecondition, "NOT_IN_ROOM", "connection has not joined a room")
)

// Capacity
var (
	ErrRoomFull         = newError(KindCapacity, "ROOM_FULL", "room is full")
	ErrNotEnoughPlayers = newError(KindCapacity, "NOT_ENOUGH_PLAYERS", "not enough players to start")
)
