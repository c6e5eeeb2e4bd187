package game

const (
	// MaxLogs bounds the match log; older entries are dropped.
	MaxLogs = 80

	// RoomIDMinLength and RoomIDMaxLength bound a normalized room id
	RoomIDMinLength = 3
	RoomIDMaxLength = 12

	// PlayerNameMinLength and PlayerNameMaxLength bound a normalized name, in characters
	PlayerNameMinLength = 2
	PlayerNameMaxLength = 24

	// MinAttackArmies is the army count an origin needs before it can attack
	MinAttackArmies = 2

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
