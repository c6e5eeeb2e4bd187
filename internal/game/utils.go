package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// GenerateRoomCode creates a random room code
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range RoomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// UniqueRoomCode generates a room code for which taken reports false
func UniqueRoomCode(taken func(code string) bool) string {
	for {
		code := GenerateRoomCode()
		if !taken(code) {
			return code
		}
	}
}

// NormalizeRoomID upper-cases roomID and strips everything but letters and
// digits.
func NormalizeRoomID(roomID string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(roomID) {
		if ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if len(id) < RoomIDMinLength || len(id) > RoomIDMaxLength {
		return "", ErrInvalidRoomID
	}
	return id, nil
}

// NormalizePlayerName trims name and collapses inner whitespace runs to a
// single space.
func NormalizePlayerName(name string) (string, error) {
	normalized := strings.Join(strings.Fields(name), " ")
	n := utf8.RuneCountInString(normalized)
	if n < PlayerNameMinLength || n > PlayerNameMaxLength {
		return "", ErrInvalidPlayerName
	}
	return normalized, nil
}
