package main

import (
	"context"
	"testing"
	"time"

	"github.com/aaronzipp/brisk/internal/ruleset"
	"github.com/aaronzipp/brisk/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuleset(t *testing.T) {
	rules, err := loadRuleset("")
	require.NoError(t, err)
	assert.Equal(t, "war-classic-02000", rules.ID())

	_, err = loadRuleset(t.TempDir())
	assert.ErrorContains(t, err, "constants.json")
}

func TestPruneLoopStopsWithContext(t *testing.T) {
	rules, err := ruleset.Default()
	require.NoError(t, err)
	reg := store.NewRegistry(rules)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pruneLoop(ctx, reg, time.Millisecond, zerolog.Nop())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("prune loop did not stop")
	}

	// a zero interval disables the loop
	pruneLoop(context.Background(), reg, 0, zerolog.Nop())
}
