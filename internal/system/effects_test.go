package system

import (
	"testing"

	"mechcore/internal/ecs"
)

func TestTickInvulnerabilityCountsDown(t *testing.T) {
	w := ecs.NewWorld()
	id := SpawnTarget(w, "dummy", 50)
	Strike(w, id, Hit{Damage: 1, FromPlayer: true, Reduction: 4})

	for i := 0; i < 20; i++ {
		TickInvulnerability(w)
	}
	if inv := invOf(w, id); inv.Remaining != 0 || inv.Max != 16 {
		t.Fatalf("expected 0/16 after countdown, got %+v", inv)
	}
}
