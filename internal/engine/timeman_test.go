package engine

import (
	"testing"
	"time"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func TestTimeManagerMoveTime(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(SearchLimits{MoveTime: 250 * time.Millisecond}, board.White, 0)

	if tm.soft != 250*time.Millisecond || tm.hard != 250*time.Millisecond {
		t.Errorf("soft/hard = %v/%v, want both 250ms", tm.soft, tm.hard)
	}
}

func TestTimeManagerInfiniteHasNoDeadline(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(SearchLimits{Infinite: true}, board.White, 0)
	if tm.HardLimit() != 0 {
		t.Errorf("infinite search hard limit = %v, want none", tm.HardLimit())
	}

	// An untimed depth search has no clock to protect either.
	tm = NewTimeManager()
	tm.Init(SearchLimits{Depth: 10}, board.White, 0)
	if tm.HardLimit() != 0 {
		t.Errorf("untimed search hard limit = %v, want none", tm.HardLimit())
	}

	// Scaling must still work without a hard limit to clamp against.
	tm.ScaleForStability(0)
	if tm.soft <= 0 {
		t.Errorf("soft budget = %v after scaling with no deadline", tm.soft)
	}
}

func TestTimeManagerClockAllocation(t *testing.T) {
	limits := SearchLimits{}
	limits.Time[board.Black] = time.Minute
	limits.Inc[board.Black] = time.Second

	tm := NewTimeManager()
	tm.Init(limits, board.Black, 20)

	if tm.soft <= 0 {
		t.Fatalf("soft budget = %v", tm.soft)
	}
	if tm.hard < tm.soft {
		t.Errorf("hard %v below soft %v", tm.hard, tm.soft)
	}
	if max := time.Minute * 95 / 100; tm.hard > max {
		t.Errorf("hard %v exceeds 95%% of remaining time", tm.hard)
	}
}

func TestTimeManagerMovesToGo(t *testing.T) {
	limits := SearchLimits{MovesToGo: 10}
	limits.Time[board.White] = 10 * time.Second

	tm := NewTimeManager()
	tm.Init(limits, board.White, 0)

	if want := time.Second; tm.soft != want {
		t.Errorf("soft = %v, want %v", tm.soft, want)
	}
}

func TestScaleForStabilityIsIdempotent(t *testing.T) {
	limits := SearchLimits{}
	limits.Time[board.White] = time.Minute

	tm := NewTimeManager()
	tm.Init(limits, board.White, 0)
	base := tm.soft

	// Repeated calls at the same stability must not compound.
	tm.ScaleForStability(3)
	once := tm.soft
	tm.ScaleForStability(3)
	if tm.soft != once {
		t.Errorf("soft drifted from %v to %v on a repeated call", once, tm.soft)
	}
	if once >= base {
		t.Errorf("stable move did not shrink the budget: %v -> %v", base, once)
	}

	tm.ScaleForStability(0)
	if tm.soft <= base {
		t.Errorf("changed move did not extend the budget: %v -> %v", base, tm.soft)
	}
	if tm.soft > tm.hard {
		t.Errorf("soft %v exceeds hard %v", tm.soft, tm.hard)
	}

	tm.ScaleForStability(6)
	if tm.soft != base/2 {
		t.Errorf("settled move budget = %v, want %v", tm.soft, base/2)
	}
}
