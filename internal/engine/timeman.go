package engine

import (
	"time"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// TimeManager turns the clock state of a search request into two
// budgets: a soft one the coordinator checks between iterations, and a
// hard one the watchdog enforces no matter what the search is doing.
type TimeManager struct {
	softBase time.Duration
	soft     time.Duration
	hard     time.Duration
	start    time.Time
}

func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init computes the budgets for the side to move at game ply.
func (tm *TimeManager) Init(limits SearchLimits, us board.Color, ply int) {
	tm.start = time.Now()

	if limits.MoveTime > 0 {
		tm.softBase = limits.MoveTime
		tm.hard = limits.MoveTime
		tm.soft = tm.softBase
		return
	}

	if limits.Infinite || limits.Time[us] == 0 {
		// No clock to manage: infinite and untimed searches run until
		// a stop request or another limit ends them. A zero hard limit
		// disables the watchdog.
		tm.softBase = time.Hour
		tm.hard = 0
		tm.soft = tm.softBase
		return
	}

	remaining := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: assume fewer moves remain as the game goes on.
		mtg = 45 - ply/4
		if mtg < 12 {
			mtg = 12
		}
	}

	tm.softBase = remaining/time.Duration(mtg) + inc*3/4
	if tm.softBase < 5*time.Millisecond {
		tm.softBase = 5 * time.Millisecond
	}

	tm.hard = tm.softBase * 4
	if cap := remaining * 4 / 5; tm.hard > cap {
		tm.hard = cap
	}
	// Leave headroom so the clock never flags.
	if cap := remaining * 95 / 100; tm.hard > cap {
		tm.hard = cap
	}
	if tm.hard < tm.softBase {
		tm.hard = tm.softBase
	}

	tm.soft = tm.softBase
}

// Elapsed returns the time since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

// HardLimit is the absolute deadline for the search, or zero when no
// deadline applies.
func (tm *TimeManager) HardLimit() time.Duration {
	return tm.hard
}

// SoftExpired reports whether the soft budget is spent; the coordinator
// stops before starting another iteration when it is.
func (tm *TimeManager) SoftExpired() bool {
	return tm.Elapsed() >= tm.soft
}

// ScaleForStability sets the soft budget from how many consecutive
// completed depths agreed on the best move: a settled root move gives
// time back, a move that just changed buys more. Recomputed from the
// base each call, always within the hard limit.
func (tm *TimeManager) ScaleForStability(stableDepths int) {
	pct := time.Duration(100)
	switch {
	case stableDepths >= 6:
		pct = 50
	case stableDepths >= 3:
		pct = 75
	case stableDepths == 0:
		pct = 150
	}
	tm.soft = tm.softBase * pct / 100
	if tm.hard > 0 && tm.soft > tm.hard {
		tm.soft = tm.hard
	}
}
