package engine

import (
	"sync"
	"testing"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func TestTTStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)

	hash := uint64(0xDEADBEEFCAFEF00D)
	move := board.NewMove(board.E2, board.E4)
	tt.Store(hash, 7, 42, TTExact, move)

	entry, hit := tt.Probe(hash)
	if !hit {
		t.Fatal("Probe missed a freshly stored entry")
	}
	if entry.BestMove != move || entry.Score != 42 || entry.Depth != 7 || entry.Flag != TTExact {
		t.Errorf("Probe = %+v, want move=%s score=42 depth=7 exact", entry, move)
	}
}

func TestTTProbeMiss(t *testing.T) {
	tt := NewTranspositionTable(1)
	if _, hit := tt.Probe(0x1234); hit {
		t.Error("Probe hit on an empty table")
	}

	// A different hash landing on the same slot must fail the key check.
	tt.Store(0x1234, 5, 10, TTExact, board.NoMove)
	collider := 0x1234 ^ (tt.Size() << 3) // same low bits, different key
	if _, hit := tt.Probe(collider); hit {
		t.Error("Probe hit for a colliding hash with a different key")
	}
}

func TestTTReplacementPrefersDepth(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xABCDEF)

	tt.Store(hash, 10, 100, TTExact, board.NewMove(board.D2, board.D4))
	tt.Store(hash, 4, -50, TTUpperBound, board.NewMove(board.E2, board.E4))

	entry, hit := tt.Probe(hash)
	if !hit {
		t.Fatal("entry lost")
	}
	if entry.Depth != 10 || entry.Score != 100 {
		t.Errorf("shallow store evicted a deeper same-age entry: %+v", entry)
	}

	tt.Store(hash, 12, 77, TTLowerBound, board.NewMove(board.G1, board.F3))
	entry, _ = tt.Probe(hash)
	if entry.Depth != 12 || entry.Score != 77 {
		t.Errorf("deeper store did not replace: %+v", entry)
	}
}

func TestTTNewSearchAgesEntries(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0x55AA55AA)

	tt.Store(hash, 20, 300, TTExact, board.NoMove)
	tt.NewSearch()

	// A stale deep entry gives way to any entry from the new search.
	tt.Store(hash, 2, -1, TTUpperBound, board.NoMove)
	entry, hit := tt.Probe(hash)
	if !hit {
		t.Fatal("entry lost")
	}
	if entry.Depth != 2 || entry.Score != -1 {
		t.Errorf("stale entry survived a new-generation store: %+v", entry)
	}
}

func TestTTClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(0x42, 6, 15, TTExact, board.NoMove)
	tt.Clear()
	if _, hit := tt.Probe(0x42); hit {
		t.Error("Probe hit after Clear")
	}
}

func TestTTScoreRange(t *testing.T) {
	tt := NewTranspositionTable(1)
	for _, score := range []int{-MateScore, -1, 0, 1, MateScore} {
		tt.Store(uint64(score)*2654435761+1, 3, score, TTExact, board.NoMove)
		entry, hit := tt.Probe(uint64(score)*2654435761 + 1)
		if !hit {
			t.Fatalf("miss for score %d", score)
		}
		if int(entry.Score) != score {
			t.Errorf("score %d came back as %d", score, entry.Score)
		}
	}
}

func TestTTMateScoreAdjustment(t *testing.T) {
	// A mate found 5 plies below a node 3 plies deep is stored
	// relative to that node and must read back relative to any probe.
	score := MateScore - 8 // mate in 8 plies from the root
	stored := AdjustScoreToTT(score, 3)
	if stored != MateScore-5 {
		t.Errorf("AdjustScoreToTT = %d, want %d", stored, MateScore-5)
	}
	if got := AdjustScoreFromTT(stored, 3); got != score {
		t.Errorf("AdjustScoreFromTT round trip = %d, want %d", got, score)
	}

	mated := -(MateScore - 8)
	stored = AdjustScoreToTT(mated, 3)
	if got := AdjustScoreFromTT(stored, 3); got != mated {
		t.Errorf("mated-side round trip = %d, want %d", got, mated)
	}
}

func TestTTConcurrentAccess(t *testing.T) {
	// Hammer a small table from several goroutines. Every successful
	// probe must return an internally consistent entry; torn reads
	// must surface as misses, never as garbage.
	tt := NewTranspositionTable(1)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := uint64(0); i < 20000; i++ {
				hash := (seed*2654435761 + i) | 1
				score := int(int16(hash))
				if score > MateScore {
					score = MateScore
				} else if score < -MateScore {
					score = -MateScore
				}
				depth := int(hash % 32)
				tt.Store(hash, depth, score, TTFlag(hash%3), board.Move(hash))

				if entry, hit := tt.Probe(hash); hit {
					if entry.Key != hash {
						t.Errorf("probe returned entry for wrong key: %x != %x", entry.Key, hash)
						return
					}
				}
			}
		}(uint64(g) + 1)
	}
	wg.Wait()
}
