package engine

import (
	"sync/atomic"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// TTFlag is the bound kind a table entry carries.
type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLowerBound
	TTUpperBound
)

// TTEntry is an unpacked table record.
type TTEntry struct {
	Key      uint64
	BestMove board.Move
	Score    int16
	Depth    int8
	Flag     TTFlag
	Age      uint8
}

// ttSlot is one table cell: two words written and read with plain atomic
// loads and stores, no locks. check holds key XOR data, so a reader that
// observes a torn pair fails the verification and treats the slot as a
// miss. Concurrent writers can lose updates; that only costs search
// effort, never correctness.
type ttSlot struct {
	check atomic.Uint64
	data  atomic.Uint64
}

// data packing: move(16) | score(16, biased) | depth(8) | flag(8) | age(8)
const scoreBias = 1 << 15

func packTTData(move board.Move, score int16, depth int8, flag TTFlag, age uint8) uint64 {
	return uint64(move) |
		uint64(uint16(int(score)+scoreBias))<<16 |
		uint64(uint8(depth))<<32 |
		uint64(flag)<<40 |
		uint64(age)<<48
}

func unpackTTData(key, data uint64) TTEntry {
	return TTEntry{
		Key:      key,
		BestMove: board.Move(data & 0xFFFF),
		Score:    int16(int(data>>16&0xFFFF) - scoreBias),
		Depth:    int8(uint8(data >> 32)),
		Flag:     TTFlag(data >> 40 & 0xFF),
		Age:      uint8(data >> 48),
	}
}

// TranspositionTable is the search cache shared by all workers. It is lock-free:
// every probe and store touches exactly one slot's two atomic words.
type TranspositionTable struct {
	slots []ttSlot
	mask  uint64
	age   atomic.Uint32
}

// NewTranspositionTable sizes the table to at most sizeMB megabytes,
// rounded down to a power of two entries.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const slotSize = 16
	n := uint64(sizeMB) * 1024 * 1024 / slotSize
	n = floorPow2(n)
	if n == 0 {
		n = 1
	}
	return &TranspositionTable{
		slots: make([]ttSlot, n),
		mask:  n - 1,
	}
}

func floorPow2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the entry for hash if an intact one is resident.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	slot := &tt.slots[hash&tt.mask]
	check := slot.check.Load()
	data := slot.data.Load()
	// XOR verification: fails on the zero slot, on a different position,
	// and on a check/data pair torn by a concurrent writer.
	if check^data != hash {
		return TTEntry{}, false
	}
	entry := unpackTTData(hash, data)
	if entry.Depth <= 0 {
		return TTEntry{}, false
	}
	return entry, true
}

// Store writes the result of a finished node. The resident entry is kept
// only when it is from the current generation and strictly deeper.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	slot := &tt.slots[hash&tt.mask]
	age := uint8(tt.age.Load())

	if check, data := slot.check.Load(), slot.data.Load(); check^data == hash {
		resident := unpackTTData(hash, data)
		if resident.Age == age && int(resident.Depth) > depth {
			return
		}
	}

	data := packTTData(bestMove, int16(score), int8(depth), flag, age)
	slot.check.Store(hash ^ data)
	slot.data.Store(data)
}

// NewSearch advances the generation so stale entries lose replacement
// priority.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear drops every entry.
func (tt *TranspositionTable) Clear() {
	for i := range tt.slots {
		tt.slots[i].check.Store(0)
		tt.slots[i].data.Store(0)
	}
	tt.age.Store(0)
}

// HashFull samples the table and reports fill in permille, for UCI info.
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(tt.slots)) {
		sample = len(tt.slots)
	}
	age := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sample; i++ {
		check := tt.slots[i].check.Load()
		data := tt.slots[i].data.Load()
		if data != 0 {
			if e := unpackTTData(check^data, data); e.Age == age {
				used++
			}
		}
	}
	return used * 1000 / sample
}

// Size returns the entry count.
func (tt *TranspositionTable) Size() uint64 { return uint64(len(tt.slots)) }

// Mate scores are stored relative to the node, not the root, so they stay
// valid when the same position is reached at a different ply.

// AdjustScoreToTT converts a root-relative mate score to node-relative
// before storing.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

// AdjustScoreFromTT converts a node-relative mate score back to
// root-relative after probing.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}
