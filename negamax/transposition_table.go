package negamax

import (
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

// DefaultTableSize is the number of slots used when nothing else is
// configured.
const DefaultTableSize = 256

const entrySize = 32

// maxTablePowerOf2 caps memory-derived sizing.
const maxTablePowerOf2 = 26

// TableEntry is one searched position. The window the position was searched
// with is stored alongside the value; whether the value is exact or only a
// bound follows from where it fell relative to that window.
type TableEntry struct {
	hash  uint64
	alpha int32
	beta  int32
	score int32
	depth uint8
	ok    bool
	play  TinyMove
}

func (t TableEntry) valid() bool {
	return t.ok
}

func (t TableEntry) flag() uint8 {
	switch {
	case t.score <= t.alpha:
		return TTUpper
	case t.score >= t.beta:
		return TTLower
	}
	return TTExact
}

// probe applies the entry to the window [α, β] of a search needing depth
// plies. It returns the value and true if the search can stop right here,
// otherwise the possibly narrowed window.
func (t TableEntry) probe(depth, α, β int) (score int, cutoff bool, newα, newβ int) {
	if !t.ok || int(t.depth) < depth {
		return 0, false, α, β
	}
	score = int(t.score)
	switch t.flag() {
	case TTExact:
		return score, true, α, β
	case TTLower:
		α = max(α, score)
	case TTUpper:
		β = min(β, score)
	}
	if α >= β {
		return score, true, α, β
	}
	return 0, false, α, β
}

// TranspositionTable is a direct-mapped cache of search results indexed by
// the low bits of the zobrist hash. A store always replaces whatever was in
// the slot. The full hash is kept in the entry, so a slot holding another
// position reads as a miss rather than a wrong answer.
type TranspositionTable struct {
	table    []TableEntry
	sizeMask uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
	// type 2 collisions: the slot is occupied by a different position.
	t2collisions atomic.Uint64
}

// NewTranspositionTable allocates a table with at least size slots.
func NewTranspositionTable(size int) *TranspositionTable {
	t := &TranspositionTable{}
	t.Reset(size)
	return t
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Reset empties the table, resizing it to the smallest power of two holding
// size slots.
func (t *TranspositionTable) Reset(size int) {
	numElems := nextPowerOf2(size)
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	t.sizeMask = uint64(numElems - 1)
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// ResetForMemory sizes the table to the largest power of two that fits in
// the given fraction of system memory, but never below DefaultTableSize.
func (t *TranspositionTable) ResetForMemory(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	sizePowerOf2 := 0
	if desiredNElems >= 1 {
		sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	sizePowerOf2 = min(sizePowerOf2, maxTablePowerOf2)
	numElems := max(1<<sizePowerOf2, DefaultTableSize)
	t.Reset(numElems)

	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
}

func (t *TranspositionTable) Size() int {
	return len(t.table)
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups.Add(1)
	entry := t.table[zval&t.sizeMask]
	if !entry.valid() {
		return TableEntry{}
	}
	if entry.hash != zval {
		t.t2collisions.Add(1)
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	tentry.hash = zval
	tentry.ok = true
	t.table[zval&t.sizeMask] = tentry
	t.created.Add(1)
}

// TableStats are the usage counters since the last reset.
type TableStats struct {
	Created      uint64
	Lookups      uint64
	Hits         uint64
	T2Collisions uint64
}

func (t *TranspositionTable) Stats() TableStats {
	return TableStats{
		Created:      t.created.Load(),
		Lookups:      t.lookups.Load(),
		Hits:         t.hits.Load(),
		T2Collisions: t.t2collisions.Load(),
	}
}
