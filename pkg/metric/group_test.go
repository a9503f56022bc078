package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandGroup_Default(t *testing.T) {
	expected := concat(
		[]EventKind{Ir},
		cacheHits,
		[]EventKind{TotalRW, EstimatedCycles},
		systemCalls,
		[]EventKind{Ge},
		branchSim,
		writeBackBehaviour,
		cacheUse,
	)
	assert.Equal(t, expected, ExpandGroup(GroupDefault))
}

func TestExpandGroup_WriteBackBehaviour(t *testing.T) {
	assert.Equal(t, []EventKind{ILdmr, DLdmr, DLdmw}, ExpandGroup(GroupWriteBackBehaviour))
}

func TestExpandGroup_CacheMisses_NativeOnly(t *testing.T) {
	assert.Equal(t, []EventKind{I1mr, D1mr, D1mw, ILmr, DLmr, DLmw}, ExpandGroup(GroupCacheMisses))
}

func TestExpandGroup_CacheMissRates(t *testing.T) {
	assert.Equal(t, []EventKind{I1MissRate, D1MissRate, LLiMissRate, LLdMissRate, LLMissRate}, ExpandGroup(GroupCacheMissRates))
}

func TestExpandGroup_CacheHitRates(t *testing.T) {
	assert.Equal(t, []EventKind{L1HitRate, LLHitRate, RamHitRate}, ExpandGroup(GroupCacheHitRates))
}

func TestExpandGroup_All(t *testing.T) {
	all := ExpandGroup(GroupAll)
	assert.Contains(t, all, Ir)
	assert.Contains(t, all, LLiMissRate)
	assert.Contains(t, all, LLdMissRate)
	assert.Contains(t, all, ILdmr)
	assert.Contains(t, all, SysCpuTime)
	assert.Len(t, all, len(allEventKindsInOrder()))
}

func TestExpandGroup_Unknown(t *testing.T) {
	assert.Nil(t, ExpandGroup(Group("bogus")))
}

func TestExpandGroup_ReturnsCopy(t *testing.T) {
	a := ExpandGroup(GroupCacheHits)
	a[0] = EstimatedCycles
	b := ExpandGroup(GroupCacheHits)
	assert.Equal(t, L1hits, b[0], "ExpandGroup must not leak a mutable reference to internal state")
}

func TestParseGroup(t *testing.T) {
	assert.Equal(t, GroupCacheSim, ParseGroup("CacheSim"))
	assert.Equal(t, GroupNone, ParseGroup("not-a-group"))
	assert.Equal(t, GroupNone, ParseGroup(""))
}
