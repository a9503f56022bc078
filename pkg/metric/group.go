package metric

// Group is a named bundle of EventKinds that expands to a deterministic
// ordered set, used by CLI/config surfaces to select which Callgrind
// metrics to display without listing them all individually.
type Group string

const (
	GroupDefault            Group = "Default"
	GroupCacheSim           Group = "CacheSim"
	GroupCacheHits          Group = "CacheHits"
	GroupCacheHitRates      Group = "CacheHitRates"
	GroupCacheMisses        Group = "CacheMisses"
	GroupCacheMissRates     Group = "CacheMissRates"
	GroupBranchSim          Group = "BranchSim"
	GroupCacheUse           Group = "CacheUse"
	GroupSystemCalls        Group = "SystemCalls"
	GroupWriteBackBehaviour Group = "WriteBackBehaviour"
	GroupAll                Group = "All"
	GroupNone               Group = "None"
)

// cacheHits is CacheHits's member list, inlined into CacheSim and Default.
var cacheHits = []EventKind{L1hits, LLhits, RamHits}

// cacheHitRates is CacheHitRates's member list, inlined into CacheSim.
var cacheHitRates = []EventKind{L1HitRate, LLHitRate, RamHitRate}

// cacheMisses is CacheMisses's member list, inlined into CacheSim.
var cacheMisses = []EventKind{I1mr, D1mr, D1mw, ILmr, DLmr, DLmw}

// cacheMissRates is CacheMissRates's member list, inlined into CacheSim.
var cacheMissRates = []EventKind{I1MissRate, D1MissRate, LLiMissRate, LLdMissRate, LLMissRate}

// branchSim is BranchSim's member list, inlined into Default and All.
var branchSim = []EventKind{Bc, Bcm, Bi, Bim}

// writeBackBehaviour is WriteBackBehaviour's member list, inlined into
// Default and All.
var writeBackBehaviour = []EventKind{ILdmr, DLdmr, DLdmw}

// cacheUse is CacheUse's member list, inlined into Default and All.
var cacheUse = []EventKind{AcCost1, AcCost2, SpLoss1, SpLoss2}

// systemCalls is SystemCalls's member list, inlined into Default and All.
var systemCalls = []EventKind{SysCount, SysTime, SysCpuTime}

// cacheSim is CacheSim's member list: Dr, Dw, then CacheMisses,
// CacheMissRates, CacheHits, TotalRW, CacheHitRates, EstimatedCycles in
// that order, inlined into All.
var cacheSim = concat(
	[]EventKind{Dr, Dw},
	cacheMisses,
	cacheMissRates,
	cacheHits,
	[]EventKind{TotalRW},
	cacheHitRates,
	[]EventKind{EstimatedCycles},
)

func concat(lists ...[]EventKind) []EventKind {
	var out []EventKind
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

var groupMembers = map[Group][]EventKind{
	GroupDefault: concat(
		[]EventKind{Ir},
		cacheHits,
		[]EventKind{TotalRW, EstimatedCycles},
		systemCalls,
		[]EventKind{Ge},
		branchSim,
		writeBackBehaviour,
		cacheUse,
	),
	GroupCacheSim:           cacheSim,
	GroupCacheHits:          cacheHits,
	GroupCacheHitRates:      cacheHitRates,
	GroupCacheMisses:        cacheMisses,
	GroupCacheMissRates:     cacheMissRates,
	GroupBranchSim:          branchSim,
	GroupCacheUse:           cacheUse,
	GroupSystemCalls:        systemCalls,
	GroupWriteBackBehaviour: writeBackBehaviour,
	GroupNone:               {},
}

// ExpandGroup returns the ordered set of EventKinds for a named group.
// GroupAll returns every EventKind this package declares, in the order
// given by allEventKindsInOrder. Unknown group names expand to the empty set.
func ExpandGroup(g Group) []EventKind {
	if g == GroupAll {
		return allEventKindsInOrder()
	}
	members, ok := groupMembers[g]
	if !ok {
		return nil
	}
	out := make([]EventKind, len(members))
	copy(out, members)
	return out
}

// allEventKindsInOrder is the All group's expansion: Ir, CacheSim,
// SystemCalls, Ge, BranchSim, WriteBackBehaviour, CacheUse.
func allEventKindsInOrder() []EventKind {
	return concat(
		[]EventKind{Ir},
		cacheSim,
		systemCalls,
		[]EventKind{Ge},
		branchSim,
		writeBackBehaviour,
		cacheUse,
	)
}

// ParseGroup parses a group name, defaulting to GroupNone for unrecognized
// input so callers can treat an empty/omitted configuration uniformly.
func ParseGroup(s string) Group {
	switch Group(s) {
	case GroupDefault, GroupCacheSim, GroupCacheHits, GroupCacheHitRates,
		GroupCacheMisses, GroupCacheMissRates,
		GroupBranchSim, GroupCacheUse, GroupSystemCalls, GroupWriteBackBehaviour,
		GroupAll, GroupNone:
		return Group(s)
	default:
		return GroupNone
	}
}
