package match

import (
	"sort"

	"callsheet/internal/production"
	"callsheet/internal/textutil"
)

// Pair links an old and a new scene. Exactly one side is nil for
// removed/added candidates. Confidence is 1.0 for key matches and the
// similarity score for fuzzy matches.
type Pair struct {
	Old        *production.Scene
	New        *production.Scene
	Confidence float64
}

// DayPair links an old and a new shooting day.
type DayPair struct {
	Old        *production.ShootDay
	New        *production.ShootDay
	Confidence float64
}

// Scenes pairs two scene sets. Every old and new scene appears in exactly one
// pair. Output ordering is deterministic: sorted by the pair's scene number.
func Scenes(old, new []production.Scene, policy Policy) []Pair {
	policy = policy.normalized()

	oldByNumber := make(map[string]int, len(old))
	for i := range old {
		number := production.NormalizeSceneNumber(old[i].SceneNumber)
		if _, ok := oldByNumber[number]; !ok {
			oldByNumber[number] = i
		}
	}

	pairs := make([]Pair, 0, len(old)+len(new))
	oldUsed := make([]bool, len(old))
	var newUnmatched []int

	for i := range new {
		number := production.NormalizeSceneNumber(new[i].SceneNumber)
		if j, ok := oldByNumber[number]; ok && !oldUsed[j] {
			oldUsed[j] = true
			pairs = append(pairs, Pair{Old: &old[j], New: &new[i], Confidence: 1.0})
			continue
		}
		newUnmatched = append(newUnmatched, i)
	}

	var oldUnmatched []int
	for i := range old {
		if !oldUsed[i] {
			oldUnmatched = append(oldUnmatched, i)
		}
	}

	assigned := assignFuzzy(len(oldUnmatched), len(newUnmatched), policy.Threshold,
		func(i, j int) float64 {
			return sceneSimilarity(old[oldUnmatched[i]], new[newUnmatched[j]], policy)
		})

	newTaken := make([]bool, len(newUnmatched))
	for i, a := range assigned {
		if a.target < 0 {
			pairs = append(pairs, Pair{Old: &old[oldUnmatched[i]]})
			continue
		}
		newTaken[a.target] = true
		pairs = append(pairs, Pair{
			Old:        &old[oldUnmatched[i]],
			New:        &new[newUnmatched[a.target]],
			Confidence: a.score,
		})
	}
	for k, j := range newUnmatched {
		if !newTaken[k] {
			pairs = append(pairs, Pair{New: &new[j]})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return production.SceneNumberLess(pairSceneNumber(pairs[a]), pairSceneNumber(pairs[b]))
	})
	return pairs
}

// Days pairs two shooting-day sets by day number, falling back to similarity
// over location text and aggregate cast.
func Days(old, new []production.ShootDay, policy Policy) []DayPair {
	policy = policy.normalized()

	oldByNumber := make(map[int]int, len(old))
	for i := range old {
		if _, ok := oldByNumber[old[i].DayNumber]; !ok {
			oldByNumber[old[i].DayNumber] = i
		}
	}

	pairs := make([]DayPair, 0, len(old)+len(new))
	oldUsed := make([]bool, len(old))
	var newUnmatched []int

	for i := range new {
		if j, ok := oldByNumber[new[i].DayNumber]; ok && !oldUsed[j] {
			oldUsed[j] = true
			pairs = append(pairs, DayPair{Old: &old[j], New: &new[i], Confidence: 1.0})
			continue
		}
		newUnmatched = append(newUnmatched, i)
	}

	var oldUnmatched []int
	for i := range old {
		if !oldUsed[i] {
			oldUnmatched = append(oldUnmatched, i)
		}
	}

	assigned := assignFuzzy(len(oldUnmatched), len(newUnmatched), policy.Threshold,
		func(i, j int) float64 {
			return daySimilarity(old[oldUnmatched[i]], new[newUnmatched[j]], policy)
		})

	newTaken := make([]bool, len(newUnmatched))
	for i, a := range assigned {
		if a.target < 0 {
			pairs = append(pairs, DayPair{Old: &old[oldUnmatched[i]]})
			continue
		}
		newTaken[a.target] = true
		pairs = append(pairs, DayPair{
			Old:        &old[oldUnmatched[i]],
			New:        &new[newUnmatched[a.target]],
			Confidence: a.score,
		})
	}
	for k, j := range newUnmatched {
		if !newTaken[k] {
			pairs = append(pairs, DayPair{New: &new[j]})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairDayNumber(pairs[a]) < pairDayNumber(pairs[b])
	})
	return pairs
}

func sceneSimilarity(a, b production.Scene, policy Policy) float64 {
	cast := textutil.JaccardInts(a.CastRefs, b.CastRefs)
	text := textutil.StringSimilarity(a.Slugline, b.Slugline)
	flag := 0.0
	if a.IntExt == b.IntExt && a.DayNight == b.DayNight {
		flag = 1.0
	}
	total := policy.CastWeight + policy.TextWeight + policy.FlagWeight
	return (policy.CastWeight*cast + policy.TextWeight*text + policy.FlagWeight*flag) / total
}

func daySimilarity(a, b production.ShootDay, policy Policy) float64 {
	cast := textutil.JaccardInts(dayCast(a), dayCast(b))
	text := textutil.StringSimilarity(a.Location, b.Location)
	flag := 0.0
	if a.Date != "" && a.Date == b.Date {
		flag = 1.0
	}
	total := policy.CastWeight + policy.TextWeight + policy.FlagWeight
	return (policy.CastWeight*cast + policy.TextWeight*text + policy.FlagWeight*flag) / total
}

func dayCast(day production.ShootDay) []int {
	var refs []int
	for _, scene := range day.Scenes {
		refs = append(refs, scene.CastRefs...)
	}
	return refs
}

func pairSceneNumber(p Pair) string {
	if p.Old != nil {
		return p.Old.SceneNumber
	}
	return p.New.SceneNumber
}

func pairDayNumber(p DayPair) int {
	if p.Old != nil {
		return p.Old.DayNumber
	}
	return p.New.DayNumber
}
