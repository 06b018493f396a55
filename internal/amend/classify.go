package amend

import (
	"sort"

	"callsheet/internal/match"
	"callsheet/internal/production"
)

// Changed field names reported on modified scenes.
const (
	FieldSceneNumber   = "scene_number"
	FieldSlugline      = "slugline"
	FieldIntExt        = "int_ext"
	FieldDayNight      = "day_night"
	FieldSynopsis      = "synopsis"
	FieldScriptContent = "script_content"
	FieldDay           = "day"
)

// SceneChange is a modified scene: the old and new versions, the fields that
// differ, and the match confidence (1.0 for key matches; fuzzy matches carry
// their similarity score so the review UI can flag them for confirmation).
type SceneChange struct {
	Old        production.Scene
	New        production.Scene
	Fields     []string
	Confidence float64
}

// MovedScene is a scene whose only change is its shoot-day assignment.
type MovedScene struct {
	Scene  production.Scene
	OldDay int
	NewDay int
}

// CastChange records a cast-membership difference on one scene.
type CastChange struct {
	SceneNumber string
	OldCast     []int
	NewCast     []int
}

// TimingChange records a page-count difference on one scene.
type TimingChange struct {
	SceneNumber string
	OldPages    string
	NewPages    string
}

// Result is a classified amendment between two snapshots.
type Result struct {
	AddedScenes    []production.Scene
	RemovedScenes  []production.Scene
	ModifiedScenes []SceneChange
	MovedScenes    []MovedScene
	CastChanges    []CastChange
	TimingChanges  []TimingChange
}

// Empty reports whether the amendment contains no changes.
func (r Result) Empty() bool {
	return len(r.AddedScenes) == 0 &&
		len(r.RemovedScenes) == 0 &&
		len(r.ModifiedScenes) == 0 &&
		len(r.MovedScenes) == 0 &&
		len(r.CastChanges) == 0 &&
		len(r.TimingChanges) == 0
}

// Classify compares two snapshots and produces an amendment result.
func Classify(old, new production.Snapshot, policy match.Policy) Result {
	pairs := match.Scenes(old.Scenes(), new.Scenes(), policy)
	return classifyPairs(pairs)
}

func classifyPairs(pairs []match.Pair) Result {
	var result Result

	for _, pair := range pairs {
		switch {
		case pair.Old == nil:
			result.AddedScenes = append(result.AddedScenes, *pair.New)
		case pair.New == nil:
			result.RemovedScenes = append(result.RemovedScenes, *pair.Old)
		default:
			classifyMatched(&result, *pair.Old, *pair.New, pair.Confidence)
		}
	}

	sortResult(&result)
	return result
}

func classifyMatched(result *Result, old, new production.Scene, confidence float64) {
	castChanged := !sameCast(old.CastRefs, new.CastRefs)
	timingChanged := old.Pages != new.Pages
	dayChanged := old.DayNumber != new.DayNumber
	fields := coreFieldDiff(old, new)

	if castChanged {
		result.CastChanges = append(result.CastChanges, CastChange{
			SceneNumber: new.SceneNumber,
			OldCast:     append([]int(nil), old.CastRefs...),
			NewCast:     append([]int(nil), new.CastRefs...),
		})
	}
	if timingChanged {
		result.TimingChanges = append(result.TimingChanges, TimingChange{
			SceneNumber: new.SceneNumber,
			OldPages:    old.Pages,
			NewPages:    new.Pages,
		})
	}

	if confidence < 1.0 {
		// Fuzzy matches always surface as modified so the reviewer can
		// confirm the identity link before anything merges.
		if dayChanged {
			fields = append(fields, FieldDay)
		}
		result.ModifiedScenes = append(result.ModifiedScenes, SceneChange{
			Old:        old,
			New:        new,
			Fields:     fields,
			Confidence: confidence,
		})
		return
	}

	switch {
	case len(fields) == 0 && dayChanged:
		result.MovedScenes = append(result.MovedScenes, MovedScene{
			Scene:  new,
			OldDay: old.DayNumber,
			NewDay: new.DayNumber,
		})
	case len(fields) > 0:
		if dayChanged {
			fields = append(fields, FieldDay)
		}
		result.ModifiedScenes = append(result.ModifiedScenes, SceneChange{
			Old:        old,
			New:        new,
			Fields:     fields,
			Confidence: confidence,
		})
	}
	// Identical pairs (and pairs whose only differences are cast or timing,
	// already emitted above) produce no further entry.
}

func coreFieldDiff(old, new production.Scene) []string {
	var fields []string
	if production.NormalizeSceneNumber(old.SceneNumber) != production.NormalizeSceneNumber(new.SceneNumber) {
		fields = append(fields, FieldSceneNumber)
	}
	if old.Slugline != new.Slugline {
		fields = append(fields, FieldSlugline)
	}
	if old.IntExt != new.IntExt {
		fields = append(fields, FieldIntExt)
	}
	if old.DayNight != new.DayNight {
		fields = append(fields, FieldDayNight)
	}
	if old.Synopsis != new.Synopsis {
		fields = append(fields, FieldSynopsis)
	}
	if old.ScriptContent != new.ScriptContent {
		fields = append(fields, FieldScriptContent)
	}
	return fields
}

func sameCast(a, b []int) bool {
	setA := make(map[int]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[int]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if _, ok := setB[v]; !ok {
			return false
		}
	}
	return true
}

func sortResult(result *Result) {
	sort.SliceStable(result.AddedScenes, func(i, j int) bool {
		return sceneLess(result.AddedScenes[i], result.AddedScenes[j])
	})
	sort.SliceStable(result.RemovedScenes, func(i, j int) bool {
		return sceneLess(result.RemovedScenes[i], result.RemovedScenes[j])
	})
	sort.SliceStable(result.ModifiedScenes, func(i, j int) bool {
		return sceneLess(result.ModifiedScenes[i].New, result.ModifiedScenes[j].New)
	})
	sort.SliceStable(result.MovedScenes, func(i, j int) bool {
		return sceneLess(result.MovedScenes[i].Scene, result.MovedScenes[j].Scene)
	})
	sort.SliceStable(result.CastChanges, func(i, j int) bool {
		return production.SceneNumberLess(result.CastChanges[i].SceneNumber, result.CastChanges[j].SceneNumber)
	})
	sort.SliceStable(result.TimingChanges, func(i, j int) bool {
		return production.SceneNumberLess(result.TimingChanges[i].SceneNumber, result.TimingChanges[j].SceneNumber)
	})
}

func sceneLess(a, b production.Scene) bool {
	if a.SceneNumber != b.SceneNumber {
		return production.SceneNumberLess(a.SceneNumber, b.SceneNumber)
	}
	return a.DayNumber < b.DayNumber
}
