// Package crossref performs the one-shot comparison between a schedule
// snapshot and the authoritative breakdown. Unlike an amendment there is no
// old/new framing: the output is a list of discrepancies for the reviewer,
// recomputed on demand and never persisted.
package crossref

import (
	"fmt"
	"sort"
	"strings"

	"callsheet/internal/production"
)

// Discrepancy types.
const (
	TypeSceneNotInBreakdown = "scene_not_in_breakdown"
	TypeSceneNotInSchedule  = "scene_not_in_schedule"
	TypeCharacterMismatch   = "character_mismatch"
	TypeOther               = "other"
)

// Discrepancy is one difference between schedule and breakdown. Ephemeral;
// recomputed whenever either input changes.
type Discrepancy struct {
	Type        string
	SceneNumber string
	Message     string
}

// Compare cross-references a schedule snapshot against the breakdown's
// current scene set. Cast numbers are resolved to names through the
// schedule's cast list on one side and the project characters on the other;
// a name-set mismatch on a shared scene is reported with both lists.
// Pure function of its inputs.
func Compare(schedule production.Snapshot, breakdown []production.Scene, characters []production.Character) []Discrepancy {
	var discrepancies []Discrepancy

	scheduleScenes := make(map[string]production.Scene)
	for _, scene := range schedule.Scenes() {
		if _, ok := scheduleScenes[scene.SceneNumber]; !ok {
			scheduleScenes[scene.SceneNumber] = scene
		}
	}
	breakdownScenes := make(map[string]production.Scene)
	for _, scene := range breakdown {
		number := production.NormalizeSceneNumber(scene.SceneNumber)
		if _, ok := breakdownScenes[number]; !ok {
			breakdownScenes[number] = scene
		}
	}

	castNames := schedule.CastByNumber()
	characterByNumber := make(map[int]production.Character)
	for _, ch := range characters {
		if ch.ActorNumber > 0 {
			if _, ok := characterByNumber[ch.ActorNumber]; !ok {
				characterByNumber[ch.ActorNumber] = ch
			}
		}
	}

	for number, scene := range scheduleScenes {
		other, ok := breakdownScenes[number]
		if !ok {
			discrepancies = append(discrepancies, Discrepancy{
				Type:        TypeSceneNotInBreakdown,
				SceneNumber: number,
				Message:     fmt.Sprintf("scene %s appears in the schedule but not in the breakdown", number),
			})
			continue
		}

		scheduleNames := resolveNames(scene.CastRefs, func(n int) string {
			if entry, ok := castNames[n]; ok && entry.Name != "" {
				return entry.Name
			}
			return fmt.Sprintf("#%d", n)
		})
		breakdownNames := resolveNames(other.CastRefs, func(n int) string {
			if ch, ok := characterByNumber[n]; ok && ch.Name != "" {
				return ch.Name
			}
			return fmt.Sprintf("#%d", n)
		})
		if !sameNameSet(scheduleNames, breakdownNames) {
			discrepancies = append(discrepancies, Discrepancy{
				Type:        TypeCharacterMismatch,
				SceneNumber: number,
				Message: fmt.Sprintf("scene %s cast differs: schedule has [%s], breakdown has [%s]",
					number, strings.Join(scheduleNames, ", "), strings.Join(breakdownNames, ", ")),
			})
		}
	}

	for number := range breakdownScenes {
		if _, ok := scheduleScenes[number]; !ok {
			discrepancies = append(discrepancies, Discrepancy{
				Type:        TypeSceneNotInSchedule,
				SceneNumber: number,
				Message:     fmt.Sprintf("scene %s appears in the breakdown but not in the schedule", number),
			})
		}
	}

	sort.SliceStable(discrepancies, func(i, j int) bool {
		if discrepancies[i].SceneNumber != discrepancies[j].SceneNumber {
			return production.SceneNumberLess(discrepancies[i].SceneNumber, discrepancies[j].SceneNumber)
		}
		return discrepancies[i].Type < discrepancies[j].Type
	})
	return discrepancies
}

func resolveNames(refs []int, lookup func(int) string) []string {
	seen := make(map[string]struct{}, len(refs))
	var names []string
	for _, ref := range refs {
		name := lookup(ref)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
