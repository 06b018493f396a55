package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"callsheet/internal/production"
)

// Anomaly describes a record that was excluded or repaired during
// normalization. Anomalies are never fatal.
type Anomaly struct {
	Kind        string
	SceneNumber string
	DayNumber   string
	Message     string
}

// Anomaly kinds.
const (
	AnomalyMissingSceneNumber   = "missing_scene_number"
	AnomalyDuplicateSceneNumber = "duplicate_scene_number"
	AnomalyMissingDayNumber     = "missing_day_number"
	AnomalyDuplicateDayNumber   = "duplicate_day_number"
	AnomalyBadCastNumber        = "bad_cast_number"
	AnomalyMissingCastNumber    = "missing_cast_number"
)

// Snapshot converts a raw upload into a canonical snapshot. Script uploads
// (top-level scenes, no days) land in an implicit day 0. The transform is
// pure; anomalies report everything that was dropped or skipped.
func Snapshot(raw RawUpload) (production.Snapshot, []Anomaly) {
	var snapshot production.Snapshot
	var anomalies []Anomaly

	seenScenes := make(map[string]struct{})
	seenDays := make(map[int]struct{})

	for _, rawDay := range raw.Days {
		dayNumber, err := parsePositiveInt(rawDay.DayNumber)
		if err != nil {
			anomalies = append(anomalies, Anomaly{
				Kind:      AnomalyMissingDayNumber,
				DayNumber: rawDay.DayNumber,
				Message:   fmt.Sprintf("day excluded: %v", err),
			})
			continue
		}
		if _, ok := seenDays[dayNumber]; ok {
			anomalies = append(anomalies, Anomaly{
				Kind:      AnomalyDuplicateDayNumber,
				DayNumber: rawDay.DayNumber,
				Message:   fmt.Sprintf("duplicate day %d skipped; first occurrence wins", dayNumber),
			})
			continue
		}
		seenDays[dayNumber] = struct{}{}

		day := production.ShootDay{
			DayNumber: dayNumber,
			Date:      strings.TrimSpace(rawDay.Date),
			Location:  strings.TrimSpace(rawDay.Location),
			Notes:     trimAll(rawDay.Notes),
			RawText:   rawDay.RawText,
		}
		for _, rawScene := range rawDay.Scenes {
			scene, sceneAnomalies, ok := normalizeScene(rawScene, seenScenes)
			anomalies = append(anomalies, sceneAnomalies...)
			if !ok {
				continue
			}
			scene.DayNumber = dayNumber
			day.Scenes = append(day.Scenes, scene)
		}
		snapshot.Days = append(snapshot.Days, day)
	}

	if len(raw.Scenes) > 0 {
		day := production.ShootDay{DayNumber: 0}
		for _, rawScene := range raw.Scenes {
			scene, sceneAnomalies, ok := normalizeScene(rawScene, seenScenes)
			anomalies = append(anomalies, sceneAnomalies...)
			if !ok {
				continue
			}
			day.Scenes = append(day.Scenes, scene)
		}
		if len(day.Scenes) > 0 {
			snapshot.Days = append(snapshot.Days, day)
		}
	}

	snapshot.Cast, anomalies = normalizeCast(raw.Cast, anomalies)
	return snapshot, anomalies
}

// CastList normalizes a cast list on its own, for uploads that carry only
// cast information.
func CastList(raw []RawCastEntry) ([]production.CastEntry, []Anomaly) {
	return normalizeCast(raw, nil)
}

func normalizeScene(raw RawScene, seen map[string]struct{}) (production.Scene, []Anomaly, bool) {
	var anomalies []Anomaly

	number := production.NormalizeSceneNumber(raw.SceneNumber)
	if number == "" {
		anomalies = append(anomalies, Anomaly{
			Kind:    AnomalyMissingSceneNumber,
			Message: fmt.Sprintf("scene excluded: no scene number (slugline %q)", strings.TrimSpace(raw.Slugline)),
		})
		return production.Scene{}, anomalies, false
	}
	if _, ok := seen[number]; ok {
		anomalies = append(anomalies, Anomaly{
			Kind:        AnomalyDuplicateSceneNumber,
			SceneNumber: number,
			Message:     fmt.Sprintf("duplicate scene %s skipped; first occurrence wins", number),
		})
		return production.Scene{}, anomalies, false
	}
	seen[number] = struct{}{}

	scene := production.Scene{
		SceneNumber:   number,
		Slugline:      strings.TrimSpace(raw.Slugline),
		IntExt:        production.ParseIntExt(raw.IntExt),
		DayNight:      strings.ToUpper(strings.TrimSpace(raw.DayNight)),
		Synopsis:      strings.TrimSpace(raw.Synopsis),
		ScriptContent: raw.ScriptContent,
		Pages:         strings.TrimSpace(raw.Pages),
	}
	for _, ref := range raw.Cast {
		n, err := parsePositiveInt(ref)
		if err != nil {
			anomalies = append(anomalies, Anomaly{
				Kind:        AnomalyBadCastNumber,
				SceneNumber: number,
				Message:     fmt.Sprintf("cast ref %q dropped: %v", ref, err),
			})
			continue
		}
		scene.CastRefs = append(scene.CastRefs, n)
	}
	return scene, anomalies, true
}

func normalizeCast(raw []RawCastEntry, anomalies []Anomaly) ([]production.CastEntry, []Anomaly) {
	var cast []production.CastEntry
	seen := make(map[int]struct{})
	for _, entry := range raw {
		number, err := parsePositiveInt(entry.Number)
		if err != nil {
			anomalies = append(anomalies, Anomaly{
				Kind:    AnomalyMissingCastNumber,
				Message: fmt.Sprintf("cast entry %q excluded: %v", strings.TrimSpace(entry.Name), err),
			})
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		cast = append(cast, production.CastEntry{
			Number:    number,
			Name:      strings.TrimSpace(entry.Name),
			Character: strings.TrimSpace(entry.Character),
		})
	}
	return cast, anomalies
}

func parsePositiveInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty number")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("not numeric")
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
