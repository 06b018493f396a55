package production

import (
	"strconv"
	"strings"
)

// IntExt distinguishes interior from exterior sceneheadings.
type IntExt string

const (
	IntExtUnknown  IntExt = ""
	IntExtInterior IntExt = "INT"
	IntExtExterior IntExt = "EXT"
)

// ParseIntExt maps raw heading text to an IntExt value.
func ParseIntExt(value string) IntExt {
	switch strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "."))) {
	case "INT", "I":
		return IntExtInterior
	case "EXT", "E":
		return IntExtExterior
	default:
		return IntExtUnknown
	}
}

// Scene is one numbered scene within a snapshot.
type Scene struct {
	SceneNumber   string
	Slugline      string
	IntExt        IntExt
	DayNight      string
	Synopsis      string
	ScriptContent string
	Pages         string
	CastRefs      []int
	// DayNumber is the shoot day the scene is assigned to within a schedule
	// snapshot; zero for script snapshots, which carry no day structure.
	DayNumber int
}

// CastSet returns the scene's cast refs as a set.
func (s Scene) CastSet() map[int]struct{} {
	set := make(map[int]struct{}, len(s.CastRefs))
	for _, ref := range s.CastRefs {
		set[ref] = struct{}{}
	}
	return set
}

// ShootDay groups the scenes scheduled for one shooting day.
type ShootDay struct {
	DayNumber int
	Date      string
	Location  string
	Notes     []string
	Scenes    []Scene
	// RawText is the source text this day was parsed from, kept so detail
	// extraction can run per day.
	RawText string
}

// CastEntry maps a schedule cast number to an actor name. The cast list is
// the source of truth for numeric-to-name resolution within a schedule.
type CastEntry struct {
	Number    int
	Name      string
	Character string
}

// Character is a project-owned identity, either confirmed by the user or
// synthesized from a schedule cast number.
type Character struct {
	ID           string
	Name         string
	Initials     string
	AvatarColour string
	ActorNumber  int
	Confirmed    bool
}

// PlaceholderID returns the deterministic id used for characters synthesized
// from a cast number. The format is stable so tests and re-runs agree.
func PlaceholderID(number int) string {
	return "cast-" + strconv.Itoa(number)
}

// ContinuityRecord holds captured continuity data keyed to a scene identity.
// Records survive scene renumbering and removal: the merge applier re-keys or
// soft-orphans them, never deletes.
type ContinuityRecord struct {
	SceneNumber string
	CharacterID string
	Data        string
	Orphaned    bool
}

// Snapshot is a complete normalized set of days, scenes, and cast entries for
// one artifact at one point in time.
type Snapshot struct {
	Days []ShootDay
	Cast []CastEntry
}

// Scenes flattens the snapshot's days into a single scene list with day
// assignments populated.
func (s Snapshot) Scenes() []Scene {
	var out []Scene
	for _, day := range s.Days {
		for _, scene := range day.Scenes {
			scene.DayNumber = day.DayNumber
			out = append(out, scene)
		}
	}
	return out
}

// SceneNumbers returns the set of scene numbers present in the snapshot.
func (s Snapshot) SceneNumbers() map[string]struct{} {
	set := make(map[string]struct{})
	for _, scene := range s.Scenes() {
		set[scene.SceneNumber] = struct{}{}
	}
	return set
}

// CastByNumber indexes the snapshot's cast list by cast number.
func (s Snapshot) CastByNumber() map[int]CastEntry {
	byNumber := make(map[int]CastEntry, len(s.Cast))
	for _, entry := range s.Cast {
		if _, ok := byNumber[entry.Number]; ok {
			continue
		}
		byNumber[entry.Number] = entry
	}
	return byNumber
}
