// Package castsync reconciles a schedule's cast list against the project's
// character roster. Schedule cast members with no matching character get a
// deterministic placeholder so re-running the resolution never mints
// duplicate identities.
package castsync

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"callsheet/internal/production"
)

// Result reports what a resolution pass did.
type Result struct {
	Characters []production.Character
	CreatedIDs []string
	Matched    int
}

var foldCaser = cases.Fold()

// Resolve matches schedule cast entries to existing characters by
// case-folded name equality, attaching or updating the actor number on a
// match, and synthesizes placeholder characters for the rest. A cast number
// alone never claims a confirmed character: when a number is reassigned to a
// new name, the old character keeps its identity and the new name gets its
// own placeholder. Existing characters are never removed or re-identified;
// the output is the full roster in presentation order. Calling Resolve again
// with its own output is a no-op.
func Resolve(entries []production.CastEntry, existing []production.Character, palette []string) Result {
	roster := make([]production.Character, len(existing))
	copy(roster, existing)

	byNumber := make(map[int]int, len(roster))
	byName := make(map[string]int, len(roster))
	for i, ch := range roster {
		if ch.ActorNumber > 0 {
			if _, ok := byNumber[ch.ActorNumber]; !ok {
				byNumber[ch.ActorNumber] = i
			}
		}
		key := foldCaser.String(strings.TrimSpace(ch.Name))
		if key != "" {
			if _, ok := byName[key]; !ok {
				byName[key] = i
			}
		}
	}

	result := Result{}
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = strings.TrimSpace(entry.Character)
		}

		if key := foldCaser.String(name); key != "" {
			if idx, ok := byName[key]; ok {
				if roster[idx].ActorNumber != entry.Number {
					roster[idx].ActorNumber = entry.Number
					if _, taken := byNumber[entry.Number]; !taken {
						byNumber[entry.Number] = idx
					}
				}
				result.Matched++
				continue
			}
		}
		// A placeholder is identified by its number, not its name: the same
		// slot re-resolves in place, and a renamed slot is the same
		// unconfirmed identity with a new label.
		if idx, ok := byNumber[entry.Number]; ok &&
			!roster[idx].Confirmed && roster[idx].ID == production.PlaceholderID(entry.Number) {
			if name != "" {
				roster[idx].Name = name
				roster[idx].Initials = Initials(name)
				byName[foldCaser.String(name)] = idx
			}
			result.Matched++
			continue
		}

		ch := production.Character{
			ID:           production.PlaceholderID(entry.Number),
			Name:         name,
			Initials:     Initials(name),
			AvatarColour: ColourFor(entry.Number, palette),
			ActorNumber:  entry.Number,
			Confirmed:    false,
		}
		roster = append(roster, ch)
		byNumber[entry.Number] = len(roster) - 1
		if key := foldCaser.String(name); key != "" {
			byName[key] = len(roster) - 1
		}
		result.CreatedIDs = append(result.CreatedIDs, ch.ID)
	}

	sortRoster(roster)
	result.Characters = roster
	return result
}

// Initials derives display initials from a name: first letter of the first
// and last words, or the first two letters of a single-word name.
func Initials(name string) string {
	words := strings.Fields(name)
	switch len(words) {
	case 0:
		return "?"
	case 1:
		runes := []rune(words[0])
		if len(runes) == 1 {
			return strings.ToUpper(string(runes[0]))
		}
		return strings.ToUpper(string(runes[0]) + string(runes[1]))
	default:
		first := []rune(words[0])[0]
		last := []rune(words[len(words)-1])[0]
		return strings.ToUpper(string(unicode.ToUpper(first)) + string(unicode.ToUpper(last)))
	}
}

// ColourFor picks a palette colour from the actor number. Stable across
// runs so a character keeps its avatar colour through re-resolution.
func ColourFor(number int, palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	if number < 0 {
		number = -number
	}
	return palette[number%len(palette)]
}

// sortRoster orders numbered characters ascending, then unnumbered ones
// alphabetically, matching the call-sheet convention.
func sortRoster(roster []production.Character) {
	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i], roster[j]
		switch {
		case a.ActorNumber > 0 && b.ActorNumber > 0:
			if a.ActorNumber != b.ActorNumber {
				return a.ActorNumber < b.ActorNumber
			}
			return a.Name < b.Name
		case a.ActorNumber > 0:
			return true
		case b.ActorNumber > 0:
			return false
		default:
			return a.Name < b.Name
		}
	})
}
