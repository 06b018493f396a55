package production

import (
	"sort"
	"strings"
)

// NormalizeSceneNumber trims whitespace and uppercases the letter suffix so
// "12a " and "12A" name the same scene.
func NormalizeSceneNumber(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// SceneNumberLess orders scene numbers the way a script orders them: the
// numeric prefix compares numerically, the remaining suffix lexicographically,
// so "2" < "2A" < "10". Non-numeric scene numbers sort after numeric ones.
func SceneNumberLess(a, b string) bool {
	aNum, aSuffix, aOK := splitSceneNumber(a)
	bNum, bSuffix, bOK := splitSceneNumber(b)
	switch {
	case aOK && !bOK:
		return true
	case !aOK && bOK:
		return false
	case !aOK && !bOK:
		return a < b
	}
	if aNum != bNum {
		return aNum < bNum
	}
	return aSuffix < bSuffix
}

// CompareSceneNumbers returns -1, 0, or 1 for use with slices.SortFunc.
func CompareSceneNumbers(a, b string) int {
	switch {
	case a == b:
		return 0
	case SceneNumberLess(a, b):
		return -1
	default:
		return 1
	}
}

// SortScenes orders scenes in place by scene number.
func SortScenes(scenes []Scene) {
	sort.SliceStable(scenes, func(i, j int) bool {
		return SceneNumberLess(scenes[i].SceneNumber, scenes[j].SceneNumber)
	})
}

func splitSceneNumber(value string) (int, string, bool) {
	value = NormalizeSceneNumber(value)
	i := 0
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, value, false
	}
	num := 0
	for _, c := range value[:i] {
		num = num*10 + int(c-'0')
	}
	return num, value[i:], true
}
