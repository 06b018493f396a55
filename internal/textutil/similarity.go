package textutil

import (
	"strings"
	"unicode"
)

// NormalizeHeading collapses whitespace and lowercases heading text so
// cosmetic edits do not register as differences.
func NormalizeHeading(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// LevenshteinDistance computes the edit distance between two strings in runes.
func LevenshteinDistance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// StringSimilarity returns 1 - normalized edit distance over the longer of
// the two normalized strings, in [0, 1]. Two empty strings are identical.
func StringSimilarity(a, b string) float64 {
	a = NormalizeHeading(a)
	b = NormalizeHeading(b)
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	distance := LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// JaccardInts returns |a ∩ b| / |a ∪ b| for two integer slices treated as
// sets. Two empty sets are considered identical.
func JaccardInts(a, b []int) float64 {
	setA := make(map[int]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[int]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}
