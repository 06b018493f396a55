// Package textutil provides the text and set similarity primitives used by
// fuzzy scene matching: whitespace-tolerant normalization, Levenshtein edit
// distance, and Jaccard overlap over integer sets.
package textutil
