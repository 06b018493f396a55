// Package match pairs entities between an old and a new snapshot of the same
// artifact. Exact primary-key matches (scene number, day number) pair with
// confidence 1.0; the remainder are paired by a weighted similarity score
// (cast overlap, heading text, INT/EXT + day/night agreement) resolved with
// optimal assignment so near-tied candidates cannot be greedily mis-paired.
//
// Candidates whose best score falls below the policy threshold stay unpaired
// and surface as removed/added rather than being guessed at — silently
// merging two unrelated scenes would corrupt continuity records.
package match
