package match

import "math"

type assignment struct {
	target int
	score  float64
}

// assignFuzzy computes the maximum-weight pairing between n old items and m
// new items using the Hungarian algorithm on cost = 1 - score. Optimal
// assignment avoids greedy mis-pairings when several candidates score close
// together. Pairs scoring below threshold are rejected after assignment.
func assignFuzzy(n, m int, threshold float64, score func(i, j int) float64) []assignment {
	result := make([]assignment, n)
	for i := range result {
		result[i] = assignment{target: -1}
	}
	if n == 0 || m == 0 {
		return result
	}

	size := max(n, m)

	// Padded rows/cols use a high cost so they are only chosen when no real
	// pairing remains.
	const padCost = 2.0
	cost := make([][]float64, size)
	scores := make([][]float64, size)
	for i := 0; i < size; i++ {
		cost[i] = make([]float64, size)
		scores[i] = make([]float64, size)
		for j := 0; j < size; j++ {
			cost[i][j] = padCost
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			s := score(i, j)
			scores[i][j] = s
			if s <= 0 {
				continue
			}
			c := 1.0 - s
			if c < 0 {
				c = 0
			}
			cost[i][j] = c
		}
	}

	assign := hungarian(cost)
	for i, j := range assign {
		if i >= n || j < 0 || j >= m {
			continue
		}
		if scores[i][j] < threshold {
			continue
		}
		result[i] = assignment{target: j, score: scores[i][j]}
	}
	return result
}

// hungarian solves the assignment problem for a square cost matrix
// (minimization). Returns assignment[i] = column chosen for row i, or -1.
func hungarian(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	if len(cost[0]) != n {
		return nil
	}

	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := 0; j <= n; j++ {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	for j := 1; j <= n; j++ {
		if p[j] > 0 && p[j]-1 < n {
			assign[p[j]-1] = j - 1
		}
	}
	return assign
}
