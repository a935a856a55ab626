package img2ascii

import (
	"math"
	"slices"
)

// Selection policy. The distance thresholds are empirical.
const (
	exactMaxCandidates = 20
	exactMaxSelected   = 10

	extremeMinDistance  = 0.3
	varianceMinDistance = 0.4
)

// SelectDiverse reduces candidates to at most k entries that are visually
// distinct, maximizing the minimum pairwise Euclidean distance between the
// chosen vectors. The result is in selection order.
//
// For up to 20 candidates and k up to 10 every k-subset is enumerated and
// the best one is exact; the first subset in enumeration order wins ties.
// Larger inputs use a three-phase greedy heuristic that is not guaranteed
// to be optimal: per-dimension extremes, then high-variance vectors, then
// farthest-point fill.
func SelectDiverse(candidates []CharacterVector, k int) []CharacterVector {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k >= len(candidates) {
		return cloneVectors(candidates, nil)
	}

	var picked []int
	if len(candidates) <= exactMaxCandidates && k <= exactMaxSelected {
		picked = selectExact(candidates, k)
	} else {
		picked = selectHeuristic(candidates, k)
	}
	return cloneVectors(candidates, picked)
}

// cloneVectors copies candidates at the given indexes, or all of them
// when indexes is nil.
func cloneVectors(candidates []CharacterVector, indexes []int) []CharacterVector {
	if indexes == nil {
		out := make([]CharacterVector, len(candidates))
		for i, cv := range candidates {
			out[i] = cv.Clone()
		}
		return out
	}
	out := make([]CharacterVector, len(indexes))
	for i, idx := range indexes {
		out[i] = candidates[idx].Clone()
	}
	return out
}

// distanceMatrix precomputes all pairwise distances.
func distanceMatrix(candidates []CharacterVector) [][]float64 {
	n := len(candidates)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(candidates[i].Vector, candidates[j].Vector)
			dist[i][j], dist[j][i] = d, d
		}
	}
	return dist
}

// selectExact enumerates every k-combination of indexes in increasing
// lexicographic order and keeps the one with the largest minimum pairwise
// distance.
func selectExact(candidates []CharacterVector, k int) []int {
	n := len(candidates)
	dist := distanceMatrix(candidates)

	var best []int
	bestScore := math.Inf(-1)
	combo := make([]int, 0, k)

	var backtrack func(start int)
	backtrack = func(start int) {
		if len(combo) == k {
			score := math.Inf(1)
			for i := 0; i < k; i++ {
				for j := i + 1; j < k; j++ {
					score = math.Min(score, dist[combo[i]][combo[j]])
				}
			}
			if score > bestScore {
				bestScore = score
				best = slices.Clone(combo)
			}
			return
		}
		for i := start; i <= n-(k-len(combo)); i++ {
			combo = append(combo, i)
			backtrack(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	backtrack(0)

	return best
}

// selection tracks the greedy state shared by the heuristic phases.
type selection struct {
	candidates []CharacterVector
	picked     []int
	taken      []bool
}

// minDistance returns the distance from candidate i to the closest
// selected vector, or +Inf when nothing is selected yet.
func (s *selection) minDistance(i int) float64 {
	best := math.Inf(1)
	for _, j := range s.picked {
		best = math.Min(best, euclidean(s.candidates[i].Vector, s.candidates[j].Vector))
	}
	return best
}

func (s *selection) add(i int) {
	s.picked = append(s.picked, i)
	s.taken[i] = true
}

// selectHeuristic runs the three greedy phases, stopping as soon as k
// vectors are selected.
func selectHeuristic(candidates []CharacterVector, k int) []int {
	s := &selection{
		candidates: candidates,
		taken:      make([]bool, len(candidates)),
	}
	dims := len(candidates[0].Vector)

	// Phase 1: per-dimension minimum and maximum.
	for d := 0; d < dims && len(s.picked) < k; d++ {
		lo, hi := -1, -1
		for i, cv := range candidates {
			if s.taken[i] {
				continue
			}
			if lo < 0 || cv.Vector[d] < candidates[lo].Vector[d] {
				lo = i
			}
			if hi < 0 || cv.Vector[d] > candidates[hi].Vector[d] {
				hi = i
			}
		}
		for _, i := range []int{lo, hi} {
			if i < 0 || s.taken[i] || len(s.picked) >= k {
				continue
			}
			if len(s.picked) == 0 || s.minDistance(i) >= extremeMinDistance {
				s.add(i)
			}
		}
	}

	// Phase 2: high-variance vectors that keep their distance.
	if len(s.picked) < k {
		order := make([]int, 0, len(candidates))
		variance := make([]float64, len(candidates))
		for i, cv := range candidates {
			if !s.taken[i] {
				order = append(order, i)
				variance[i] = populationVariance(cv.Vector)
			}
		}
		slices.SortStableFunc(order, func(a, b int) int {
			switch {
			case variance[a] > variance[b]:
				return -1
			case variance[a] < variance[b]:
				return 1
			}
			return 0
		})
		for _, i := range order {
			if len(s.picked) >= k {
				break
			}
			if s.minDistance(i) >= varianceMinDistance {
				s.add(i)
			}
		}
	}

	// Phase 3: farthest-point fill.
	for len(s.picked) < k {
		next, nextDist := -1, math.Inf(-1)
		for i := range candidates {
			if s.taken[i] {
				continue
			}
			if d := s.minDistance(i); d > nextDist {
				next, nextDist = i, d
			}
		}
		if next < 0 {
			break
		}
		s.add(next)
	}

	return s.picked
}

// populationVariance returns the variance of v's components.
func populationVariance(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))

	var sum float64
	for _, x := range v {
		sum += (x - mean) * (x - mean)
	}
	return sum / float64(len(v))
}

// MinPairwiseDistance returns the smallest Euclidean distance between any
// two vectors, or +Inf for fewer than two.
func MinPairwiseDistance(vectors []CharacterVector) float64 {
	best := math.Inf(1)
	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			best = math.Min(best, euclidean(vectors[i].Vector, vectors[j].Vector))
		}
	}
	return best
}
