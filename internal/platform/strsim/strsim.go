// Package strsim provides the normalized edit-similarity ratio used by the
// matching pipeline.
package strsim

import "github.com/agnivade/levenshtein"

// Ratio returns 1 - distance/maxlen in [0,1]. Two empty strings score 1.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
