package ast

import (
	"regexp"
	"strconv"
)

var citeRe = regexp.MustCompile(`\bfrom\s+(\d+(?:\s*(?:,|and)\s*\d+)*)`)
var numRe = regexp.MustCompile(`\d+`)

// CitedLabels extracts the assumption labels a justification discharges,
// e.g. "=> intro from 1" cites 1 and "or elim from 2 , 3" cites 2 and 3.
func CitedLabels(just string) []int {
	m := citeRe.FindStringSubmatch(just)
	if m == nil {
		return nil
	}
	var labels []int
	for _, d := range numRe.FindAllString(m[1], -1) {
		n, err := strconv.Atoi(d)
		if err != nil {
			continue
		}
		labels = append(labels, n)
	}
	return labels
}
