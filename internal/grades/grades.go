// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grades converts letter grades to grade points and computes the
// credit-weighted cumulative grade point average (CGPA) of a record set.
package grades

import (
	"github.com/pdiddy/report-card/pkg/types"
)

// gradePoints is the fixed letter-to-points table. Letters are matched
// exactly; anything else is worth zero points.
var gradePoints = map[string]float64{
	"O": 10,
	"E": 9,
	"A": 8,
	"B": 7,
	"C": 6,
	"D": 5,
}

// Letters lists the graded letters from best to worst.
var Letters = []string{"O", "E", "A", "B", "C", "D"}

// GradePoint returns the grade points earned by grade, or 0 for any
// letter outside the table.
func GradePoint(grade string) float64 {
	return gradePoints[grade]
}

// Summary is the aggregate of a record set.
type Summary struct {
	Subjects       int
	TotalCredits   float64
	WeightedPoints float64
	CGPA           float64

	// GradeCounts counts subjects per grade letter as received, including
	// letters outside the table.
	GradeCounts map[string]int
}

// Summarize accumulates grade points weighted by credits across records.
// An empty record set, or one whose credits sum to zero, has CGPA 0.
func Summarize(records []types.SubjectRecord) Summary {
	s := Summary{
		Subjects:    len(records),
		GradeCounts: make(map[string]int),
	}
	for _, r := range records {
		credits := r.Credits.Float()
		s.WeightedPoints += GradePoint(r.Grade) * credits
		s.TotalCredits += credits
		s.GradeCounts[r.Grade]++
	}
	if s.TotalCredits != 0 {
		s.CGPA = s.WeightedPoints / s.TotalCredits
	}
	return s
}

// CGPA returns Σ(gradePoint × credits) / Σ(credits) over records.
func CGPA(records []types.SubjectRecord) float64 {
	return Summarize(records).CGPA
}
