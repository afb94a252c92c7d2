package model

// Grade is the letter bucket of a 0-100 privacy score.
type Grade string

// Grade values from best to worst.
const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// gradeInfo holds the presentation attributes of a grade.
type gradeInfo struct {
	minScore  int
	color     string
	riskLevel string
}

// gradeTable is ordered from best to worst; lower bounds are inclusive.
var gradeTable = []struct {
	grade Grade
	info  gradeInfo
}{
	{GradeAPlus, gradeInfo{minScore: 90, color: "#4CAF50", riskLevel: "minimal"}},
	{GradeA, gradeInfo{minScore: 80, color: "#8BC34A", riskLevel: "low"}},
	{GradeB, gradeInfo{minScore: 70, color: "#FFC107", riskLevel: "moderate"}},
	{GradeC, gradeInfo{minScore: 60, color: "#FF9800", riskLevel: "concerning"}},
	{GradeD, gradeInfo{minScore: 50, color: "#FF5722", riskLevel: "high"}},
	{GradeF, gradeInfo{minScore: 0, color: "#F44336", riskLevel: "severe"}},
}

// Grades returns every grade from best to worst.
func Grades() []Grade {
	grades := make([]Grade, len(gradeTable))
	for i, g := range gradeTable {
		grades[i] = g.grade
	}
	return grades
}

// GradeFor returns the grade for a clamped score.
func GradeFor(score int) Grade {
	for _, g := range gradeTable {
		if score >= g.info.minScore {
			return g.grade
		}
	}
	return GradeF
}

func (g Grade) info() gradeInfo {
	for _, entry := range gradeTable {
		if entry.grade == g {
			return entry.info
		}
	}
	return gradeInfo{color: "#9E9E9E", riskLevel: "unknown"}
}

// Color returns the badge color of the grade as a hex string.
func (g Grade) Color() string {
	return g.info().color
}

// RiskLevel returns the word used in summaries for this grade.
func (g Grade) RiskLevel() string {
	return g.info().riskLevel
}

// String returns the grade letter.
func (g Grade) String() string {
	return string(g)
}
