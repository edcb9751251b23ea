package score

// Grade is a letter band for a health score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor maps a score onto its letter band.
func GradeFor(total int) Grade {
	switch {
	case total >= 80:
		return GradeA
	case total >= 50:
		return GradeB
	case total >= 0:
		return GradeC
	case total >= -49:
		return GradeD
	default:
		return GradeF
	}
}
