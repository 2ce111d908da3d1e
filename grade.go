package framecmp

import "fmt"

// Grade is a coarse quality band derived from a metric score, handed to
// score callbacks so UIs can color-code without knowing each metric's
// numeric range.
type Grade int

const (
	// GradeExcellent indicates visually transparent quality.
	GradeExcellent Grade = iota
	// GradeGood indicates minor, hard-to-spot differences.
	GradeGood
	// GradeFair indicates clearly noticeable differences.
	GradeFair
	// GradePoor indicates severe degradation.
	GradePoor
)

// String returns the band name.
func (g Grade) String() string {
	switch g {
	case GradeExcellent:
		return "Excellent"
	case GradeGood:
		return "Good"
	case GradeFair:
		return "Fair"
	case GradePoor:
		return "Poor"
	default:
		return fmt.Sprintf("Grade(%d)", int(g))
	}
}

// gradeBounds are the Excellent/Good/Fair lower bounds per metric, in the
// metric's own units.
var gradeBounds = [metricCount][3]float64{
	MetricPSNR:   {45, 38, 30},
	MetricSSIM:   {0.99, 0.95, 0.88},
	MetricMSSSIM: {0.99, 0.95, 0.88},
	MetricVMAF:   {93, 80, 60},
}

// GradeScore bands a score for the given metric.
func GradeScore(m MetricType, score float64) Grade {
	b := gradeBounds[m]
	switch {
	case score >= b[0]:
		return GradeExcellent
	case score >= b[1]:
		return GradeGood
	case score >= b[2]:
		return GradeFair
	default:
		return GradePoor
	}
}
