package repair

import "github.com/dkorsak/veracity/internal/model"

// Normalize enforces the report invariants a model cannot be trusted to
// satisfy on its own: the topic count matches the category list, and the
// three non-overall percentages sum to exactly 100.
func Normalize(report *model.AnalysisReport) {
	report.Topics.Count = len(report.Topics.Categories)
	FixPercentages(&report.Percentages)
}

// FixPercentages forces falseInformation + verifiedInformation +
// misleadingInformation to sum to exactly 100 by adjusting the single
// largest of the three by the signed difference. An all-zero breakdown is
// left alone: there is nothing meaningful to redistribute.
func FixPercentages(p *model.Percentages) {
	sum := p.FalseInformation + p.VerifiedInformation + p.MisleadingInformation
	if sum == 100 || sum == 0 {
		return
	}

	largest := &p.FalseInformation
	if p.VerifiedInformation > *largest {
		largest = &p.VerifiedInformation
	}
	if p.MisleadingInformation > *largest {
		largest = &p.MisleadingInformation
	}
	*largest += 100 - sum
}
