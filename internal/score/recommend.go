package score

import "github.com/nao1215/privacygrade/internal/model"

// recommendationRule emits advice when a factor lost more than deficit points.
type recommendationRule struct {
	factor   model.Factor
	deficit  int
	priority model.Risk
	message  string
}

var recommendationRules = []recommendationRule{
	{
		factor:   model.FactorTrackers,
		deficit:  20,
		priority: model.RiskHigh,
		message:  "Use a content blocker or a privacy-focused browser to stop third-party trackers on this site.",
	},
	{
		factor:   model.FactorFingerprinting,
		deficit:  10,
		priority: model.RiskHigh,
		message:  "This site probes browser features used for fingerprinting. Enable fingerprinting protection in your browser.",
	},
	{
		factor:   model.FactorCookies,
		deficit:  10,
		priority: model.RiskMedium,
		message:  "Clear this site's cookies regularly and block third-party cookies.",
	},
	{
		factor:   model.FactorPermissions,
		deficit:  5,
		priority: model.RiskMedium,
		message:  "Review the device permissions requested by this site and deny those it does not need.",
	},
	{
		factor:   model.FactorForms,
		deficit:  5,
		priority: model.RiskLow,
		message:  "Avoid entering sensitive personal information unless you trust this site.",
	},
}

// recommendations returns the advice triggered by the category scores.
func recommendations(c model.CategoryScores) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if rule.factor.MaxPoints()-c.Points(rule.factor) > rule.deficit {
			out = append(out, model.Recommendation{
				Factor:   rule.factor,
				Priority: rule.priority,
				Message:  rule.message,
			})
		}
	}
	return out
}
