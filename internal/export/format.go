// Package export turns a response into downloadable artifacts: a
// self-contained HTML summary and a lossless JSON document. Both renders are
// pure functions of the response and the catalog.
package export

import (
	"fmt"
	"strings"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// NotAnswered is the literal rendered for questions with no stored answer.
const NotAnswered = "Not answered"

// FormatAnswer renders one answer for humans, resolving option values to
// their catalog labels. The switch is exhaustive over the answer kinds; an
// answer of an unknown kind renders its raw content rather than failing.
//
// An empty multiple-select or ranking renders as the empty string: the
// respondent answered and selected nothing, which is distinct from not
// answering at all.
func FormatAnswer(c *catalog.Catalog, questionID string, a survey.Answer) string {
	switch a.Kind {
	case survey.KindText:
		return a.Text
	case survey.KindChoice:
		return c.OptionLabel(questionID, a.Choice)
	case survey.KindMultiSelect:
		labels := make([]string, len(a.Values))
		for i, v := range a.Values {
			labels[i] = c.OptionLabel(questionID, v)
		}
		return strings.Join(labels, ", ")
	case survey.KindYesNo:
		if a.YesNo.Value {
			if a.YesNo.Followup != "" {
				return "Yes - " + a.YesNo.Followup
			}
			return "Yes"
		}
		if a.YesNo.Followup != "" {
			return "No - " + a.YesNo.Followup
		}
		return "No"
	case survey.KindRanking:
		parts := make([]string, len(a.Values))
		for i, v := range a.Values {
			parts[i] = fmt.Sprintf("%d. %s", i+1, c.OptionLabel(questionID, v))
		}
		return strings.Join(parts, ", ")
	default:
		return a.Text
	}
}
