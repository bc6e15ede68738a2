package survey

import (
	"encoding/json"
	"fmt"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
)

// AnswerKind mirrors catalog.QuestionType so an Answer is self-describing on
// the wire and the formatter can dispatch exhaustively instead of sniffing
// value shapes.
type AnswerKind string

const (
	KindText        AnswerKind = AnswerKind(catalog.TypeText)
	KindChoice      AnswerKind = AnswerKind(catalog.TypeMultipleChoice)
	KindMultiSelect AnswerKind = AnswerKind(catalog.TypeMultipleSelect)
	KindYesNo       AnswerKind = AnswerKind(catalog.TypeYesNoFollowup)
	KindRanking     AnswerKind = AnswerKind(catalog.TypePriorityRank)
)

// YesNo is a boolean answer with an optional free-text follow-up.
type YesNo struct {
	Value    bool   `json:"value"`
	Followup string `json:"followup,omitempty"`
}

// Answer is a tagged union with one case per question type. "Unanswered" is
// the absence of the question id from a section's Answers map; an Answer with
// an empty Values slice is "answered with nothing selected" and is a distinct,
// representable state.
type Answer struct {
	Kind   AnswerKind
	Text   string   // KindText
	Choice string   // KindChoice: a single option value
	Values []string // KindMultiSelect, KindRanking: order is the respondent's ranking
	YesNo  YesNo    // KindYesNo
}

func TextAnswer(s string) Answer    { return Answer{Kind: KindText, Text: s} }
func ChoiceAnswer(v string) Answer  { return Answer{Kind: KindChoice, Choice: v} }
func YesNoAnswer(v bool, followup string) Answer {
	return Answer{Kind: KindYesNo, YesNo: YesNo{Value: v, Followup: followup}}
}

// MultiSelectAnswer keeps the given order; an empty (or nil) slice is a valid
// answer meaning nothing selected.
func MultiSelectAnswer(values []string) Answer {
	return Answer{Kind: KindMultiSelect, Values: append([]string(nil), values...)}
}

// RankingAnswer stores option values in ranked order, most important first.
func RankingAnswer(values []string) Answer {
	return Answer{Kind: KindRanking, Values: append([]string(nil), values...)}
}

type answerJSON struct {
	Type     AnswerKind `json:"type"`
	Value    *string    `json:"value,omitempty"`
	Values   []string   `json:"values"`
	Bool     *bool      `json:"bool,omitempty"`
	Followup string     `json:"followup,omitempty"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	out := answerJSON{Type: a.Kind}
	switch a.Kind {
	case KindText:
		out.Value = &a.Text
		out.Values = nil
	case KindChoice:
		out.Value = &a.Choice
		out.Values = nil
	case KindMultiSelect, KindRanking:
		// Emit [] rather than null so "answered with nothing selected"
		// survives a round trip.
		if a.Values == nil {
			out.Values = []string{}
		} else {
			out.Values = a.Values
		}
	case KindYesNo:
		out.Bool = &a.YesNo.Value
		out.Followup = a.YesNo.Followup
		out.Values = nil
	default:
		return nil, fmt.Errorf("answer has unknown kind %q", a.Kind)
	}
	if a.Kind == KindMultiSelect || a.Kind == KindRanking {
		return json.Marshal(out)
	}
	// Omit the values key entirely for scalar kinds.
	return json.Marshal(struct {
		Type     AnswerKind `json:"type"`
		Value    *string    `json:"value,omitempty"`
		Bool     *bool      `json:"bool,omitempty"`
		Followup string     `json:"followup,omitempty"`
	}{out.Type, out.Value, out.Bool, out.Followup})
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case KindText:
		if raw.Value == nil {
			return fmt.Errorf("text answer missing value")
		}
		*a = Answer{Kind: KindText, Text: *raw.Value}
	case KindChoice:
		if raw.Value == nil {
			return fmt.Errorf("multiple-choice answer missing value")
		}
		*a = Answer{Kind: KindChoice, Choice: *raw.Value}
	case KindMultiSelect, KindRanking:
		vals := raw.Values
		if vals == nil {
			vals = []string{}
		}
		*a = Answer{Kind: raw.Type, Values: vals}
	case KindYesNo:
		if raw.Bool == nil {
			return fmt.Errorf("yes-no answer missing bool")
		}
		*a = Answer{Kind: KindYesNo, YesNo: YesNo{Value: *raw.Bool, Followup: raw.Followup}}
	default:
		return fmt.Errorf("answer has unknown type %q", raw.Type)
	}
	return nil
}
