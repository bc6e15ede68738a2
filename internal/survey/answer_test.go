package survey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in Answer) Answer {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out Answer
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestAnswerRoundTrip(t *testing.T) {
	cases := map[string]Answer{
		"text":         TextAnswer("free text"),
		"empty text":   TextAnswer(""),
		"choice":       ChoiceAnswer("over-1000"),
		"multi":        MultiSelectAnswer([]string{"crm", "bi"}),
		"ranking":      RankingAnswer([]string{"tco5Year", "functionalFit"}),
		"yes followup": YesNoAnswer(true, "SSO needed"),
		"no":           YesNoAnswer(false, ""),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, in, roundTrip(t, in))
		})
	}
}

func TestEmptyMultiSelectSurvivesRoundTrip(t *testing.T) {
	// "Answered with nothing selected" must stay representable; it is not
	// the same state as an absent answer.
	out := roundTrip(t, MultiSelectAnswer(nil))
	assert.Equal(t, KindMultiSelect, out.Kind)
	require.NotNil(t, out.Values)
	assert.Len(t, out.Values, 0)
}

func TestRankingPreservesOrder(t *testing.T) {
	in := RankingAnswer([]string{"c", "a", "b"})
	assert.Equal(t, []string{"c", "a", "b"}, roundTrip(t, in).Values)
}

func TestAnswerWireShape(t *testing.T) {
	data, err := json.Marshal(YesNoAnswer(true, "SSO needed"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"yes-no-followup","bool":true,"followup":"SSO needed"}`, string(data))

	data, err = json.Marshal(MultiSelectAnswer([]string{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"multiple-select","values":[]}`, string(data))
}

func TestAnswerUnmarshalRejectsUnknownType(t *testing.T) {
	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`{"type":"slider","value":"3"}`), &a))
}

func TestConstructorsCopyInput(t *testing.T) {
	src := []string{"a", "b"}
	a := MultiSelectAnswer(src)
	src[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, a.Values)
}
