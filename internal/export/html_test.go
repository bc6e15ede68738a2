package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

func sampleResponse(t *testing.T) *survey.Response {
	t.Helper()
	c := formatCatalog(t)
	r := survey.New(c)
	r.Metadata = survey.Metadata{UserName: "Dana Example", UserEmail: "dana@example.com"}
	require.NoError(t, r.RecordAnswer("main", "free", survey.TextAnswer("migrating off spreadsheets")))
	require.NoError(t, r.RecordAnswer("main", "pick", survey.ChoiceAnswer("b")))
	require.NoError(t, r.RecordAnswer("main", "sso", survey.YesNoAnswer(true, "SSO needed")))
	require.NoError(t, r.RecordAnswer("main", "rank", survey.RankingAnswer([]string{"functionalFit", "tco5Year", "partnerDelivery"})))
	require.NoError(t, r.MarkSectionComplete(c, "main"))
	return r
}

func TestRenderHTMLDeterministic(t *testing.T) {
	c := formatCatalog(t)
	r := sampleResponse(t)
	first, err := RenderHTML(r, c)
	require.NoError(t, err)
	second, err := RenderHTML(r, c)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated renders must be byte-identical")
}

func TestRenderHTMLContent(t *testing.T) {
	c := formatCatalog(t)
	r := sampleResponse(t)
	doc, err := RenderHTML(r, c)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "Dana Example")
	assert.Contains(t, doc, "Beta")
	assert.Contains(t, doc, "Yes - SSO needed")
	assert.Contains(t, doc, "1. Functional fit, 2. 5-year TCO, 3. Partner delivery confidence")
	// q "many" was never answered.
	assert.Contains(t, doc, NotAnswered)
	assert.Contains(t, doc, "Completed")
}

func TestRenderHTMLEscapesUserText(t *testing.T) {
	c := formatCatalog(t)
	r := survey.New(c)
	require.NoError(t, r.RecordAnswer("main", "free", survey.TextAnswer(`<script>alert("x")</script>`)))
	doc, err := RenderHTML(r, c)
	require.NoError(t, err)
	assert.NotContains(t, doc, "<script>alert")
}

func TestArtifactFileNames(t *testing.T) {
	c := formatCatalog(t)
	r := survey.New(c)
	r.ID = "abc123"
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "response-abc123-2026-08-29.html", HTMLFileName(r, now))
	assert.Equal(t, "response-abc123-2026-08-29.json", JSONFileName(r, now))
}
