package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

const timeDisplay = "2 Jan 2006 15:04 MST"

var htmlTmpl = template.Must(template.New("response").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ERP Discovery Questionnaire - {{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 840px; margin: 2rem auto; color: #222; }
h1 { border-bottom: 3px solid #5b2d86; padding-bottom: .4rem; }
h2 { color: #5b2d86; margin-top: 2rem; }
.meta { color: #555; font-size: .9rem; }
.badge { display: inline-block; background: #e6f4ea; color: #1e7e34; font-size: .75rem; padding: .15rem .5rem; border-radius: .5rem; }
.question { margin: 1rem 0; padding: .75rem 1rem; background: #f7f7f9; border-radius: .5rem; }
.label { font-weight: bold; }
.required { color: #d9534f; }
.answer { margin-top: .35rem; }
.unanswered { color: #888; font-style: italic; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>ERP Discovery Questionnaire</h1>
<div class="meta">
<p>Respondent: {{.Title}}</p>
<p>Started: {{.StartedAt}}</p>
<p>Last updated: {{.LastUpdated}}</p>
{{if .CompletedAt}}<p>Completed: {{.CompletedAt}}</p>{{end}}
<p>Progress: {{.Percent}}% ({{.Completed}} of {{.Total}} sections)</p>
</div>
{{range .Sections}}
<h2>{{.Name}}{{if .Completed}} <span class="badge">Completed</span>{{end}}</h2>
{{range .Questions}}
<div class="question">
<div class="label">{{.Label}}{{if .Required}} <span class="required">*</span>{{end}}</div>
<div class="answer{{if not .Answered}} unanswered{{end}}">{{.Answer}}</div>
</div>
{{end}}
{{end}}
</body>
</html>
`))

type htmlQuestion struct {
	Label    string
	Required bool
	Answered bool
	Answer   string
}

type htmlSection struct {
	Name      string
	Completed bool
	Questions []htmlQuestion
}

type htmlDoc struct {
	Title       string
	StartedAt   string
	LastUpdated string
	CompletedAt string
	Percent     int
	Completed   int
	Total       int
	Sections    []htmlSection
}

// RenderHTML produces the self-contained printable summary. Sections and
// questions follow catalog order, so repeated renders of the same inputs are
// byte-identical.
func RenderHTML(r *survey.Response, c *catalog.Catalog) (string, error) {
	doc := htmlDoc{
		Title:       displayName(r),
		StartedAt:   r.StartedAt.UTC().Format(timeDisplay),
		LastUpdated: r.LastUpdated.UTC().Format(timeDisplay),
		Percent:     r.Progress.PercentComplete,
		Completed:   r.Progress.CompletedSections,
		Total:       r.Progress.TotalSections,
	}
	if r.CompletedAt != nil {
		doc.CompletedAt = r.CompletedAt.UTC().Format(timeDisplay)
	}
	for _, sec := range c.Sections {
		hs := htmlSection{Name: sec.Name}
		state := r.Sections[sec.ID]
		if state != nil {
			hs.Completed = state.Completed
		}
		for _, q := range sec.Questions {
			hq := htmlQuestion{Label: q.Label, Required: q.Required, Answer: NotAnswered}
			if state != nil {
				if a, ok := state.Answers[q.ID]; ok {
					hq.Answered = true
					hq.Answer = FormatAnswer(c, q.ID, a)
				}
			}
			hs.Questions = append(hs.Questions, hq)
		}
		doc.Sections = append(doc.Sections, hs)
	}
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return b.String(), nil
}

func displayName(r *survey.Response) string {
	if r.Metadata.UserName != "" {
		return r.Metadata.UserName
	}
	if r.Metadata.UserEmail != "" {
		return r.Metadata.UserEmail
	}
	return "Response " + r.ID
}

// HTMLFileName is the artifact name for an HTML export.
func HTMLFileName(r *survey.Response, now time.Time) string {
	return fmt.Sprintf("response-%s-%s.html", r.ID, now.UTC().Format("2006-01-02"))
}

// JSONFileName is the artifact name for a JSON export.
func JSONFileName(r *survey.Response, now time.Time) string {
	return fmt.Sprintf("response-%s-%s.json", r.ID, now.UTC().Format("2006-01-02"))
}
