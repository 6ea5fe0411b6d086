// Package export renders persisted ideas into Markdown briefs with YAML
// frontmatter, the hand-off format for downstream content tooling.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"ideascout/internal/model"
)

// briefData is the template payload for one idea.
type briefData struct {
	Title     string
	Slug      string
	Datetime  string
	BrandID   string
	Source    string
	SourceURL string
	Score     string
	Priority  string
	Status    string
	Keywords  []string
	Brief     string
	Scores    model.SubScores
	Insights  []string
}

//go:embed brief.tmpl
var briefTpl string

var compiled = template.Must(template.New("brief").Parse(briefTpl))

// Render produces the Markdown brief for one idea.
func Render(idea model.Idea) (string, error) {
	d := briefData{
		Title:     idea.Title,
		Slug:      Slug(idea.Title),
		Datetime:  idea.DiscoveredAt.UTC().Format("2006-01-02 15:04"),
		BrandID:   idea.BrandID,
		Source:    idea.Source,
		SourceURL: idea.SourceURL,
		Score:     fmt.Sprintf("%.2f", idea.OverallScore),
		Priority:  string(idea.Priority),
		Status:    string(idea.Status),
		Keywords:  idea.Keywords,
		Brief:     idea.Brief,
		Scores:    idea.Scores,
	}
	if raw, ok := idea.Research["insights"]; ok {
		switch v := raw.(type) {
		case []string:
			d.Insights = v
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					d.Insights = append(d.Insights, s)
				}
			}
		}
	}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteBrief renders the idea and writes it under dir, returning the path.
// Filenames are slug-based so re-exporting an idea overwrites its brief.
func WriteBrief(dir string, idea model.Idea) (string, error) {
	out, err := Render(idea)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := Slug(idea.Title)
	if name == "" {
		name = idea.ID
	}
	path := filepath.Join(dir, name+".md")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases a title into a filesystem and URL safe identifier.
func Slug(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
