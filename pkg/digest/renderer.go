package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer interface {
	Render(d Digest) (string, error)
}

type HTMLRendererImpl struct {
	templates *template.Template
}

type levelStyle struct {
	Background string
	Badge      string
	Label      string
}

var levelStyles = map[overtime.AlertLevel]levelStyle{
	overtime.Danger:  {Background: "#fef2f2", Badge: "#dc2626", Label: "🚨 違反リスク"},
	overtime.Warning: {Background: "#fffbeb", Badge: "#f59e0b", Label: "⚠️ 要注意"},
	overtime.Caution: {Background: "#eff6ff", Badge: "#3b82f6", Label: "📋 経過観察"},
}

var bandColors = map[analysis.Band]string{
	analysis.BandOver80: "#dc2626",
	analysis.BandOver45: "#f59e0b",
	analysis.BandOver30: "#3b82f6",
	analysis.BandNormal: "#10b981",
}

var bandIcons = map[analysis.Band]string{
	analysis.BandOver80: "🔴",
	analysis.BandOver45: "🟡",
	analysis.BandOver30: "🔵",
	analysis.BandNormal: "🟢",
}

var templateFuncs = template.FuncMap{
	"hours": func(h float64) string {
		return fmt.Sprintf("%.1f", analysis.Round1(h))
	},
	"days": func(d float64) string {
		return fmt.Sprintf("%g", d)
	},
	"percent": func(p float64) string {
		return fmt.Sprintf("%.0f", p)
	},
	"levelStyle": func(l overtime.AlertLevel) levelStyle {
		return levelStyles[l]
	},
	"bandColor": func(b analysis.Band) string {
		return bandColors[b]
	},
	"bandIcon": func(b analysis.Band) string {
		return bandIcons[b]
	},
	"usedColor": func(used float64) string {
		if used < 3 {
			return "#dc2626"
		}
		return "#f59e0b"
	},
	"expired": func(s leave.CompLeaveStatus) bool {
		return s == leave.CompLeaveExpired
	},
	"odd": func(i int) bool {
		return i%2 == 1
	},
	"countColor": func(n int, alert string) string {
		if n > 0 {
			return alert
		}
		return "#10b981"
	},
}

func NewHTMLRenderer() (*HTMLRendererImpl, error) {
	tmpl, err := template.New("digest").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest templates: %w", err)
	}
	return &HTMLRendererImpl{templates: tmpl}, nil
}

func (r *HTMLRendererImpl) Render(d Digest) (string, error) {
	var body bytes.Buffer
	if err := r.templates.ExecuteTemplate(&body, "digest.html", d); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}
