package export

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

const htmlReport = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Rulebase Advisory Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #1a1a1a; }
h1 { font-size: 1.5em; }
h2 { font-size: 1.15em; margin-top: 2em; }
p.meta { color: #555; }
table { border-collapse: collapse; width: 100%; font-size: 0.85em; }
th { background: #305496; color: #fff; text-align: left; padding: 6px 8px; }
td { border-bottom: 1px solid #ddd; padding: 5px 8px; vertical-align: top; }
tr:nth-child(even) td { background: #d9e1f2; }
</style>
</head>
<body>
<h1>Rulebase Advisory Report</h1>
<p class="meta">Source: {{.Source}} &middot; Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
{{range .Tables}}
<h2>{{.Name}}</h2>
{{if .Rows}}
<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>
{{else}}
<p>No findings.</p>
{{end}}
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

// ExportHTML writes a single-page report and returns the path written.
func ExportHTML(e *Exporter, dir string) (string, error) {
	path := filepath.Join(dir, "advisor_report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := htmlTemplate.Execute(f, e); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return path, f.Close()
}
