package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

const htmlDocument = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>net syslog report</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #999; padding: 2px 8px; text-align: left; }
tr.attention td { font-weight: bold; }
</style>
</head>
<body>
<h2>Syslog report for {{.Date}}</h2>
{{- range .Reports}}
<p>{{.Type}} {{.Name}} ({{.IP}}):</p>
{{- if .Unavailable}}
<p>{{.IP}} logfile for {{$.Date}} not found</p>
{{- else}}
<table>
<tr><th>numb</th><th>level</th><th>code</th><th>message</th></tr>
{{- range .Rows}}
<tr{{if .Attention}} class="attention"{{end}}><td>{{.Count}}</td><td>{{.Level}}</td><td>{{.Code}}</td><td>{{trim .Message}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- end}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{
		"trim": func(s string) string { return strings.TrimRight(s, "\n") },
	}).
	Parse(htmlDocument))

// RenderHTML produces the mail body for one run.
func RenderHTML(date time.Time, reports []DeviceReport) (string, error) {
	data := struct {
		Date    string
		Reports []DeviceReport
	}{
		Date:    date.Format("2006-01-02"),
		Reports: reports,
	}

	var b strings.Builder
	if err := htmlTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return b.String(), nil
}

// RenderText produces the plain-text variant used by chat sinks and -stdout
// runs. Attention rows carry a leading "!" marker.
func RenderText(date time.Time, reports []DeviceReport) string {
	label := date.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "Syslog report for %s\n\n", label)

	for _, rep := range reports {
		fmt.Fprintf(&b, "%s %s (%s):\n", rep.Type, rep.Name, rep.IP)
		if rep.Unavailable {
			fmt.Fprintf(&b, "  logfile for %s not found\n\n", label)
			continue
		}
		if len(rep.Rows) == 0 {
			b.WriteString("  no events\n\n")
			continue
		}
		for _, row := range rep.Rows {
			marker := " "
			if row.Attention {
				marker = "!"
			}
			fmt.Fprintf(&b, "%s %4d  %-14s %-22s %s\n",
				marker, row.Count, row.Level, row.Code, strings.TrimRight(row.Message, "\n"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
