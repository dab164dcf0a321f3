package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render and Write
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Render serializes records in the requested format. An empty format means json.
func Render(records []Record, format string) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}

	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	case FormatMarkdown, "md":
		return []byte(markdownReport(records)), nil
	case FormatHTML:
		return htmlReport(records)
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

// Write renders records and writes them to path in a single write
func Write(records []Record, path, format string) error {
	data, err := Render(records, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// row is the flattened view of a record shared by the markdown, html and table output
type row struct {
	Index   int
	Mode    string
	Payload string
	Raw     string
	Clean   string
	Verdict string
	Detail  string
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func phaseCell(p PhaseReport) string {
	if p.Error != "" {
		return p.Error
	}
	return yesNo(p.Alerted)
}

func rowOf(i int, r Record) row {
	out := row{
		Index:   i + 1,
		Mode:    r.RecordMode().String(),
		Payload: r.RecordPayload(),
		Verdict: r.Verdict(),
	}

	switch rec := r.(type) {
	case *InjectionRecord:
		out.Raw = phaseCell(rec.RawResult)
		out.Clean = phaseCell(rec.CleanResult)
		if len(rec.CleanResult.Residual) > 0 {
			out.Detail = "residual: " + strings.Join(rec.CleanResult.Residual, ", ")
		}
	case *ReflectedRecord:
		if rec.Status == 0 {
			out.Raw = NoResponse
		} else {
			out.Raw = fmt.Sprintf("%d", rec.Status)
		}
		if rec.SanitizeResult.BodyContains {
			out.Raw += " reflected"
		} else if rec.SanitizeResult.Reflection != "" {
			out.Raw += " " + rec.SanitizeResult.Reflection
		}
		switch {
		case rec.SanitizeResult.Error != "":
			out.Clean = rec.SanitizeResult.Error
		case rec.SanitizeResult.Clean != nil:
			out.Clean = *rec.SanitizeResult.Clean
		}
		if len(rec.SanitizeResult.Residual) > 0 {
			out.Detail = "residual: " + strings.Join(rec.SanitizeResult.Residual, ", ")
		}
	case *ErrorRecord:
		out.Raw = "-"
		out.Clean = "-"
		out.Detail = rec.Error
	}
	return out
}

func rowsOf(records []Record) []row {
	rows := make([]row, 0, len(records))
	for i, r := range records {
		rows = append(rows, rowOf(i, r))
	}
	return rows
}

func markdownReport(records []Record) string {
	s := Summarize(records)

	var b strings.Builder
	b.WriteString("# sinkprobe Report\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n", time.Now().Format(time.RFC1123))
	fmt.Fprintf(&b, "**Payloads Tested:** %d\n", s.Total)
	fmt.Fprintf(&b, "**Executed (raw):** %d\n", s.RawExecuted)
	fmt.Fprintf(&b, "**Executed (sanitized):** %d\n", s.CleanExecuted)
	fmt.Fprintf(&b, "**Reflected:** %d\n", s.Reflected)
	fmt.Fprintf(&b, "**Errors:** %d\n\n", s.Errors)

	b.WriteString("## Results\n\n")
	if len(records) == 0 {
		b.WriteString("_No payloads were processed._\n")
		return b.String()
	}

	for _, r := range rowsOf(records) {
		fmt.Fprintf(&b, "### %d. %s (%s)\n", r.Index, r.Verdict, r.Mode)
		fmt.Fprintf(&b, "- **Raw:** `%s`\n", r.Raw)
		fmt.Fprintf(&b, "- **Clean:** `%s`\n", r.Clean)
		if r.Detail != "" {
			fmt.Fprintf(&b, "- **Detail:** `%s`\n", r.Detail)
		}
		fmt.Fprintf(&b, "- **Payload:**\n```\n%s\n```\n\n", r.Payload)
	}
	return b.String()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>sinkprobe Report</title>
    <style>
        :root {
            --bg-primary: #0f0f1a;
            --bg-card: #16213e;
            --accent-primary: #00d4ff;
            --text-primary: #ffffff;
            --text-secondary: #a0a0b0;
            --success: #00ff88;
            --warning: #ffaa00;
            --danger: #ff4444;
            --border-color: rgba(255, 255, 255, 0.1);
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            margin: 0;
            padding: 40px 20px;
        }
        h1 { color: var(--accent-primary); }
        .stats { display: flex; gap: 16px; margin-bottom: 32px; }
        .stat {
            background: var(--bg-card);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 16px 24px;
        }
        .stat .value { font-size: 1.8rem; font-weight: 700; }
        .stat .label { color: var(--text-secondary); }
        table { width: 100%; border-collapse: collapse; background: var(--bg-card); }
        th, td { padding: 8px 12px; border-bottom: 1px solid var(--border-color); text-align: left; }
        th { color: var(--text-secondary); }
        code { color: var(--accent-primary); word-break: break-all; }
        .verdict-bypass, .verdict-residual, .verdict-reflected { color: var(--danger); }
        .verdict-neutralized, .verdict-inert, .verdict-not-reflected { color: var(--success); }
        .verdict-error { color: var(--warning); }
    </style>
</head>
<body>
    <h1>sinkprobe Report</h1>
    <p>Generated on {{.Generated.Format "2006-01-02 15:04:05 MST"}}</p>
    <div class="stats">
        <div class="stat"><div class="value">{{.Summary.Total}}</div><div class="label">Payloads Tested</div></div>
        <div class="stat"><div class="value">{{.Summary.RawExecuted}}</div><div class="label">Executed (raw)</div></div>
        <div class="stat"><div class="value">{{.Summary.CleanExecuted}}</div><div class="label">Executed (sanitized)</div></div>
        <div class="stat"><div class="value">{{.Summary.Reflected}}</div><div class="label">Reflected</div></div>
        <div class="stat"><div class="value">{{.Summary.Errors}}</div><div class="label">Errors</div></div>
    </div>
    <table>
        <tr><th>#</th><th>Mode</th><th>Payload</th><th>Raw</th><th>Clean</th><th>Verdict</th><th>Detail</th></tr>
        {{range .Rows}}
        <tr>
            <td>{{.Index}}</td>
            <td>{{.Mode}}</td>
            <td><code>{{.Payload}}</code></td>
            <td>{{.Raw}}</td>
            <td><code>{{.Clean}}</code></td>
            <td class="verdict-{{.Verdict}}">{{.Verdict}}</td>
            <td>{{.Detail}}</td>
        </tr>
        {{else}}
        <tr><td colspan="7">No payloads were processed.</td></tr>
        {{end}}
    </table>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(htmlTemplate))

func htmlReport(records []Record) ([]byte, error) {
	data := struct {
		Generated time.Time
		Summary   Summary
		Rows      []row
	}{
		Generated: time.Now(),
		Summary:   Summarize(records),
		Rows:      rowsOf(records),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}
