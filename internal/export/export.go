package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/BrightBytes/insight-cli/internal/audit"
)

// ErrIncomplete blocks export when the result cannot back a full
// report. It is a user-visible condition, not a crash.
var ErrIncomplete = errors.New("export blocked, analysis result incomplete")

// Check enforces the completeness predicate: narrative present,
// statistics model present, chart snapshot present, at least one
// impact entry and a non-empty advisory list.
func Check(res *audit.Result, snapshot []byte) error {
	var missing []string
	if res == nil {
		return fmt.Errorf("%w: no analysis result", ErrIncomplete)
	}
	if len(res.NarrativeSections) == 0 {
		missing = append(missing, "narrative")
	}
	if res.MainStatistics == nil {
		missing = append(missing, "statistics model")
	}
	if len(snapshot) == 0 {
		missing = append(missing, "chart snapshot")
	}
	if len(res.ImpactMatrix) == 0 {
		missing = append(missing, "impact matrix")
	}
	if len(res.Advisory) == 0 {
		missing = append(missing, "advisory")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Build produces the standalone printable HTML document embedding the
// analysis result and the chart snapshot. It refuses to produce output
// for an incomplete result.
func Build(res *audit.Result, snapshot []byte, generatedAt time.Time) (string, error) {
	if err := Check(res, snapshot); err != nil {
		return "", err
	}
	data := reportData{
		Result:      res,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
		ChartPNG:    template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(snapshot)),
	}
	var b strings.Builder
	if err := reportTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

type reportData struct {
	Result      *audit.Result
	GeneratedAt string
	ChartPNG    template.URL
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Insight Audit Report</title>
<style>
body { font-family: Georgia, serif; margin: 2.5em auto; max-width: 52em; color: #1b1b1b; }
h1 { border-bottom: 2px solid #1b1b1b; padding-bottom: 0.2em; }
h2 { margin-top: 1.6em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 0.4em 0.6em; text-align: left; }
th { background: #f0f0f0; }
.meta { color: #555; font-size: 0.9em; }
.severity-High, .severity-Critical { color: #a40000; font-weight: bold; }
img { max-width: 100%; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Insight Audit Report</h1>
<p class="meta">Generated {{.GeneratedAt}} &middot; audit {{.Result.TrackID}} &middot; mapping {{.Result.ChosenX}} / {{.Result.ChosenY}}</p>

{{range .Result.NarrativeSections}}
<h2>{{.Title}}</h2>
<p>{{.Content}}</p>
{{end}}

<h2>Chart</h2>
<img src="{{.ChartPNG}}" alt="categorical aggregation chart">

<h2>Key Figures</h2>
<table>
<tr><th>Count</th><th>Sum</th><th>Mean</th><th>Median</th><th>Min</th><th>Max</th><th>Std Dev</th></tr>
<tr>
<td>{{.Result.MainStatistics.Count}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.Sum}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.Mean}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.Median}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.Min}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.Max}}</td>
<td>{{printf "%.2f" .Result.MainStatistics.StdDev}}</td>
</tr>
</table>

<h2>Impact Matrix</h2>
<table>
<tr><th>Dimension</th><th>Severity</th><th>Detail</th></tr>
{{range .Result.ImpactMatrix}}
<tr><td>{{.Label}}</td><td class="severity-{{.Severity}}">{{.Severity}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>

<h2>Advisory</h2>
<table>
<tr><th>Action</th><th>Metric</th><th>Context</th></tr>
{{range .Result.Advisory}}
<tr><td>{{.Action}}</td><td>{{.Metric}}</td><td>{{.Context}}</td></tr>
{{end}}
</table>
</body>
</html>
`))
