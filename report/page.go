package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/series"
	"github.com/shopspring/decimal"
)

// SuccessMessage is shown once a forecast has been rendered
const SuccessMessage = "Forecasting completed! Adjust parameters as needed."

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(
	template.New("page.html.tmpl").
		Funcs(template.FuncMap{"successMessage": func() string { return SuccessMessage }}).
		ParseFS(templateFS, "templates/page.html.tmpl"),
)

// PreviewRow is one formatted row of the data preview
type PreviewRow struct {
	Date    string
	Revenue string
}

// View holds everything shown on the page. The charts are complete html documents embedded
// into frames so each keeps its own scripts.
type View struct {
	Warnings      []string
	Error         string
	Filename      string
	Preview       []PreviewRow
	ForecastDoc   string
	ComponentsDoc string
	Success       bool
}

type renderer interface {
	Render(w io.Writer) error
}

func renderDoc(r renderer) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewView renders the forecast and component charts of a finished forecast
func NewView(filename string, history series.Series, res *forecaster.Results) (View, error) {
	v := View{
		Filename: filename,
		Success:  true,
	}
	for _, p := range Preview(history, PreviewRows) {
		v.Preview = append(v.Preview, PreviewRow{
			Date:    formatTime(p.Time),
			Revenue: formatRevenue(p.Value),
		})
	}

	var err error
	v.ForecastDoc, err = renderDoc(ForecastChart(history, res))
	if err != nil {
		return View{}, fmt.Errorf("unable to render forecast chart, %w", err)
	}
	v.ComponentsDoc, err = renderDoc(ComponentsPage(res))
	if err != nil {
		return View{}, fmt.Errorf("unable to render components chart, %w", err)
	}
	return v, nil
}

// formatRevenue keeps the precision the value was uploaded with so 100.50 is not shown as 100.5
func formatRevenue(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Render writes the page to w
func Render(w io.Writer, v View) error {
	return pageTmpl.Execute(w, v)
}
