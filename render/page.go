package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/pkg/errors"
	"github.com/yosssi/gohtml"

	"github.com/launchdash/launchdash/dashboard"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title.Text}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 0 auto; max-width: 1100px; padding: 1rem; color: #1a1a2e; }
h1 { text-align: {{.Title.Style.TextAlign}}; color: {{.Title.Style.Color}}; font-size: {{.Title.Style.FontSize}}px; }
.controls { display: flex; flex-wrap: wrap; gap: 1rem; align-items: center; margin-bottom: 1rem; }
.controls select { min-width: 260px; padding: .375rem .5rem; }
.slider { display: flex; flex-direction: column; gap: .25rem; }
.marks { display: flex; justify-content: space-between; font-size: .75rem; color: #6c757d; }
.graph { margin: 1rem 0; text-align: center; }
.graph img { max-width: 100%; }
.caption { color: #6c757d; font-size: .875rem; }
</style>
</head>
<body>
<h1>{{.Title.Text}}</h1>
<div class="controls">
  <select id="{{.Dropdown.ID}}" title="{{.Dropdown.Placeholder}}">
    {{range .Dropdown.Options}}<option value="{{.Value}}"{{if eq .Value $.Dropdown.Value}} selected{{end}}>{{.Label}}</option>{{end}}
  </select>
</div>
<div class="graph">
  <img id="{{.PieID}}-img" alt="{{.PieID}}" src="/charts/{{.PieID}}.svg?site={{.Dropdown.Value}}">
  <p class="caption" id="{{.PieID}}-caption"></p>
</div>
<p>{{.SliderLabel}}</p>
<div class="slider" id="{{.Slider.ID}}" data-low="{{index .Slider.Value 0}}" data-high="{{index .Slider.Value 1}}">
  <input type="range" id="{{.Slider.ID}}-low" min="{{.Slider.Min}}" max="{{.Slider.Max}}" step="{{.Slider.Step}}" value="{{index .Slider.Value 0}}">
  <input type="range" id="{{.Slider.ID}}-high" min="{{.Slider.Min}}" max="{{.Slider.Max}}" step="{{.Slider.Step}}" value="{{index .Slider.Value 1}}">
  <div class="marks">{{range .Slider.Marks}}<span>{{.Label}}</span>{{end}}</div>
  <span class="caption" id="{{.Slider.ID}}-value">{{index .Slider.Value 0}} to {{index .Slider.Value 1}} kg</span>
</div>
<div class="graph">
  <img id="{{.ScatterID}}-img" alt="{{.ScatterID}}" src="/charts/{{.ScatterID}}.svg?site={{.Dropdown.Value}}&low={{index .Slider.Value 0}}&high={{index .Slider.Value 1}}">
  <p class="caption" id="{{.ScatterID}}-caption"></p>
</div>
<script>
(function () {
  var site = document.getElementById({{.Dropdown.ID}});
  var slider = document.getElementById({{.Slider.ID}});
  var lowInput = document.getElementById({{.Slider.ID}} + "-low");
  var highInput = document.getElementById({{.Slider.ID}} + "-high");
  var low = Number(slider.dataset.low), high = Number(slider.dataset.high);

  function query(withRange) {
    var q = "site=" + encodeURIComponent(site.value);
    if (withRange) { q += "&low=" + low + "&high=" + high; }
    return q;
  }

  function refresh(id, withRange) {
    var q = query(withRange);
    document.getElementById(id + "-img").src = "/charts/" + id + ".svg?" + q;
    fetch("/api/charts/" + id + "?" + q)
      .then(function (resp) { return resp.json(); })
      .then(function (body) {
        document.getElementById(id + "-caption").textContent = body.reply || body.error || "";
      });
  }

  function onSlide() {
    low = Math.min(Number(lowInput.value), Number(highInput.value));
    high = Math.max(Number(lowInput.value), Number(highInput.value));
    document.getElementById({{.Slider.ID}} + "-value").textContent = low + " to " + high + " kg";
    refresh({{.ScatterID}}, true);
  }

  site.addEventListener("change", function () {
    refresh({{.PieID}}, false);
    refresh({{.ScatterID}}, true);
  });
  lowInput.addEventListener("change", onSlide);
  highInput.addEventListener("change", onSlide);

  refresh({{.PieID}}, false);
  refresh({{.ScatterID}}, true);
})();
</script>
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	dashboard.Layout
	PieID     string
	ScatterID string
}

// RenderPage writes the dashboard HTML for layout. With pretty set the
// markup is re-indented.
func RenderPage(w io.Writer, layout dashboard.Layout, pretty bool) error {
	data := pageData{
		Layout:    layout,
		PieID:     dashboard.PieChartID,
		ScatterID: dashboard.ScatterChartID,
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "executing page template")
	}

	out := buf.Bytes()
	if pretty {
		out = gohtml.FormatBytes(out)
	}
	_, err := w.Write(out)
	return errors.Wrap(err, "writing page")
}
