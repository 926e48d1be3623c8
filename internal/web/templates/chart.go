package templates

import (
	"context"

	"github.com/a-h/templ"
)

// chartMetrics are the row fields the chart can plot.
var chartMetrics = []struct{ key, label string }{
	{"gdpPerCapita", "GDP per Capita"},
	{"population", "Population"},
	{"area", "Total Area"},
	{"internetUsers", "Internet Users %"},
	{"gini", "Gini Index"},
}

// chartScript loads /chart-data and draws a bar chart of the chosen metric.
const chartScript = `<script>
(function () {
  var el = document.getElementById('chart-container');
  var status = document.getElementById('selection-status');
  var metric = document.getElementById('metric-selector');
  var codes = document.getElementById('chart-codes');
  var chart = echarts.init(el);
  var rows = [];

  function draw() {
    var key = metric.value;
    var label = metric.options[metric.selectedIndex].text;
    var data = rows.filter(function (r) { return r[key] != null; });
    chart.setOption({
      tooltip: { trigger: 'axis' },
      grid: { left: 80, right: 20, bottom: 120 },
      xAxis: { type: 'category', data: data.map(function (r) { return r.name; }), axisLabel: { rotate: 60 } },
      yAxis: { type: 'value', name: label },
      series: [{ type: 'bar', name: label, data: data.map(function (r) { return r[key]; }) }]
    }, true);
  }

  function load() {
    var q = codes.value.trim();
    status.textContent = 'Loading data...';
    fetch('/chart-data' + (q ? '?selected=' + encodeURIComponent(q) : ''))
      .then(function (res) { return res.json(); })
      .then(function (data) {
        rows = data;
        status.textContent = q ? rows.length + ' selected countries' : 'Top ' + rows.length + ' by GDP per capita';
        draw();
      })
      .catch(function () { status.textContent = 'Could not load chart data'; });
  }

  metric.addEventListener('change', draw);
  document.getElementById('chart-form').addEventListener('submit', function (e) { e.preventDefault(); load(); });
  window.addEventListener('resize', function () { chart.resize(); });
  load();
})();
</script>`

// ChartView renders the chart controls and container.
func ChartView() templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="chart-dashboard"><div class="chart-controls-panel">`,
			`<div class="control-group"><label for="metric-selector">Metric:</label>`,
			`<select id="metric-selector" class="metric-select">`)
		for _, m := range chartMetrics {
			h.raw(`<option value="`, m.key, `">`)
			h.text(m.label)
			h.raw(`</option>`)
		}
		h.raw(`</select></div>`,
			`<form id="chart-form" class="control-group">`,
			`<label for="chart-codes">Countries:</label>`,
			`<input id="chart-codes" name="selected" type="text" placeholder="USA,CAN,FRA">`,
			`<button type="submit">Compare</button></form>`,
			`<div class="selection-notice" id="selection-status">Loading data...</div>`,
			`</div><div class="chart-main-area"><div id="chart-container" style="height:600px"></div></div></div>`,
			chartScript)
	})
}

// ChartPage is the standalone chart page body.
func ChartPage() templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, Header("Data Visualization"))
		h.render(ctx, ChartView())
	})
}
