package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

// ReportHandler renders the printable statistics report
type ReportHandler struct {
	stats  *services.StatsService
	logger *slog.Logger
	tmpl   *template.Template
}

// NewReportHandler creates a new report handler
func NewReportHandler(statsService *services.StatsService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		stats:  statsService,
		logger: logger,
		tmpl:   template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate)),
	}
}

type monthBar struct {
	Label   string
	Count   int64
	Percent float64
}

type reportData struct {
	GeneratedAt time.Time
	Rate        int64
	Dashboard   *stats.DashboardStats
	Detailed    *stats.DetailedStats
	Months      []monthBar
}

var reportFuncs = template.FuncMap{
	"evolution": stats.FormatEvolution,
	"amount": func(v int64) string {
		return strconv.FormatInt(v, 10) + " DH"
	},
	"inc": func(i int) int { return i + 1 },
}

// monthBars scales the monthly series against its largest month
func monthBars(series []stats.MonthCount) []monthBar {
	var peak int64
	for _, m := range series {
		peak = max(peak, m.Count)
	}
	bars := make([]monthBar, len(series))
	for i, m := range series {
		bars[i] = monthBar{
			Label:   stats.MonthLabel(time.Month(i + 1)),
			Count:   m.Count,
			Percent: stats.BarRatio(m.Count, peak) * 100,
		}
	}
	return bars
}

// Statistics handles GET /reports/statistics
func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute report", "error", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	detailed, err := h.stats.Detailed(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute report", "error", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	engine := h.stats.Engine()
	data := reportData{
		GeneratedAt: engine.Now(),
		Rate:        engine.Rate,
		Dashboard:   dashboard,
		Detailed:    detailed,
		Months:      monthBars(dashboard.MonthlySends),
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("Failed to render report", "error", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

const reportTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Statistiques des sites clients</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1f2937; }
h1 { font-size: 1.5rem; margin-bottom: 0.25rem; }
.meta { color: #6b7280; font-size: 0.85rem; }
.totals { display: flex; gap: 2rem; margin: 1.5rem 0; }
.totals div { border: 1px solid #e5e7eb; padding: 0.75rem 1rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border-bottom: 1px solid #e5e7eb; padding: 0.4rem; text-align: left; }
td.num { text-align: right; }
.up { color: #15803d; } .down { color: #b91c1c; }
.bar { background: #2563eb; height: 0.8rem; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Récapitulatif par Site Client</h1>
<p class="meta">Généré le {{.GeneratedAt.Format "02/01/2006"}} · tarif {{amount .Rate}} par manutentionnaire</p>

<div class="totals">
  <div>Ce mois: <strong>{{.Dashboard.TotalHandlersMonth}}</strong> ({{amount .Dashboard.TotalRevenueMonth}})</div>
  <div>Cette année: <strong>{{.Dashboard.TotalHandlersYear}}</strong> ({{amount .Dashboard.TotalRevenueYear}})</div>
</div>

<table>
  <thead>
    <tr><th>Nom du Site</th><th>Ce Mois</th><th>Cette Année</th><th>Chiffre d'Affaires</th><th>Évolution</th></tr>
  </thead>
  <tbody>
  {{range .Detailed.SiteStats}}
    <tr>
      <td>{{.Name}}</td>
      <td class="num">{{.HandlersThisMonth}}</td>
      <td class="num">{{.HandlersThisYear}}</td>
      <td class="num">{{amount .RevenueGenerated}}</td>
      <td class="num {{if gt .Evolution 0}}up{{else if lt .Evolution 0}}down{{end}}">{{evolution .Evolution}}</td>
    </tr>
  {{else}}
    <tr><td colspan="5">Aucune donnée</td></tr>
  {{end}}
  </tbody>
</table>

<h2>Évolution mensuelle</h2>
<table>
  {{range .Months}}
  <tr><td>{{.Label}}</td><td style="width:70%"><div class="bar" style="width: {{printf "%.1f" .Percent}}%"></div></td><td class="num">{{.Count}}</td></tr>
  {{end}}
</table>

<h2>Top {{len .Detailed.TopSites}} des sites (année en cours)</h2>
<ol>
  {{range .Detailed.TopSites}}<li>{{.SiteName}}: {{.TotalHandlers}}</li>{{end}}
</ol>
</body>
</html>
`
