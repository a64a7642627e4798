package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/stats"
)

func newBufferedFormatter(format string, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{format: format, quiet: quiet}
	f.SetOutput(&out, &errOut, true)
	return f, &out, &errOut
}

func sampleDashboard() *stats.DashboardStats {
	series := make([]stats.MonthCount, 12)
	for i := range series {
		series[i] = stats.MonthCount{Month: stats.MonthLabel(time.Month(i + 1))}
	}
	series[0].Count = 8
	series[1].Count = 4
	return &stats.DashboardStats{
		TotalHandlersMonth: 4,
		TotalRevenueMonth:  600,
		TotalHandlersYear:  12,
		TotalRevenueYear:   1800,
		MonthlySends:       series,
		TopClients: []stats.SiteTotal{
			{SiteID: "s1", SiteName: "Atlas", TotalHandlers: 12},
		},
	}
}

func TestPrintSites(t *testing.T) {
	sites := []database.Site{
		{ID: "s1", Name: "Atlas Logistique", Address: "Casablanca", Status: database.StatusActive},
		{ID: "s2", Name: "Rif", Status: database.StatusInactive},
	}

	tests := []struct {
		name     string
		format   string
		quiet    bool
		contains []string
	}{
		{"table format", "table", false, []string{"ID", "NAME", "STATUS", "Atlas Logistique", "inactive"}},
		{"json format", "json", false, []string{`"id": "s1"`, `"status": "inactive"`}},
		{"quiet mode", "table", true, []string{"s1\ns2\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, out, _ := newBufferedFormatter(tt.format, tt.quiet)
			require.NoError(t, f.PrintSites(sites))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		f, out, _ := newBufferedFormatter("table", false)
		require.NoError(t, f.PrintSites(nil))
		assert.Equal(t, "No sites found.\n", out.String())
	})

	t.Run("unsupported format", func(t *testing.T) {
		f, _, _ := newBufferedFormatter("xml", false)
		assert.EqualError(t, f.PrintSites(sites), "unsupported format: xml")
	})
}

func TestPrintShipments(t *testing.T) {
	shipments := []database.Shipment{
		{ID: "p1", SiteID: "s1", HandlerCount: 4, ShipmentDate: database.NewDate(2025, 2, 10)},
	}

	f, out, _ := newBufferedFormatter("table", false)
	require.NoError(t, f.PrintShipments(shipments))
	assert.Contains(t, out.String(), "2025-02-10")
	assert.Contains(t, out.String(), "600 DH")

	f, out, _ = newBufferedFormatter("json", false)
	require.NoError(t, f.PrintShipment(&shipments[0]))
	assert.Contains(t, out.String(), `"cost_total": 600`)
}

func TestPrintDashboard(t *testing.T) {
	f, out, _ := newBufferedFormatter("table", false)
	require.NoError(t, f.PrintDashboard(sampleDashboard()))

	text := out.String()
	assert.Contains(t, text, "This month: 4 handlers (600 DH)")
	assert.Contains(t, text, "This year:  12 handlers (1800 DH)")
	assert.Contains(t, text, "janv.  "+strings.Repeat("█", barWidth)+" 8")
	assert.Contains(t, text, "févr.  "+strings.Repeat("█", barWidth/2)+strings.Repeat(" ", barWidth/2)+" 4")
	assert.Contains(t, text, " 1. Atlas")
	assert.NotContains(t, text, "\x1b[", "no escape codes without color")
}

func TestPrintDetailed(t *testing.T) {
	detailed := &stats.DetailedStats{
		SiteStats: []stats.SiteStat{
			{ID: "s1", Name: "Atlas", HandlersThisMonth: 7, HandlersThisYear: 15, RevenueGenerated: 2250, Evolution: 3},
			{ID: "s2", Name: "Rif", HandlersThisMonth: 1, HandlersThisYear: 2, RevenueGenerated: 300, Evolution: -4},
		},
		TopSites: []stats.SiteTotal{{SiteID: "s1", SiteName: "Atlas", TotalHandlers: 15}},
	}

	f, out, _ := newBufferedFormatter("table", false)
	require.NoError(t, f.PrintDetailed(detailed))
	assert.Contains(t, out.String(), "+3")
	assert.Contains(t, out.String(), "-4")
	assert.Contains(t, out.String(), "2250 DH")
	assert.Contains(t, out.String(), "Top sites this year")

	f, out, _ = newBufferedFormatter("table", true)
	require.NoError(t, f.PrintDetailed(detailed))
	assert.Equal(t, "s1\ns2\n", out.String())
}

func TestPrintSiteDetail(t *testing.T) {
	detail := &SiteDetail{
		Site: database.Site{ID: "s1", Name: "Atlas", Status: database.StatusActive},
		Stats: stats.SiteDetailStats{
			HandlersToday: 2,
			HandlersMonth: 7,
			TotalCost:     2250,
			MonthlyHistory: []stats.HistoryEntry{
				{Month: "févr.", Year: 2025, Count: 7},
				{Month: "janv.", Year: 2025, Count: 8},
			},
		},
	}

	f, out, _ := newBufferedFormatter("table", false)
	require.NoError(t, f.PrintSiteDetail(detail))
	assert.Contains(t, out.String(), "Total cost: 2250 DH")
	assert.Contains(t, out.String(), "févr. 2025")
}

func TestPrintMessages(t *testing.T) {
	f, out, errOut := newBufferedFormatter("table", false)
	f.PrintSuccess("Site created")
	f.PrintInfo("Nothing to do")
	f.PrintError(errors.New("boom"))

	assert.Equal(t, "✓ Site created\nℹ Nothing to do\n", out.String())
	assert.Equal(t, "✗ Error: boom\n", errOut.String())

	f, out, errOut = newBufferedFormatter("table", true)
	f.PrintSuccess("Site created")
	f.PrintError(errors.New("boom"))
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Société...", truncate("Société Générale", 10))
}
