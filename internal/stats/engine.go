// Package stats turns raw site and shipment records into the dashboard
// aggregates: monthly series, month and year totals, revenue, evolution,
// rankings and per-site history.
//
// Every function here is a pure reduction over its arguments. The current
// date comes from the Engine's clock and the billing rate from its Rate, so
// the same records always produce the same numbers whether they were loaded
// by the server or by an offline client.
package stats

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/solver492/manu-pro/internal/clock"
	"github.com/solver492/manu-pro/internal/database"
)

const (
	DashboardTopN = 5
	DetailedTopN  = 10
	HistoryMonths = 6
)

// Engine computes aggregates at a given rate as of its clock's "now".
type Engine struct {
	Rate  int64
	Clock clock.Clock
}

// New returns an engine billing at database.UnitRate.
func New(c clock.Clock) *Engine {
	return &Engine{Rate: database.UnitRate, Clock: c}
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type SiteTotal struct {
	SiteID        string `json:"siteId"`
	SiteName      string `json:"siteName"`
	TotalHandlers int64  `json:"totalHandlers"`
}

type HistoryEntry struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Count int64  `json:"count"`
}

type DashboardStats struct {
	TotalHandlersMonth int64        `json:"totalHandlersMonth"`
	TotalRevenueMonth  int64        `json:"totalRevenueMonth"`
	TotalHandlersYear  int64        `json:"totalHandlersYear"`
	TotalRevenueYear   int64        `json:"totalRevenueYear"`
	MonthlySends       []MonthCount `json:"monthlySends"`
	TopClients         []SiteTotal  `json:"topClients"`
}

type SiteStat struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	HandlersThisMonth int64  `json:"handlersThisMonth"`
	HandlersThisYear  int64  `json:"handlersThisYear"`
	RevenueGenerated  int64  `json:"revenueGenerated"`
	Evolution         int64  `json:"evolution"`
}

type DetailedStats struct {
	SiteStats    []SiteStat   `json:"siteStats"`
	TopSites     []SiteTotal  `json:"topSites"`
	MonthlySends []MonthCount `json:"monthlySends"`
}

type SiteDetailStats struct {
	HandlersToday  int64          `json:"handlersToday"`
	HandlersMonth  int64          `json:"handlersMonth"`
	TotalCost      int64          `json:"totalCost"`
	MonthlyHistory []HistoryEntry `json:"monthlyHistory"`
}

// Now is the instant aggregations are computed at.
func (e *Engine) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

// sum adds the handler counts of the shipments of siteID (all sites when
// empty) whose date satisfies keep.
func sum(shipments []database.Shipment, siteID string, keep func(database.Date) bool) int64 {
	var total int64
	for _, s := range shipments {
		if siteID != "" && s.SiteID != siteID {
			continue
		}
		if keep(s.ShipmentDate) {
			total += s.HandlerCount
		}
	}
	return total
}

func inMonth(year int, month time.Month) func(database.Date) bool {
	return func(d database.Date) bool {
		return d.Year() == year && d.Month() == month
	}
}

// MonthlySeries returns the 12 monthly totals of the current year, January first.
func (e *Engine) MonthlySeries(shipments []database.Shipment, siteID string) []MonthCount {
	year := e.Now().Year()
	series := make([]MonthCount, 12)
	for i := range series {
		series[i].Month = fmt.Sprintf("%02d", i+1)
	}
	for _, s := range shipments {
		if siteID != "" && s.SiteID != siteID {
			continue
		}
		if s.ShipmentDate.Year() == year {
			series[s.ShipmentDate.Month()-1].Count += s.HandlerCount
		}
	}
	return series
}

// MonthTotal sums the handlers dispatched in the current calendar month.
func (e *Engine) MonthTotal(shipments []database.Shipment, siteID string) int64 {
	now := e.Now()
	return sum(shipments, siteID, inMonth(now.Year(), now.Month()))
}

// YearTotal sums the handlers dispatched in the current calendar year.
func (e *Engine) YearTotal(shipments []database.Shipment, siteID string) int64 {
	year := e.Now().Year()
	return sum(shipments, siteID, func(d database.Date) bool { return d.Year() == year })
}

// DayTotal sums the handlers dispatched today.
func (e *Engine) DayTotal(shipments []database.Shipment, siteID string) int64 {
	today := database.DateOf(e.Now())
	return sum(shipments, siteID, func(d database.Date) bool { return d.Equal(today.Time) })
}

// Revenue bills a handler count at the engine's rate.
func (e *Engine) Revenue(handlers int64) int64 {
	return handlers * e.Rate
}

// Evolution is this month's total minus the previous month's. January
// compares against December of the prior year.
func (e *Engine) Evolution(shipments []database.Shipment, siteID string) int64 {
	now := e.Now()
	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	current := sum(shipments, siteID, inMonth(now.Year(), now.Month()))
	previous := sum(shipments, siteID, inMonth(prev.Year(), prev.Month()))
	return current - previous
}

// History returns HistoryMonths entries from the current month backwards,
// most recent first.
func (e *Engine) History(shipments []database.Shipment, siteID string) []HistoryEntry {
	now := e.Now()
	history := make([]HistoryEntry, HistoryMonths)
	for i := range history {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		history[i] = HistoryEntry{
			Month: MonthLabel(m.Month()),
			Year:  m.Year(),
			Count: sum(shipments, siteID, inMonth(m.Year(), m.Month())),
		}
	}
	return history
}

// SiteCost is the billed total of every shipment of the site.
func (e *Engine) SiteCost(shipments []database.Shipment, siteID string) int64 {
	var total int64
	for _, s := range shipments {
		if s.SiteID == siteID {
			total += s.HandlerCount * e.Rate
		}
	}
	return total
}

// SiteTotalsAllTime returns one entry per site, in site order, with every
// handler ever dispatched to it. Sites without shipments total zero.
func SiteTotalsAllTime(sites []database.Site, shipments []database.Shipment) []SiteTotal {
	return siteTotals(sites, shipments, func(database.Date) bool { return true })
}

// SiteTotalsYear is SiteTotalsAllTime restricted to the current year.
func (e *Engine) SiteTotalsYear(sites []database.Site, shipments []database.Shipment) []SiteTotal {
	year := e.Now().Year()
	return siteTotals(sites, shipments, func(d database.Date) bool { return d.Year() == year })
}

func siteTotals(sites []database.Site, shipments []database.Shipment, keep func(database.Date) bool) []SiteTotal {
	bySite := make(map[string]int64, len(sites))
	for _, s := range shipments {
		if keep(s.ShipmentDate) {
			bySite[s.SiteID] += s.HandlerCount
		}
	}
	totals := make([]SiteTotal, 0, len(sites))
	for _, site := range sites {
		totals = append(totals, SiteTotal{SiteID: site.ID, SiteName: site.Name, TotalHandlers: bySite[site.ID]})
	}
	return totals
}

// TopSites returns the n largest totals in descending order. Equal totals
// keep their input order.
func TopSites(totals []SiteTotal, n int) []SiteTotal {
	if n <= 0 || len(totals) == 0 {
		return []SiteTotal{}
	}
	ranked := slices.Clone(totals)
	slices.SortStableFunc(ranked, func(a, b SiteTotal) int {
		return cmp.Compare(b.TotalHandlers, a.TotalHandlers)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Dashboard builds the global overview. Top clients rank all-time totals.
func (e *Engine) Dashboard(sites []database.Site, shipments []database.Shipment) DashboardStats {
	month := e.MonthTotal(shipments, "")
	year := e.YearTotal(shipments, "")
	return DashboardStats{
		TotalHandlersMonth: month,
		TotalRevenueMonth:  e.Revenue(month),
		TotalHandlersYear:  year,
		TotalRevenueYear:   e.Revenue(year),
		MonthlySends:       e.MonthlySeries(shipments, ""),
		TopClients:         TopSites(SiteTotalsAllTime(sites, shipments), DashboardTopN),
	}
}

// Detailed builds one row per site, sorted by revenue, plus the yearly top ranking.
func (e *Engine) Detailed(sites []database.Site, shipments []database.Shipment) DetailedStats {
	rows := make([]SiteStat, 0, len(sites))
	for _, site := range sites {
		year := e.YearTotal(shipments, site.ID)
		rows = append(rows, SiteStat{
			ID:                site.ID,
			Name:              site.Name,
			HandlersThisMonth: e.MonthTotal(shipments, site.ID),
			HandlersThisYear:  year,
			RevenueGenerated:  e.Revenue(year),
			Evolution:         e.Evolution(shipments, site.ID),
		})
	}
	slices.SortStableFunc(rows, func(a, b SiteStat) int {
		return cmp.Compare(b.RevenueGenerated, a.RevenueGenerated)
	})

	return DetailedStats{
		SiteStats:    rows,
		TopSites:     TopSites(e.SiteTotalsYear(sites, shipments), DetailedTopN),
		MonthlySends: e.MonthlySeries(shipments, ""),
	}
}

// SiteDetail builds the statistics block of a site page.
func (e *Engine) SiteDetail(siteID string, shipments []database.Shipment) SiteDetailStats {
	return SiteDetailStats{
		HandlersToday:  e.DayTotal(shipments, siteID),
		HandlersMonth:  e.MonthTotal(shipments, siteID),
		TotalCost:      e.SiteCost(shipments, siteID),
		MonthlyHistory: e.History(shipments, siteID),
	}
}

// BarRatio scales value against the largest bar. A zero peak draws empty bars.
func BarRatio(value, peak int64) float64 {
	if peak <= 0 {
		return 0
	}
	return float64(value) / float64(peak)
}
