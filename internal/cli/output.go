package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/stats"
)

const barWidth = 30

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format string
	quiet  bool
	out    io.Writer
	errOut io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	bar     lipgloss.Style
}

// NewOutputFormatter creates a formatter writing to stdout and stderr
func NewOutputFormatter(format string, quiet, noColor bool) *OutputFormatter {
	f := &OutputFormatter{format: format, quiet: quiet}
	f.SetOutput(os.Stdout, os.Stderr, noColor)
	return f
}

// SetOutput redirects the formatter. Colors are dropped when noColor is set
// or out is not a terminal.
func (f *OutputFormatter) SetOutput(out, errOut io.Writer, noColor bool) {
	f.out = out
	f.errOut = errOut

	r := lipgloss.NewRenderer(out)
	if noColor || !isTerminal(out) {
		r.SetColorProfile(termenv.Ascii)
	}
	f.title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	f.success = r.NewStyle().Foreground(lipgloss.Color("10"))
	f.failure = r.NewStyle().Foreground(lipgloss.Color("9"))
	f.muted = r.NewStyle().Foreground(lipgloss.Color("8"))
	f.bar = r.NewStyle().Foreground(lipgloss.Color("33"))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && isatty.IsTerminal(file.Fd())
}

func (f *OutputFormatter) printJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) checkFormat() error {
	if f.format != "json" && f.format != "table" {
		return fmt.Errorf("unsupported format: %s", f.format)
	}
	return nil
}

// PrintSites prints a list of sites
func (f *OutputFormatter) PrintSites(sites []database.Site) error {
	if f.quiet {
		for _, site := range sites {
			fmt.Fprintln(f.out, site.ID)
		}
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(sites)
	}

	if len(sites) == 0 {
		fmt.Fprintln(f.out, "No sites found.")
		return nil
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tSTATUS")
	for _, site := range sites {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			site.ID,
			truncate(site.Name, 30),
			truncate(site.Address, 30),
			site.Status)
	}
	return nil
}

// PrintSite prints a single site
func (f *OutputFormatter) PrintSite(site *database.Site) error {
	if f.quiet {
		fmt.Fprintln(f.out, site.ID)
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(site)
	}

	fmt.Fprintf(f.out, "Site ID: %s\n", site.ID)
	fmt.Fprintf(f.out, "Name: %s\n", site.Name)
	fmt.Fprintf(f.out, "Address: %s\n", site.Address)
	fmt.Fprintf(f.out, "Status: %s\n", site.Status)
	return nil
}

// PrintSiteDetail prints a site with its statistics block
func (f *OutputFormatter) PrintSiteDetail(detail *SiteDetail) error {
	if f.quiet {
		fmt.Fprintln(f.out, detail.Site.ID)
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(detail)
	}

	if err := f.PrintSite(&detail.Site); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "Handlers today: %d\n", detail.Stats.HandlersToday)
	fmt.Fprintf(f.out, "Handlers this month: %d\n", detail.Stats.HandlersMonth)
	fmt.Fprintf(f.out, "Total cost: %s\n", amount(detail.Stats.TotalCost))
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, f.title.Render("Last 6 months"))

	var peak int64
	for _, h := range detail.Stats.MonthlyHistory {
		peak = max(peak, h.Count)
	}
	for _, h := range detail.Stats.MonthlyHistory {
		label := fmt.Sprintf("%s %d", h.Month, h.Year)
		fmt.Fprintf(f.out, "  %-11s %s %d\n", label, f.renderBar(h.Count, peak), h.Count)
	}
	return nil
}

// PrintShipments prints a list of shipments
func (f *OutputFormatter) PrintShipments(shipments []database.Shipment) error {
	if f.quiet {
		for _, shipment := range shipments {
			fmt.Fprintln(f.out, shipment.ID)
		}
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(shipments)
	}

	if len(shipments) == 0 {
		fmt.Fprintln(f.out, "No shipments found.")
		return nil
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tSITE\tDATE\tHANDLERS\tCOST")
	for _, shipment := range shipments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shipment.ID,
			shipment.SiteID,
			shipment.ShipmentDate,
			shipment.HandlerCount,
			amount(shipment.Cost()))
	}
	return nil
}

// PrintShipment prints a single shipment
func (f *OutputFormatter) PrintShipment(shipment *database.Shipment) error {
	if f.quiet {
		fmt.Fprintln(f.out, shipment.ID)
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(shipment)
	}

	fmt.Fprintf(f.out, "Shipment ID: %s\n", shipment.ID)
	fmt.Fprintf(f.out, "Site: %s\n", shipment.SiteID)
	fmt.Fprintf(f.out, "Date: %s\n", shipment.ShipmentDate)
	fmt.Fprintf(f.out, "Handlers: %d\n", shipment.HandlerCount)
	fmt.Fprintf(f.out, "Cost: %s\n", amount(shipment.Cost()))
	return nil
}

// PrintDashboard prints the global overview
func (f *OutputFormatter) PrintDashboard(d *stats.DashboardStats) error {
	if f.quiet {
		fmt.Fprintf(f.out, "%d %d\n", d.TotalHandlersMonth, d.TotalHandlersYear)
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(d)
	}

	fmt.Fprintf(f.out, "This month: %d handlers (%s)\n", d.TotalHandlersMonth, amount(d.TotalRevenueMonth))
	fmt.Fprintf(f.out, "This year:  %d handlers (%s)\n", d.TotalHandlersYear, amount(d.TotalRevenueYear))
	fmt.Fprintln(f.out)
	f.printMonthlySends(d.MonthlySends)
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, f.title.Render("Top clients"))
	f.printRanking(d.TopClients)
	return nil
}

// PrintDetailed prints one row per site plus the yearly ranking
func (f *OutputFormatter) PrintDetailed(d *stats.DetailedStats) error {
	if f.quiet {
		for _, row := range d.SiteStats {
			fmt.Fprintln(f.out, row.ID)
		}
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(d)
	}

	if len(d.SiteStats) == 0 {
		fmt.Fprintln(f.out, "No sites found.")
		return nil
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SITE\tMONTH\tYEAR\tREVENUE\tEVOLUTION\t")
	for _, row := range d.SiteStats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t\n",
			truncate(row.Name, 30),
			row.HandlersThisMonth,
			row.HandlersThisYear,
			amount(row.RevenueGenerated),
			f.renderEvolution(row.Evolution))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, f.title.Render("Top sites this year"))
	f.printRanking(d.TopSites)
	return nil
}

// PrintProfile prints the authenticated user
func (f *OutputFormatter) PrintProfile(p *database.Profile) error {
	if f.quiet {
		fmt.Fprintln(f.out, p.ID)
		return nil
	}
	if err := f.checkFormat(); err != nil {
		return err
	}
	if f.format == "json" {
		return f.printJSON(p)
	}
	fmt.Fprintf(f.out, "Logged in as %s <%s>\n", p.FullName, p.Email)
	return nil
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintln(f.out, f.success.Render("✓ "+message))
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintln(f.errOut, f.failure.Render(fmt.Sprintf("✗ Error: %v", err)))
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintln(f.out, f.muted.Render("ℹ "+message))
	}
}

func (f *OutputFormatter) printMonthlySends(series []stats.MonthCount) {
	fmt.Fprintln(f.out, f.title.Render("Monthly sends"))
	var peak int64
	for _, m := range series {
		peak = max(peak, m.Count)
	}
	for i, m := range series {
		fmt.Fprintf(f.out, "  %-6s %s %d\n", stats.MonthLabel(time.Month(i+1)), f.renderBar(m.Count, peak), m.Count)
	}
}

func (f *OutputFormatter) printRanking(totals []stats.SiteTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(f.out, f.muted.Render("  No data"))
		return
	}
	for i, t := range totals {
		fmt.Fprintf(f.out, "  %2d. %-30s %d\n", i+1, truncate(t.SiteName, 30), t.TotalHandlers)
	}
}

func (f *OutputFormatter) renderBar(value, peak int64) string {
	width := int(stats.BarRatio(value, peak)*barWidth + 0.5)
	return f.bar.Render(strings.Repeat("█", width)) + strings.Repeat(" ", barWidth-width)
}

func (f *OutputFormatter) renderEvolution(v int64) string {
	s := stats.FormatEvolution(v)
	switch {
	case v > 0:
		return f.success.Render(s)
	case v < 0:
		return f.failure.Render(s)
	default:
		return s
	}
}

func amount(v int64) string {
	return fmt.Sprintf("%d DH", v)
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
