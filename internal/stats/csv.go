package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVFilename is the attachment name of the detailed statistics export.
const CSVFilename = "statistiques_sites_clients.csv"

// CSVHeader is the header row of the detailed statistics export.
var CSVHeader = []string{
	"Nom du Site",
	"Manutentionnaires ce Mois",
	"Manutentionnaires cette Année",
	"Chiffre d'Affaires Généré (DH)",
	"Évolution vs Mois Précédent",
}

// FormatEvolution renders a positive evolution with an explicit plus sign.
func FormatEvolution(v int64) string {
	if v > 0 {
		return "+" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

// WriteCSV writes the per-site rows as semicolon separated values.
func WriteCSV(w io.Writer, rows []SiteStat) error {
	cw := newCSVWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			strconv.FormatInt(row.HandlersThisMonth, 10),
			strconv.FormatInt(row.HandlersThisYear, 10),
			strconv.FormatInt(row.RevenueGenerated, 10),
			FormatEvolution(row.Evolution),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export written by WriteCSV. Site IDs are not part of
// the export and come back empty.
func ReadCSV(r io.Reader) ([]SiteStat, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = len(CSVHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing csv header")
	}
	for i, col := range CSVHeader {
		if records[0][i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: %q", i+1, records[0][i])
		}
	}

	rows := make([]SiteStat, 0, len(records)-1)
	for line, record := range records[1:] {
		var row SiteStat
		row.Name = record[0]
		fields := []*int64{&row.HandlersThisMonth, &row.HandlersThisYear, &row.RevenueGenerated, &row.Evolution}
		for i, dst := range fields {
			v, err := strconv.ParseInt(record[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line+2, CSVHeader[i+1], err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
