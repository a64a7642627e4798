package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cliapi "github.com/solver492/manu-pro/internal/cli"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the statistics report to PDF",
	Long: `Render the server's printable statistics report in headless Chrome
and save it as an A4 PDF. Requires Chrome or Chromium on the PATH.`,
	Args: cobra.NoArgs,
	RunE: runPrint,
}

var (
	printOutput  string
	printTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().StringVarP(&printOutput, "output", "o", "rapport_statistiques.pdf", "Output PDF file")
	printCmd.Flags().DurationVar(&printTimeout, "timeout", 0, "Rendering timeout (default: request timeout)")
}

func runPrint(cmd *cobra.Command, args []string) error {
	cfg, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	timeout := printTimeout
	if timeout <= 0 {
		timeout = cfg.RequestTimeout
	}

	var pdf []byte
	err = withSpinner(cfg, "Rendering report", func() error {
		pdf, err = cliapi.PrintPDF(cmd.Context(), client.ReportURL(), timeout)
		return err
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if err := os.WriteFile(printOutput, pdf, 0o644); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("Report saved to %s (%d bytes)", printOutput, len(pdf)))
	return nil
}
