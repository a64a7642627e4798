package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/solver492/manu-pro/internal/database"
)

// validateID checks that the argument is a non-empty identifier
func validateID(arg string) (string, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	return id, nil
}

// validateStatus accepts only the two site statuses
func validateStatus(arg string) (string, error) {
	status := database.SiteStatus(strings.ToLower(strings.TrimSpace(arg)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status '%s': must be active or inactive", arg)
	}
	return string(status), nil
}

// parseShipmentDate accepts YYYY-MM-DD, or "today" relative to now
func parseShipmentDate(arg string, now time.Time) (string, error) {
	if arg == "" || strings.EqualFold(arg, "today") {
		return database.DateOf(now).String(), nil
	}
	date, err := database.ParseDate(arg)
	if err != nil {
		return "", err
	}
	return date.String(), nil
}

// confirm asks a yes/no question on the command's streams
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
