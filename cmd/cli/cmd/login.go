package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check dashboard credentials",
	Long: `Check an email and password against the server. The password is
read from MANU_PRO_PASSWORD or prompted for without echo.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var loginEmail string

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (required)")
	loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	password, err := readPassword(cmd)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	profile, err := client.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintProfile(profile)
}

func readPassword(cmd *cobra.Command) (string, error) {
	if password := os.Getenv("MANU_PRO_PASSWORD"); password != "" {
		return password, nil
	}

	fd := os.Stdin.Fd()
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal to prompt for a password; set MANU_PRO_PASSWORD")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}
