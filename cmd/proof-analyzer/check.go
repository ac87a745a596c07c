package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/dealerproofflow/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and credentials before running",
	Long: `check inspects the environment the analyzer will run with: the env
file, the required settings, and the Google credentials file. It exits
non-zero if anything is missing.`,
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ok := true

	fmt.Println("Environment file:")
	if err := godotenv.Load(envFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("  ✗ %s not found (copy .env.example and fill it in)\n", envFile)
			ok = false
		} else {
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
	} else {
		fmt.Printf("  ✓ %s loaded\n", envFile)
	}

	fmt.Println("Required settings:")
	for _, name := range config.RequiredVars {
		if os.Getenv(name) == "" {
			fmt.Printf("  ✗ %s: not set\n", name)
			ok = false
		} else {
			fmt.Printf("  ✓ %s: set\n", name)
		}
	}

	credsFile := os.Getenv("DRIVE_CREDENTIALS_FILE")
	if credsFile == "" {
		credsFile = "credentials.json"
	}
	fmt.Println("Credentials:")
	if _, err := os.Stat(credsFile); err != nil {
		fmt.Printf("  ✗ %s not found (download it from the Google Cloud Console)\n", credsFile)
		ok = false
	} else {
		fmt.Printf("  ✓ %s found\n", credsFile)
	}

	if !ok {
		return fmt.Errorf("some checks failed; fix the issues above before running")
	}
	fmt.Println("All checks passed.")
	return nil
}
