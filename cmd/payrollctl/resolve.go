package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hrpay/internal/domain/glrules"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("rules", "r", "configs/gl_rules.toml", "Path to the TOML override rules")
	resolveCmd.Flags().StringP("input", "i", "-", "JSON array of entries (line, polarity, account)")
	resolveCmd.Flags().String("date", "", "Posting date (YYYY-MM-DD); defaults to today")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve ledger accounts through the GL override rules",
	Args:  cobra.NoArgs,
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, _ []string) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	inputPath, _ := cmd.Flags().GetString("input")
	rawDate, _ := cmd.Flags().GetString("date")

	date := time.Now().UTC()
	if rawDate != "" {
		var err error
		if date, err = parseDay("--date", rawDate); err != nil {
			return err
		}
	}

	svc, err := glrules.LoadFile(cmd.Context(), rulesPath)
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, inputPath)
	if err != nil {
		return err
	}
	var entries []glrules.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	postings, err := svc.Post(cmd.Context(), date, entries)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd, postings); err != nil {
		return err
	}
	if failed := glrules.Failed(postings); failed > 0 {
		return fmt.Errorf("%d of %d entries kept their original account", failed, len(postings))
	}
	return nil
}
