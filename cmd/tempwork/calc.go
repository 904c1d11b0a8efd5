package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"

	"github.com/warp/tempwork/accounting"
)

var (
	flagCalcLimit int
	flagCalcJSON  bool
)

var calcCmd = &cobra.Command{
	Use:   "calc [file]",
	Short: "Compute accounting periods for a contracts file",
	Long: `Compute accounting periods for a contracts file (stdin when omitted).

The input is a JSON array of contracts, or an object with "contracts" and an
optional "limitInDays". Comments and trailing commas are allowed:

  [
    {"id": "c1", "startDate": "2024-01-01", "endDate": "2024-12-31"},
    {"id": "c2", "startDate": "2025-03-01"}, // awaiting an end date
  ]`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().IntVarP(&flagCalcLimit, "limit", "l", 0, "Day limit (default: the file's limit, then the configured default)")
	calcCmd.Flags().BoolVar(&flagCalcJSON, "json", false, "Print periods as JSON")
	rootCmd.AddCommand(calcCmd)
}

// calcInput is the object form of the calc input file.
type calcInput struct {
	LimitInDays int                        `json:"limitInDays"`
	Contracts   []accounting.ContractRange `json:"contracts"`
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading contracts: %w", err)
	}

	input, err := parseCalcInput(data)
	if err != nil {
		return err
	}

	limit := cfg.Limits.Default
	if input.LimitInDays != 0 {
		limit = input.LimitInDays
	}
	if flagCalcLimit != 0 {
		limit = flagCalcLimit
	}
	if err := accounting.ValidateLimit(limit, nil); err != nil {
		return err
	}

	periods := accounting.ComputePeriods(input.Contracts, limit)

	out := cmd.OutOrStdout()
	if flagCalcJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(periods)
	}
	fmt.Fprint(out, renderPeriods(periods, limit))
	return nil
}

// parseCalcInput accepts either a bare contract array or a calcInput object.
func parseCalcInput(data []byte) (calcInput, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return calcInput{}, fmt.Errorf("parsing contracts: %w", err)
	}

	var input calcInput
	trimmed := bytes.TrimSpace(std)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &input.Contracts)
	} else {
		err = json.Unmarshal(trimmed, &input)
	}
	if err != nil {
		return calcInput{}, fmt.Errorf("parsing contracts: %w", err)
	}
	return input, nil
}
