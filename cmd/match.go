package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"gocausal/adapters/excel"
	"gocausal/domain/match"
)

var (
	matchInput  string
	matchOutput string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Greedy propensity matching over a CSV or Excel file",
	Long: `match reads a dataset with treatment and score columns, pairs every
treated unit with its nearest untreated neighbor by score, and writes
the pairing as CSV. Unmatched units carry match_index -1 and pair_id 0.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchInput, "input", "", "input file (.csv or .xlsx)")
	matchCmd.Flags().StringVar(&matchOutput, "output", "", "output CSV path (default: stdout)")
	_ = matchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	in, err := excel.NewDataReader(matchInput).ReadMatchInput()
	if err != nil {
		return err
	}

	res, err := match.Match(in.Treatment, in.Score)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if matchOutput != "" {
		f, err := os.Create(matchOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", matchOutput, err)
		}
		defer f.Close()
		out = f
	}
	if err := writeMatchCSV(out, in, res); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "matched %d pairs across %d units, %d treated left unmatched\n",
		res.Pairs(), res.Len(), res.UnmatchedTreated)
	return nil
}

func writeMatchCSV(w io.Writer, in *excel.MatchInput, res *match.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"unit", "treatment", "score", "match_index", "usage", "pair_id"}); err != nil {
		return err
	}
	for i := range in.Score {
		rec := []string{
			in.Units[i],
			strconv.Itoa(in.Treatment[i]),
			strconv.FormatFloat(in.Score[i], 'g', -1, 64),
			strconv.Itoa(res.MatchIndex[i]),
			strconv.Itoa(res.Usage[i]),
			strconv.Itoa(res.PairID[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
