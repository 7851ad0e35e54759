package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mnoda/internal/ui"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
)

var diffCmd = &cobra.Command{
	Use:   "diff <fileA> <fileB> | diff <file> <idA> <idB>",
	Short: "Show differences between two documents or two records",
	Long: "With two arguments, compares two whole documents. With three, compares two " +
		"records of one document by ID. Exits non-zero when differences are found.",
	Args: cobra.RangeArgs(2, 3),
	RunE: runDiff,
}

// errDifferent is returned when the compared inputs are not identical.
var errDifferent = errors.New("inputs differ")

func runDiff(cmd *cobra.Command, args []string) error {
	printer := ui.NewWriter(cmd.ErrOrStderr())

	var a, b, diff string
	if len(args) == 2 {
		a, b = args[0], args[1]
		docA, err := loadFile(a)
		if err != nil {
			return fmt.Errorf("loading %s: %w", a, err)
		}
		docB, err := loadFile(b)
		if err != nil {
			return fmt.Errorf("loading %s: %w", b, err)
		}
		diff = mnoda.CompareDocuments(docA, docB)
	} else {
		path := args[0]
		a, b = args[1], args[2]
		doc, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		recA, ok := doc.FindRecord(a)
		if !ok {
			return fmt.Errorf("no record %q in %s", a, path)
		}
		recB, ok := doc.FindRecord(b)
		if !ok {
			return fmt.Errorf("no record %q in %s", b, path)
		}
		diff = mnoda.CompareRecords(recA, recB)
	}

	printer.Diff(a, b, diff)
	if diff != "" {
		return errDifferent
	}
	return nil
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
