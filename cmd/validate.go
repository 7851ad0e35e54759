package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/mnoda/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check that documents load without errors",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	printer := ui.NewWriter(cmd.ErrOrStderr())
	failed := 0
	for _, path := range args {
		doc, err := loadFile(path)
		if err != nil {
			logger.Debug("validation failed", zap.String("path", path), zap.Error(err))
			printer.Invalid(path, err)
			failed++
			continue
		}
		printer.Valid(path, len(doc.Records()), len(doc.Relationships()))
	}
	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d file(s)", failed, len(args))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
