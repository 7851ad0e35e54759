package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/mnoda/internal/ui"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a document in the format implied by the output extension",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	in, out := args[0], args[1]
	doc, err := loadFile(in)
	if err != nil {
		return fmt.Errorf("loading %s: %w", in, err)
	}
	if err := saveFile(doc, out, cfg); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	logger.Info("converted document", zap.String("in", in), zap.String("out", out), zap.Int64("bytes", info.Size()))
	ui.NewWriter(cmd.ErrOrStderr()).Converted(in, out, info.Size())
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
