package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mnoda/internal/ui"
	"github.com/papapumpkin/mnoda/pkg/mnoda/codec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize the records and relationships in a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	doc, err := codec.LoadDocument(path, c, nil)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	types := make(map[string]int)
	for _, e := range doc.Records() {
		types[e.Base().Type()]++
	}
	ui.NewWriter(cmd.ErrOrStderr()).Inspect(ui.InspectData{
		Path:          path,
		Format:        c.Name(),
		Size:          info.Size(),
		ModTime:       info.ModTime(),
		Types:         types,
		Relationships: len(doc.Relationships()),
	})
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
