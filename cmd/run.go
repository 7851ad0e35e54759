package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/mnoda/internal/ui"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create run records",
}

var runNewCmd = &cobra.Command{
	Use:   "new <out>",
	Short: "Write a document holding a single new run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunNew,
}

func init() {
	runNewCmd.Flags().String("application", "", "application that produced the run (required)")
	runNewCmd.Flags().String("id", "", "global ID of the run (default: a random UUID)")
	runNewCmd.Flags().String("version", "", "application version")
	runNewCmd.Flags().String("user", "", "user who launched the run")
	_ = runNewCmd.MarkFlagRequired("application")

	runCmd.AddCommand(runNewCmd)
	rootCmd.AddCommand(runCmd)
}

func runRunNew(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	application, _ := cmd.Flags().GetString("application")
	version, _ := cmd.Flags().GetString("version")
	user, _ := cmd.Flags().GetString("user")
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = uuid.NewString()
	}
	if application == "" {
		return fmt.Errorf("--application must not be empty")
	}

	run := mnoda.NewRun(mnoda.GlobalID(id), application, version, user)
	doc := mnoda.NewDocument()
	doc.Add(run)
	if err := saveFile(doc, args[0], cfg); err != nil {
		return err
	}
	ui.NewWriter(cmd.ErrOrStderr()).Saved(args[0], run.ID())
	return nil
}
