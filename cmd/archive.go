package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mnoda/internal/archive"
	"github.com/papapumpkin/mnoda/internal/config"
	"github.com/papapumpkin/mnoda/internal/ui"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
	"github.com/papapumpkin/mnoda/pkg/mnoda/codec"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Store and retrieve records in the local archive",
	Long:  "The archive is a SQLite database (archive_path in config) collecting records from many documents. Records with a local id are stored under a fresh UUID.",
}

var archivePutCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Store every record and relationship of the given documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArchivePut,
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored record",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveGet,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the IDs of stored records",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveExportCmd = &cobra.Command{
	Use:   "export <out>",
	Short: "Write the whole archive as a single document",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveExport,
}

func init() {
	archiveCmd.AddCommand(archivePutCmd, archiveGetCmd, archiveListCmd, archiveExportCmd)
	rootCmd.AddCommand(archiveCmd)
}

// openArchive opens the configured archive. The returned func closes it.
func openArchive(cmd *cobra.Command) (*archive.Archive, config.Config, func(), error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	a, err := archive.Open(cmd.Context(), cfg.ArchivePath, logger)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	return a, cfg, func() {
		a.Close()
		logger.Sync() //nolint:errcheck
	}, nil
}

func runArchivePut(cmd *cobra.Command, args []string) error {
	a, _, done, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer done()

	printer := ui.NewWriter(cmd.ErrOrStderr())
	for _, path := range args {
		doc, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := a.PutDocument(cmd.Context(), doc); err != nil {
			return err
		}
		printer.Valid(path, len(doc.Records()), len(doc.Relationships()))
	}
	return nil
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	a, _, done, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer done()

	e, err := a.Record(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}
	data, err := codec.IndentedJSON.Marshal(e.ToNode())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	a, _, done, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer done()

	ids, err := a.IDs(cmd.Context())
	if err != nil {
		return err
	}
	ui.NewWriter(cmd.OutOrStdout()).IDs(ids)
	return nil
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	a, cfg, done, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer done()

	doc, err := a.Document(cmd.Context(), mnoda.NewRecordLoaderWithAllKnownTypes())
	if err != nil {
		return err
	}
	return saveFile(doc, args[0], cfg)
}
