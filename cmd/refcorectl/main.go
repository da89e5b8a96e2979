// refcorectl is the command line interface for managing a reference of
// curated OTUs.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"refcore/internal/archive"
	"refcore/internal/config"
	"refcore/internal/core"
	"refcore/pkg/domain"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "refcorectl",
	Short: "Manage a reference of curated OTUs",
	Long: `refcorectl curates operational taxonomic units from sequence records.

Records are supplied as JSON files. Creation infers a segment plan from
the records, groups them into isolates, and resolves redundant accessions
into the exclusion set. Updates reconcile new records against the stored
plan and exclusion history.`,
	SilenceUsage: true,
}

var createCmd = &cobra.Command{
	Use:   "create <records.json>",
	Short: "Create an OTU from a set of sequence records",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update <otu-id> <records.json>",
	Short: "Reconcile new records into an existing OTU",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var promoteCmd = &cobra.Command{
	Use:   "promote <otu-id> <records.json>",
	Short: "Replace linked sequences with their RefSeq equivalents",
	Args:  cobra.ExactArgs(2),
	RunE:  runPromote,
}

var excludeCmd = &cobra.Command{
	Use:   "exclude <otu-id> <accession>...",
	Short: "Exclude accessions from an OTU",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExclude,
}

var allowCmd = &cobra.Command{
	Use:   "allow <otu-id> <accession>",
	Short: "Remove an accession from an OTU's exclusion set",
	Args:  cobra.ExactArgs(2),
	RunE:  runAllow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all OTUs in the reference",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <otu-id>",
	Short: "Show a single OTU",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the cached record archive",
}

var archivePutCmd = &cobra.Command{
	Use:   "put <records.json>",
	Short: "Cache records in the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchivePut,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached accession versions",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var (
	createTaxid        int
	createName         string
	createAcronym      string
	createMolType      string
	createStrandedness string
	createTopology     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "refcore.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	createCmd.Flags().IntVar(&createTaxid, "taxid", 0, "NCBI taxonomy id (required)")
	createCmd.Flags().StringVar(&createName, "name", "", "organism name (required)")
	createCmd.Flags().StringVar(&createAcronym, "acronym", "", "organism acronym")
	createCmd.Flags().StringVar(&createMolType, "molecule-type", "", "nucleic acid type, e.g. RNA")
	createCmd.Flags().StringVar(&createStrandedness, "strandedness", "", "single or double")
	createCmd.Flags().StringVar(&createTopology, "topology", "", "linear or circular")
	_ = createCmd.MarkFlagRequired("taxid")
	_ = createCmd.MarkFlagRequired("name")

	archiveCmd.AddCommand(archivePutCmd, archiveListCmd)
	rootCmd.AddCommand(createCmd, updateCmd, promoteCmd, excludeCmd, allowCmd, listCmd, getCmd, archiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func openService() (*core.Service, func(), error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := config.OpenPersistentStore(cfg, core.NewDefaultRulesEngine())
	if err != nil {
		return nil, nil, err
	}
	svc := core.NewService(store,
		core.WithLogger(log),
		core.WithLengthTolerance(cfg.Engine.LengthTolerance),
	)
	cleanup := func() {
		if closer, ok := store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		_ = log.Sync()
	}
	return svc, cleanup, nil
}

func loadRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return records, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCreate(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	otu, _, err := svc.CreateOTU(cmd.Context(), core.CreateParams{
		Taxid:    createTaxid,
		Name:     createName,
		Acronym:  createAcronym,
		Molecule: domain.Molecule{Type: createMolType, Strandedness: createStrandedness, Topology: createTopology},
		Records:  records,
	})
	if err != nil {
		return err
	}
	return printJSON(otu)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := loadRecords(args[1])
	if err != nil {
		return err
	}
	otu, _, err := svc.UpdateOTU(cmd.Context(), args[0], records)
	if err != nil {
		return err
	}
	return printJSON(otu)
}

func runPromote(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := loadRecords(args[1])
	if err != nil {
		return err
	}
	otu, promoted, _, err := svc.PromoteOTU(cmd.Context(), args[0], records)
	if err != nil {
		return err
	}
	if len(promoted) == 0 {
		fmt.Fprintln(os.Stderr, "no sequences promoted")
	}
	return printJSON(otu)
}

func runExclude(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	otu, _, err := svc.ExcludeAccessions(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}
	return printJSON(otu)
}

func runAllow(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	otu, _, err := svc.AllowAccession(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return printJSON(otu)
}

func runList(*cobra.Command, []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()
	return printJSON(svc.ListOTUs())
}

func runGet(_ *cobra.Command, args []string) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	otu, ok := svc.GetOTU(args[0])
	if !ok {
		return fmt.Errorf("otu %q not found", args[0])
	}
	return printJSON(otu)
}

func openArchive(cmd *cobra.Command) (*archive.Archive, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	blobs, err := config.OpenBlobStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return archive.New(blobs), nil
}

func runArchivePut(cmd *cobra.Command, args []string) error {
	arch, err := openArchive(cmd)
	if err != nil {
		return err
	}
	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := arch.Put(cmd.Context(), record); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "cached %d records\n", len(records))
	return nil
}

func runArchiveList(cmd *cobra.Command, _ []string) error {
	arch, err := openArchive(cmd)
	if err != nil {
		return err
	}
	versions, err := arch.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}
