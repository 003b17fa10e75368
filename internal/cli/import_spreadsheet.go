package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/ir-contacts/internal/config"
	"github.com/mrlokans/ir-contacts/internal/database"
	"github.com/mrlokans/ir-contacts/internal/database/contacts"
	"github.com/mrlokans/ir-contacts/internal/entities"
	"github.com/mrlokans/ir-contacts/internal/importers"
	"github.com/mrlokans/ir-contacts/internal/spreadsheet"
)

// ImportCommand loads a spreadsheet file straight into the database,
// bypassing the HTTP surface. Useful for seeding an instance.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
	Sheets       string
	Username     string
	DryRun       bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Spreadsheet to import: .xlsx, .xls or .csv (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Sheets, "sheets", "", "Comma-separated sheet names to import (default: all data sheets)")
	fs.StringVar(&cmd.Username, "user", "", "Import as this user (default: the single implicit user)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and report without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import contacts from a spreadsheet file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file ./investors.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file ./investors.xlsx -sheets \"Q1,Q2\" -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cmd.FilePath, err)
	}
	defer file.Close()

	wb, err := spreadsheet.Open(file, filepath.Base(cmd.FilePath), "")
	if err != nil {
		return fmt.Errorf("failed to parse spreadsheet: %w", err)
	}

	var selection []string
	for _, name := range strings.Split(cmd.Sheets, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			selection = append(selection, trimmed)
		}
	}

	sheets, err := wb.Select(selection)
	if err != nil {
		return err
	}

	fmt.Printf("Importing from %s:\n", cmd.FilePath)
	for _, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = "(csv)"
		}
		fmt.Printf("  %s: %d rows\n", name, len(sheet.Rows))
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	user := &entities.User{}
	if cmd.Username != "" {
		user, err = db.GetUserByUsername(cmd.Username)
		if err != nil {
			return fmt.Errorf("unknown user %q: %w", cmd.Username, err)
		}
	}

	repo := contacts.NewRepository(db.DB)
	cfg := config.NewConfig()
	pipeline := importers.NewPipeline(repo, importers.NewNormalizer(cfg.Import), cfg.Import.BatchSize)

	if cmd.DryRun {
		previews := pipeline.Preview(sheets)
		named := 0
		for _, preview := range previews {
			if strings.TrimSpace(preview.Name) != "" {
				named++
			}
		}
		fmt.Printf("\nDry run: %d rows parsed, %d importable, %d missing a name\n",
			len(previews), named, len(previews)-named)
		return nil
	}

	result, err := pipeline.Run(user, sheets, func(message string, percent int) {
		fmt.Printf("  [%3d%%] %s\n", percent, message)
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nImported %d contacts, skipped %d\n", result.Imported, result.Skipped)
	for _, importErr := range result.Errors {
		fmt.Printf("  error: %s\n", importErr)
	}
	if !result.Success {
		return fmt.Errorf("import finished with %d failed batches", len(result.Errors))
	}
	return nil
}
