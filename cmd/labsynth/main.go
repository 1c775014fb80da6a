// Command labsynth runs the lab synthesis pipeline from the command line:
// it reads a patient's lab results from a JSON file and prints the rendered
// summary, and carries maintenance subcommands for the analyte catalog and
// the review store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/catalog"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/report"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/review"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return showHelp()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "synthesize":
		return runSynthesize(ctx, args[1:])
	case "validate-catalog":
		return runValidateCatalog(args[1:])
	case "review":
		return runReview(ctx, args[1:])
	case "help", "--help", "-h":
		return showHelp()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		return showHelp()
	}
}

func showHelp() error {
	help := `
Longitudinal Lab Synthesizer

Usage:
  labsynth <command> [options]

Commands:
  synthesize        Synthesize a patient summary from a JSON lab file
  validate-catalog  Load and validate the analyte catalog
  review            Export or import staging-label reviews

Examples:
  # Render a Markdown summary from a lab results file
  labsynth synthesize --input labs.json --format md

  # Validate a custom catalog file
  labsynth validate-catalog --catalog analytes.yaml

  # Export reviews to a file
  labsynth review export --output reviews.json

  # Import reviews, skipping existing patient+analyte pairs
  labsynth review import --input reviews.json
`
	fmt.Println(help)
	return nil
}

// quietLogger keeps pipeline logging off stdout so rendered reports stay clean.
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func loadCatalog(catalogPath string, logger *logrus.Logger) (*catalog.Catalog, error) {
	return catalog.Load(domain.CatalogConfig{File: catalogPath}, logger)
}

func runSynthesize(ctx context.Context, args []string) error {
	var inputPath, format, catalogPath string
	format = "md"

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--input", "-i":
			if i+1 < len(args) {
				inputPath = args[i+1]
				i++
			}
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "--catalog", "-c":
			if i+1 < len(args) {
				catalogPath = args[i+1]
				i++
			}
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var data domain.PatientData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	logger := quietLogger()
	cat, err := loadCatalog(catalogPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	renderer, err := report.ForFormat(format, cat)
	if err != nil {
		return fmt.Errorf("unknown format %q (use md, latex, or json)", format)
	}

	synthesizer, err := service.NewSynthesizerService(logger, cat)
	if err != nil {
		return err
	}

	summary, err := synthesizer.Synthesize(ctx, &data)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	return renderer.Render(os.Stdout, summary)
}

func runValidateCatalog(args []string) error {
	var catalogPath string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--catalog", "-c":
			if i+1 < len(args) {
				catalogPath = args[i+1]
				i++
			}
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	cat, err := loadCatalog(catalogPath, quietLogger())
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	source := "builtin"
	if catalogPath != "" {
		source = catalogPath
	}
	fmt.Printf("Catalog OK: %d analytes (%s)\n", cat.Len(), source)
	return nil
}

func runReview(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("review requires a subcommand: export or import")
	}

	sub := args[0]
	args = args[1:]

	var inputPath, outputPath string
	cfg := defaultReviewConfig()

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--input", "-i":
			if i+1 < len(args) {
				inputPath = args[i+1]
				i++
			}
		case "--output", "-o":
			if i+1 < len(args) {
				outputPath = args[i+1]
				i++
			}
		case "--db":
			if i+1 < len(args) {
				cfg.SQLitePath = args[i+1]
				i++
			}
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	store, err := review.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open review store: %w", err)
	}
	defer store.Close()

	switch sub {
	case "export":
		out := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		if err := store.ExportJSON(ctx, out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if outputPath != "" {
			fmt.Printf("Exported reviews to %s\n", outputPath)
		}
		return nil

	case "import":
		if inputPath == "" {
			return fmt.Errorf("--input is required")
		}
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		imported, skipped, err := store.ImportJSON(ctx, f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("Imported %d reviews (%d skipped as duplicates)\n", imported, skipped)
		return nil

	default:
		return fmt.Errorf("unknown review subcommand: %s", sub)
	}
}

// defaultReviewConfig mirrors the server's review defaults so CLI and server
// share the same store when run from the same directory.
func defaultReviewConfig() domain.ReviewConfig {
	return domain.ReviewConfig{
		Backend:    "sqlite",
		SQLitePath: "labsynth-reviews.db",
	}
}
