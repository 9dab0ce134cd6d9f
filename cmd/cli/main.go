package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"cloud.google.com/go/storage"
	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/googleauth"
	infraBQ "github.com/dvloznov/statement-ledger/internal/infra/bigquery"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pdftext"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/dvloznov/statement-ledger/internal/statementfile"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "parse":
		runParse(log)
	case "upload":
		runUpload(log)
	case "inspect":
		runInspect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Process every pending statement in the inbox")
	fmt.Println("  parse     Parse a local statement PDF and print its transactions")
	fmt.Println("  upload    Upload a statement PDF to the GCS inbox")
	fmt.Println("  inspect   List ledger transactions mirrored to BigQuery")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger, validate bool) *config.Config {
	load := config.LoadRaw
	if validate {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Minute, "Maximum duration of the run")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, true)
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build processor")
	}
	defer a.Close()

	summary, err := a.Processor.ProcessAccountStatements(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}

	fmt.Printf("Seen: %d, processed: %d, skipped: %d, failed: %d, transactions: %d\n",
		summary.Seen, summary.Processed, summary.Skipped, summary.Failed, summary.Transactions)
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local statement PDF")
	year := fs.Int("year", 0, "Statement year (defaults to the year in the file name)")
	csvPath := fs.String("csv", "", "Write transactions as CSV to this path")
	xlsxPath := fs.String("xlsx", "", "Append transactions to this workbook")
	sheet := fs.String("sheet", "Transaktionen", "Worksheet used with -xlsx")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli parse -file PATH [-year YYYY] [-csv PATH] [-xlsx PATH]")
	}

	if *year == 0 {
		y, err := statementfile.YearFromName(filepath.Base(*filePath))
		if err != nil {
			log.Fatal().Err(err).Msg("Error: -year is required when the file name carries no year")
		}
		*year = y
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	lines, err := pdftext.NewFitzExtractor().Lines(ctx, data)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to extract text")
	}

	parser := statement.NewParser(statement.DefaultMarkers(), log)
	res, err := parser.Parse(lines, strconv.Itoa(*year))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse statement")
	}

	table := ledger.NewTable(nil)
	for _, tx := range res.Transactions {
		table.AppendTransaction(tx)
	}

	fmt.Printf("\n=== Balances ===\n")
	fmt.Printf("Opening: %.2f (line %d)\n", res.Opening.Value, res.Opening.LineIndex)
	fmt.Printf("Closing: %.2f (line %d)\n", res.Closing.Value, res.Closing.LineIndex)
	fmt.Printf("\n=== Transactions (%d, %d skipped) ===\n", len(res.Transactions), res.Skipped)
	if err := ledger.WriteCSV(os.Stdout, table.Rows); err != nil {
		log.Fatal().Err(err).Msg("Failed to print transactions")
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create CSV file")
		}
		defer f.Close()
		if err := ledger.WriteCSV(f, table.Rows); err != nil {
			log.Fatal().Err(err).Msg("Failed to write CSV file")
		}
		fmt.Printf("Wrote %s\n", *csvPath)
	}

	if *xlsxPath != "" && table.Len() > 0 {
		store := ledger.NewXLSXStore(*xlsxPath, *sheet)
		existing, err := store.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load workbook")
		}
		for _, tx := range res.Transactions {
			existing.AppendTransaction(tx)
		}
		if err := store.Save(ctx, existing); err != nil {
			log.Fatal().Err(err).Msg("Failed to save workbook")
		}
		fmt.Printf("Appended %d rows to %s\n", table.Len(), *xlsxPath)
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name (defaults to GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to inbox/<filename>)")
	filePath := fs.String("file", "", "Path to local PDF file")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, false)
	if *bucketName == "" {
		*bucketName = cfg.Documents.GCSBucket
	}
	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = gcsuploader.ObjectName(cfg.InboxFolder(), filepath.Base(*filePath))
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	store, err := gcsuploader.NewGCSStore(ctx, *bucketName,
		googleauth.ClientOptions(log, cfg.Google.CredentialsFile, storage.ScopeReadWrite)...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer store.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := store.UploadObject(ctx, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsuploader.URI(*bucketName, *objectName))
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	from := fs.String("from", "", "First transaction date (YYYY-MM-DD)")
	to := fs.String("to", "", "Last transaction date (YYYY-MM-DD, defaults to today)")
	fs.Parse(os.Args[2:])

	if *from == "" {
		log.Fatal().Msg("Error: -from is required")
	}
	start, err := civil.ParseDate(*from)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -from date")
	}
	end := civil.DateOf(time.Now())
	if *to != "" {
		if end, err = civil.ParseDate(*to); err != nil {
			log.Fatal().Err(err).Msg("Invalid -to date")
		}
	}

	cfg := loadConfig(log, false)
	if !cfg.BigQuery.Enabled() {
		log.Fatal().Msg("Error: BIGQUERY_PROJECT is not set")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset,
		googleauth.ClientOptions(log, cfg.Google.CredentialsFile, bigquery.Scope)...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	rows, err := repo.QueryTransactions(ctx, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query transactions")
	}

	fmt.Printf("\n=== Transactions %s .. %s (%d) ===\n", start, end, len(rows))
	for i, row := range rows {
		amount := "?"
		if row.Amount != nil {
			amount = row.Amount.FloatString(2)
		}
		fmt.Printf("\n%d. %s\n", i+1, row.Name)
		fmt.Printf("   Date:      %s\n", row.TransactionDate)
		fmt.Printf("   Amount:    %s\n", amount)
		fmt.Printf("   Direction: %s\n", row.Direction)
		fmt.Printf("   File:      %s\n", row.FileName)
	}
	fmt.Println()
}
