// Package main is the entry point for the TrackWise command line client.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/trackwise/trackwise-go/internal/api"
	"github.com/trackwise/trackwise-go/internal/chat"
	"github.com/trackwise/trackwise-go/internal/config"
	"github.com/trackwise/trackwise-go/internal/entry"
	"github.com/trackwise/trackwise-go/internal/ledger"
	"github.com/trackwise/trackwise-go/internal/logger"
	"github.com/trackwise/trackwise-go/internal/models"
	"github.com/trackwise/trackwise-go/internal/telemetry"
	"github.com/trackwise/trackwise-go/internal/upload"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageText = `Usage: trackwise <command> [flags]

Commands:
  dashboard   fetch the ledger and show totals plus the transaction table
  add         submit one manual income or expense entry
  upload      hand a bill file off to storage for background parsing
  chat        ask free-text questions about your finances
  export      write the full transaction collection as CSV
  chart       render the expense breakdown by category as PNG
  version     print build information
`

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("trackwise %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	shutdown, err := telemetry.Init(ctx, cfg.TraceEnabled)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() { _ = shutdown(context.Background()) }()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

	command := "dashboard"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	var runErr error
	switch command {
	case "dashboard":
		runErr = runDashboard(ctx, client, args)
	case "add":
		runErr = runAdd(ctx, client, args)
	case "upload":
		runErr = runUpload(ctx, client, cfg.HTTPTimeout, args)
	case "chat":
		runErr = runChat(ctx, client)
	case "export":
		runErr = runExport(ctx, client, args)
	case "chart":
		runErr = runChart(ctx, client, args)
	default:
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	if runErr != nil {
		os.Exit(1)
	}
}

func runDashboard(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	filter := fs.String("filter", "all", "show only income or expense rows (all|income|expense)")
	search := fs.String("search", "", "case-insensitive vendor substring")
	_ = fs.Parse(args)

	view := ledger.NewView(client)
	refreshErr := view.Refresh(ctx)

	totals := view.Totals()
	fmt.Printf("Total Income:  %s\n", totals.Income.StringFixed(2))
	fmt.Printf("Total Expense: %s\n", totals.Expense.StringFixed(2))
	fmt.Printf("Net Savings:   %s\n", totals.Net.StringFixed(2))
	fmt.Println()

	if refreshErr != nil {
		fmt.Println("Failed to fetch data.")
		return refreshErr
	}

	view.SetFilter(ledger.Filter(*filter))
	view.SetSearch(*search)
	printTable(view.Visible())
	return nil
}

func printTable(transactions []models.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tType\tAmount\tCategory\tSource\tVendor")
	for _, tx := range transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Type, tx.Amount.StringFixed(2), tx.Category, tx.Source, tx.DisplayVendor())
	}
	_ = w.Flush()
}

func runAdd(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	entryType := fs.String("type", models.TypeIncome, "entry type (income|expense)")
	amount := fs.String("amount", "", "entry amount")
	entryDate := fs.String("date", "", "entry date as YYYY-MM-DD")
	category := fs.String("category", "", "entry category (optional)")
	description := fs.String("description", "", "entry description")
	vendor := fs.String("vendor", "", "vendor or store (optional)")
	_ = fs.Parse(args)

	form := entry.NewForm(client)
	form.SetType(*entryType)
	form.SetAmount(*amount)
	year, month, day := splitDate(*entryDate)
	form.SetDate(year, month, day)
	form.SetCategory(*category)
	form.SetDescription(*description)
	form.SetVendor(*vendor)

	if err := form.Submit(ctx); err != nil {
		fmt.Println(form.Err())
		return err
	}

	fmt.Println("Entry submitted successfully!")
	return nil
}

// splitDate breaks a YYYY-MM-DD flag value into the separate date parts the
// entry form expects. Missing parts come back empty and fail validation.
func splitDate(date string) (string, string, string) {
	parts := strings.SplitN(date, "-", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}

func runUpload(ctx context.Context, client *api.Client, timeout time.Duration, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	_ = fs.Parse(args)

	path := fs.Arg(0)
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: trackwise upload <bill-file>")
		return errors.New("missing bill file argument")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Could not read %s.\n", path)
		return err
	}

	orchestrator := upload.New(client, timeout)
	orchestrator.Select(upload.File{
		Name:      filepath.Base(path),
		MediaType: upload.DetectMediaType(path),
		Content:   content,
	})

	if err := orchestrator.Upload(ctx); err != nil {
		fmt.Println("Bill upload failed. Please try again.")
		return err
	}

	fmt.Println("Bill uploaded. Parsed transactions will appear after a later refresh.")
	return nil
}

func runChat(ctx context.Context, client *api.Client) error {
	session := chat.NewSession(client)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Ask TrackWise a question (empty line or Ctrl-D to quit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := scanner.Text()
		if strings.TrimSpace(question) == "" {
			break
		}

		session.Ask(ctx, question)
		turns := session.Turns()
		if len(turns) > 0 && turns[len(turns)-1].Role == models.RoleAssistant {
			fmt.Println(turns[len(turns)-1].Text)
		}
	}
	return scanner.Err()
}

func runExport(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "transactions.csv", "output file path")
	_ = fs.Parse(args)

	view := ledger.NewView(client)
	if err := view.Refresh(ctx); err != nil {
		fmt.Println("Failed to fetch data.")
		return err
	}

	if err := os.WriteFile(*out, []byte(view.ExportCSV()), 0o644); err != nil {
		fmt.Printf("Could not write %s.\n", *out)
		return err
	}

	fmt.Printf("Exported %d transactions to %s\n", len(view.Transactions()), *out)
	return nil
}

func runChart(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	out := fs.String("o", "expenses.png", "output file path")
	_ = fs.Parse(args)

	view := ledger.NewView(client)
	if err := view.Refresh(ctx); err != nil {
		fmt.Println("Failed to fetch data.")
		return err
	}

	png, err := ledger.ExpenseBreakdownChart(view.Transactions())
	if err != nil {
		fmt.Println("Nothing to chart yet.")
		return err
	}

	if err := os.WriteFile(*out, png, 0o644); err != nil {
		fmt.Printf("Could not write %s.\n", *out)
		return err
	}

	fmt.Printf("Wrote expense breakdown to %s\n", *out)
	return nil
}
