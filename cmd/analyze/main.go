package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/common"
	"docanalyzer/internal/export"
	"docanalyzer/internal/llm/ollama"
	"docanalyzer/internal/pdf"
	"docanalyzer/internal/session"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		pdfPath     = flag.String("pdf", "", "path to the PDF document")
		docType     = flag.String("type", "generic", "document type (contract, resume, report, generic)")
		question    = flag.String("question", "", "ask a single question and exit")
		interactive = flag.Bool("interactive", false, "start interactive mode")
		extract     = flag.Bool("extract", false, "extract structured data with the model")
		exportPath  = flag.String("export", "", "write extracted fields to an XLSX file")
		model       = flag.String("model", "", "model name (overrides OLLAMA_MODEL)")
		host        = flag.String("host", "", "Ollama endpoint (overrides OLLAMA_HOST)")
		timeout     = flag.Duration("timeout", 0, "model call timeout (overrides OLLAMA_TIMEOUT)")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if *model != "" {
		cfg.Ollama.Model = *model
	}
	if *host != "" {
		cfg.Ollama.Host = *host
	}
	if *timeout > 0 {
		cfg.Ollama.Timeout = *timeout
	}

	// Answers go to stdout; logs stay on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ollama.NewClient(ollama.Config{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
	}, logger)
	extractor := pdf.NewExtractor(pdf.Config{MaxPages: cfg.PDF.MaxPages}, logger)
	svc := analyzer.NewService(extractor, client, client, logger)
	exporter := export.NewService(logger)

	if err := svc.SelectProfile(*docType); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	if *pdfPath == "" {
		if *interactive {
			runInteractive(ctx, svc, exporter, logger)
			return
		}
		fmt.Println("Use --help to see available options.")
		fmt.Println()
		fmt.Println("Quick start:")
		fmt.Println("  analyze --pdf document.pdf --type contract --interactive")
		fmt.Println(`  analyze --pdf resume.pdf --type resume --question "What are their skills?"`)
		return
	}

	fmt.Printf("Analyzing %s document: %s\n", svc.Profile().Type, filepath.Base(*pdfPath))
	if err := svc.Load(ctx, *pdfPath); err != nil {
		printError("Error analyzing document: %v\n", err)
		os.Exit(1)
	}
	doc := svc.Document()
	fmt.Printf("Pages processed: %d\n", doc.Pages)
	fmt.Printf("File size: %d bytes\n", doc.FileSize)

	// One-shot modes verify the model is installed before the real call.
	if *question != "" || *extract {
		if err := svc.CheckModel(ctx); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *extract {
		fmt.Println("Extracting structured data...")
		data, raw, err := svc.ExtractStructured(ctx)
		if err != nil {
			printError("Error: %v\n", err)
			if len(raw) > 0 {
				fmt.Printf("Raw model reply:\n%s\n", raw)
			}
			os.Exit(1)
		}
		fmt.Println("Extracted information:")
		for _, name := range svc.Profile().StructuredFieldNames() {
			if v, ok := data[name]; ok && v != "" {
				fmt.Printf("  %s: %s\n", name, v)
			}
		}
	}

	if *question != "" {
		fmt.Printf("Answering: %s\n", *question)
		res, err := svc.Ask(ctx, *question)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(exitCode(err))
		}
		fmt.Println(res.Content)
	}

	if *exportPath != "" {
		req, err := svc.ExportRequest()
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		data, err := exporter.ExportFieldsXLSX(req)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*exportPath, data, 0644); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportPath)
	}

	if *interactive {
		runInteractive(ctx, svc, exporter, logger)
		return
	}

	if *question == "" && !*extract && *exportPath == "" {
		printMatchedFields(svc)
	}
}

func runInteractive(ctx context.Context, svc *analyzer.Service, exporter *export.Service, logger *slog.Logger) {
	err := session.NewLoop(svc, exporter, nil, nil, logger).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func printMatchedFields(svc *analyzer.Service) {
	matched := svc.Fields()
	if len(matched) == 0 {
		fmt.Println("No fields matched the profile patterns. Try --question or --interactive.")
		return
	}
	fmt.Println("Pattern-matched fields:")
	for _, name := range svc.Profile().FieldNames() {
		if values, ok := matched[name]; ok {
			fmt.Printf("  %s: %s\n", name, strings.Join(values, "; "))
		}
	}
}

func exitCode(err error) int {
	if errors.Is(err, common.ErrUnknownProfile) || errors.Is(err, common.ErrInvalidInput) {
		return 2
	}
	return 1
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
