// Package session runs the interactive question loop on top of the analyzer.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/export"
)

// Loop reads commands and free-form questions from in and writes replies to
// out. Built-in commands never touch the model; anything that is not a
// command is treated as a question about the loaded document.
type Loop struct {
	svc      *analyzer.Service
	exporter *export.Service
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
}

// NewLoop wires a loop over the given analyzer. Nil in/out default to
// stdin/stdout, nil logger to slog.Default().
func NewLoop(svc *analyzer.Service, exporter *export.Service, in io.Reader, out io.Writer, logger *slog.Logger) *Loop {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{svc: svc, exporter: exporter, in: in, out: out, logger: logger}
}

// Run blocks until the user quits, input ends, or ctx is canceled. Model
// failures are printed and the loop keeps going; the loaded document and
// profile survive them.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, "Interactive mode. Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out, "\nGoodbye!")
			return ctx.Err()
		default:
		}

		fmt.Fprint(l.out, "\nquestion> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(l.out, "\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		command := strings.ToLower(tokens[0])

		switch {
		case len(tokens) == 1 && (command == "quit" || command == "exit" || command == "q"):
			fmt.Fprintln(l.out, "Goodbye!")
			return nil
		case len(tokens) == 1 && command == "help":
			fmt.Fprintln(l.out, l.svc.Help())
		case len(tokens) == 1 && command == "fields":
			l.printFields()
		case len(tokens) == 1 && command == "summary":
			l.runSummary(ctx)
		case len(tokens) == 1 && command == "extract":
			l.runExtract(ctx)
		case command == "export":
			l.runExport(tokens)
		default:
			l.runQuestion(ctx, line)
		}
	}
}

func (l *Loop) printFields() {
	if !l.svc.Loaded() {
		fmt.Fprintln(l.out, "No document loaded.")
		return
	}
	matched := l.svc.Fields()
	if len(matched) == 0 {
		fmt.Fprintln(l.out, "No fields matched the current profile patterns.")
		return
	}
	fmt.Fprintln(l.out, "Pattern-matched fields:")
	for _, name := range l.svc.Profile().FieldNames() {
		if values, ok := matched[name]; ok {
			fmt.Fprintf(l.out, "  %s: %s\n", name, strings.Join(values, "; "))
		}
	}
}

func (l *Loop) runSummary(ctx context.Context) {
	if !l.svc.Loaded() {
		fmt.Fprintln(l.out, "No document loaded.")
		return
	}
	fmt.Fprintln(l.out, "Thinking...")
	res, err := l.svc.Summary(ctx)
	if err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(l.out, res.Content)
	fmt.Fprintf(l.out, "[model %s, %d ms]\n", res.Model, res.Duration.Milliseconds())
}

func (l *Loop) runExtract(ctx context.Context) {
	if !l.svc.Loaded() {
		fmt.Fprintln(l.out, "No document loaded.")
		return
	}
	fmt.Fprintln(l.out, "Extracting structured data...")
	data, raw, err := l.svc.ExtractStructured(ctx)
	if err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		if len(raw) > 0 {
			fmt.Fprintf(l.out, "Raw model reply:\n%s\n", raw)
		}
		return
	}
	fmt.Fprintln(l.out, "Extracted information:")
	for _, name := range l.svc.Profile().StructuredFieldNames() {
		if v, ok := data[name]; ok && v != "" {
			fmt.Fprintf(l.out, "  %s: %s\n", name, v)
		}
	}
}

func (l *Loop) runExport(tokens []string) {
	if len(tokens) != 2 {
		fmt.Fprintln(l.out, "usage: export <path.xlsx>")
		return
	}
	req, err := l.svc.ExportRequest()
	if err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return
	}
	data, err := l.exporter.ExportFieldsXLSX(req)
	if err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return
	}
	path := tokens[1]
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(l.out, "Wrote %s\n", path)
}

func (l *Loop) runQuestion(ctx context.Context, question string) {
	if !l.svc.Loaded() {
		fmt.Fprintln(l.out, "No document loaded. Pass --pdf on startup to analyze one.")
		return
	}
	fmt.Fprintln(l.out, "Thinking...")
	res, err := l.svc.Ask(ctx, question)
	if err != nil {
		fmt.Fprintf(l.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(l.out, res.Content)
	fmt.Fprintf(l.out, "[model %s, %d ms]\n", res.Model, res.Duration.Milliseconds())
}
