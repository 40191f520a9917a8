package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"claimflow/internal/bootstrap"
	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/report"
	"claimflow/internal/service"
)

type claimResult struct {
	Dir   string                 `json:"dir"`
	Claim *domain.ProcessedClaim `json:"claim,omitempty"`
	Error string                 `json:"error,omitempty"`
}

func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print results as JSON instead of a summary")
	xlsxOut := fs.String("xlsx", "", "also write the decisions to this spreadsheet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one claim directory is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	pipeline, err := bootstrap.NewPipeline(cfg)
	if err != nil {
		return err
	}
	svc := service.NewClaimService(pipeline.Processor, nil, nil, nil, &cfg.Upload, &cfg.S3)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirs := fs.Args()
	bar := newProgressBar(len(dirs), "Processing claims")
	results := make([]claimResult, 0, len(dirs))
	for _, dir := range dirs {
		bar.Describe(color.BlueString("Processing %s", filepath.Base(dir)))
		results = append(results, processDir(ctx, svc, dir))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printSummary(os.Stdout, results)
	}

	if *xlsxOut != "" {
		if err := writeSpreadsheet(*xlsxOut, results); err != nil {
			return err
		}
		color.Green("Wrote %s", *xlsxOut)
	}
	return nil
}

func processDir(ctx context.Context, svc service.ClaimService, dir string) claimResult {
	files, err := loadClaimDir(dir)
	if err != nil {
		return claimResult{Dir: dir, Error: err.Error()}
	}
	claim, err := svc.Submit(ctx, service.SubmitInput{Files: files})
	if err != nil {
		return claimResult{Dir: dir, Error: err.Error()}
	}
	return claimResult{Dir: dir, Claim: claim}
}

// loadClaimDir reads every regular file in dir, sorted by name. Hidden files are ignored.
func loadClaimDir(dir string) ([]service.UploadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []service.UploadedFile
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		files = append(files, service.UploadedFile{
			FileName: e.Name(),
			Size:     int64(len(content)),
			Content:  bytes.NewReader(content),
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrNoDocuments)
	}
	return files, nil
}

func printSummary(w io.Writer, results []claimResult) {
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s  %s\n", color.RedString("%-9s", "error"), r.Dir)
			fmt.Fprintf(w, "           %s\n", r.Error)
			continue
		}
		d := r.Claim.Decision
		fmt.Fprintf(w, "%s  %s  approved=%.2f rejected=%.2f\n", statusLabel(d.Status), r.Dir, d.AmountApproved, d.AmountRejected)
		fmt.Fprintf(w, "           %s\n", d.Reason)
		for _, doc := range r.Claim.Documents {
			if doc.Status == domain.OutcomeFailure {
				fmt.Fprintf(w, "           %s %s: %s\n", color.YellowString("!"), doc.FileName, doc.Error)
			}
		}
	}
}

func statusLabel(s domain.DecisionStatus) string {
	label := fmt.Sprintf("%-9s", s)
	switch s {
	case domain.DecisionApproved:
		return color.GreenString(label)
	case domain.DecisionPending:
		return color.YellowString(label)
	default:
		return color.RedString(label)
	}
}

func writeSpreadsheet(path string, results []claimResult) error {
	records := make([]domain.ClaimRecord, 0, len(results))
	for _, r := range results {
		if r.Claim == nil {
			continue
		}
		rec, err := domain.NewClaimRecord(r.Claim, nil)
		if err != nil {
			return err
		}
		records = append(records, *rec)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(out, report.FormatXLSX, records); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("claims"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
