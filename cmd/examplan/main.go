// Command examplan generates exam period plans offline and issues API tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/service"
	"github.com/noah-isme/exam-period-api/internal/source"
	"github.com/noah-isme/exam-period-api/pkg/config"
	"github.com/noah-isme/exam-period-api/pkg/export"
	"github.com/noah-isme/exam-period-api/pkg/logger"
)

type options struct {
	file        string
	out         string
	formats     string
	horizon     int
	semester    string
	dumpPeriods string
	issueToken  bool
	subject     string
	role        string
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "YAML period file; overrides SOURCE_MODE")
	flag.StringVar(&opts.out, "out", ".", "Output directory for rendered plans")
	flag.StringVar(&opts.formats, "formats", "md", "Comma separated formats: md, ics, pdf, csv, xlsx")
	flag.IntVar(&opts.horizon, "horizon", -1, "Years beyond the current year; -1 uses PLANNER_HORIZON_YEARS")
	flag.StringVar(&opts.semester, "semester", "", "Restrict output to one semester")
	flag.StringVar(&opts.dumpPeriods, "dump-periods", "", "Write the fetched periods as YAML to this path")
	flag.BoolVar(&opts.issueToken, "issue-token", false, "Print a signed access token and exit")
	flag.StringVar(&opts.subject, "subject", "", "Token subject for -issue-token")
	flag.StringVar(&opts.role, "role", string(models.RoleAdmin), "Token role for -issue-token: admin or viewer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, opts, logr, os.Stdout, time.Now); err != nil {
		logr.Fatal("examplan failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logr *zap.Logger, stdout io.Writer, now func() time.Time) error {
	if opts.issueToken {
		return issueToken(cfg, opts, logr, stdout)
	}

	rules, err := config.LoadCalendar(cfg.Calendar.File)
	if err != nil {
		return fmt.Errorf("load calendar rules: %w", err)
	}
	src, err := periodSource(cfg, opts, rules, logr)
	if err != nil {
		return err
	}

	if opts.dumpPeriods != "" {
		if err := dumpPeriods(ctx, src, opts.dumpPeriods); err != nil {
			return err
		}
		logr.Info("periods written", zap.String("path", opts.dumpPeriods))
	}

	plans := service.NewExamPlanService(src, service.BuildPlanner(cfg.Planner, rules, now), rules, nil, nil, nil,
		service.ExamPlanConfig{HorizonYears: cfg.Planner.HorizonYears}, logr, now)
	exporter := service.NewExportService(plans, export.NewRegistry(export.Options{}), nil, nil, nil, service.ExportConfig{}, logr)

	query := dto.ExamPlanQuery{Semester: opts.semester}
	if opts.horizon >= 0 {
		query.HorizonYears = &opts.horizon
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, format := range splitFormats(opts.formats) {
		artifact, err := exporter.Render(ctx, format, query)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := filepath.Join(opts.out, artifact.Filename)
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logr.Info("plan written", zap.String("format", string(artifact.Format)), zap.String("path", path))
		fmt.Fprintln(stdout, path)
	}
	return nil
}

func periodSource(cfg *config.Config, opts options, rules *config.CalendarRules, logr *zap.Logger) (source.PeriodSource, error) {
	if opts.file != "" {
		return source.NewFile(opts.file), nil
	}
	switch cfg.Source.Mode {
	case config.SourceModeFile:
		return source.NewFile(cfg.Source.File), nil
	case config.SourceModeDatabase:
		return nil, errors.New("SOURCE_MODE=database is served by the API; pass -file or use the scraper")
	default:
		return source.NewScraper(source.ScraperConfig{
			LectureURL:    cfg.Source.LectureURL,
			HIPURL:        cfg.Source.HIPURL,
			UserAgent:     cfg.Source.UserAgent,
			Timeout:       cfg.Source.Timeout,
			KnownHIPWeeks: rules.KnownHIPWeeks,
		}, nil, logr), nil
	}
}

func dumpPeriods(ctx context.Context, src source.PeriodSource, path string) error {
	periods, err := src.FetchPeriods(ctx)
	if err != nil {
		return fmt.Errorf("fetch periods: %w", err)
	}
	data, err := source.MarshalYAML(periods)
	if err != nil {
		return fmt.Errorf("encode periods: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write periods: %w", err)
	}
	return nil
}

func issueToken(cfg *config.Config, opts options, logr *zap.Logger, stdout io.Writer) error {
	auth := service.NewAuthService(nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	token, err := auth.IssueToken(dto.TokenRequest{Subject: opts.subject, Role: models.Role(opts.role)})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(stdout, token.AccessToken)
	return nil
}

func splitFormats(raw string) []string {
	parts := strings.Split(raw, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
