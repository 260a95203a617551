package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/source"
	"github.com/noah-isme/exam-period-api/pkg/config"
)

const periodFile = `
semesters:
  - name: Sommersemester 2025
    lecture: {start: 2025-03-17, end: 2025-07-11}
    hip: {start: 2025-05-12, end: 2025-05-16}
  - name: Wintersemester 2025/26
    lecture: {start: 2025-09-22, end: 2026-02-06}
    hip: {start: 2025-11-17, end: 2025-11-21}
`

func testConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: "secret", Expiration: time.Hour, Issuer: "examplan"},
		Source:  config.SourceConfig{Mode: config.SourceModeScrape},
		Planner: config.PlannerConfig{HorizonYears: 1, ShiftMin: -2, ShiftMax: 2, LastBlockOffsets: []int{0, 1}, BufferMin: 6, BufferMax: 10},
	}
}

func clock() time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func TestRunWritesSelectedFormats(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "periods.yaml")
	require.NoError(t, os.WriteFile(file, []byte(periodFile), 0o644))
	out := filepath.Join(dir, "out")
	dump := filepath.Join(dir, "dump.yaml")

	var stdout bytes.Buffer
	err := run(context.Background(), testConfig(), options{
		file:        file,
		out:         out,
		formats:     "md, csv,ics",
		horizon:     0,
		dumpPeriods: dump,
	}, zap.NewNop(), &stdout, clock)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], filepath.Join(out, "pruefungszeitraeume_alle_0j_")))
	assert.True(t, strings.HasSuffix(lines[0], ".md"))
	assert.True(t, strings.HasSuffix(lines[1], ".csv"))
	assert.True(t, strings.HasSuffix(lines[2], ".ics"))
	for _, path := range lines {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	dumped, err := os.ReadFile(dump)
	require.NoError(t, err)
	periods, err := source.ParseYAML(dumped)
	require.NoError(t, err)
	assert.Len(t, periods.Lectures, 2)
	assert.Len(t, periods.HIPs, 2)
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "periods.yaml")
	require.NoError(t, os.WriteFile(file, []byte(periodFile), 0o644))

	err := run(context.Background(), testConfig(), options{file: file, out: dir, formats: "docx", horizon: -1}, zap.NewNop(), &bytes.Buffer{}, clock)
	assert.ErrorContains(t, err, "render docx")
}

func TestRunIssuesToken(t *testing.T) {
	var stdout bytes.Buffer
	err := run(context.Background(), testConfig(), options{issueToken: true, subject: "pruefungsamt", role: "admin"}, zap.NewNop(), &stdout, clock)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(stdout.String()), ".")))

	err = run(context.Background(), testConfig(), options{issueToken: true, role: "admin"}, zap.NewNop(), &bytes.Buffer{}, clock)
	assert.Error(t, err)
}
