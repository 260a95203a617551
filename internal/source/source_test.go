package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const periodFile = `
semesters:
  - name: Sommersemester 2024
    lecture: {start: 2024-03-18, end: 2024-07-12}
    hip: {start: 2024-05-13, end: 2024-05-17}
  - name: "WS 2024/25 Wintersemester"
    lecture: {start: 2024-09-23, end: 2025-02-07}
`

func TestParseYAML(t *testing.T) {
	periods, err := ParseYAML([]byte(periodFile))
	require.NoError(t, err)

	assert.Len(t, periods.Lectures, 2)
	assert.Contains(t, periods.Lectures, "Wintersemester 2024/25")
	assert.Equal(t, models.Period{Start: day(2024, time.May, 13), End: day(2024, time.May, 17)}, periods.HIPs["Sommersemester 2024"])
	assert.NotContains(t, periods.HIPs, "Wintersemester 2024/25")
}

func TestParseYAMLRejectsInvalidPeriods(t *testing.T) {
	_, err := ParseYAML([]byte(`semesters: [{name: Sommersemester 2024, lecture: {start: 2024-07-12, end: 2024-03-18}}]`))
	assert.Error(t, err)

	_, err = ParseYAML([]byte(`semesters: [{name: Trimester, lecture: {start: 2024-03-18, end: 2024-07-12}}]`))
	assert.Error(t, err)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	periods, err := ParseYAML([]byte(periodFile))
	require.NoError(t, err)

	data, err := MarshalYAML(periods)
	require.NoError(t, err)
	again, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, periods, again)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periods.yaml")
	require.NoError(t, os.WriteFile(path, []byte(periodFile), 0o600))

	periods, err := NewFile(path).FetchPeriods(context.Background())
	require.NoError(t, err)
	assert.Len(t, periods.Lectures, 2)

	_, err = NewFile(filepath.Join(t.TempDir(), "missing.yaml")).FetchPeriods(context.Background())
	assert.Error(t, err)
}

type listerStub struct {
	rows []models.SemesterPeriod
	err  error
}

func (l listerStub) List(context.Context) ([]models.SemesterPeriod, error) {
	return l.rows, l.err
}

func TestDatabaseSource(t *testing.T) {
	hipStart, hipEnd := day(2024, time.May, 13), day(2024, time.May, 17)
	src := NewDatabase(listerStub{rows: []models.SemesterPeriod{
		{Year: 2024, LectureStart: day(2024, time.March, 18), LectureEnd: day(2024, time.July, 12), HIPStart: &hipStart, HIPEnd: &hipEnd},
		{Year: 2024, Winter: true, LectureStart: day(2024, time.September, 23), LectureEnd: day(2025, time.February, 7)},
	}})

	periods, err := src.FetchPeriods(context.Background())
	require.NoError(t, err)
	assert.Len(t, periods.Lectures, 2)
	assert.Len(t, periods.HIPs, 1)

	rows := ToSemesterPeriods(periods, "scrape")
	require.Len(t, rows, 2)
	assert.Equal(t, "Sommersemester 2024", rows[0].Name)
	assert.Equal(t, "scrape", rows[0].Source)
	require.NotNil(t, rows[0].HIPStart)
	assert.Nil(t, rows[1].HIPStart)

	_, err = NewDatabase(listerStub{err: errors.New("down")}).FetchPeriods(context.Background())
	assert.Error(t, err)
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	base := NewPeriods()
	base.Lectures["Sommersemester 2024"] = models.Period{Start: day(2024, time.March, 18), End: day(2024, time.July, 12)}
	src := Static{Periods: base}

	got, err := src.FetchPeriods(context.Background())
	require.NoError(t, err)
	got.Lectures["Wintersemester 2024/25"] = models.Period{}
	assert.Len(t, base.Lectures, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchPeriods(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
