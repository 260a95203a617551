package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

var semesterPeriodColumnNames = []string{"id", "name", "year", "winter", "lecture_start", "lecture_end", "hip_start", "hip_end", "source", "created_at", "updated_at"}

func TestSemesterPeriodRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterPeriodRepository(db)

	now := time.Now()
	hip := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(semesterPeriodColumnNames).
		AddRow("p-1", "Sommersemester 2024", 2024, false, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), time.Date(2024, time.July, 12, 0, 0, 0, 0, time.UTC), hip, hip.AddDate(0, 0, 4), "scrape", now, now).
		AddRow("p-2", "Wintersemester 2024/25", 2024, true, time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC), time.Date(2025, time.February, 7, 0, 0, 0, 0, time.UTC), nil, nil, "manual", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM semester_periods ORDER BY year ASC, winter ASC")).WillReturnRows(rows)

	periods, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, periods, 2)
	require.NotNil(t, periods[0].HIPStart)
	assert.Equal(t, hip, *periods[0].HIPStart)
	assert.Nil(t, periods[1].HIPStart)
	assert.Equal(t, models.SemesterKey{Year: 2024, Winter: true}, periods[1].Key())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterPeriodRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterPeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_periods")).
		WithArgs(sqlmock.AnyArg(), "Sommersemester 2024", 2024, false, sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, "manual", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	period := &models.SemesterPeriod{
		Name:         "Sommersemester 2024",
		Year:         2024,
		LectureStart: time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC),
		LectureEnd:   time.Date(2024, time.July, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(context.Background(), period))
	assert.NotEmpty(t, period.ID)
	assert.Equal(t, "manual", period.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterPeriodRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSemesterPeriodRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_periods")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_periods")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.SemesterPeriod{
		{Name: "Sommersemester 2024", Year: 2024, Source: "scrape"},
		{Name: "Wintersemester 2024/25", Year: 2024, Winter: true, Source: "scrape"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterPeriodRepositoryBulkUpsertEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	require.NoError(t, NewSemesterPeriodRepository(db).BulkUpsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
