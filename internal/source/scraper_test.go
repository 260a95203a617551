package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const lecturePage = `<html><body>
<table>
  <caption>Allgemeine Vorlesungszeiten</caption>
  <tr><th>Sommersemester 2024</th></tr>
  <tr><td>Vorlesungszeit</td><td>18.03.2024 – 12.07.2024</td></tr>
  <tr><th>Wintersemester 2024/25</th></tr>
  <tr><td>Vorlesungszeit</td><td>23.09.2024 - 07.02.2025</td></tr>
  <tr><th>Sommersemester 2025</th></tr>
  <tr><td>Vorlesungszeit</td><td>noch offen</td></tr>
</table>
<table>
  <caption>Vorlesungsfreie Tage</caption>
  <tr><th>Sommersemester 2030</th></tr>
  <tr><td>x</td><td>01.01.2030 – 02.01.2030</td></tr>
</table>
</body></html>`

const hipPage = `<html><body>
<h2>Termine</h2>
<ul>
  <li>Sommersemester 2024: 13.05. – 17.05.2024</li>
  <li>Wintersemester 2024/25: 25.11.2024&nbsp;bis 29.11.2024</li>
  <li>Sommersemester 2025 – Termin folgt</li>
</ul>
<p>Die Projektwoche findet jedes Semester statt.</p>
</body></html>`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseLecturePeriods(t *testing.T) {
	periods, err := ParseLecturePeriods(strings.NewReader(lecturePage))
	require.NoError(t, err)

	assert.Equal(t, map[string]models.Period{
		"Sommersemester 2024":    {Start: day(2024, time.March, 18), End: day(2024, time.July, 12)},
		"Wintersemester 2024/25": {Start: day(2024, time.September, 23), End: day(2025, time.February, 7)},
	}, periods)
}

func TestParseLecturePeriodsMissingTable(t *testing.T) {
	_, err := ParseLecturePeriods(strings.NewReader("<html><body><p>leer</p></body></html>"))
	assert.Error(t, err)
}

func TestParseHIPWeeks(t *testing.T) {
	periods, err := ParseHIPWeeks(strings.NewReader(hipPage))
	require.NoError(t, err)

	assert.Equal(t, map[string]models.Period{
		"Sommersemester 2024":    {Start: day(2024, time.May, 13), End: day(2024, time.May, 17)},
		"Wintersemester 2024/25": {Start: day(2024, time.November, 25), End: day(2024, time.November, 29)},
	}, periods)
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate(" 01.10.2024 ", 0)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.October, 1), d)

	d, ok = parseDate("13.05.", 2024)
	require.True(t, ok)
	assert.Equal(t, day(2024, time.May, 13), d)

	_, ok = parseDate("13.05.", 0)
	assert.False(t, ok)
	_, ok = parseDate("31.02.2024", 0)
	assert.False(t, ok)
}

func TestScraperFetchPeriods(t *testing.T) {
	var userAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/vorlesungszeiten", func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		_, _ = w.Write([]byte(lecturePage))
	})
	mux.HandleFunc("/projektwoche", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(hipPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	scraper := NewScraper(ScraperConfig{
		LectureURL: srv.URL + "/vorlesungszeiten",
		HIPURL:     srv.URL + "/projektwoche",
		UserAgent:  "exam-period-api/test",
		KnownHIPWeeks: map[string]models.Period{
			"Wintersemester 2025/26": {Start: day(2025, time.November, 17), End: day(2025, time.November, 21)},
			"Sommersemester 2024":    {Start: day(2024, time.May, 6), End: day(2024, time.May, 10)},
		},
	}, srv.Client(), nil)

	periods, err := scraper.FetchPeriods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exam-period-api/test", userAgent)
	assert.Len(t, periods.Lectures, 2)
	require.Len(t, periods.HIPs, 3)
	assert.Equal(t, day(2025, time.November, 17), periods.HIPs["Wintersemester 2025/26"].Start)
	assert.Equal(t, day(2024, time.May, 13), periods.HIPs["Sommersemester 2024"].Start, "scraped weeks win over known ones")
}

func TestScraperPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scraper := NewScraper(ScraperConfig{LectureURL: srv.URL, HIPURL: srv.URL}, srv.Client(), nil)
	_, err := scraper.FetchPeriods(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
