package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const lectureTableCaption = "Allgemeine Vorlesungszeiten"

var (
	fullDatePattern  = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)
	shortDatePattern = regexp.MustCompile(`(\d{2})\.(\d{2})`)
	yearPattern      = regexp.MustCompile(`\d{4}`)
	rangeSeparator   = regexp.MustCompile(`[–-]|bis`)
	hipLinePattern   = regexp.MustCompile(`(Wintersemester \d{4}/\d{2}|Sommersemester \d{4}):?\s*(?:[\d.\s–-]|bis)+`)
)

// ScraperConfig configures the HTML source.
type ScraperConfig struct {
	LectureURL string
	HIPURL     string
	UserAgent  string
	Timeout    time.Duration
	// KnownHIPWeeks are used when the project week page omits a semester.
	KnownHIPWeeks map[string]models.Period
}

// Scraper reads lecture periods and project weeks from the published pages.
type Scraper struct {
	cfg    ScraperConfig
	client *http.Client
	logger *zap.Logger
}

// NewScraper constructs a scraper. A nil client uses one with cfg.Timeout.
func NewScraper(cfg ScraperConfig, client *http.Client, logger *zap.Logger) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{cfg: cfg, client: client, logger: logger}
}

// FetchPeriods downloads and parses both pages.
func (s *Scraper) FetchPeriods(ctx context.Context) (Periods, error) {
	periods := NewPeriods()

	body, err := s.get(ctx, s.cfg.LectureURL)
	if err != nil {
		return Periods{}, err
	}
	lectures, err := ParseLecturePeriods(body)
	_ = body.Close()
	if err != nil {
		return Periods{}, err
	}
	periods.Lectures = lectures

	for name, period := range s.cfg.KnownHIPWeeks {
		if err := put(periods.HIPs, name, period); err != nil {
			return Periods{}, fmt.Errorf("known project week: %w", err)
		}
	}

	body, err = s.get(ctx, s.cfg.HIPURL)
	if err != nil {
		return Periods{}, err
	}
	hips, err := ParseHIPWeeks(body)
	_ = body.Close()
	if err != nil {
		return Periods{}, err
	}
	for name, period := range hips {
		periods.HIPs[name] = period
	}

	s.logger.Debug("scraped periods",
		zap.Int("lectures", len(periods.Lectures)),
		zap.Int("hips", len(periods.HIPs)),
	)
	return periods, nil
}

func (s *Scraper) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ParseLecturePeriods reads the lecture period table. A row whose first cell
// names a semester is followed by a row holding the date range in its
// second cell.
func ParseLecturePeriods(r io.Reader) (map[string]models.Period, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse lecture page: %w", err)
	}

	table := doc.Find("caption").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), lectureTableCaption)
	}).First().Closest("table")
	if table.Length() == 0 {
		return nil, fmt.Errorf("lecture table %q not found", lectureTableCaption)
	}

	periods := make(map[string]models.Period)
	current := ""
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() == 0 {
			return
		}
		first := strings.TrimSpace(cells.Eq(0).Text())
		if strings.Contains(strings.ToLower(first), "semester") {
			current = first
			return
		}
		if current == "" || cells.Length() < 2 {
			return
		}
		text := strings.TrimSpace(cells.Eq(1).Text())
		parts := rangeSeparator.Split(text, -1)
		if len(parts) >= 2 {
			start, okStart := parseDate(parts[0], 0)
			end, okEnd := parseDate(parts[1], 0)
			if okStart && okEnd {
				_ = put(periods, current, models.Period{Start: start, End: end})
			}
		}
		current = ""
	})
	return periods, nil
}

// ParseHIPWeeks scans the project week page line by line for
// "<semester>: dd.mm.[yyyy] – dd.mm.yyyy" entries.
func ParseHIPWeeks(r io.Reader) (map[string]models.Period, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse project week page: %w", err)
	}

	var text strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		collectText(&text, s)
	})

	periods := make(map[string]models.Period)
	for _, line := range strings.Split(text.String(), "\n") {
		line = strings.ReplaceAll(line, "\u00a0", " ")
		if !strings.Contains(strings.ToLower(line), "semester") {
			continue
		}
		match := hipLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		semester := strings.TrimSpace(match[1])
		dates := strings.Trim(strings.TrimPrefix(match[0], match[1]), ": ")

		year := 0
		if y := yearPattern.FindString(dates); y != "" {
			year, _ = strconv.Atoi(y)
		}
		parts := rangeSeparator.Split(dates, -1)
		if len(parts) < 2 {
			continue
		}
		end, okEnd := parseDate(parts[1], year)
		startYear := year
		if okEnd {
			startYear = end.Year()
		}
		start, okStart := parseDate(parts[0], startYear)
		if okStart && okEnd {
			_ = put(periods, semester, models.Period{Start: start, End: end})
		}
	}
	return periods, nil
}

// collectText flattens the document into lines, breaking at every element.
func collectText(b *strings.Builder, s *goquery.Selection) {
	if goquery.NodeName(s) == "#text" {
		b.WriteString(s.Text())
		return
	}
	b.WriteString("\n")
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		collectText(b, child)
	})
	b.WriteString("\n")
}

// parseDate accepts dd.mm.yyyy, or dd.mm. when defaultYear is set.
func parseDate(raw string, defaultYear int) (time.Time, bool) {
	raw = strings.NewReplacer(" ", "", "\u00a0", "", "–", "-").Replace(raw)
	if m := fullDatePattern.FindStringSubmatch(raw); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := shortDatePattern.FindStringSubmatch(raw); m != nil && defaultYear != 0 {
		return buildDate(strconv.Itoa(defaultYear), m[2], m[1])
	}
	return time.Time{}, false
}

func buildDate(year, month, day string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", year+"-"+month+"-"+day)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
