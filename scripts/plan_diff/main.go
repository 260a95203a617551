// Command plan_diff compares the live exam plan with the latest stored
// snapshot and exits non-zero when a published semester moved.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type comparison struct {
	Semester string
	Proposal bool
	Kind     string
	Detail   string
}

// Diff kinds.
const (
	kindAdded   = "ADDED"
	kindRemoved = "REMOVED"
	kindMoved   = "MOVED"
)

func main() {
	var (
		base    string
		token   string
		horizon int
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "Exam period API base URL including prefix")
	flag.StringVar(&token, "token", os.Getenv("PLAN_DIFF_TOKEN"), "Bearer token, optional")
	flag.IntVar(&horizon, "horizon", 2, "Horizon in years")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	api := apiClient{client: client, base: strings.TrimRight(base, "/"), token: token}

	live, err := api.livePlan(horizon)
	if err != nil {
		log.Fatalf("failed to load live plan: %v", err)
	}
	snapshot, err := api.latestSnapshot(horizon)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}

	comparisons := compareSemesters(snapshot.Semesters, live.Semesters)
	printReport(comparisons)

	breaking, optionalDiff := countDiffs(comparisons)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

type apiClient struct {
	client *http.Client
	base   string
	token  string
}

func (a apiClient) livePlan(horizon int) (*models.ExamPlan, error) {
	var plan models.ExamPlan
	if err := a.get(fmt.Sprintf("/exam-periods?horizon=%d", horizon), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (a apiClient) latestSnapshot(horizon int) (*models.ExamPlan, error) {
	var list []models.PlanSnapshot
	if err := a.get(fmt.Sprintf("/plan-snapshots?horizon=%d&page_size=1", horizon), &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no snapshot stored for horizon %d", horizon)
	}
	var snapshot models.PlanSnapshot
	if err := a.get("/plan-snapshots/"+list[0].ID, &snapshot); err != nil {
		return nil, err
	}
	var plan models.ExamPlan
	if err := json.Unmarshal(snapshot.Plan, &plan); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snapshot.ID, err)
	}
	return &plan, nil
}

func (a apiClient) get(path string, out interface{}) error {
	if a.client == nil {
		return errors.New("nil client")
	}
	req, err := http.NewRequest(http.MethodGet, a.base+path, nil)
	if err != nil {
		return err
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return json.Unmarshal(env.Data, out)
}

// compareSemesters reports semesters whose blocks changed between the stored
// and the live plan. Proposal is taken from the stored side when present.
func compareSemesters(stored, live []models.SemesterPlan) []comparison {
	storedByName := indexByName(stored)
	liveByName := indexByName(live)

	var result []comparison
	for name, old := range storedByName {
		cur, ok := liveByName[name]
		if !ok {
			result = append(result, comparison{Semester: name, Proposal: old.Proposal, Kind: kindRemoved})
			continue
		}
		if detail := blockDiff(old.Blocks, cur.Blocks); detail != "" {
			result = append(result, comparison{Semester: name, Proposal: old.Proposal, Kind: kindMoved, Detail: detail})
		}
	}
	for name, cur := range liveByName {
		if _, ok := storedByName[name]; !ok {
			result = append(result, comparison{Semester: name, Proposal: cur.Proposal, Kind: kindAdded})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ki, _ := models.ParseSemesterKey(result[i].Semester)
		kj, _ := models.ParseSemesterKey(result[j].Semester)
		return ki.Less(kj)
	})
	return result
}

func indexByName(plans []models.SemesterPlan) map[string]models.SemesterPlan {
	out := make(map[string]models.SemesterPlan, len(plans))
	for _, p := range plans {
		out[p.Name] = p
	}
	return out
}

func blockDiff(old, cur []models.ExamBlock) string {
	if len(old) != len(cur) {
		return fmt.Sprintf("%d blocks -> %d blocks", len(old), len(cur))
	}
	var parts []string
	for i := range old {
		if old[i].Start.Equal(cur[i].Start) && old[i].End.Equal(cur[i].End) && sameDays(old[i].Days, cur[i].Days) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s..%s -> %s..%s", old[i].Label,
			old[i].Start.Format("02.01.2006"), old[i].End.Format("02.01.2006"),
			cur[i].Start.Format("02.01.2006"), cur[i].End.Format("02.01.2006")))
	}
	return strings.Join(parts, "; ")
}

func sameDays(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// countDiffs treats changes to published semesters as breaking. Added
// semesters and moved proposals are optional.
func countDiffs(results []comparison) (breaking, optional int) {
	for _, res := range results {
		if !res.Proposal && res.Kind != kindAdded {
			breaking++
		} else {
			optional++
		}
	}
	return breaking, optional
}

func printReport(results []comparison) {
	fmt.Println("Plan Diff Report")
	fmt.Println("================")
	if len(results) == 0 {
		fmt.Println("No differences")
	}
	for _, res := range results {
		fmt.Printf("[%s] %s (proposal: %t)\n", res.Kind, res.Semester, res.Proposal)
		if res.Detail != "" {
			fmt.Printf("  %s\n", res.Detail)
		}
	}
}
