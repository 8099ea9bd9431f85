package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/oracle"
)

// Analysis is the suggestion engine's contribution to an upload session.
type Analysis struct {
	AutoFixes         []batch.AutoFix
	DuplicateClusters []batch.DuplicateCluster
	QualityScore      int
	OverallNotes      string
	RiskFlags         []string
}

type SuggestionEngine struct {
	oracle              oracle.Oracle
	autoAcceptThreshold float64
	log                 *logrus.Logger
}

func NewSuggestionEngine(o oracle.Oracle, autoAcceptThreshold float64, log *logrus.Logger) *SuggestionEngine {
	return &SuggestionEngine{
		oracle:              o,
		autoAcceptThreshold: autoAcceptThreshold,
		log:                 log,
	}
}

// Analyze runs once per analyze call, after validation. The oracle refines
// the heuristic output; when it is unreachable the heuristic result stands on
// its own and the caller never learns the difference.
func (e *SuggestionEngine) Analyze(ctx context.Context, rows []batch.NormalizedRow, report Report, ref ReferenceData) Analysis {
	candidates := heuristicFixes(rows, report, ref)
	clusters := duplicateClusters(rows, ref)

	score := ComputeQualityScore(len(rows), len(report.ErrorRows()), report.WarningCount(), clusteredRowCount(clusters))
	notes := ""
	riskFlags := deterministicRiskFlags(rows, report, clusters)

	if resp, err := e.oracle.Analyze(ctx, oracle.Request{
		Rows:        rows,
		Issues:      report.Issues,
		Departments: ref.Departments,
		JobTitles:   ref.JobTitles,
	}); err != nil {
		e.log.WithError(err).Warn("suggestion oracle unavailable, continuing with heuristics only")
	} else {
		candidates = append(candidates, sanitizeOracleFixes(resp.AutoFixes, rows)...)
		clusters = mergeClusters(clusters, resp.DuplicateClusters, rows)
		// The oracle may refine the score downward but never above the
		// rule-based ceiling, so monotonicity holds either way. A reply
		// without a score leaves the heuristic score standing.
		if resp.QualityScore != nil {
			if refined := *resp.QualityScore; refined >= 0 && refined <= 100 && refined < score {
				score = refined
			}
		}
		notes = strings.TrimSpace(resp.Notes)
		riskFlags = append(riskFlags, resp.RiskFlags...)
	}

	return Analysis{
		AutoFixes:         e.finalizeFixes(candidates),
		DuplicateClusters: clusters,
		QualityScore:      score,
		OverallNotes:      notes,
		RiskFlags:         riskFlags,
	}
}

// ComputeQualityScore is the deterministic 0-100 batch health metric.
// Returns the sentinel for an empty batch.
func ComputeQualityScore(totalRows, errorRows, warnings, duplicateRows int) int {
	if totalRows == 0 {
		return session.QualityScoreUnknown
	}
	score := 100.0
	score -= float64(errorRows) / float64(totalRows) * 70
	score -= math.Min(20, float64(warnings)*2)
	score -= math.Min(10, float64(duplicateRows)/float64(totalRows)*30)
	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// finalizeFixes deduplicates per (row, field) keeping the highest-confidence
// candidate (ties go to the earlier one), orders the survivors by row then
// field, and assigns stable ids.
func (e *SuggestionEngine) finalizeFixes(candidates []batch.AutoFix) []batch.AutoFix {
	best := map[string]batch.AutoFix{}
	var order []string
	for _, c := range candidates {
		key := fmt.Sprintf("%d/%s", c.Row, c.Field)
		existing, seen := best[key]
		if !seen {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.Confidence > existing.Confidence {
			best[key] = c
		}
	}

	out := make([]batch.AutoFix, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return fieldOrder(out[i].Field) < fieldOrder(out[j].Field)
	})
	for i := range out {
		out[i].ID = fmt.Sprintf("fix-%d", i+1)
		out[i].AutoAcceptable = out[i].Confidence >= e.autoAcceptThreshold
	}
	return out
}

var canonicalFieldOrder = []string{
	batch.FieldFirstName, batch.FieldLastName, batch.FieldEmail,
	batch.FieldDepartment, batch.FieldJobTitle, batch.FieldLevel, batch.FieldStartDate,
}

func fieldOrder(field string) int {
	for i, f := range canonicalFieldOrder {
		if f == field {
			return i
		}
	}
	return len(canonicalFieldOrder)
}

// domainTypos maps frequently fat-fingered email domains to the intended one.
var domainTypos = map[string]string{
	"gamil.com":   "gmail.com",
	"gmial.com":   "gmail.com",
	"gmal.com":    "gmail.com",
	"gmaill.com":  "gmail.com",
	"gmail.co":    "gmail.com",
	"hotmial.com": "hotmail.com",
	"hotmal.com":  "hotmail.com",
	"yaho.com":    "yahoo.com",
	"yahooo.com":  "yahoo.com",
	"outlok.com":  "outlook.com",
	"outllok.com": "outlook.com",
}

func heuristicFixes(rows []batch.NormalizedRow, report Report, ref ReferenceData) []batch.AutoFix {
	var out []batch.AutoFix
	add := func(row int, field, current, suggested string, confidence float64, category batch.FixCategory, issue string) {
		if suggested == current || suggested == "" {
			return
		}
		out = append(out, batch.AutoFix{
			Row:            row,
			Field:          field,
			CurrentValue:   current,
			SuggestedValue: suggested,
			Confidence:     confidence,
			Category:       category,
			Issue:          issue,
		})
	}

	batchDomain := dominantDomain(rows)

	for _, issue := range report.Issues {
		row, ok := rowByNumber(rows, issue.Row)
		if !ok {
			continue
		}
		current := row.Field(issue.Field)

		switch {
		case strings.Contains(issue.Message, "casing looks off"):
			add(issue.Row, issue.Field, current, CanonicalName(current), 0.92, batch.FixNameCasing, issue.Message)

		case strings.Contains(issue.Message, "repeated whitespace"):
			add(issue.Row, issue.Field, current, collapseWhitespace(current), 0.99, batch.FixCleanup, issue.Message)

		case issue.Field == batch.FieldEmail && strings.Contains(issue.Message, "malformed"):
			if !strings.Contains(current, "@") && batchDomain != "" && current != "" {
				add(issue.Row, issue.Field, current, current+"@"+batchDomain, 0.7, batch.FixEmailCompletion, issue.Message)
			}

		case issue.Field == batch.FieldDepartment && strings.Contains(issue.Message, "does not exist"):
			if match, conf := closestMatch(current, ref.Departments); match != "" {
				add(issue.Row, issue.Field, current, match, conf, batch.FixDepartmentMatch, issue.Message)
			}

		case issue.Field == batch.FieldJobTitle && strings.Contains(issue.Message, "reference list"):
			if match, conf := closestMatch(current, ref.JobTitles); match != "" {
				add(issue.Row, issue.Field, current, match, conf-0.1, batch.FixTitleMatch, issue.Message)
			}

		case issue.Field == batch.FieldLevel && strings.Contains(issue.Message, "between 1 and 10"):
			if level, err := strconv.Atoi(current); err == nil {
				clamped := level
				if clamped < 1 {
					clamped = 1
				}
				if clamped > 10 {
					clamped = 10
				}
				add(issue.Row, issue.Field, current, strconv.Itoa(clamped), 0.6, batch.FixLevelClamp, issue.Message)
			}

		case issue.Field == batch.FieldStartDate && strings.Contains(issue.Message, "unrecognized"):
			if rescued, ok := rescueDate(current); ok {
				add(issue.Row, issue.Field, current, rescued, 0.9, batch.FixDateFormat, issue.Message)
			}
		}
	}

	// Domain typos produce syntactically valid emails, so they carry no
	// validation issue; scan the rows directly.
	for _, row := range rows {
		if at := strings.LastIndex(row.Email, "@"); at > 0 {
			if fixed, ok := domainTypos[row.Email[at+1:]]; ok {
				out = append(out, batch.AutoFix{
					Row:            row.Row,
					Field:          batch.FieldEmail,
					CurrentValue:   row.Email,
					SuggestedValue: row.Email[:at+1] + fixed,
					Confidence:     0.95,
					Category:       batch.FixEmailTypo,
					Issue:          "likely misspelled email domain",
				})
			}
		}
	}

	return out
}

// rowByNumber scans instead of indexing: row numbers are anchored to the
// source sheet, so skipped blank rows leave gaps in the sequence.
func rowByNumber(rows []batch.NormalizedRow, number int) (batch.NormalizedRow, bool) {
	for _, row := range rows {
		if row.Row == number {
			return row, true
		}
	}
	return batch.NormalizedRow{}, false
}

// dominantDomain is the most common domain among well-formed batch emails,
// used to complete addresses missing one.
func dominantDomain(rows []batch.NormalizedRow) string {
	counts := map[string]int{}
	for _, row := range rows {
		if at := strings.LastIndex(row.Email, "@"); at > 0 && strings.Contains(row.Email[at+1:], ".") {
			counts[row.Email[at+1:]]++
		}
	}
	best, bestCount := "", 0
	for domain, count := range counts {
		if count > bestCount || (count == bestCount && domain < best) {
			best, bestCount = domain, count
		}
	}
	return best
}

// closestMatch finds the nearest reference value by Levenshtein distance;
// beyond distance 2 nothing is suggested.
func closestMatch(value string, reference []string) (string, float64) {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return "", 0
	}
	best, bestDist := "", 3
	for _, candidate := range reference {
		dist := fuzzy.LevenshteinDistance(lowered, strings.ToLower(candidate))
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	switch bestDist {
	case 0:
		return best, 0.95
	case 1:
		return best, 0.9
	case 2:
		return best, 0.78
	}
	return "", 0
}

func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// rescueDate handles formats outside the accepted set that are still
// unambiguous, normalizing them to ISO.
var rescueDateFormats = []string{
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2006.01.02",
}

func rescueDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range rescueDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func duplicateClusters(rows []batch.NormalizedRow, ref ReferenceData) []batch.DuplicateCluster {
	var out []batch.DuplicateCluster
	seen := map[string]bool{}
	append1 := func(c batch.DuplicateCluster) {
		sort.Ints(c.RowNumbers)
		key := fmt.Sprint(c.RowNumbers)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	// exact email duplicates within the batch
	byEmail := map[string][]int{}
	var emailOrder []string
	for _, row := range rows {
		if row.Email == "" {
			continue
		}
		if _, ok := byEmail[row.Email]; !ok {
			emailOrder = append(emailOrder, row.Email)
		}
		byEmail[row.Email] = append(byEmail[row.Email], row.Row)
	}
	for _, email := range emailOrder {
		if members := byEmail[email]; len(members) > 1 {
			append1(batch.DuplicateCluster{
				RowNumbers: members,
				Reason:     fmt.Sprintf("identical email %s", email),
				Confidence: 0.95,
			})
		}
	}

	// fuzzy full-name duplicates, grouped with union-find
	parent := make([]int, len(rows))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = strings.ToLower(row.FullName())
	}
	for i := 0; i < len(rows); i++ {
		if names[i] == "" {
			continue
		}
		for j := i + 1; j < len(rows); j++ {
			if names[j] == "" {
				continue
			}
			if fuzzy.LevenshteinDistance(names[i], names[j]) <= 2 {
				parent[find(j)] = find(i)
			}
		}
	}
	groups := map[int][]int{}
	for i := range rows {
		if names[i] == "" {
			continue
		}
		root := find(i)
		groups[root] = append(groups[root], rows[i].Row)
	}
	var roots []int
	for root, members := range groups {
		if len(members) > 1 {
			roots = append(roots, root)
		}
	}
	sort.Ints(roots)
	for _, root := range roots {
		append1(batch.DuplicateCluster{
			RowNumbers: groups[root],
			Reason:     fmt.Sprintf("similar names (%s)", rows[root].FullName()),
			Confidence: 0.75,
		})
	}

	// matches against existing active accounts
	for _, row := range rows {
		if row.Email != "" && ref.ExistingEmails[row.Email] {
			append1(batch.DuplicateCluster{
				RowNumbers: []int{row.Row},
				Reason:     fmt.Sprintf("email %s matches an existing account", row.Email),
				Confidence: 0.9,
			})
		}
	}

	return out
}

func clusteredRowCount(clusters []batch.DuplicateCluster) int {
	rows := map[int]bool{}
	for _, c := range clusters {
		for _, r := range c.RowNumbers {
			rows[r] = true
		}
	}
	return len(rows)
}

func deterministicRiskFlags(rows []batch.NormalizedRow, report Report, clusters []batch.DuplicateCluster) []string {
	var flags []string
	total := len(rows)
	if total == 0 {
		return flags
	}
	if dup := clusteredRowCount(clusters); dup*4 >= total && dup > 1 {
		flags = append(flags, fmt.Sprintf("high duplicate density: %d of %d rows look duplicated", dup, total))
	}
	missingDept := 0
	for _, issue := range report.Issues {
		if issue.Field == batch.FieldDepartment && issue.Severity == batch.SeverityError {
			missingDept++
		}
	}
	if missingDept*4 >= total && missingDept > 1 {
		flags = append(flags, fmt.Sprintf("%d of %d rows have missing or unknown departments", missingDept, total))
	}
	return flags
}

var validFixCategories = map[batch.FixCategory]bool{
	batch.FixNameCasing:      true,
	batch.FixEmailTypo:       true,
	batch.FixEmailCompletion: true,
	batch.FixDepartmentMatch: true,
	batch.FixTitleMatch:      true,
	batch.FixLevelClamp:      true,
	batch.FixDateFormat:      true,
	batch.FixCleanup:         true,
}

// sanitizeOracleFixes converts oracle candidates, dropping ones that point
// at unknown rows or fields and clamping confidence into [0,1].
func sanitizeOracleFixes(candidates []oracle.FixCandidate, rows []batch.NormalizedRow) []batch.AutoFix {
	var out []batch.AutoFix
	for _, c := range candidates {
		row, ok := rowByNumber(rows, c.Row)
		if !ok || fieldOrder(c.Field) >= len(canonicalFieldOrder) {
			continue
		}
		if c.SuggestedValue == "" || c.SuggestedValue == row.Field(c.Field) {
			continue
		}
		confidence := math.Min(1, math.Max(0, c.Confidence))
		category := batch.FixCategory(c.Category)
		if !validFixCategories[category] {
			category = batch.FixCleanup
		}
		out = append(out, batch.AutoFix{
			Row:            c.Row,
			Field:          c.Field,
			CurrentValue:   row.Field(c.Field),
			SuggestedValue: c.SuggestedValue,
			Confidence:     confidence,
			Category:       category,
			Issue:          c.Issue,
		})
	}
	return out
}

func mergeClusters(base []batch.DuplicateCluster, extra []batch.DuplicateCluster, rows []batch.NormalizedRow) []batch.DuplicateCluster {
	known := make(map[int]bool, len(rows))
	for _, row := range rows {
		known[row.Row] = true
	}
	seen := map[string]bool{}
	for _, c := range base {
		sort.Ints(c.RowNumbers)
		seen[fmt.Sprint(c.RowNumbers)] = true
	}
	for _, c := range extra {
		if len(c.RowNumbers) == 0 {
			continue
		}
		valid := true
		for _, r := range c.RowNumbers {
			if !known[r] {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		sort.Ints(c.RowNumbers)
		key := fmt.Sprint(c.RowNumbers)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.Confidence = math.Min(1, math.Max(0, c.Confidence))
		base = append(base, c)
	}
	return base
}
