package services

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/ledger"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/oracle"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/tabular"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/eventbus"
	"github.com/peopleforge/peopleforge/pkg/metrics"
)

// AccountCreator is the account-creation collaborator, one call per valid
// row. directory.EmployeeService satisfies it through an adapter in
// module.go.
type AccountCreator interface {
	Create(ctx context.Context, data employee.Employee) (employee.Employee, error)
}

// ReferenceSource supplies the read-only org data rules validate against.
type ReferenceSource interface {
	Departments(ctx context.Context) ([]string, error)
	JobTitles(ctx context.Context) ([]string, error)
	FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error)
}

type ImportServiceConfig struct {
	Sessions  session.Repository
	Ledger    ledger.Repository
	Accounts  AccountCreator
	Reference ReferenceSource
	Oracle    oracle.Oracle
	Publisher eventbus.EventBus
	Logger    *logrus.Logger

	MaxUploadBytes      int64
	MaxRows             int
	SessionTTL          time.Duration
	AutoAcceptThreshold float64
	CommitWorkers       int
	PastGraceDays       int
}

type ImportService struct {
	sessions      session.Repository
	ledger        ledger.Repository
	accounts      AccountCreator
	reference     ReferenceSource
	parser        *tabular.Parser
	validator     *Validator
	engine        *SuggestionEngine
	publisher     eventbus.EventBus
	log           *logrus.Logger
	sessionTTL    time.Duration
	commitWorkers int
}

func NewImportService(config ImportServiceConfig) *ImportService {
	return &ImportService{
		sessions:      config.Sessions,
		ledger:        config.Ledger,
		accounts:      config.Accounts,
		reference:     config.Reference,
		parser:        tabular.NewParser(config.MaxUploadBytes, config.MaxRows),
		validator:     NewValidator(config.PastGraceDays),
		engine:        NewSuggestionEngine(config.Oracle, config.AutoAcceptThreshold, config.Logger),
		publisher:     config.Publisher,
		log:           config.Logger,
		sessionTTL:    config.SessionTTL,
		commitWorkers: config.CommitWorkers,
	}
}

// Analyze runs the read-only phase: parse, normalize, validate, suggest,
// persist. Either a full UploadSession comes back or a single hard error;
// partial results are never persisted.
func (s *ImportService) Analyze(ctx context.Context, fileName string, file io.Reader) (session.UploadSession, error) {
	started := time.Now()

	actor, err := composables.UseActor(ctx)
	if err != nil {
		return session.UploadSession{}, err
	}

	table, err := s.parser.Parse(fileName, file)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("parse_failed").Inc()
		return session.UploadSession{}, err
	}

	rows := Normalize(table)

	ref, err := s.loadReference(ctx, rows)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return session.UploadSession{}, err
	}

	report := s.validator.Validate(rows, ref)
	analysis := s.engine.Analyze(ctx, rows, report, ref)

	sess := session.New(
		fileName,
		actor,
		rows,
		report.Issues,
		analysis.AutoFixes,
		analysis.DuplicateClusters,
		analysis.QualityScore,
		analysis.OverallNotes,
		analysis.RiskFlags,
		s.sessionTTL,
	)
	if err := s.sessions.Create(ctx, sess); err != nil {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return session.UploadSession{}, gerrors.Wrap(err, "persist session")
	}

	metrics.AnalyzeTotal.WithLabelValues("ok").Inc()
	metrics.AnalyzeDuration.Observe(time.Since(started).Seconds())
	if analysis.QualityScore >= 0 {
		metrics.QualityScore.Observe(float64(analysis.QualityScore))
	}
	s.log.WithFields(logrus.Fields{
		"session_id":    sess.ID(),
		"file_name":     fileName,
		"total_rows":    sess.TotalRows(),
		"valid_rows":    report.ValidRowCount,
		"quality_score": analysis.QualityScore,
	}).Info("analyze completed")

	return sess, nil
}

// Confirm is the commit phase. At most one confirm per session ever runs its
// side effects: the compare-and-set to PROCESSING decides the winner before
// any account is created.
func (s *ImportService) Confirm(ctx context.Context, id uuid.UUID, acceptedFixIDs []string) (session.ConfirmResult, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return session.ConfirmResult{}, err
	}
	if sess.IsTerminal() || sess.Status() == session.StatusProcessing {
		return session.ConfirmResult{}, session.ErrAlreadyConfirmed
	}
	if sess.Expired(time.Now()) {
		return session.ConfirmResult{}, session.ErrExpired
	}

	// Unknown fix ids reject the whole call before the CAS side effect.
	fixes := make([]batch.AutoFix, 0, len(acceptedFixIDs))
	for _, fixID := range acceptedFixIDs {
		fix, ok := sess.FindFix(fixID)
		if !ok {
			return session.ConfirmResult{}, gerrors.Wrap(session.ErrFixNotFound, fixID)
		}
		fixes = append(fixes, fix)
	}

	rows := sess.WorkingRows()
	for _, fix := range fixes {
		if row, ok := rowIndex(rows, fix.Row); ok {
			rows[row].SetField(fix.Field, fix.SuggestedValue)
		}
	}

	// Reference data loads before the CAS too: a transient read failure here
	// must leave the session confirmable, not stranded in PROCESSING.
	ref, err := s.loadReference(ctx, rows)
	if err != nil {
		return session.ConfirmResult{}, err
	}
	report := s.validator.Validate(rows, ref)

	if err := s.sessions.MarkProcessing(ctx, id); err != nil {
		return session.ConfirmResult{}, err
	}

	// Once PROCESSING, an abandoned client must not truncate the commit:
	// partially created accounts have to land in the final result.
	ctx = context.WithoutCancel(ctx)

	result := s.commitRows(ctx, sess, rows, report)

	record := ledger.New(
		sess.ID(), sess.FileName(), result.TotalRows,
		result.SuccessCount, result.ErrorCount, string(result.Status), sess.UploadedBy(),
	)
	if err := s.ledger.Append(ctx, record); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID()).Error("ledger append failed")
	} else {
		result.LedgerID = record.ID()
	}

	if err := s.sessions.Finalize(ctx, sess.ID(), result); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID()).Error("session finalize failed")
	}

	metrics.ConfirmTotal.WithLabelValues(string(result.Status)).Inc()
	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"status":     result.Status,
		"success":    result.SuccessCount,
		"errors":     result.ErrorCount,
	}).Info("confirm completed")

	return result, nil
}

// commitRows attempts one account per committable row on a bounded worker
// pool. Row outcomes aggregate into a row-indexed slice, so the final error
// list is ordered by row number no matter which worker finished first.
func (s *ImportService) commitRows(ctx context.Context, sess session.UploadSession, rows []batch.NormalizedRow, report Report) session.ConfirmResult {
	type outcome struct {
		err     *batch.RowError
		created *employee.Employee
	}
	outcomes := make([]outcome, len(rows))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.commitWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				row := rows[i]
				created, err := s.accounts.Create(ctx, toEmployee(row))
				if err != nil {
					outcomes[i] = outcome{err: &batch.RowError{
						Row:     row.Row,
						Field:   creationErrorField(err),
						Message: err.Error(),
					}}
					continue
				}
				outcomes[i] = outcome{created: &created}
			}
		}()
	}

	for i, row := range rows {
		if issue, blocked := report.FirstBlocking(row.Row); blocked {
			outcomes[i] = outcome{err: &batch.RowError{Row: row.Row, Field: issue.Field, Message: issue.Message}}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := session.ConfirmResult{
		TotalRows: len(rows),
		Errors:    []batch.RowError{},
	}
	for i := range outcomes {
		switch {
		case outcomes[i].err != nil:
			result.ErrorCount++
			result.Errors = append(result.Errors, *outcomes[i].err)
		case outcomes[i].created != nil:
			result.SuccessCount++
			s.publisher.Publish(session.NewAccountProvisionedEvent(sess.ID(), rows[i].Row, *outcomes[i].created))
		}
	}

	switch {
	case result.ErrorCount == 0:
		result.Status = session.StatusCompleted
	case result.SuccessCount > 0:
		result.Status = session.StatusPartial
	default:
		result.Status = session.StatusFailed
	}
	return result
}

// History lists ledger entries newest first.
func (s *ImportService) History(ctx context.Context, limit, offset int) ([]ledger.ImportRecord, error) {
	return s.ledger.List(ctx, limit, offset)
}

// PurgeExpired deletes expired, unconfirmed sessions; the server runs it on
// a ticker.
func (s *ImportService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

func (s *ImportService) loadReference(ctx context.Context, rows []batch.NormalizedRow) (ReferenceData, error) {
	departments, err := s.reference.Departments(ctx)
	if err != nil {
		return ReferenceData{}, gerrors.Wrap(err, "load departments")
	}
	titles, err := s.reference.JobTitles(ctx)
	if err != nil {
		return ReferenceData{}, gerrors.Wrap(err, "load job titles")
	}
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Email != "" {
			emails = append(emails, row.Email)
		}
	}
	existing, err := s.reference.FilterExistingEmails(ctx, emails)
	if err != nil {
		return ReferenceData{}, gerrors.Wrap(err, "filter existing emails")
	}
	return ReferenceData{Departments: departments, JobTitles: titles, ExistingEmails: existing}, nil
}

// rowIndex locates a row by its sheet-anchored number; skipped blank rows
// leave gaps, so the number is not a slice index.
func rowIndex(rows []batch.NormalizedRow, number int) (int, bool) {
	for i := range rows {
		if rows[i].Row == number {
			return i, true
		}
	}
	return 0, false
}

func toEmployee(row batch.NormalizedRow) employee.Employee {
	level := 0
	if row.Level != "" {
		level, _ = strconv.Atoi(row.Level)
	}
	var start time.Time
	if row.StartDate != "" {
		start, _ = ParseStartDate(row.StartDate)
	}
	return employee.New(row.FirstName, row.LastName, row.Email, row.Department, row.JobTitle, level, start)
}

func creationErrorField(err error) string {
	if gerrors.Is(err, employee.ErrEmailTaken) {
		return batch.FieldEmail
	}
	return ""
}
