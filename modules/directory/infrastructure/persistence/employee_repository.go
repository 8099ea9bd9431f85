package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
	"github.com/peopleforge/peopleforge/pkg/composables"
)

const uniqueViolation = "23505"

const employeeColumns = `id, first_name, last_name, email, department, job_title, level, start_date, status, created_at`

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	row := tx.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

func (r *PgEmployeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	row := tx.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	)
	return scanEmployee(row)
}

func (r *PgEmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, int64, error) {
	if params == nil {
		params = &employee.FindParams{}
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := tx.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]employee.Employee, 0, limit)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *PgEmployeeRepository) FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(emails))
	if len(emails) == 0 {
		return existing, nil
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		if v := strings.ToLower(strings.TrimSpace(e)); v != "" {
			lowered = append(lowered, v)
		}
	}

	rows, err := tx.Query(ctx,
		`SELECT lower(email) FROM employees WHERE status = 'active' AND lower(email) = ANY($1)`,
		lowered,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		existing[email] = true
	}
	return existing, rows.Err()
}

func (r *PgEmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	var startDate pgtype.Date
	if !e.StartDate().IsZero() {
		startDate = pgtype.Date{Time: e.StartDate(), Valid: true}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO employees (first_name, last_name, email, department, job_title, level, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+employeeColumns,
		e.FirstName(), e.LastName(), e.Email(), e.Department(), e.JobTitle(), e.Level(), startDate, string(e.Status()),
	)
	created, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return employee.Employee{}, employee.ErrEmailTaken
		}
		return employee.Employee{}, gerrors.Wrap(err, "create employee")
	}
	return created, nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		id        uuid.UUID
		firstName string
		lastName  string
		email     string
		dept      string
		jobTitle  string
		level     int
		startDate pgtype.Date
		status    string
		createdAt time.Time
	)
	err := row.Scan(&id, &firstName, &lastName, &email, &dept, &jobTitle, &level, &startDate, &status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrNotFound
		}
		return employee.Employee{}, err
	}

	var start time.Time
	if startDate.Valid {
		start = startDate.Time
	}
	return employee.Hydrate(
		id, firstName, lastName, email, dept, jobTitle, level, start,
		employee.Status(status), createdAt,
	), nil
}
