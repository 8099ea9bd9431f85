package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
	"github.com/peopleforge/peopleforge/modules/directory/services"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/eventbus"
)

func testBus() eventbus.EventBus {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return eventbus.NewEventPublisher(log)
}

type employeeRepoMock struct {
	byEmail map[string]employee.Employee
	created []employee.Employee
}

func newEmployeeRepoMock() *employeeRepoMock {
	return &employeeRepoMock{byEmail: map[string]employee.Employee{}}
}

func (m *employeeRepoMock) GetByID(ctx context.Context, id uuid.UUID) (employee.Employee, error) {
	for _, e := range m.byEmail {
		if e.ID() == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (m *employeeRepoMock) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	if e, ok := m.byEmail[email]; ok {
		return e, nil
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (m *employeeRepoMock) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, int64, error) {
	return m.created, int64(len(m.created)), nil
}

func (m *employeeRepoMock) FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, e := range emails {
		if _, ok := m.byEmail[e]; ok {
			out[e] = true
		}
	}
	return out, nil
}

func (m *employeeRepoMock) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	if _, ok := m.byEmail[e.Email()]; ok {
		return employee.Employee{}, employee.ErrEmailTaken
	}
	created := employee.Hydrate(
		uuid.New(), e.FirstName(), e.LastName(), e.Email(), e.Department(),
		e.JobTitle(), e.Level(), e.StartDate(), e.Status(), time.Now(),
	)
	m.byEmail[created.Email()] = created
	m.created = append(m.created, created)
	return created, nil
}

// stubTx satisfies pgx.Tx so service tests can run without a live pool.
type stubTx struct{}

func (stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return stubTx{}, nil }
func (stubTx) Commit(ctx context.Context) error          { return nil }
func (stubTx) Rollback(ctx context.Context) error        { return nil }
func (stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (stubTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (stubTx) Conn() *pgx.Conn                                               { return nil }

func testCtx() context.Context {
	return composables.WithTx(context.Background(), stubTx{})
}

func TestEmployeeService_Create_PublishesEvent(t *testing.T) {
	repo := newEmployeeRepoMock()
	bus := testBus()
	svc := services.NewEmployeeService(repo, bus)

	var published []employee.CreatedEvent
	bus.Subscribe(func(ev employee.CreatedEvent) {
		published = append(published, ev)
	})

	created, err := svc.Create(testCtx(), employee.New(
		"Ada", "Lovelace", "Ada.Lovelace@Example.COM", "Engineering", "Staff Engineer", 7, time.Time{},
	))
	require.NoError(t, err)
	require.Equal(t, "ada.lovelace@example.com", created.Email())
	require.NotEqual(t, uuid.Nil, created.ID())

	require.Len(t, published, 1)
	require.Equal(t, created.ID(), published[0].Result.ID())
}

func TestEmployeeService_Create_DuplicateEmail(t *testing.T) {
	repo := newEmployeeRepoMock()
	svc := services.NewEmployeeService(repo, testBus())

	_, err := svc.Create(testCtx(), employee.New("Ada", "Lovelace", "ada@example.com", "Engineering", "", 0, time.Time{}))
	require.NoError(t, err)

	_, err = svc.Create(testCtx(), employee.New("Ada", "L", "ADA@example.com", "Engineering", "", 0, time.Time{}))
	require.ErrorIs(t, err, employee.ErrEmailTaken)
}

func TestEmployeeService_FilterExistingEmails(t *testing.T) {
	repo := newEmployeeRepoMock()
	svc := services.NewEmployeeService(repo, testBus())

	_, err := svc.Create(testCtx(), employee.New("Ada", "Lovelace", "ada@example.com", "Engineering", "", 0, time.Time{}))
	require.NoError(t, err)

	existing, err := svc.FilterExistingEmails(testCtx(), []string{"ada@example.com", "new@example.com"})
	require.NoError(t, err)
	require.True(t, existing["ada@example.com"])
	require.False(t, existing["new@example.com"])
}
