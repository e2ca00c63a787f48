// internal/dataset/people_repository.go
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/api-framework/internal/adapters/db"
	"github.com/ammerola/api-framework/internal/core/domain"
	"github.com/ammerola/api-framework/internal/core/ports"
)

const peopleTable = "people"

var personColumns = []string{
	"id",
	"fname",
	"COALESCE(lname, '') AS lname",
	"age",
	"COALESCE(email, '') AS email",
	"created_at",
}

// PeopleRepository implements ports.PeopleRepository on the pooled accessor.
type PeopleRepository struct {
	db     ports.Database
	logger *slog.Logger
	sb     squirrel.StatementBuilderType
}

var _ ports.PeopleRepository = (*PeopleRepository)(nil)

// NewPeopleRepository creates a new people repository
func NewPeopleRepository(database ports.Database, logger *slog.Logger) *PeopleRepository {
	return &PeopleRepository{
		db:     database,
		logger: logger.With(slog.String("repository", "people")),
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts one person and stores the generated id on it.
func (r *PeopleRepository) Create(ctx context.Context, person *domain.Person) (int64, error) {
	if err := person.Validate(); err != nil {
		return 0, err
	}

	query, args, err := r.sb.Insert(peopleTable).
		Columns("fname", "lname", "age", "email").
		Values(person.FName, nullString(person.LName), person.Age, nullString(person.Email)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}

	err = r.db.Transaction(ctx, func(conn *db.Conn) error {
		row, err := conn.QueryOne(ctx, query, args...)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			return fmt.Errorf("insert returned no id")
		}
		person.ID, err = toInt64(row[0])
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create person %q: %w", person.FName, err)
	}

	r.logger.DebugContext(ctx, "person created",
		slog.Int64("id", person.ID),
		slog.String("fname", person.FName))

	return person.ID, nil
}

// CreateBatch inserts people in one transaction. People with a non-zero ID
// keep it.
func (r *PeopleRepository) CreateBatch(ctx context.Context, people []domain.Person) (int64, error) {
	if len(people) == 0 {
		return 0, nil
	}

	query, argsList, err := r.batchInsert(people)
	if err != nil {
		return 0, err
	}

	inserted, err := r.db.ExecuteBatch(ctx, query, argsList)
	if err != nil {
		return 0, fmt.Errorf("failed to insert people: %w", err)
	}
	return inserted, nil
}

// ReplaceAll deletes every person and inserts people in a single
// transaction, then moves the id sequence past the inserted ids. On any
// failure the table keeps its previous contents.
func (r *PeopleRepository) ReplaceAll(ctx context.Context, people []domain.Person) (deleted, inserted int64, err error) {
	deleteQuery, deleteArgs, err := r.sb.Delete(peopleTable).ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build delete: %w", err)
	}

	var (
		insertQuery string
		argsList    [][]any
	)
	if len(people) > 0 {
		if insertQuery, argsList, err = r.batchInsert(people); err != nil {
			return 0, 0, err
		}
	}

	err = r.db.Transaction(ctx, func(conn *db.Conn) error {
		n, err := conn.Exec(ctx, deleteQuery, deleteArgs...)
		if err != nil {
			return fmt.Errorf("failed to delete people: %w", err)
		}
		deleted = n

		for i, args := range argsList {
			n, err := conn.Exec(ctx, insertQuery, args...)
			if err != nil {
				return fmt.Errorf("failed to insert people: batch item %d: %w", i, err)
			}
			inserted += n
		}

		if _, err := conn.Query(ctx, syncPeopleSequence); err != nil {
			return fmt.Errorf("failed to sync people id sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	r.logger.DebugContext(ctx, "people replaced",
		slog.Int64("deleted", deleted),
		slog.Int64("inserted", inserted))

	return deleted, inserted, nil
}

func (r *PeopleRepository) batchInsert(people []domain.Person) (string, [][]any, error) {
	query, _, err := r.sb.Insert(peopleTable).
		Columns("id", "fname", "lname", "age", "email").
		Values(nil, nil, nil, nil, nil).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build batch insert: %w", err)
	}

	argsList := make([][]any, 0, len(people))
	for i := range people {
		if err := people[i].Validate(); err != nil {
			return "", nil, fmt.Errorf("person %d: %w", i, err)
		}
		if people[i].ID == 0 {
			return "", nil, fmt.Errorf("person %d (%s): batch inserts need an explicit id", i, people[i].FName)
		}
		argsList = append(argsList, []any{
			people[i].ID, people[i].FName, nullString(people[i].LName),
			people[i].Age, nullString(people[i].Email),
		})
	}
	return query, argsList, nil
}

// FindByID returns domain.ErrPersonNotFound when no row matches.
func (r *PeopleRepository) FindByID(ctx context.Context, id int64) (*domain.Person, error) {
	query, args, err := r.sb.Select(personColumns...).
		From(peopleTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryDict(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find person %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id %d", domain.ErrPersonNotFound, id)
	}

	person, err := personFromRow(rows[0])
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByFirstName returns every person with the given first name.
func (r *PeopleRepository) FindByFirstName(ctx context.Context, fname string) ([]domain.Person, error) {
	return r.list(ctx, r.sb.Select(personColumns...).
		From(peopleTable).
		Where(squirrel.Eq{"fname": fname}).
		OrderBy("id"))
}

// List pages through people ordered by id. A zero limit returns every row.
func (r *PeopleRepository) List(ctx context.Context, limit, offset uint64) ([]domain.Person, error) {
	qb := r.sb.Select(personColumns...).From(peopleTable).OrderBy("id")
	if limit > 0 {
		qb = qb.Limit(limit)
	}
	if offset > 0 {
		qb = qb.Offset(offset)
	}
	return r.list(ctx, qb)
}

// Count returns the number of people.
func (r *PeopleRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").From(peopleTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	row, err := r.db.QueryOne(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	if len(row) == 0 {
		return 0, nil
	}
	return toInt64(row[0])
}

// DeleteAll empties the table and returns the number of removed rows.
func (r *PeopleRepository) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Delete(peopleTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	deleted, err := r.db.Execute(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete people: %w", err)
	}
	return deleted, nil
}

func (r *PeopleRepository) list(ctx context.Context, qb squirrel.SelectBuilder) ([]domain.Person, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryDict(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	people := make([]domain.Person, 0, len(rows))
	for _, row := range rows {
		person, err := personFromRow(row)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	return people, nil
}

func personFromRow(row db.RowMap) (domain.Person, error) {
	var (
		p   domain.Person
		err error
	)
	if p.ID, err = toInt64(row["id"]); err != nil {
		return p, fmt.Errorf("person id: %w", err)
	}
	age, err := toInt64(row["age"])
	if err != nil {
		return p, fmt.Errorf("person %d age: %w", p.ID, err)
	}
	p.Age = int(age)
	p.FName = toString(row["fname"])
	p.LName = toString(row["lname"])
	p.Email = toString(row["email"])
	if t, ok := row["created_at"].(time.Time); ok {
		p.CreatedAt = t
	}
	return p, nil
}

// toInt64 accepts the integer shapes the pgx and database/sql backends return.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected integer type %T", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
