// internal/core/ports/people_repository.go
package ports

import (
	"context"

	"github.com/ammerola/api-framework/internal/core/domain"
)

// PeopleRepository reads and writes the people dataset.
type PeopleRepository interface {
	Create(ctx context.Context, person *domain.Person) (int64, error)
	CreateBatch(ctx context.Context, people []domain.Person) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Person, error)
	FindByFirstName(ctx context.Context, fname string) ([]domain.Person, error)
	List(ctx context.Context, limit, offset uint64) ([]domain.Person, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	ReplaceAll(ctx context.Context, people []domain.Person) (deleted, inserted int64, err error)
}
