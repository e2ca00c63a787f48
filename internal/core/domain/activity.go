// internal/core/domain/activity.go
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidActivity = errors.New("invalid activity")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Activity is a FakeRESTApi activity. ID is assigned by the service and is
// zero on create requests.
type Activity struct {
	ID        int       `json:"id" yaml:"id" validate:"gte=0"`
	Title     string    `json:"title" yaml:"title" validate:"required,max=200"`
	DueDate   time.Time `json:"dueDate" yaml:"dueDate" validate:"required"`
	Completed bool      `json:"completed" yaml:"completed"`
}

// Validate checks the activity before it is sent.
func (a *Activity) Validate() error {
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidActivity, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidActivity, err)
	}
	return nil
}

// Matches reports whether other carries the same client-supplied fields.
// IDs are ignored and due dates compare as instants.
func (a Activity) Matches(other Activity) bool {
	return a.Title == other.Title &&
		a.Completed == other.Completed &&
		a.DueDate.Equal(other.DueDate)
}
