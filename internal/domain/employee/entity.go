package employee

import "time"

type Employee struct {
	ID        string
	Name      string
	Email     *string
	IsActive  bool
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
