// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"
)

type User struct {
	ID        int64      `db:"id"`
	Username  string     `db:"username"`
	FirstName *string    `db:"first_name"`
	LastName  *string    `db:"last_name"`
	Email     string     `db:"email"`
	Phone     *string    `db:"phone"`
	CreatedOn time.Time  `db:"created_on"`
	UpdatedOn time.Time  `db:"updated_on"`
	DeletedOn *time.Time `db:"deleted_on"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedOn != nil
}

// FullName joins first and last name, falling back to the username
// when neither is set.
func (u *User) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Username
	}
	return strings.Join(parts, " ")
}

// touch advances UpdatedOn to at, never letting it fall behind CreatedOn.
func (u *User) touch(at time.Time) {
	if at.Before(u.CreatedOn) {
		at = u.CreatedOn
	}
	u.UpdatedOn = at
}
