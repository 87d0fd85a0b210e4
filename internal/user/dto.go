// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
}

// UpdateUserRequest is a partial patch: nil fields were absent (or null)
// in the request body and are left untouched.
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// ApplyTo merges the present fields into u.
func (r *UpdateUserRequest) ApplyTo(u *User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.FirstName != nil {
		u.FirstName = stringPtr(*r.FirstName)
	}
	if r.LastName != nil {
		u.LastName = stringPtr(*r.LastName)
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Phone != nil {
		u.Phone = stringPtr(*r.Phone)
	}
}

type UserResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
	DeletedOn *time.Time `json:"deleted_on"`
}

type ListUsersParams struct {
	IncludeDeleted bool `json:"include_deleted"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedOn: u.CreatedOn,
		UpdatedOn: u.UpdatedOn,
		DeletedOn: u.DeletedOn,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func stringPtr(s string) *string {
	return &s
}
