// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

const tracerName = "usermgmt/user"

// Recorder observes the outcome of each service operation.
type Recorder interface {
	ObserveUserOperation(operation, result string)
}

type Service struct {
	repo      Repository
	validator *Validator
	recorder  Recorder
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		validator: NewValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(
	ctx context.Context,
	params ListUsersParams,
) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.List",
		attribute.Bool("user.include_deleted", params.IncludeDeleted))
	defer func() { s.finish(span, "list", err) }()

	users, err = s.repo.FindAll(ctx, params.IncludeDeleted)
	if err != nil {
		return nil, core.InternalError(err)
	}

	return users, nil
}

func (s *Service) Get(ctx context.Context, id int64) (user *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Get",
		attribute.Int64("user.id", id))
	defer func() { s.finish(span, "get", err) }()

	return s.mustFind(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateUserRequest,
) (user *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Create",
		attribute.String("user.username", req.Username))
	defer func() { s.finish(span, "create", err) }()

	slog.InfoContext(ctx, "attempting to create user",
		"username", req.Username,
	)

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, 0, FieldUsername, req.Username); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, 0, FieldEmail, req.Email); err != nil {
		return nil, err
	}

	now := s.clock()
	user = &User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedOn: now,
		UpdatedOn: now,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, s.writeError(err, req.Username, req.Email)
	}

	slog.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"username", user.Username,
	)

	return user, nil
}

// Update checks existence, then validates the present fields, then
// uniqueness, and only then writes.
func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (user *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Update",
		attribute.Int64("user.id", id))
	defer func() { s.finish(span, "update", err) }()

	slog.InfoContext(ctx, "attempting to update user", "user_id", id)

	user, err = s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(req); err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := s.ensureUnique(ctx, id, FieldUsername, *req.Username); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := s.ensureUnique(ctx, id, FieldEmail, *req.Email); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(user)
	user.touch(s.clock())

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, s.writeError(err, user.Username, user.Email)
	}

	slog.InfoContext(ctx, "user updated", "user_id", id)

	return user, nil
}

// Delete removes the row permanently.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Delete",
		attribute.Int64("user.id", id))
	defer func() { s.finish(span, "delete", err) }()

	slog.InfoContext(ctx, "attempting to physically delete user", "user_id", id)

	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return core.InternalError(err)
	}

	if rows == 0 {
		slog.WarnContext(ctx, "user was not deleted (0 rows affected)",
			"user_id", id,
		)
		return core.InternalError(
			fmt.Errorf("delete user %d: no rows affected", id),
		)
	}

	slog.InfoContext(ctx, "user deleted physically", "user_id", id)

	return nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.SoftDelete",
		attribute.Int64("user.id", id))
	defer func() { s.finish(span, "soft_delete", err) }()

	slog.InfoContext(ctx, "attempting to soft delete user", "user_id", id)

	user, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}

	if user.IsDeleted() {
		slog.WarnContext(ctx, "user is already soft deleted", "user_id", id)
		return core.ValidationError(fmt.Sprintf(
			"User with ID %d is already marked as deleted", id))
	}

	rows, err := s.repo.SoftDelete(ctx, id, s.stamp(user))
	if err != nil {
		return core.InternalError(err)
	}

	if rows == 0 {
		return s.lostTransition(ctx, id, "soft delete")
	}

	slog.InfoContext(ctx, "user marked as deleted", "user_id", id)

	return nil
}

func (s *Service) Restore(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Restore",
		attribute.Int64("user.id", id))
	defer func() { s.finish(span, "restore", err) }()

	slog.InfoContext(ctx, "attempting to restore user", "user_id", id)

	user, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}

	if !user.IsDeleted() {
		slog.WarnContext(ctx, "user is not deleted, cannot restore",
			"user_id", id,
		)
		return core.ValidationError(fmt.Sprintf(
			"User with ID %d is not marked as deleted", id))
	}

	rows, err := s.repo.Restore(ctx, id, s.stamp(user))
	if err != nil {
		return core.InternalError(err)
	}

	if rows == 0 {
		return s.lostTransition(ctx, id, "restore")
	}

	slog.InfoContext(ctx, "user restored", "user_id", id)

	return nil
}

func (s *Service) mustFind(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, core.InternalError(err)
	}
	return user, nil
}

// ensureUnique fails when another record (any deletion state) already
// holds value. selfID is allowed to match itself.
func (s *Service) ensureUnique(
	ctx context.Context,
	selfID int64,
	field, value string,
) error {
	var (
		existing *User
		err      error
	)

	switch field {
	case FieldUsername:
		existing, err = s.repo.FindByUsername(ctx, value)
	case FieldEmail:
		existing, err = s.repo.FindByEmail(ctx, value)
	default:
		return core.InternalError(fmt.Errorf("unknown unique field %q", field))
	}

	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return core.InternalError(err)
	}

	if existing.ID != selfID {
		return conflict(field, value)
	}
	return nil
}

// writeError maps a failed insert/update. A unique violation here means
// a concurrent writer won the race after our pre-check.
func (s *Service) writeError(err error, username, email string) error {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return core.InternalError(err)
	}

	switch dup.Field {
	case FieldUsername:
		return conflict(FieldUsername, username)
	case FieldEmail:
		return conflict(FieldEmail, email)
	default:
		return core.ValidationError("User already exists")
	}
}

// lostTransition explains a state change that matched no rows after the
// pre-check passed, by re-reading the record.
func (s *Service) lostTransition(ctx context.Context, id int64, op string) error {
	slog.WarnContext(ctx, "user state changed concurrently",
		"user_id", id,
		"operation", op,
	)

	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	return core.InternalError(
		fmt.Errorf("%s user %d: no rows affected", op, id),
	)
}

// clock reads the service clock at the precision timestamptz stores, so
// a write response matches every later read.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// stamp returns the timestamp for a state transition on u.
func (s *Service) stamp(u *User) time.Time {
	u.touch(s.clock())
	return u.UpdatedOn
}

func (s *Service) finish(span trace.Span, op string, err error) {
	core.EndSpan(span, err)
	if s.recorder != nil {
		s.recorder.ObserveUserOperation(op, outcome(err))
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	appErr, ok := core.AsAppError(err)
	if !ok {
		return "error"
	}
	switch appErr.Code {
	case core.CodeNotFound:
		return "not_found"
	case core.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}

func userNotFound(id int64) error {
	return core.NotFoundError(fmt.Sprintf("User with ID %d not found", id))
}

func conflict(field, value string) error {
	label := "Username"
	if field == FieldEmail {
		label = "Email"
	}
	return core.ValidationError(fmt.Sprintf("%s %s already exists", label, value))
}
