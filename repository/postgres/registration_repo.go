package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

const registrationColumns = `id, user_id, task_id, registration_date, status, message,
	reviewed_by, reviewed_at, completed_at, rating, feedback, notes, version, updated_at`

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository returns a Postgres-backed RegistrationRepository.
// The partial unique index on (user_id, task_id) enforces the active-registration rule.
func NewRegistrationRepository(pool *pgxpool.Pool) repository.RegistrationRepository {
	return &registrationRepository{pool: pool}
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.TaskRegistration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRegistrationNotFound
	}
	query := `SELECT ` + registrationColumns + ` FROM task_registrations WHERE id = $1`
	return scanRegistration(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.TaskRegistration) (*domain.TaskRegistration, error) {
	if reg == nil {
		return nil, domain.ErrInvalidPayload
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.RegistrationDate.IsZero() {
		reg.RegistrationDate = time.Now()
	}

	const query = `
	INSERT INTO task_registrations (
		id, user_id, task_id, registration_date, status, message,
		reviewed_by, reviewed_at, completed_at, rating, feedback, notes, version
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
	RETURNING version, updated_at
	`

	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		reg.ID,
		reg.UserID,
		reg.TaskID,
		reg.RegistrationDate,
		string(reg.Status),
		reg.Message,
		reg.ReviewedBy,
		nullTime(reg.ReviewedAt),
		nullTime(reg.CompletedAt),
		reg.Rating,
		reg.Feedback,
		reg.Notes,
	).Scan(&reg.Version, &reg.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateRegistration
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.TaskRegistration) error {
	if reg == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE task_registrations
	SET status = $3,
		message = $4,
		reviewed_by = $5,
		reviewed_at = $6,
		completed_at = $7,
		rating = $8,
		feedback = $9,
		notes = $10,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`

	err := conn(ctx, r.pool).QueryRow(ctx, query,
		reg.ID,
		reg.Version,
		string(reg.Status),
		reg.Message,
		reg.ReviewedBy,
		nullTime(reg.ReviewedAt),
		nullTime(reg.CompletedAt),
		reg.Rating,
		reg.Feedback,
		reg.Notes,
	).Scan(&reg.Version, &reg.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicateRegistration
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if _, getErr := r.GetByID(ctx, reg.ID); getErr != nil {
		return getErr
	}
	return domain.ErrConcurrencyConflict
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrRegistrationNotFound
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM task_registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (r *registrationRepository) List(ctx context.Context, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return r.pagedSearch(ctx, repository.RegistrationFilter{Pagination: page})
}

func (r *registrationRepository) Search(ctx context.Context, filter repository.RegistrationFilter) (repository.Page[domain.TaskRegistration], error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = $%d", filter.UserID)
	}
	if filter.TaskID != "" {
		w.add("task_id::text = $%d", filter.TaskID)
	}
	if len(filter.TaskIDs) > 0 {
		w.add("task_id::text = ANY($%d)", filter.TaskIDs)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		w.add("status = ANY($%d)", statuses)
	}

	db := conn(ctx, r.pool)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM task_registrations `+w.sql(), w.args...).Scan(&total); err != nil {
		return repository.Page[domain.TaskRegistration]{}, err
	}

	whereSQL := w.sql()
	limitSQL := w.page(filter.Pagination)
	query := fmt.Sprintf(`SELECT %s FROM task_registrations %s ORDER BY registration_date DESC, id DESC %s`,
		registrationColumns, whereSQL, limitSQL)

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return repository.Page[domain.TaskRegistration]{}, err
	}
	defer rows.Close()

	var regs []domain.TaskRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return repository.Page[domain.TaskRegistration]{}, err
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return repository.Page[domain.TaskRegistration]{}, err
	}
	return repository.NewPage(regs, total, filter.Pagination), nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return r.pagedSearch(ctx, repository.RegistrationFilter{UserID: userID, Pagination: page})
}

func (r *registrationRepository) ListByTask(ctx context.Context, taskID string, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return r.pagedSearch(ctx, repository.RegistrationFilter{TaskID: taskID, Pagination: page})
}

func (r *registrationRepository) ListByStatus(ctx context.Context, status domain.RegistrationStatus, page repository.Pagination) (repository.Page[domain.TaskRegistration], error) {
	return r.pagedSearch(ctx, repository.RegistrationFilter{
		Statuses:   []domain.RegistrationStatus{status},
		Pagination: page,
	})
}

func (r *registrationRepository) GetActiveByUserAndTask(ctx context.Context, userID, taskID string) (*domain.TaskRegistration, error) {
	query := `
	SELECT ` + registrationColumns + `
	FROM task_registrations
	WHERE user_id = $1 AND task_id::text = $2 AND status NOT IN ('cancelled', 'rejected')
	`
	return scanRegistration(conn(ctx, r.pool).QueryRow(ctx, query, userID, taskID))
}

func (r *registrationRepository) ExistsActive(ctx context.Context, userID, taskID string) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM task_registrations
		WHERE user_id = $1 AND task_id::text = $2 AND status NOT IN ('cancelled', 'rejected')
	)
	`
	var exists bool
	if err := conn(ctx, r.pool).QueryRow(ctx, query, userID, taskID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *registrationRepository) pagedSearch(ctx context.Context, filter repository.RegistrationFilter) (repository.Page[domain.TaskRegistration], error) {
	if err := filter.Pagination.Validate(); err != nil {
		return repository.Page[domain.TaskRegistration]{}, err
	}
	return r.Search(ctx, filter)
}

func scanRegistration(row interface {
	Scan(dest ...interface{}) error
}) (*domain.TaskRegistration, error) {
	var reg domain.TaskRegistration
	var status string

	if err := row.Scan(
		&reg.ID,
		&reg.UserID,
		&reg.TaskID,
		&reg.RegistrationDate,
		&status,
		&reg.Message,
		&reg.ReviewedBy,
		&reg.ReviewedAt,
		&reg.CompletedAt,
		&reg.Rating,
		&reg.Feedback,
		&reg.Notes,
		&reg.Version,
		&reg.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}

	reg.Status = domain.RegistrationStatus(status)
	return &reg, nil
}
