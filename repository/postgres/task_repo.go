package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/repository"
)

const taskColumns = `id, title, description, start_date, end_date,
	street, city, state, zip_code, country, latitude, longitude,
	max_volunteers, current_volunteers, status, category,
	requirements, skills, tags, is_urgent, application_deadline,
	organization_id, created_by, version, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM volunteer_tasks WHERE id = $1`
	return scanTask(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *taskRepository) Create(ctx context.Context, task *domain.VolunteerTask) (*domain.VolunteerTask, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO volunteer_tasks (
		id, title, description, start_date, end_date,
		street, city, state, zip_code, country, latitude, longitude,
		max_volunteers, current_volunteers, status, category,
		requirements, skills, tags, is_urgent, application_deadline,
		organization_id, created_by, version
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, 1)
	RETURNING version, created_at, updated_at
	`

	loc := task.Location
	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.StartDate,
		task.EndDate,
		loc.Street,
		loc.City,
		loc.State,
		loc.ZipCode,
		loc.Country,
		loc.Latitude,
		loc.Longitude,
		task.MaxVolunteers,
		task.CurrentVolunteers,
		string(task.Status),
		string(task.Category),
		nonNilStrings(task.Requirements),
		nonNilStrings(task.Skills),
		nonNilStrings(task.Tags),
		task.IsUrgent,
		nullTime(task.ApplicationDeadline),
		task.OrganizationID,
		task.CreatedBy,
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.VolunteerTask) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE volunteer_tasks
	SET title = $3,
		description = $4,
		start_date = $5,
		end_date = $6,
		street = $7,
		city = $8,
		state = $9,
		zip_code = $10,
		country = $11,
		latitude = $12,
		longitude = $13,
		max_volunteers = $14,
		status = $15,
		category = $16,
		requirements = $17,
		skills = $18,
		tags = $19,
		is_urgent = $20,
		application_deadline = $21,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2 AND current_volunteers <= $14
	RETURNING current_volunteers, version, created_at, updated_at
	`

	loc := task.Location
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.Version,
		task.Title,
		task.Description,
		task.StartDate,
		task.EndDate,
		loc.Street,
		loc.City,
		loc.State,
		loc.ZipCode,
		loc.Country,
		loc.Latitude,
		loc.Longitude,
		task.MaxVolunteers,
		string(task.Status),
		string(task.Category),
		nonNilStrings(task.Requirements),
		nonNilStrings(task.Skills),
		nonNilStrings(task.Tags),
		task.IsUrgent,
		nullTime(task.ApplicationDeadline),
	).Scan(&task.CurrentVolunteers, &task.Version, &task.CreatedAt, &task.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	current, getErr := r.GetByID(ctx, task.ID)
	if getErr != nil {
		return getErr
	}
	if current.Version != task.Version {
		return domain.ErrConcurrencyConflict
	}
	return domain.ErrCapacityBelowOccupancy
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM volunteer_tasks WHERE id = $1 AND current_volunteers = 0`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrTaskHasRegistrations
}

func (r *taskRepository) List(ctx context.Context, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{Pagination: page})
}

func (r *taskRepository) Search(ctx context.Context, filter repository.TaskFilter) (repository.Page[domain.VolunteerTask], error) {
	var w where
	if filter.OrganizationID != "" {
		w.add("organization_id = $%d", filter.OrganizationID)
	}
	if filter.CreatedBy != "" {
		w.add("created_by = $%d", filter.CreatedBy)
	}
	if filter.Category != "" {
		w.add("category = $%d", string(filter.Category))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		w.add("status = ANY($%d)", statuses)
	}
	if filter.Urgent != nil {
		w.add("is_urgent = $%d", *filter.Urgent)
	}
	if filter.EndsBefore != nil {
		w.add("end_date < $%d", *filter.EndsBefore)
	}
	if filter.Query != "" {
		w.add(`(title ILIKE $%d OR description ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%d))`, likePattern(filter.Query))
	}

	db := conn(ctx, r.pool)
	var total int
	countQuery := `SELECT COUNT(*) FROM volunteer_tasks ` + w.sql()
	if err := db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}

	whereSQL := w.sql()
	limitSQL := w.page(filter.Pagination)
	query := fmt.Sprintf(`SELECT %s FROM volunteer_tasks %s ORDER BY created_at DESC, id DESC %s`, taskColumns, whereSQL, limitSQL)

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	defer rows.Close()

	var tasks []domain.VolunteerTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return repository.Page[domain.VolunteerTask]{}, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	return repository.NewPage(tasks, total, filter.Pagination), nil
}

func (r *taskRepository) ListByOrganization(ctx context.Context, organizationID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{OrganizationID: organizationID, Pagination: page})
}

func (r *taskRepository) ListByCreator(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{CreatedBy: userID, Pagination: page})
}

func (r *taskRepository) ListByCategory(ctx context.Context, category domain.Category, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{Category: category, Pagination: page})
}

func (r *taskRepository) ListActive(ctx context.Context, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive},
		Pagination: page,
	})
}

func (r *taskRepository) TextSearch(ctx context.Context, query string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	return r.pagedSearch(ctx, repository.TaskFilter{Query: query, Pagination: page})
}

func (r *taskRepository) Featured(ctx context.Context) ([]domain.VolunteerTask, error) {
	urgent := true
	result, err := r.Search(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive},
		Urgent:     &urgent,
		Pagination: repository.Pagination{Page: 1, PageSize: repository.FeaturedLimit},
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (r *taskRepository) IncrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}

	// single statement: the row lock makes check-and-increment atomic
	query := `
	UPDATE volunteer_tasks
	SET current_volunteers = current_volunteers + 1,
		updated_at = NOW()
	WHERE id = $1
	  AND status = 'active'
	  AND current_volunteers < max_volunteers
	RETURNING ` + taskColumns

	task, err := scanTask(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.IsFull() {
		return nil, domain.ErrTaskFull
	}
	return nil, domain.ErrTaskNotOpen
}

func (r *taskRepository) DecrementVolunteers(ctx context.Context, id string) (*domain.VolunteerTask, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `
	UPDATE volunteer_tasks
	SET current_volunteers = GREATEST(current_volunteers - 1, 0),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + taskColumns
	return scanTask(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *taskRepository) pagedSearch(ctx context.Context, filter repository.TaskFilter) (repository.Page[domain.VolunteerTask], error) {
	if err := filter.Pagination.Validate(); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	return r.Search(ctx, filter)
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.VolunteerTask, error) {
	var task domain.VolunteerTask
	var status, category string

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.StartDate,
		&task.EndDate,
		&task.Location.Street,
		&task.Location.City,
		&task.Location.State,
		&task.Location.ZipCode,
		&task.Location.Country,
		&task.Location.Latitude,
		&task.Location.Longitude,
		&task.MaxVolunteers,
		&task.CurrentVolunteers,
		&status,
		&category,
		&task.Requirements,
		&task.Skills,
		&task.Tags,
		&task.IsUrgent,
		&task.ApplicationDeadline,
		&task.OrganizationID,
		&task.CreatedBy,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Category = domain.Category(category)
	return &task, nil
}
