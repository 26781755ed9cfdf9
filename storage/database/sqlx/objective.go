package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
)

type objectiveRepository struct {
	repository
}

var _ learning.ObjectiveRepository = (*objectiveRepository)(nil) // interface compliance check

func NewObjectiveRepository(db *sqlx.DB) *objectiveRepository {
	return &objectiveRepository{repository{db: db}}
}

func (repo objectiveRepository) CreateObjective(ctx context.Context, obj learning.Objective, exec ...core.DBExecutor) (learning.Objective, error) {
	obj.ID = uuid.New().String()

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO objective (id, ability, language, slug, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		obj.ID, obj.Ability, null.NewString(obj.Language, obj.Language != ""), obj.Slug, obj.AuthorID,
		obj.CreatedAt.UTC(), obj.UpdatedAt.UTC(),
	)
	if err != nil {
		return learning.Objective{}, errors.Wrap(err, "inserting objective")
	}
	return obj, nil
}

func (repo objectiveRepository) GetObjective(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Objective, error) {
	ext := repo.getExec(exec)

	var cond string
	var arg interface{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return learning.Objective{}, learning.ErrNotFound
		}
		cond, arg = "id = ?", filter.ID
	case filter.Slug != "":
		cond, arg = "slug = ?", filter.Slug
	default:
		return learning.Objective{}, learning.ErrNotFound
	}

	var row objectiveRow
	err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(`SELECT * FROM objective WHERE `+cond), arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return learning.Objective{}, learning.ErrNotFound
		}
		return learning.Objective{}, errors.Wrap(err, "finding objective")
	}
	obj := row.objective()

	validators, err := loadObjectiveValidators(ctx, ext, []string{obj.ID})
	if err != nil {
		return learning.Objective{}, err
	}
	obj.Validators = validators[obj.ID]

	return obj, nil
}

func (repo objectiveRepository) QueryObjectives(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Objective, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}

	if !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, "ability ILIKE ?")
			args = append(args, "%"+filter.Search+"%")
		}
		if filter.WrittenBy != "" {
			conds = append(conds, "author_id = ?")
			args = append(args, filter.WrittenBy)
		}
	}

	query := `SELECT * FROM objective` + whereClause(conds) + orderClause(ordering)

	var rows []objectiveRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying objectives")
	}

	objectives := make([]learning.Objective, 0, len(rows))
	for _, r := range rows {
		objectives = append(objectives, r.objective())
	}
	return objectives, nil
}

func (repo objectiveRepository) UpdateObjective(ctx context.Context, obj learning.Objective, exec ...core.DBExecutor) (learning.Objective, error) {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE objective
		SET ability = ?, language = ?, slug = ?, updated_at = ?
		WHERE id = ?`),
		obj.Ability, null.NewString(obj.Language, obj.Language != ""), obj.Slug, obj.UpdatedAt.UTC(), obj.ID,
	)
	if err != nil {
		return learning.Objective{}, errors.Wrap(err, "updating objective")
	}
	return repo.GetObjective(ctx, learning.GetFilter{ID: obj.ID}, exec...)
}

func (repo objectiveRepository) DeleteObjectivesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := execIn(ctx, repo.getExec(exec), `DELETE FROM objective WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting objectives")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo objectiveRepository) ObjectiveSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	ext := repo.getExec(exec)
	var exists bool
	err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(`SELECT EXISTS (SELECT 1 FROM objective WHERE slug = ?)`), slug)
	return exists, errors.Wrap(err, "checking objective slug")
}

func (repo objectiveRepository) ObjectiveAbilityExists(ctx context.Context, ability string, excludedIDs []string, exec ...core.DBExecutor) (bool, error) {
	ext := repo.getExec(exec)

	query := `SELECT EXISTS (SELECT 1 FROM objective WHERE LOWER(ability) = LOWER(?)`
	args := []interface{}{ability}
	if len(excludedIDs) > 0 {
		query += ` AND id NOT IN (?)`
		args = append(args, excludedIDs)
	}
	query += `)`

	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return false, errors.Wrap(err, "checking objective ability")
	}
	var exists bool
	if err = sqlx.GetContext(ctx, ext, &exists, ext.Rebind(q), inArgs...); err != nil {
		return false, errors.Wrap(err, "checking objective ability")
	}
	return exists, nil
}

func (repo objectiveRepository) SaveAttachment(ctx context.Context, eo learning.EntityObjective, exec ...core.DBExecutor) (learning.EntityObjective, error) {
	if eo.ID == "" {
		eo.ID = uuid.New().String()
	}

	err := repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		row := ext.QueryRowxContext(ctx, ext.Rebind(`
			INSERT INTO entity_objective (id, entity_kind, entity_id, entity_name, objective_id, taxonomy_level, reusable, needs_test, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (entity_kind, entity_id, objective_id)
			DO UPDATE SET entity_name = EXCLUDED.entity_name, taxonomy_level = EXCLUDED.taxonomy_level, reusable = EXCLUDED.reusable, needs_test = EXCLUDED.needs_test
			RETURNING id`),
			eo.ID, int(eo.EntityKind), eo.EntityID, eo.EntityName, eo.ObjectiveID,
			int(eo.TaxonomyLevel), eo.Reusable, eo.NeedsTest, eo.CreatedAt.UTC(),
		)
		if err := row.Scan(&eo.ID); err != nil {
			return errors.Wrap(err, "saving attachment")
		}
		return replaceAttachmentValidators(ctx, ext, eo.ID, eo.Validators)
	})
	if err != nil {
		return learning.EntityObjective{}, err
	}
	return eo, nil
}

func (repo objectiveRepository) GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (learning.EntityObjective, error) {
	ext := repo.getExec(exec)

	var row attachmentRow
	err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(`SELECT * FROM entity_objective WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return learning.EntityObjective{}, learning.ErrNotFound
		}
		return learning.EntityObjective{}, errors.Wrap(err, "finding attachment")
	}
	eo := row.attachment()

	validators, err := loadAttachmentValidators(ctx, ext, []string{eo.ID})
	if err != nil {
		return learning.EntityObjective{}, err
	}
	eo.Validators = validators[eo.ID]

	objectives, err := loadObjectives(ctx, ext, []string{eo.ObjectiveID})
	if err != nil {
		return learning.EntityObjective{}, err
	}
	eo.Objective = objectives[eo.ObjectiveID]

	return *eo, nil
}

func (repo objectiveRepository) QueryAttachments(ctx context.Context, objectiveID string, exec ...core.DBExecutor) ([]learning.EntityObjective, error) {
	ext := repo.getExec(exec)

	var rows []attachmentRow
	err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(`
		SELECT * FROM entity_objective WHERE objective_id = ? ORDER BY created_at`), objectiveID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attachments")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	attIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		attIDs = append(attIDs, r.ID)
	}
	validators, err := loadAttachmentValidators(ctx, ext, attIDs)
	if err != nil {
		return nil, err
	}

	attachments := make([]learning.EntityObjective, 0, len(rows))
	for _, r := range rows {
		eo := r.attachment()
		eo.Validators = validators[eo.ID]
		attachments = append(attachments, *eo)
	}
	return attachments, nil
}

func (repo objectiveRepository) DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM entity_objective WHERE id = ?`), id)
	return errors.Wrap(err, "deleting attachment")
}

func (repo objectiveRepository) ApplyValidationChange(ctx context.Context, change learning.ValidationChange, exec ...core.DBExecutor) error {
	return repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		if change.Objective != nil {
			if err := replaceObjectiveValidators(ctx, ext, change.Objective.ID, change.Objective.Validators); err != nil {
				return err
			}
		}
		for _, eo := range change.Attachments {
			if err := replaceAttachmentValidators(ctx, ext, eo.ID, eo.Validators); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceObjectiveValidators swaps the objective's global validator records
// for the given set.
func replaceObjectiveValidators(ctx context.Context, ext sqlx.ExtContext, objectiveID string, validators []learning.ValidationRecord) error {
	if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM objective_validation WHERE objective_id = ?`), objectiveID); err != nil {
		return errors.Wrap(err, "clearing objective validators")
	}
	for _, v := range validators {
		_, err := ext.ExecContext(ctx, ext.Rebind(`
			INSERT INTO objective_validation (objective_id, student_id, slug, created_at)
			VALUES (?, ?, ?, ?)`),
			objectiveID, v.StudentID, v.Slug, v.CreatedAt.UTC(),
		)
		if err != nil {
			return errors.Wrap(err, "saving objective validator")
		}
	}
	return nil
}

// replaceAttachmentValidators swaps the attachment's validator records for
// the given set.
func replaceAttachmentValidators(ctx context.Context, ext sqlx.ExtContext, attachmentID string, validators []learning.ValidationRecord) error {
	if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM entity_objective_validation WHERE entity_objective_id = ?`), attachmentID); err != nil {
		return errors.Wrap(err, "clearing attachment validators")
	}
	for _, v := range validators {
		_, err := ext.ExecContext(ctx, ext.Rebind(`
			INSERT INTO entity_objective_validation (entity_objective_id, student_id, slug, created_at)
			VALUES (?, ?, ?, ?)`),
			attachmentID, v.StudentID, v.Slug, v.CreatedAt.UTC(),
		)
		if err != nil {
			return errors.Wrap(err, "saving attachment validator")
		}
	}
	return nil
}
