package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/learning"
)

// baseRow holds the columns shared by the course, activity and resource
// tables.
type baseRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description null.String    `db:"description"`
	Language    null.String    `db:"language"`
	Tags        pq.StringArray `db:"tags"`
	Slug        string         `db:"slug"`
	AuthorID    string         `db:"author_id"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (r baseRow) base(kind learning.Kind) learning.Base {
	return learning.Base{
		ID:          r.ID,
		Kind:        kind,
		Name:        r.Name,
		Description: r.Description.String,
		Language:    r.Language.String,
		Tags:        r.Tags,
		Slug:        r.Slug,
		AuthorID:    r.AuthorID,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func newBaseRow(b learning.Base) baseRow {
	return baseRow{
		ID:          b.ID,
		Name:        b.Name,
		Description: null.NewString(b.Description, b.Description != ""),
		Language:    null.NewString(b.Language, b.Language != ""),
		Tags:        b.Tags,
		Slug:        b.Slug,
		AuthorID:    b.AuthorID,
		CreatedAt:   null.NewTime(b.CreatedAt.UTC(), !b.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(b.UpdatedAt.UTC(), !b.UpdatedAt.IsZero()),
	}
}

type collaboratorRow struct {
	EntityID  string    `db:"entity_id"`
	UserID    string    `db:"user_id"`
	Role      int       `db:"role"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

// loadCollaborators returns the collaborators of the given entities, keyed by
// entity ID.
func loadCollaborators(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, ids []string) (map[string][]learning.Collaborator, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []collaboratorRow
	err := selectIn(ctx, ext, &rows, `
		SELECT entity_id, user_id, role, created_at, updated_at
		FROM collaborator
		WHERE entity_kind = ? AND entity_id IN (?)
		ORDER BY created_at`, int(kind), ids)
	if err != nil {
		return nil, errors.Wrap(err, "loading collaborators")
	}

	out := make(map[string][]learning.Collaborator, len(ids))
	for _, r := range rows {
		out[r.EntityID] = append(out[r.EntityID], learning.Collaborator{
			UserID:    r.UserID,
			Role:      learning.CollaboratorRole(r.Role),
			CreatedAt: r.CreatedAt.Time,
			UpdatedAt: r.UpdatedAt.Time,
		})
	}
	return out, nil
}

// loadFavourites returns the user IDs that favourited the given entities,
// keyed by entity ID.
func loadFavourites(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, ids []string) (map[string][]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []struct {
		EntityID string `db:"entity_id"`
		UserID   string `db:"user_id"`
	}
	err := selectIn(ctx, ext, &rows, `
		SELECT entity_id, user_id
		FROM favourite
		WHERE entity_kind = ? AND entity_id IN (?)
		ORDER BY created_at`, int(kind), ids)
	if err != nil {
		return nil, errors.Wrap(err, "loading favourites")
	}

	out := make(map[string][]string, len(ids))
	for _, r := range rows {
		out[r.EntityID] = append(out[r.EntityID], r.UserID)
	}
	return out, nil
}

type registrationRow struct {
	CourseID         string    `db:"course_id"`
	StudentID        string    `db:"student_id"`
	SelfRegistration bool      `db:"self_registration"`
	Locked           bool      `db:"locked"`
	CreatedAt        null.Time `db:"created_at"`
	UpdatedAt        null.Time `db:"updated_at"`
}

// loadRegistrations returns the registrations of the given courses, keyed by
// course ID.
func loadRegistrations(ctx context.Context, ext sqlx.ExtContext, courseIDs []string) (map[string][]learning.Registration, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var rows []registrationRow
	err := selectIn(ctx, ext, &rows, `
		SELECT course_id, student_id, self_registration, locked, created_at, updated_at
		FROM registration
		WHERE course_id IN (?)
		ORDER BY created_at`, courseIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading registrations")
	}

	out := make(map[string][]learning.Registration, len(courseIDs))
	for _, r := range rows {
		out[r.CourseID] = append(out[r.CourseID], learning.Registration{
			StudentID:        r.StudentID,
			SelfRegistration: r.SelfRegistration,
			Locked:           r.Locked,
			CreatedAt:        r.CreatedAt.Time,
			UpdatedAt:        r.UpdatedAt.Time,
		})
	}
	return out, nil
}

type objectiveRow struct {
	ID        string      `db:"id"`
	Ability   string      `db:"ability"`
	Language  null.String `db:"language"`
	Slug      string      `db:"slug"`
	AuthorID  string      `db:"author_id"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r objectiveRow) objective() learning.Objective {
	return learning.Objective{
		ID:        r.ID,
		Ability:   r.Ability,
		Language:  r.Language.String,
		Slug:      r.Slug,
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type attachmentRow struct {
	ID            string    `db:"id"`
	EntityKind    int       `db:"entity_kind"`
	EntityID      string    `db:"entity_id"`
	EntityName    string    `db:"entity_name"`
	ObjectiveID   string    `db:"objective_id"`
	TaxonomyLevel int       `db:"taxonomy_level"`
	Reusable      bool      `db:"reusable"`
	NeedsTest     bool      `db:"needs_test"`
	CreatedAt     null.Time `db:"created_at"`
}

func (r attachmentRow) attachment() *learning.EntityObjective {
	return &learning.EntityObjective{
		ID:            r.ID,
		EntityKind:    learning.Kind(r.EntityKind),
		EntityID:      r.EntityID,
		EntityName:    r.EntityName,
		ObjectiveID:   r.ObjectiveID,
		TaxonomyLevel: learning.TaxonomyLevel(r.TaxonomyLevel),
		Reusable:      r.Reusable,
		NeedsTest:     r.NeedsTest,
		CreatedAt:     r.CreatedAt.Time,
	}
}

type validationRow struct {
	OwnerID   string    `db:"owner_id"`
	StudentID string    `db:"student_id"`
	Slug      string    `db:"slug"`
	CreatedAt null.Time `db:"created_at"`
}

func (r validationRow) record() learning.ValidationRecord {
	return learning.ValidationRecord{
		StudentID: r.StudentID,
		Slug:      r.Slug,
		CreatedAt: r.CreatedAt.Time,
	}
}

// loadObjectiveValidators returns the global validator records of the given
// objectives, keyed by objective ID.
func loadObjectiveValidators(ctx context.Context, ext sqlx.ExtContext, objectiveIDs []string) (map[string][]learning.ValidationRecord, error) {
	if len(objectiveIDs) == 0 {
		return nil, nil
	}
	var rows []validationRow
	err := selectIn(ctx, ext, &rows, `
		SELECT objective_id AS owner_id, student_id, slug, created_at
		FROM objective_validation
		WHERE objective_id IN (?)
		ORDER BY created_at`, objectiveIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading objective validators")
	}

	out := make(map[string][]learning.ValidationRecord, len(objectiveIDs))
	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.record())
	}
	return out, nil
}

// loadAttachmentValidators returns the validator records of the given
// attachments, keyed by attachment ID.
func loadAttachmentValidators(ctx context.Context, ext sqlx.ExtContext, attachmentIDs []string) (map[string][]learning.ValidationRecord, error) {
	if len(attachmentIDs) == 0 {
		return nil, nil
	}
	var rows []validationRow
	err := selectIn(ctx, ext, &rows, `
		SELECT entity_objective_id AS owner_id, student_id, slug, created_at
		FROM entity_objective_validation
		WHERE entity_objective_id IN (?)
		ORDER BY created_at`, attachmentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading attachment validators")
	}

	out := make(map[string][]learning.ValidationRecord, len(attachmentIDs))
	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.record())
	}
	return out, nil
}

// loadAttachments returns the objective attachments of the given entities,
// keyed by entity ID. Each attachment is hydrated with its validator records
// and its global objective (validators included).
func loadAttachments(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, ids []string) (map[string][]*learning.EntityObjective, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []attachmentRow
	err := selectIn(ctx, ext, &rows, `
		SELECT id, entity_kind, entity_id, entity_name, objective_id, taxonomy_level, reusable, needs_test, created_at
		FROM entity_objective
		WHERE entity_kind = ? AND entity_id IN (?)
		ORDER BY created_at`, int(kind), ids)
	if err != nil {
		return nil, errors.Wrap(err, "loading attachments")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	attIDs := make([]string, 0, len(rows))
	objIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		attIDs = append(attIDs, r.ID)
		objIDs = append(objIDs, r.ObjectiveID)
	}

	attValidators, err := loadAttachmentValidators(ctx, ext, attIDs)
	if err != nil {
		return nil, err
	}
	objectives, err := loadObjectives(ctx, ext, objIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]*learning.EntityObjective, len(ids))
	for _, r := range rows {
		eo := r.attachment()
		eo.Validators = attValidators[eo.ID]
		eo.Objective = objectives[eo.ObjectiveID]
		out[eo.EntityID] = append(out[eo.EntityID], eo)
	}
	return out, nil
}

// loadObjectives returns the given objectives hydrated with their global
// validator records, keyed by ID.
func loadObjectives(ctx context.Context, ext sqlx.ExtContext, ids []string) (map[string]*learning.Objective, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []objectiveRow
	err := selectIn(ctx, ext, &rows, `SELECT * FROM objective WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "loading objectives")
	}

	validators, err := loadObjectiveValidators(ctx, ext, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*learning.Objective, len(rows))
	for _, r := range rows {
		obj := r.objective()
		obj.Validators = validators[obj.ID]
		out[obj.ID] = &obj
	}
	return out, nil
}

// searchConds appends the Search / WrittenBy / FavouritesFor conditions
// shared by the three content kinds. tbl is the entity table name, also used
// as the entity kind discriminator on the polymorphic tables.
func searchConds(filter *learning.QueryFilter, kind learning.Kind, tbl string, conds []string, args []interface{}) ([]string, []interface{}) {
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, "(name ILIKE ? OR description ILIKE ?)")
		args = append(args, val, val)
	}
	if filter.WrittenBy != "" {
		conds = append(conds, "author_id = ?")
		args = append(args, filter.WrittenBy)
	}
	if filter.TaughtBy != "" {
		conds = append(conds, "(author_id = ? OR EXISTS (SELECT 1 FROM collaborator col WHERE col.entity_kind = ? AND col.entity_id = "+tbl+".id AND col.user_id = ?))")
		args = append(args, filter.TaughtBy, int(kind), filter.TaughtBy)
	}
	if filter.FavouritesFor != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM favourite fav WHERE fav.entity_kind = ? AND fav.entity_id = "+tbl+".id AND fav.user_id = ?)")
		args = append(args, int(kind), filter.FavouritesFor)
	}
	return conds, args
}

// saveCollaborator upserts one collaborator row on the polymorphic table.
func saveCollaborator(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, entityID string, col learning.Collaborator) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO collaborator (entity_kind, entity_id, user_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_kind, entity_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`),
		int(kind), entityID, col.UserID, int(col.Role), col.CreatedAt.UTC(), col.UpdatedAt.UTC(),
	)
	return errors.Wrap(err, "saving collaborator")
}

func deleteCollaborator(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, entityID, userID string) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		DELETE FROM collaborator WHERE entity_kind = ? AND entity_id = ? AND user_id = ?`),
		int(kind), entityID, userID,
	)
	return errors.Wrap(err, "deleting collaborator")
}

func setFavourite(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, entityID, userID string, favourite bool) error {
	var err error
	if favourite {
		_, err = ext.ExecContext(ctx, ext.Rebind(`
			INSERT INTO favourite (entity_kind, entity_id, user_id, created_at)
			VALUES (?, ?, ?, NOW())
			ON CONFLICT (entity_kind, entity_id, user_id) DO NOTHING`),
			int(kind), entityID, userID,
		)
	} else {
		_, err = ext.ExecContext(ctx, ext.Rebind(`
			DELETE FROM favourite WHERE entity_kind = ? AND entity_id = ? AND user_id = ?`),
			int(kind), entityID, userID,
		)
	}
	return errors.Wrap(err, "setting favourite")
}

// deleteEntities removes the entities and their polymorphic side records.
// FK cascades cover the rest.
func deleteEntities(ctx context.Context, ext sqlx.ExtContext, kind learning.Kind, tbl string, ids []string) (int, error) {
	if _, err := execIn(ctx, ext, `DELETE FROM collaborator WHERE entity_kind = ? AND entity_id IN (?)`, int(kind), ids); err != nil {
		return 0, errors.Wrap(err, "deleting collaborators")
	}
	if _, err := execIn(ctx, ext, `DELETE FROM favourite WHERE entity_kind = ? AND entity_id IN (?)`, int(kind), ids); err != nil {
		return 0, errors.Wrap(err, "deleting favourites")
	}
	if _, err := execIn(ctx, ext, `DELETE FROM entity_objective WHERE entity_kind = ? AND entity_id IN (?)`, int(kind), ids); err != nil {
		return 0, errors.Wrap(err, "deleting attachments")
	}
	res, err := execIn(ctx, ext, `DELETE FROM `+tbl+` WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrapf(err, "deleting %ss", tbl)
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
