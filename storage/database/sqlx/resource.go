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

type resourceRepository struct {
	repository
}

var _ learning.ResourceRepository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *sqlx.DB) *resourceRepository {
	return &resourceRepository{repository{db: db}}
}

type resourceRow struct {
	baseRow
	Type       int         `db:"type"`
	Duration   int         `db:"duration"`
	Licence    int         `db:"licence"`
	Access     int         `db:"access"`
	Reuse      int         `db:"reuse"`
	Attachment null.String `db:"attachment"`
}

func (r resourceRow) resource() learning.Resource {
	return learning.Resource{
		Base:       r.base(learning.KindResource),
		Type:       learning.ResourceType(r.Type),
		Duration:   learning.Duration(r.Duration),
		Licence:    learning.Licence(r.Licence),
		Access:     learning.ResourceAccess(r.Access),
		Reuse:      learning.Reuse(r.Reuse),
		Attachment: r.Attachment.String,
	}
}

// loadContainingActivities returns the activities linking each given
// resource, keyed by resource ID. The activities carry their own containing
// courses so the two-level access rule can be evaluated.
func loadContainingActivities(ctx context.Context, ext sqlx.ExtContext, resourceIDs []string) (map[string][]*learning.Activity, error) {
	var linkRows []struct {
		ActivityID string `db:"activity_id"`
		ResourceID string `db:"resource_id"`
	}
	err := selectIn(ctx, ext, &linkRows, `
		SELECT activity_id, resource_id
		FROM activity_resource
		WHERE resource_id IN (?)`, resourceIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading activity links")
	}
	if len(linkRows) == 0 {
		return nil, nil
	}

	actIDs := make([]string, 0, len(linkRows))
	for _, lr := range linkRows {
		actIDs = append(actIDs, lr.ActivityID)
	}

	var actRows []activityRow
	if err = selectIn(ctx, ext, &actRows, `SELECT * FROM activity WHERE id IN (?)`, actIDs); err != nil {
		return nil, errors.Wrap(err, "loading activities")
	}
	collabs, err := loadCollaborators(ctx, ext, learning.KindActivity, actIDs)
	if err != nil {
		return nil, err
	}
	courses, err := loadContainingCourses(ctx, ext, actIDs)
	if err != nil {
		return nil, err
	}

	activities := make(map[string]*learning.Activity, len(actRows))
	for _, r := range actRows {
		act := r.activity()
		act.Collaborators = collabs[act.ID]
		act.Courses = courses[act.ID]
		activities[act.ID] = &act
	}

	out := make(map[string][]*learning.Activity, len(resourceIDs))
	for _, lr := range linkRows {
		if act, ok := activities[lr.ActivityID]; ok {
			out[lr.ResourceID] = append(out[lr.ResourceID], act)
		}
	}
	return out, nil
}

func (repo resourceRepository) CreateResource(ctx context.Context, res learning.Resource, exec ...core.DBExecutor) (learning.Resource, error) {
	res.ID = uuid.New().String()
	r := newBaseRow(res.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO resource (id, name, description, language, tags, slug, author_id, type, duration, licence, access, reuse, attachment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		res.ID, r.Name, r.Description, r.Language, r.Tags, r.Slug, r.AuthorID,
		int(res.Type), int(res.Duration), int(res.Licence), int(res.Access), int(res.Reuse),
		null.NewString(res.Attachment, res.Attachment != ""), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return learning.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo resourceRepository) GetResource(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Resource, error) {
	ext := repo.getExec(exec)

	var cond string
	var arg interface{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return learning.Resource{}, learning.ErrNotFound
		}
		cond, arg = "id = ?", filter.ID
	case filter.Slug != "":
		cond, arg = "slug = ?", filter.Slug
	default:
		return learning.Resource{}, learning.ErrNotFound
	}

	var row resourceRow
	err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(`SELECT * FROM resource WHERE `+cond), arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return learning.Resource{}, learning.ErrNotFound
		}
		return learning.Resource{}, errors.Wrap(err, "finding resource")
	}
	res := row.resource()

	ids := []string{res.ID}
	collabs, err := loadCollaborators(ctx, ext, learning.KindResource, ids)
	if err != nil {
		return learning.Resource{}, err
	}
	res.Collaborators = collabs[res.ID]

	favs, err := loadFavourites(ctx, ext, learning.KindResource, ids)
	if err != nil {
		return learning.Resource{}, err
	}
	res.FavouriteFor = favs[res.ID]

	atts, err := loadAttachments(ctx, ext, learning.KindResource, ids)
	if err != nil {
		return learning.Resource{}, err
	}
	res.Objectives = atts[res.ID]

	activities, err := loadContainingActivities(ctx, ext, ids)
	if err != nil {
		return learning.Resource{}, err
	}
	res.Activities = activities[res.ID]

	return res, nil
}

func (repo resourceRepository) QueryResources(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Resource, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}

	if !filter.IsEmpty() {
		conds, args = searchConds(filter, learning.KindResource, "resource", conds, args)

		if filter.Public {
			conds = append(conds, "access = ?")
			args = append(args, int(learning.ResourceAccessPublic))
		}
		if filter.RecommendationsFor != "" {
			conds = append(conds, "access = ?", "author_id <> ?")
			args = append(args, int(learning.ResourceAccessPublic), filter.RecommendationsFor)
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM collaborator col WHERE col.entity_kind = ? AND col.entity_id = resource.id AND col.user_id = ?)")
			args = append(args, int(learning.KindResource), filter.RecommendationsFor)
		}
		if filter.ReusableForActivity != "" {
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM activity_resource ar WHERE ar.activity_id = ? AND ar.resource_id = resource.id)")
			args = append(args, filter.ReusableForActivity)
			conds = append(conds, "reuse < ?", "(reuse = ? OR author_id = ?)")
			args = append(args, int(learning.ReuseNonReusable), int(learning.ReuseNoRestriction), filter.ReusableBy)
		}
	}

	query := `SELECT * FROM resource` + whereClause(conds) + orderClause(ordering)

	var rows []resourceRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}

	resources := make([]learning.Resource, 0, len(rows))
	for _, r := range rows {
		resources = append(resources, r.resource())
	}
	return resources, nil
}

func (repo resourceRepository) UpdateResource(ctx context.Context, res learning.Resource, exec ...core.DBExecutor) (learning.Resource, error) {
	r := newBaseRow(res.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE resource
		SET name = ?, description = ?, language = ?, tags = ?, slug = ?, type = ?, duration = ?, licence = ?, access = ?, reuse = ?, attachment = ?, updated_at = ?
		WHERE id = ?`),
		r.Name, r.Description, r.Language, r.Tags, r.Slug,
		int(res.Type), int(res.Duration), int(res.Licence), int(res.Access), int(res.Reuse),
		null.NewString(res.Attachment, res.Attachment != ""), r.UpdatedAt, res.ID,
	)
	if err != nil {
		return learning.Resource{}, errors.Wrap(err, "updating resource")
	}
	return repo.GetResource(ctx, learning.GetFilter{ID: res.ID}, exec...)
}

func (repo resourceRepository) DeleteResourcesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var cnt int
	err := repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		var err error
		cnt, err = deleteEntities(ctx, ext, learning.KindResource, "resource", ids)
		return err
	})
	return cnt, err
}

func (repo resourceRepository) ResourceSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	ext := repo.getExec(exec)
	var exists bool
	err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(`SELECT EXISTS (SELECT 1 FROM resource WHERE slug = ?)`), slug)
	return exists, errors.Wrap(err, "checking resource slug")
}

func (repo resourceRepository) SaveResourceCollaborator(ctx context.Context, resourceID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	return saveCollaborator(ctx, repo.getExec(exec), learning.KindResource, resourceID, col)
}

func (repo resourceRepository) DeleteResourceCollaborator(ctx context.Context, resourceID, userID string, exec ...core.DBExecutor) error {
	return deleteCollaborator(ctx, repo.getExec(exec), learning.KindResource, resourceID, userID)
}

func (repo resourceRepository) SetResourceFavourite(ctx context.Context, resourceID, userID string, favourite bool, exec ...core.DBExecutor) error {
	return setFavourite(ctx, repo.getExec(exec), learning.KindResource, resourceID, userID, favourite)
}
