package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
)

type activityRepository struct {
	repository
}

var _ learning.ActivityRepository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{repository{db: db}}
}

type activityRow struct {
	baseRow
	Access int `db:"access"`
	Reuse  int `db:"reuse"`
}

func (r activityRow) activity() learning.Activity {
	return learning.Activity{
		Base:   r.base(learning.KindActivity),
		Access: learning.ActivityAccess(r.Access),
		Reuse:  learning.Reuse(r.Reuse),
	}
}

// loadActivityAggregates returns the given activities hydrated with their
// objectives and resources (with their own objectives), keyed by ID. The
// containing courses are left out; GetActivity loads those separately.
func loadActivityAggregates(ctx context.Context, ext sqlx.ExtContext, ids []string) (map[string]*learning.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []activityRow
	if err := selectIn(ctx, ext, &rows, `SELECT * FROM activity WHERE id IN (?)`, ids); err != nil {
		return nil, errors.Wrap(err, "loading activities")
	}

	atts, err := loadAttachments(ctx, ext, learning.KindActivity, ids)
	if err != nil {
		return nil, err
	}
	resources, err := loadResourceLinks(ctx, ext, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*learning.Activity, len(rows))
	for _, r := range rows {
		act := r.activity()
		act.Objectives = atts[act.ID]
		act.Resources = resources[act.ID]
		out[act.ID] = &act
	}
	return out, nil
}

// loadResourceLinks returns the linked resources of the given activities,
// keyed by activity ID. Each resource carries its objectives.
func loadResourceLinks(ctx context.Context, ext sqlx.ExtContext, activityIDs []string) (map[string][]*learning.Resource, error) {
	var linkRows []struct {
		ActivityID string `db:"activity_id"`
		ResourceID string `db:"resource_id"`
	}
	err := selectIn(ctx, ext, &linkRows, `
		SELECT activity_id, resource_id
		FROM activity_resource
		WHERE activity_id IN (?)
		ORDER BY created_at`, activityIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading resource links")
	}
	if len(linkRows) == 0 {
		return nil, nil
	}

	resIDs := make([]string, 0, len(linkRows))
	for _, lr := range linkRows {
		resIDs = append(resIDs, lr.ResourceID)
	}

	var resRows []resourceRow
	if err = selectIn(ctx, ext, &resRows, `SELECT * FROM resource WHERE id IN (?)`, resIDs); err != nil {
		return nil, errors.Wrap(err, "loading resources")
	}
	atts, err := loadAttachments(ctx, ext, learning.KindResource, resIDs)
	if err != nil {
		return nil, err
	}

	resources := make(map[string]*learning.Resource, len(resRows))
	for _, r := range resRows {
		res := r.resource()
		res.Objectives = atts[res.ID]
		resources[res.ID] = &res
	}

	out := make(map[string][]*learning.Resource, len(activityIDs))
	for _, lr := range linkRows {
		if res, ok := resources[lr.ResourceID]; ok {
			out[lr.ActivityID] = append(out[lr.ActivityID], res)
		}
	}
	return out, nil
}

// loadContainingCourses returns the courses linking each given activity,
// keyed by activity ID. The courses carry their registrations and
// collaborators for access checks.
func loadContainingCourses(ctx context.Context, ext sqlx.ExtContext, activityIDs []string) (map[string][]*learning.Course, error) {
	var linkRows []struct {
		CourseID   string `db:"course_id"`
		ActivityID string `db:"activity_id"`
	}
	err := selectIn(ctx, ext, &linkRows, `
		SELECT course_id, activity_id
		FROM course_activity
		WHERE activity_id IN (?)`, activityIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading course links")
	}
	if len(linkRows) == 0 {
		return nil, nil
	}

	courseIDs := make([]string, 0, len(linkRows))
	for _, lr := range linkRows {
		courseIDs = append(courseIDs, lr.CourseID)
	}

	var courseRows []courseRow
	if err = selectIn(ctx, ext, &courseRows, `SELECT * FROM course WHERE id IN (?)`, courseIDs); err != nil {
		return nil, errors.Wrap(err, "loading courses")
	}
	regs, err := loadRegistrations(ctx, ext, courseIDs)
	if err != nil {
		return nil, err
	}
	collabs, err := loadCollaborators(ctx, ext, learning.KindCourse, courseIDs)
	if err != nil {
		return nil, err
	}

	courses := make(map[string]*learning.Course, len(courseRows))
	for _, r := range courseRows {
		c := r.course()
		c.Registrations = regs[c.ID]
		c.Collaborators = collabs[c.ID]
		courses[c.ID] = &c
	}

	out := make(map[string][]*learning.Course, len(activityIDs))
	for _, lr := range linkRows {
		if c, ok := courses[lr.CourseID]; ok {
			out[lr.ActivityID] = append(out[lr.ActivityID], c)
		}
	}
	return out, nil
}

func (repo activityRepository) CreateActivity(ctx context.Context, act learning.Activity, exec ...core.DBExecutor) (learning.Activity, error) {
	act.ID = uuid.New().String()
	r := newBaseRow(act.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO activity (id, name, description, language, tags, slug, author_id, access, reuse, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		act.ID, r.Name, r.Description, r.Language, r.Tags, r.Slug, r.AuthorID,
		int(act.Access), int(act.Reuse), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return learning.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return act, nil
}

func (repo activityRepository) GetActivity(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Activity, error) {
	ext := repo.getExec(exec)

	var cond string
	var arg interface{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return learning.Activity{}, learning.ErrNotFound
		}
		cond, arg = "id = ?", filter.ID
	case filter.Slug != "":
		cond, arg = "slug = ?", filter.Slug
	default:
		return learning.Activity{}, learning.ErrNotFound
	}

	var row activityRow
	err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(`SELECT * FROM activity WHERE `+cond), arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return learning.Activity{}, learning.ErrNotFound
		}
		return learning.Activity{}, errors.Wrap(err, "finding activity")
	}
	act := row.activity()

	ids := []string{act.ID}
	collabs, err := loadCollaborators(ctx, ext, learning.KindActivity, ids)
	if err != nil {
		return learning.Activity{}, err
	}
	act.Collaborators = collabs[act.ID]

	favs, err := loadFavourites(ctx, ext, learning.KindActivity, ids)
	if err != nil {
		return learning.Activity{}, err
	}
	act.FavouriteFor = favs[act.ID]

	atts, err := loadAttachments(ctx, ext, learning.KindActivity, ids)
	if err != nil {
		return learning.Activity{}, err
	}
	act.Objectives = atts[act.ID]

	resources, err := loadResourceLinks(ctx, ext, ids)
	if err != nil {
		return learning.Activity{}, err
	}
	act.Resources = resources[act.ID]

	courses, err := loadContainingCourses(ctx, ext, ids)
	if err != nil {
		return learning.Activity{}, err
	}
	act.Courses = courses[act.ID]

	return act, nil
}

func (repo activityRepository) QueryActivities(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Activity, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}

	if !filter.IsEmpty() {
		conds, args = searchConds(filter, learning.KindActivity, "activity", conds, args)

		if filter.Public {
			conds = append(conds, "access = ?")
			args = append(args, int(learning.ActivityAccessPublic))
		}
		if filter.RecommendationsFor != "" {
			conds = append(conds, "access = ?", "author_id <> ?")
			args = append(args, int(learning.ActivityAccessPublic), filter.RecommendationsFor)
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM collaborator col WHERE col.entity_kind = ? AND col.entity_id = activity.id AND col.user_id = ?)")
			args = append(args, int(learning.KindActivity), filter.RecommendationsFor)
		}
		if filter.ReusableForCourse != "" {
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM course_activity ca WHERE ca.course_id = ? AND ca.activity_id = activity.id)")
			args = append(args, filter.ReusableForCourse)
			conds = append(conds, "reuse < ?", "(reuse = ? OR author_id = ?)")
			args = append(args, int(learning.ReuseNonReusable), int(learning.ReuseNoRestriction), filter.ReusableBy)
		}
	}

	query := `SELECT * FROM activity` + whereClause(conds) + orderClause(ordering)

	var rows []activityRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}

	activities := make([]learning.Activity, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, r.activity())
	}
	return activities, nil
}

func (repo activityRepository) UpdateActivity(ctx context.Context, act learning.Activity, exec ...core.DBExecutor) (learning.Activity, error) {
	r := newBaseRow(act.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE activity
		SET name = ?, description = ?, language = ?, tags = ?, slug = ?, access = ?, reuse = ?, updated_at = ?
		WHERE id = ?`),
		r.Name, r.Description, r.Language, r.Tags, r.Slug,
		int(act.Access), int(act.Reuse), r.UpdatedAt, act.ID,
	)
	if err != nil {
		return learning.Activity{}, errors.Wrap(err, "updating activity")
	}
	return repo.GetActivity(ctx, learning.GetFilter{ID: act.ID}, exec...)
}

func (repo activityRepository) DeleteActivitiesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var cnt int
	err := repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		var err error
		cnt, err = deleteEntities(ctx, ext, learning.KindActivity, "activity", ids)
		return err
	})
	return cnt, err
}

func (repo activityRepository) ActivitySlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	ext := repo.getExec(exec)
	var exists bool
	err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(`SELECT EXISTS (SELECT 1 FROM activity WHERE slug = ?)`), slug)
	return exists, errors.Wrap(err, "checking activity slug")
}

func (repo activityRepository) SaveActivityCollaborator(ctx context.Context, activityID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	return saveCollaborator(ctx, repo.getExec(exec), learning.KindActivity, activityID, col)
}

func (repo activityRepository) DeleteActivityCollaborator(ctx context.Context, activityID, userID string, exec ...core.DBExecutor) error {
	return deleteCollaborator(ctx, repo.getExec(exec), learning.KindActivity, activityID, userID)
}

func (repo activityRepository) AddResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO activity_resource (activity_id, resource_id, created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (activity_id, resource_id) DO NOTHING`),
		activityID, resourceID,
	)
	return errors.Wrap(err, "saving resource link")
}

func (repo activityRepository) DeleteResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		DELETE FROM activity_resource WHERE activity_id = ? AND resource_id = ?`),
		activityID, resourceID,
	)
	return errors.Wrap(err, "deleting resource link")
}

func (repo activityRepository) SetActivityFavourite(ctx context.Context, activityID, userID string, favourite bool, exec ...core.DBExecutor) error {
	return setFavourite(ctx, repo.getExec(exec), learning.KindActivity, activityID, userID, favourite)
}
