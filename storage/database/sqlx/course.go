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

type courseRepository struct {
	repository
}

var _ learning.CourseRepository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{repository{db: db}}
}

type courseRow struct {
	baseRow
	State               int  `db:"state"`
	Access              int  `db:"access"`
	RegistrationEnabled bool `db:"registration_enabled"`
}

func (r courseRow) course() learning.Course {
	return learning.Course{
		Base:                r.base(learning.KindCourse),
		State:               learning.CourseState(r.State),
		Access:              learning.CourseAccess(r.Access),
		RegistrationEnabled: r.RegistrationEnabled,
	}
}

func (repo courseRepository) CreateCourse(ctx context.Context, course learning.Course, exec ...core.DBExecutor) (learning.Course, error) {
	course.ID = uuid.New().String()
	r := newBaseRow(course.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO course (id, name, description, language, tags, slug, author_id, state, access, registration_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		course.ID, r.Name, r.Description, r.Language, r.Tags, r.Slug, r.AuthorID,
		int(course.State), int(course.Access), course.RegistrationEnabled, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return learning.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Course, error) {
	ext := repo.getExec(exec)

	row, err := repo.getRow(ctx, ext, filter)
	if err != nil {
		return learning.Course{}, err
	}
	course := row.course()
	if err = repo.hydrate(ctx, ext, &course); err != nil {
		return learning.Course{}, err
	}
	return course, nil
}

func (repo courseRepository) getRow(ctx context.Context, ext sqlx.ExtContext, filter learning.GetFilter) (courseRow, error) {
	var cond string
	var arg interface{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return courseRow{}, learning.ErrNotFound
		}
		cond, arg = "id = ?", filter.ID
	case filter.Slug != "":
		cond, arg = "slug = ?", filter.Slug
	default:
		return courseRow{}, learning.ErrNotFound
	}

	var row courseRow
	err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(`SELECT * FROM course WHERE `+cond), arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return courseRow{}, learning.ErrNotFound
		}
		return courseRow{}, errors.Wrap(err, "finding course")
	}
	return row, nil
}

func (repo courseRepository) hydrate(ctx context.Context, ext sqlx.ExtContext, course *learning.Course) error {
	ids := []string{course.ID}

	collabs, err := loadCollaborators(ctx, ext, learning.KindCourse, ids)
	if err != nil {
		return err
	}
	course.Collaborators = collabs[course.ID]

	favs, err := loadFavourites(ctx, ext, learning.KindCourse, ids)
	if err != nil {
		return err
	}
	course.FavouriteFor = favs[course.ID]

	regs, err := loadRegistrations(ctx, ext, ids)
	if err != nil {
		return err
	}
	course.Registrations = regs[course.ID]

	atts, err := loadAttachments(ctx, ext, learning.KindCourse, ids)
	if err != nil {
		return err
	}
	course.Objectives = atts[course.ID]

	course.Activities, err = repo.loadActivityLinks(ctx, ext, course.ID)
	return err
}

type courseActivityRow struct {
	ActivityID string    `db:"activity_id"`
	Rank       int       `db:"rank"`
	CreatedAt  null.Time `db:"created_at"`
}

// loadActivityLinks returns the course's ordered activity links; each linked
// activity carries its own objectives and resources (with theirs) so course
// aggregations see the full closure.
func (repo courseRepository) loadActivityLinks(ctx context.Context, ext sqlx.ExtContext, courseID string) ([]learning.CourseActivity, error) {
	var linkRows []courseActivityRow
	err := sqlx.SelectContext(ctx, ext, &linkRows, ext.Rebind(`
		SELECT activity_id, rank, created_at
		FROM course_activity
		WHERE course_id = ?
		ORDER BY rank`), courseID)
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

	activities, err := loadActivityAggregates(ctx, ext, actIDs)
	if err != nil {
		return nil, err
	}

	links := make([]learning.CourseActivity, 0, len(linkRows))
	for _, lr := range linkRows {
		links = append(links, learning.CourseActivity{
			Rank:      lr.Rank,
			Activity:  activities[lr.ActivityID],
			CreatedAt: lr.CreatedAt.Time,
		})
	}
	return links, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Course, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}

	if !filter.IsEmpty() {
		conds, args = searchConds(filter, learning.KindCourse, "course", conds, args)

		followedBy := `EXISTS (SELECT 1 FROM registration reg WHERE reg.course_id = course.id AND reg.student_id = ?)`
		public := `(access = ? AND state = ?)`

		if filter.FollowedBy != "" {
			conds = append(conds, followedBy)
			args = append(args, filter.FollowedBy)
		}
		if filter.Public {
			conds = append(conds, public)
			args = append(args, int(learning.CourseAccessPublic), int(learning.CourseStatePublished))
		}
		if filter.RecommendationsFor != "" {
			conds = append(conds, public)
			args = append(args, int(learning.CourseAccessPublic), int(learning.CourseStatePublished))
			conds = append(conds, "author_id <> ?")
			args = append(args, filter.RecommendationsFor)
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM collaborator col WHERE col.entity_kind = ? AND col.entity_id = course.id AND col.user_id = ?)")
			args = append(args, int(learning.KindCourse), filter.RecommendationsFor)
			conds = append(conds, "NOT "+followedBy)
			args = append(args, filter.RecommendationsFor)
		}
	}

	query := `SELECT * FROM course` + whereClause(conds) + orderClause(ordering)

	var rows []courseRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]learning.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, course learning.Course, exec ...core.DBExecutor) (learning.Course, error) {
	r := newBaseRow(course.Base)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		UPDATE course
		SET name = ?, description = ?, language = ?, tags = ?, slug = ?, state = ?, access = ?, registration_enabled = ?, updated_at = ?
		WHERE id = ?`),
		r.Name, r.Description, r.Language, r.Tags, r.Slug,
		int(course.State), int(course.Access), course.RegistrationEnabled, r.UpdatedAt, course.ID,
	)
	if err != nil {
		return learning.Course{}, errors.Wrap(err, "updating course")
	}
	return repo.GetCourse(ctx, learning.GetFilter{ID: course.ID}, exec...)
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var cnt int
	err := repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		var err error
		cnt, err = deleteEntities(ctx, ext, learning.KindCourse, "course", ids)
		return err
	})
	return cnt, err
}

func (repo courseRepository) CourseSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	ext := repo.getExec(exec)
	var exists bool
	err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(`SELECT EXISTS (SELECT 1 FROM course WHERE slug = ?)`), slug)
	return exists, errors.Wrap(err, "checking course slug")
}

func (repo courseRepository) SaveCourseCollaborator(ctx context.Context, courseID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	return saveCollaborator(ctx, repo.getExec(exec), learning.KindCourse, courseID, col)
}

func (repo courseRepository) DeleteCourseCollaborator(ctx context.Context, courseID, userID string, exec ...core.DBExecutor) error {
	return deleteCollaborator(ctx, repo.getExec(exec), learning.KindCourse, courseID, userID)
}

func (repo courseRepository) SaveRegistration(ctx context.Context, courseID string, reg learning.Registration, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO registration (course_id, student_id, self_registration, locked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (course_id, student_id)
		DO UPDATE SET self_registration = EXCLUDED.self_registration, locked = EXCLUDED.locked, updated_at = EXCLUDED.updated_at`),
		courseID, reg.StudentID, reg.SelfRegistration, reg.Locked, reg.CreatedAt.UTC(), reg.UpdatedAt.UTC(),
	)
	return errors.Wrap(err, "saving registration")
}

func (repo courseRepository) DeleteRegistration(ctx context.Context, courseID, studentID string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		DELETE FROM registration WHERE course_id = ? AND student_id = ?`),
		courseID, studentID,
	)
	return errors.Wrap(err, "deleting registration")
}

func (repo courseRepository) SetActivityLinks(ctx context.Context, courseID string, links []learning.CourseActivity, exec ...core.DBExecutor) error {
	return repo.withTx(ctx, exec, func(ext sqlx.ExtContext) error {
		if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM course_activity WHERE course_id = ?`), courseID); err != nil {
			return errors.Wrap(err, "clearing activity links")
		}
		for _, link := range links {
			_, err := ext.ExecContext(ctx, ext.Rebind(`
				INSERT INTO course_activity (course_id, activity_id, rank, created_at)
				VALUES (?, ?, ?, ?)`),
				courseID, link.Activity.ID, link.Rank, link.CreatedAt.UTC(),
			)
			if err != nil {
				return errors.Wrap(err, "saving activity link")
			}
		}
		return nil
	})
}

func (repo courseRepository) SetCourseFavourite(ctx context.Context, courseID, userID string, favourite bool, exec ...core.DBExecutor) error {
	return setFavourite(ctx, repo.getExec(exec), learning.KindCourse, courseID, userID, favourite)
}
