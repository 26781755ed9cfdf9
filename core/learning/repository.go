package learning

import (
	"context"

	"github.com/trezcool/darasa/core"
)

type (
	// GetFilter selects a single record; the first non-empty field wins.
	GetFilter struct {
		ID   string
		Slug string
	}

	// QueryFilter narrows list queries. Fields combine with AND.
	// Search does a case-insensitive match on name or description.
	QueryFilter struct {
		Search        string `query:"search"`
		WrittenBy     string `query:"written_by"`
		TaughtBy      string `query:"taught_by"`
		FollowedBy    string `query:"followed_by"` // courses only
		FavouritesFor string `query:"favourites_for"`
		Public        bool   `query:"public"`
		// RecommendationsFor selects public published content not already
		// written, taught or followed by the user.
		RecommendationsFor string `query:"recommendations_for"`

		// ReusableForCourse/ReusableForActivity select link candidates for a
		// container: not already linked, not non-reusable, and author-only
		// items only when ReusableBy matches the item author.
		ReusableForCourse   string `query:"-"`
		ReusableForActivity string `query:"-"`
		ReusableBy          string `query:"-"`
	}

	// CourseRepository persists Course aggregates. Get hydrates the full
	// aggregate (collaborators, registrations, ordered activity links with
	// their resources, objectives with validators, favourites); Query returns
	// scalar records only.
	CourseRepository interface {
		CreateCourse(ctx context.Context, course Course, exec ...core.DBExecutor) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Course, error)
		UpdateCourse(ctx context.Context, course Course, exec ...core.DBExecutor) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CourseSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error)

		SaveCourseCollaborator(ctx context.Context, courseID string, col Collaborator, exec ...core.DBExecutor) error
		DeleteCourseCollaborator(ctx context.Context, courseID, userID string, exec ...core.DBExecutor) error
		SaveRegistration(ctx context.Context, courseID string, reg Registration, exec ...core.DBExecutor) error
		DeleteRegistration(ctx context.Context, courseID, studentID string, exec ...core.DBExecutor) error
		// SetActivityLinks replaces the course's activity links and ranks in
		// one transaction.
		SetActivityLinks(ctx context.Context, courseID string, links []CourseActivity, exec ...core.DBExecutor) error
		SetCourseFavourite(ctx context.Context, courseID, userID string, favourite bool, exec ...core.DBExecutor) error
	}

	// ActivityRepository persists Activity aggregates. Get hydrates linked
	// resources, collaborators, objectives and the containing courses (one
	// level, for the ExistingCourses access rule).
	ActivityRepository interface {
		CreateActivity(ctx context.Context, act Activity, exec ...core.DBExecutor) (Activity, error)
		GetActivity(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Activity, error)
		QueryActivities(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Activity, error)
		UpdateActivity(ctx context.Context, act Activity, exec ...core.DBExecutor) (Activity, error)
		DeleteActivitiesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		ActivitySlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error)

		SaveActivityCollaborator(ctx context.Context, activityID string, col Collaborator, exec ...core.DBExecutor) error
		DeleteActivityCollaborator(ctx context.Context, activityID, userID string, exec ...core.DBExecutor) error
		AddResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error
		DeleteResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error
		SetActivityFavourite(ctx context.Context, activityID, userID string, favourite bool, exec ...core.DBExecutor) error
	}

	// ResourceRepository persists Resource aggregates. Get hydrates
	// collaborators, objectives and the containing activities with their own
	// containing courses (for the ExistingActivities access rule).
	ResourceRepository interface {
		CreateResource(ctx context.Context, res Resource, exec ...core.DBExecutor) (Resource, error)
		GetResource(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Resource, error)
		QueryResources(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Resource, error)
		UpdateResource(ctx context.Context, res Resource, exec ...core.DBExecutor) (Resource, error)
		DeleteResourcesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		ResourceSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error)

		SaveResourceCollaborator(ctx context.Context, resourceID string, col Collaborator, exec ...core.DBExecutor) error
		DeleteResourceCollaborator(ctx context.Context, resourceID, userID string, exec ...core.DBExecutor) error
		SetResourceFavourite(ctx context.Context, resourceID, userID string, favourite bool, exec ...core.DBExecutor) error
	}

	// ObjectiveRepository persists global objectives, their entity
	// attachments and validation records.
	ObjectiveRepository interface {
		CreateObjective(ctx context.Context, obj Objective, exec ...core.DBExecutor) (Objective, error)
		GetObjective(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Objective, error)
		QueryObjectives(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Objective, error)
		UpdateObjective(ctx context.Context, obj Objective, exec ...core.DBExecutor) (Objective, error)
		DeleteObjectivesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		ObjectiveSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error)
		ObjectiveAbilityExists(ctx context.Context, ability string, excludedIDs []string, exec ...core.DBExecutor) (bool, error)

		// SaveAttachment inserts the attachment with its (possibly seeded)
		// validator records in one transaction.
		SaveAttachment(ctx context.Context, eo EntityObjective, exec ...core.DBExecutor) (EntityObjective, error)
		GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (EntityObjective, error)
		// QueryAttachments returns every attachment of the objective across
		// all three kinds, hydrated with their validator records.
		QueryAttachments(ctx context.Context, objectiveID string, exec ...core.DBExecutor) ([]EntityObjective, error)
		DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error
		// ApplyValidationChange persists a validation toggle and its
		// propagation in one transaction; a half-propagated state must never
		// be observable.
		ApplyValidationChange(ctx context.Context, change ValidationChange, exec ...core.DBExecutor) error
	}
)

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || *qf == QueryFilter{}
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
