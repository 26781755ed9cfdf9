package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
)

type (
	courseRepository struct {
		db *learningTables
	}
	activityRepository struct {
		db *learningTables
	}
	resourceRepository struct {
		db *learningTables
	}
	objectiveRepository struct {
		db *learningTables
	}
)

// interface compliance checks
var (
	_ learning.CourseRepository    = (*courseRepository)(nil)
	_ learning.ActivityRepository  = (*activityRepository)(nil)
	_ learning.ResourceRepository  = (*resourceRepository)(nil)
	_ learning.ObjectiveRepository = (*objectiveRepository)(nil)
)

func NewCourseRepository(db *DB) learning.CourseRepository {
	return &courseRepository{db: db.learning}
}

func NewActivityRepository(db *DB) learning.ActivityRepository {
	return &activityRepository{db: db.learning}
}

func NewResourceRepository(db *DB) learning.ResourceRepository {
	return &resourceRepository{db: db.learning}
}

func NewObjectiveRepository(db *DB) learning.ObjectiveRepository {
	return &objectiveRepository{db: db.learning}
}

// shared filter helpers

func matchSearch(b *learning.Base, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(b.Name), search) ||
		strings.Contains(strings.ToLower(b.Description), search)
}

func taughtBy(b *learning.Base, userID string) bool {
	return b.IsAuthor(userID) || b.IsCollaborator(userID)
}

func reusableBy(reuse learning.Reuse, authorID, userID string) bool {
	switch reuse {
	case learning.ReuseNonReusable:
		return false
	case learning.ReuseOnlyAuthor:
		return userID != "" && authorID == userID
	}
	return true
}

// Courses

func (repo *courseRepository) CreateCourse(ctx context.Context, course learning.Course, exec ...core.DBExecutor) (learning.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	course.ID = uuid.New().String()
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	course, ok := repo.db.getCourse(filter)
	if !ok {
		return learning.Course{}, learning.ErrNotFound
	}
	hydrated := *course
	hydrated.Activities = repo.db.hydrateLinks(course.Activities)
	return hydrated, nil
}

// hydrateLinks re-points activity links at the stored activities so the
// aggregate sees their current resources and objectives.
func (db *learningTables) hydrateLinks(links []learning.CourseActivity) []learning.CourseActivity {
	if links == nil {
		return nil
	}
	out := make([]learning.CourseActivity, len(links))
	for i, link := range links {
		out[i] = link
		if link.Activity != nil {
			if act, ok := db.activities[link.Activity.ID]; ok {
				out[i].Activity = act
			}
		}
	}
	return out
}

func (db *learningTables) getCourse(filter learning.GetFilter) (*learning.Course, bool) {
	if filter.ID != "" {
		course, ok := db.courses[filter.ID]
		return course, ok
	}
	for _, course := range db.courses {
		if filter.Slug != "" && course.Slug == filter.Slug {
			return course, true
		}
	}
	return nil, false
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var courses []learning.Course
	for _, course := range repo.db.courses {
		if filter != nil && !repo.matches(course, filter) {
			continue
		}
		courses = append(courses, *course)
	}
	return courses, nil
}

func (repo *courseRepository) matches(c *learning.Course, f *learning.QueryFilter) bool {
	if !matchSearch(&c.Base, f.Search) {
		return false
	}
	if f.WrittenBy != "" && !c.IsAuthor(f.WrittenBy) {
		return false
	}
	if f.TaughtBy != "" && !taughtBy(&c.Base, f.TaughtBy) {
		return false
	}
	if f.FollowedBy != "" && !c.IsStudent(f.FollowedBy) {
		return false
	}
	if f.FavouritesFor != "" && !c.IsFavouriteFor(f.FavouritesFor) {
		return false
	}
	if f.Public && (c.Access != learning.CourseAccessPublic || c.State != learning.CourseStatePublished) {
		return false
	}
	if f.RecommendationsFor != "" {
		if c.Access != learning.CourseAccessPublic || c.State != learning.CourseStatePublished {
			return false
		}
		if taughtBy(&c.Base, f.RecommendationsFor) || c.IsStudent(f.RecommendationsFor) {
			return false
		}
	}
	return true
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, course learning.Course, exec ...core.DBExecutor) (learning.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[course.ID]
	if !ok {
		return learning.Course{}, learning.ErrNotFound
	}
	// structural sub-records are managed by their own methods
	course.Collaborators = orig.Collaborators
	course.Registrations = orig.Registrations
	course.Activities = orig.Activities
	course.Objectives = orig.Objectives
	course.FavouriteFor = orig.FavouriteFor
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; ok {
			delete(repo.db.courses, id)
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) CourseSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, course := range repo.db.courses {
		if course.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *courseRepository) SaveCourseCollaborator(ctx context.Context, courseID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	saveCollaborator(&course.Base, col)
	return nil
}

func saveCollaborator(b *learning.Base, col learning.Collaborator) {
	for i := range b.Collaborators {
		if b.Collaborators[i].UserID == col.UserID {
			b.Collaborators[i] = col
			return
		}
	}
	b.Collaborators = append(b.Collaborators, col)
}

func (repo *courseRepository) DeleteCourseCollaborator(ctx context.Context, courseID, userID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	_ = course.Base.RemoveCollaborator(userID)
	return nil
}

func (repo *courseRepository) SaveRegistration(ctx context.Context, courseID string, reg learning.Registration, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	for i := range course.Registrations {
		if course.Registrations[i].StudentID == reg.StudentID {
			course.Registrations[i] = reg
			return nil
		}
	}
	course.Registrations = append(course.Registrations, reg)
	return nil
}

func (repo *courseRepository) DeleteRegistration(ctx context.Context, courseID, studentID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	for i := range course.Registrations {
		if course.Registrations[i].StudentID == studentID {
			course.Registrations = append(course.Registrations[:i], course.Registrations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *courseRepository) SetActivityLinks(ctx context.Context, courseID string, links []learning.CourseActivity, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	course.Activities = links
	return nil
}

func (repo *courseRepository) SetCourseFavourite(ctx context.Context, courseID, userID string, favourite bool, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	course, ok := repo.db.courses[courseID]
	if !ok {
		return learning.ErrNotFound
	}
	setFavourite(&course.Base, userID, favourite)
	return nil
}

func setFavourite(b *learning.Base, userID string, favourite bool) {
	if favourite == b.IsFavouriteFor(userID) {
		return
	}
	b.ToggleFavourite(userID)
}

// Activities

func (repo *activityRepository) CreateActivity(ctx context.Context, act learning.Activity, exec ...core.DBExecutor) (learning.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	act.ID = uuid.New().String()
	repo.db.activities[act.ID] = &act
	return act, nil
}

// containingCourses hydrates the container back-references of an activity.
func (db *learningTables) containingCourses(activityID string) []*learning.Course {
	var containers []*learning.Course
	for _, course := range db.courses {
		if _, ok := course.LinkedActivity(activityID); ok {
			containers = append(containers, course)
		}
	}
	return containers
}

func (repo *activityRepository) GetActivity(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	act, ok := repo.db.getActivity(filter)
	if !ok {
		return learning.Activity{}, learning.ErrNotFound
	}
	hydrated := *act
	hydrated.Courses = repo.db.containingCourses(act.ID)
	return hydrated, nil
}

func (db *learningTables) getActivity(filter learning.GetFilter) (*learning.Activity, bool) {
	if filter.ID != "" {
		act, ok := db.activities[filter.ID]
		return act, ok
	}
	for _, act := range db.activities {
		if filter.Slug != "" && act.Slug == filter.Slug {
			return act, true
		}
	}
	return nil, false
}

func (repo *activityRepository) QueryActivities(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var acts []learning.Activity
	for _, act := range repo.db.activities {
		if filter != nil && !repo.matches(act, filter) {
			continue
		}
		acts = append(acts, *act)
	}
	return acts, nil
}

func (repo *activityRepository) matches(a *learning.Activity, f *learning.QueryFilter) bool {
	if !matchSearch(&a.Base, f.Search) {
		return false
	}
	if f.WrittenBy != "" && !a.IsAuthor(f.WrittenBy) {
		return false
	}
	if f.TaughtBy != "" && !taughtBy(&a.Base, f.TaughtBy) {
		return false
	}
	if f.FavouritesFor != "" && !a.IsFavouriteFor(f.FavouritesFor) {
		return false
	}
	if f.Public && a.Access != learning.ActivityAccessPublic {
		return false
	}
	if f.RecommendationsFor != "" {
		if a.Access != learning.ActivityAccessPublic || taughtBy(&a.Base, f.RecommendationsFor) {
			return false
		}
	}
	if f.ReusableForCourse != "" {
		course, ok := repo.db.courses[f.ReusableForCourse]
		if !ok {
			return false
		}
		if _, linked := course.LinkedActivity(a.ID); linked {
			return false
		}
		if !reusableBy(a.Reuse, a.AuthorID, f.ReusableBy) {
			return false
		}
	}
	return true
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, act learning.Activity, exec ...core.DBExecutor) (learning.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.activities[act.ID]
	if !ok {
		return learning.Activity{}, learning.ErrNotFound
	}
	act.Collaborators = orig.Collaborators
	act.Resources = orig.Resources
	act.Objectives = orig.Objectives
	act.FavouriteFor = orig.FavouriteFor
	act.Courses = nil
	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) DeleteActivitiesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.activities[id]; ok {
			delete(repo.db.activities, id)
			n++
		}
	}
	return n, nil
}

func (repo *activityRepository) ActivitySlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, act := range repo.db.activities {
		if act.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *activityRepository) SaveActivityCollaborator(ctx context.Context, activityID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	act, ok := repo.db.activities[activityID]
	if !ok {
		return learning.ErrNotFound
	}
	saveCollaborator(&act.Base, col)
	return nil
}

func (repo *activityRepository) DeleteActivityCollaborator(ctx context.Context, activityID, userID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	act, ok := repo.db.activities[activityID]
	if !ok {
		return learning.ErrNotFound
	}
	_ = act.Base.RemoveCollaborator(userID)
	return nil
}

func (repo *activityRepository) AddResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	act, ok := repo.db.activities[activityID]
	if !ok {
		return learning.ErrNotFound
	}
	res, ok := repo.db.resources[resourceID]
	if !ok {
		return learning.ErrNotFound
	}
	for _, linked := range act.Resources {
		if linked.ID == resourceID {
			return nil
		}
	}
	act.Resources = append(act.Resources, res)
	return nil
}

func (repo *activityRepository) DeleteResourceLink(ctx context.Context, activityID, resourceID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	act, ok := repo.db.activities[activityID]
	if !ok {
		return learning.ErrNotFound
	}
	for i, linked := range act.Resources {
		if linked.ID == resourceID {
			act.Resources = append(act.Resources[:i], act.Resources[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *activityRepository) SetActivityFavourite(ctx context.Context, activityID, userID string, favourite bool, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	act, ok := repo.db.activities[activityID]
	if !ok {
		return learning.ErrNotFound
	}
	setFavourite(&act.Base, userID, favourite)
	return nil
}

// Resources

func (repo *resourceRepository) CreateResource(ctx context.Context, res learning.Resource, exec ...core.DBExecutor) (learning.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	res.ID = uuid.New().String()
	repo.db.resources[res.ID] = &res
	return res, nil
}

func (db *learningTables) containingActivities(resourceID string) []*learning.Activity {
	var containers []*learning.Activity
	for _, act := range db.activities {
		for _, linked := range act.Resources {
			if linked.ID == resourceID {
				hydrated := *act
				hydrated.Courses = db.containingCourses(act.ID)
				containers = append(containers, &hydrated)
				break
			}
		}
	}
	return containers
}

func (repo *resourceRepository) GetResource(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res, ok := repo.db.getResource(filter)
	if !ok {
		return learning.Resource{}, learning.ErrNotFound
	}
	hydrated := *res
	hydrated.Activities = repo.db.containingActivities(res.ID)
	return hydrated, nil
}

func (db *learningTables) getResource(filter learning.GetFilter) (*learning.Resource, bool) {
	if filter.ID != "" {
		res, ok := db.resources[filter.ID]
		return res, ok
	}
	for _, res := range db.resources {
		if filter.Slug != "" && res.Slug == filter.Slug {
			return res, true
		}
	}
	return nil, false
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var resources []learning.Resource
	for _, res := range repo.db.resources {
		if filter != nil && !repo.matches(res, filter) {
			continue
		}
		resources = append(resources, *res)
	}
	return resources, nil
}

func (repo *resourceRepository) matches(r *learning.Resource, f *learning.QueryFilter) bool {
	if !matchSearch(&r.Base, f.Search) {
		return false
	}
	if f.WrittenBy != "" && !r.IsAuthor(f.WrittenBy) {
		return false
	}
	if f.TaughtBy != "" && !taughtBy(&r.Base, f.TaughtBy) {
		return false
	}
	if f.FavouritesFor != "" && !r.IsFavouriteFor(f.FavouritesFor) {
		return false
	}
	if f.Public && r.Access != learning.ResourceAccessPublic {
		return false
	}
	if f.RecommendationsFor != "" {
		if r.Access != learning.ResourceAccessPublic || taughtBy(&r.Base, f.RecommendationsFor) {
			return false
		}
	}
	if f.ReusableForActivity != "" {
		act, ok := repo.db.activities[f.ReusableForActivity]
		if !ok {
			return false
		}
		for _, linked := range act.Resources {
			if linked.ID == r.ID {
				return false
			}
		}
		if !reusableBy(r.Reuse, r.AuthorID, f.ReusableBy) {
			return false
		}
	}
	return true
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res learning.Resource, exec ...core.DBExecutor) (learning.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.resources[res.ID]
	if !ok {
		return learning.Resource{}, learning.ErrNotFound
	}
	res.Collaborators = orig.Collaborators
	res.Objectives = orig.Objectives
	res.FavouriteFor = orig.FavouriteFor
	res.Activities = nil
	repo.db.resources[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) DeleteResourcesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.resources[id]; ok {
			delete(repo.db.resources, id)
			n++
		}
	}
	return n, nil
}

func (repo *resourceRepository) ResourceSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, res := range repo.db.resources {
		if res.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *resourceRepository) SaveResourceCollaborator(ctx context.Context, resourceID string, col learning.Collaborator, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.resources[resourceID]
	if !ok {
		return learning.ErrNotFound
	}
	saveCollaborator(&res.Base, col)
	return nil
}

func (repo *resourceRepository) DeleteResourceCollaborator(ctx context.Context, resourceID, userID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.resources[resourceID]
	if !ok {
		return learning.ErrNotFound
	}
	_ = res.Base.RemoveCollaborator(userID)
	return nil
}

func (repo *resourceRepository) SetResourceFavourite(ctx context.Context, resourceID, userID string, favourite bool, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.resources[resourceID]
	if !ok {
		return learning.ErrNotFound
	}
	setFavourite(&res.Base, userID, favourite)
	return nil
}

// Objectives

func (repo *objectiveRepository) CreateObjective(ctx context.Context, obj learning.Objective, exec ...core.DBExecutor) (learning.Objective, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	obj.ID = uuid.New().String()
	repo.db.objectives[obj.ID] = &obj
	return obj, nil
}

func (repo *objectiveRepository) GetObjective(ctx context.Context, filter learning.GetFilter, exec ...core.DBExecutor) (learning.Objective, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if obj, ok := repo.db.objectives[filter.ID]; ok {
			return *obj, nil
		}
		return learning.Objective{}, learning.ErrNotFound
	}
	for _, obj := range repo.db.objectives {
		if filter.Slug != "" && obj.Slug == filter.Slug {
			return *obj, nil
		}
	}
	return learning.Objective{}, learning.ErrNotFound
}

func (repo *objectiveRepository) QueryObjectives(ctx context.Context, filter *learning.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Objective, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var objs []learning.Objective
	for _, obj := range repo.db.objectives {
		if filter != nil {
			if filter.Search != "" && !strings.Contains(strings.ToLower(obj.Ability), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.WrittenBy != "" && obj.AuthorID != filter.WrittenBy {
				continue
			}
		}
		objs = append(objs, *obj)
	}
	return objs, nil
}

func (repo *objectiveRepository) UpdateObjective(ctx context.Context, obj learning.Objective, exec ...core.DBExecutor) (learning.Objective, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.objectives[obj.ID]; !ok {
		return learning.Objective{}, learning.ErrNotFound
	}
	repo.db.objectives[obj.ID] = &obj
	return obj, nil
}

func (repo *objectiveRepository) DeleteObjectivesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.objectives[id]; !ok {
			continue
		}
		delete(repo.db.objectives, id)
		n++
		// cascade: attachments of a deleted objective go with it
		for attID, eo := range repo.db.attachments {
			if eo.ObjectiveID == id {
				repo.db.detachLocked(attID)
			}
		}
	}
	return n, nil
}

func (repo *objectiveRepository) ObjectiveSlugExists(ctx context.Context, slug string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, obj := range repo.db.objectives {
		if obj.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *objectiveRepository) ObjectiveAbilityExists(ctx context.Context, ability string, excludedIDs []string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}
	for _, obj := range repo.db.objectives {
		if _, ok := excluded[obj.ID]; ok {
			continue
		}
		if strings.EqualFold(obj.Ability, ability) {
			return true, nil
		}
	}
	return false, nil
}

func (db *learningTables) entityBase(kind learning.Kind, entityID string) (*learning.Base, bool) {
	switch kind {
	case learning.KindCourse:
		if course, ok := db.courses[entityID]; ok {
			return &course.Base, true
		}
	case learning.KindActivity:
		if act, ok := db.activities[entityID]; ok {
			return &act.Base, true
		}
	case learning.KindResource:
		if res, ok := db.resources[entityID]; ok {
			return &res.Base, true
		}
	}
	return nil, false
}

func (repo *objectiveRepository) SaveAttachment(ctx context.Context, eo learning.EntityObjective, exec ...core.DBExecutor) (learning.EntityObjective, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	base, ok := repo.db.entityBase(eo.EntityKind, eo.EntityID)
	if !ok {
		return learning.EntityObjective{}, learning.ErrNotFound
	}
	if eo.ID == "" {
		eo.ID = uuid.New().String()
	}
	repo.db.attachments[eo.ID] = &eo

	for i, existing := range base.Objectives {
		if existing.ObjectiveID == eo.ObjectiveID {
			base.Objectives[i] = &eo
			return eo, nil
		}
	}
	base.Objectives = append(base.Objectives, &eo)
	return eo, nil
}

func (repo *objectiveRepository) GetAttachment(ctx context.Context, id string, exec ...core.DBExecutor) (learning.EntityObjective, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	eo, ok := repo.db.attachments[id]
	if !ok {
		return learning.EntityObjective{}, learning.ErrNotFound
	}
	return *eo, nil
}

func (repo *objectiveRepository) QueryAttachments(ctx context.Context, objectiveID string, exec ...core.DBExecutor) ([]learning.EntityObjective, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var attachments []learning.EntityObjective
	for _, eo := range repo.db.attachments {
		if eo.ObjectiveID == objectiveID {
			attachments = append(attachments, *eo)
		}
	}
	return attachments, nil
}

func (repo *objectiveRepository) DeleteAttachment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.detachLocked(id)
	return nil
}

func (db *learningTables) detachLocked(id string) {
	eo, ok := db.attachments[id]
	if !ok {
		return
	}
	delete(db.attachments, id)
	if base, ok := db.entityBase(eo.EntityKind, eo.EntityID); ok {
		_ = base.RemoveObjective(eo.ObjectiveID)
	}
}

func (repo *objectiveRepository) ApplyValidationChange(ctx context.Context, change learning.ValidationChange, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if change.Objective != nil {
		if obj, ok := repo.db.objectives[change.Objective.ID]; ok {
			obj.Validators = change.Objective.Validators
		}
	}
	for _, eo := range change.Attachments {
		if stored, ok := repo.db.attachments[eo.ID]; ok {
			stored.Validators = eo.Validators
		}
	}
	return nil
}
