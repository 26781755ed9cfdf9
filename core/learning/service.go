package learning

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type (
	// Service orchestrates the content model: it loads aggregates, applies
	// the domain rules and persists through the repositories.
	Service interface {
		CreateCourse(ctx context.Context, authorID string, nc NewCourse) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		DeleteCourses(ctx context.Context, ids ...string) error
		AddCourseCollaborator(ctx context.Context, courseID, userID string, role CollaboratorRole) error
		ChangeCourseCollaboratorRole(ctx context.Context, courseID, userID string, role CollaboratorRole) error
		RemoveCourseCollaborator(ctx context.Context, courseID, userID string) error
		Register(ctx context.Context, courseID, studentID string) error
		RegisterStudent(ctx context.Context, courseID, studentID string, locked bool) error
		Unsubscribe(ctx context.Context, courseID, studentID string) error
		UnsubscribeStudent(ctx context.Context, courseID, studentID string) error
		AddActivityToCourse(ctx context.Context, courseID, activityID string) error
		RemoveActivityFromCourse(ctx context.Context, courseID, activityID string) error
		SetActivityRank(ctx context.Context, courseID, activityID string, rank int) error
		ReorderCourseActivities(ctx context.Context, courseID string) error
		ToggleCourseFavourite(ctx context.Context, courseID, userID string) (bool, error)
		Progression(ctx context.Context, courseID, studentID string) (*ProgressionReport, error)

		CreateActivity(ctx context.Context, authorID string, na NewActivity) (Activity, error)
		GetActivity(ctx context.Context, filter GetFilter) (Activity, error)
		QueryActivities(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Activity, error)
		UpdateActivity(ctx context.Context, id string, ua UpdateActivity) (Activity, error)
		DeleteActivities(ctx context.Context, ids ...string) error
		AddActivityCollaborator(ctx context.Context, activityID, userID string, role CollaboratorRole) error
		ChangeActivityCollaboratorRole(ctx context.Context, activityID, userID string, role CollaboratorRole) error
		RemoveActivityCollaborator(ctx context.Context, activityID, userID string) error
		AddResourceToActivity(ctx context.Context, activityID, resourceID string) error
		RemoveResourceFromActivity(ctx context.Context, activityID, resourceID string) error
		ToggleActivityFavourite(ctx context.Context, activityID, userID string) (bool, error)

		CreateResource(ctx context.Context, authorID string, nr NewResource) (Resource, error)
		GetResource(ctx context.Context, filter GetFilter) (Resource, error)
		QueryResources(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Resource, error)
		UpdateResource(ctx context.Context, id string, ur UpdateResource) (Resource, error)
		DeleteResources(ctx context.Context, ids ...string) error
		AddResourceCollaborator(ctx context.Context, resourceID, userID string, role CollaboratorRole) error
		ChangeResourceCollaboratorRole(ctx context.Context, resourceID, userID string, role CollaboratorRole) error
		RemoveResourceCollaborator(ctx context.Context, resourceID, userID string) error
		SaveResourceAttachment(ctx context.Context, resourceID, filename string, size int64, r io.Reader) (Resource, error)
		OpenResourceAttachment(ctx context.Context, resourceID string) (io.ReadCloser, string, error)
		ToggleResourceFavourite(ctx context.Context, resourceID, userID string) (bool, error)

		CreateObjective(ctx context.Context, authorID string, no NewObjective) (Objective, error)
		GetObjective(ctx context.Context, filter GetFilter) (Objective, error)
		QueryObjectives(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Objective, error)
		DeleteObjectives(ctx context.Context, ids ...string) error
		AttachObjectiveTo(ctx context.Context, kind Kind, entityID string, ao AttachObjective) (EntityObjective, error)
		DetachObjectiveFrom(ctx context.Context, kind Kind, entityID, objectiveID string) error
		ChangeValidation(ctx context.Context, attachmentID, studentID string) (*ValidationChange, error)
	}

	service struct {
		db         core.DB
		courses    CourseRepository
		activities ActivityRepository
		resources  ResourceRepository
		objectives ObjectiveRepository
		users      user.Repository
		files      core.FileStorage
		mailSvc    core.EmailService
		validate   *validator.Validate
		logger     core.Logger
		conf       *core.Config
	}

	// ServiceDeps bundles the service's collaborators.
	ServiceDeps struct {
		DB         core.DB
		Courses    CourseRepository
		Activities ActivityRepository
		Resources  ResourceRepository
		Objectives ObjectiveRepository
		Users      user.Repository
		Files      core.FileStorage
		MailSvc    core.EmailService
		Validate   *validator.Validate
		Logger     core.Logger
		Conf       *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(deps ServiceDeps) Service {
	return &service{
		db:         deps.DB,
		courses:    deps.Courses,
		activities: deps.Activities,
		resources:  deps.Resources,
		objectives: deps.Objectives,
		users:      deps.Users,
		files:      deps.Files,
		mailSvc:    deps.MailSvc,
		validate:   deps.Validate,
		logger:     deps.Logger,
		conf:       deps.Conf,
	}
}

func (svc *service) language(lang string) string {
	if lang != "" {
		return lang
	}
	return svc.conf.DefaultLanguage
}

func (svc *service) newBase(kind Kind, authorID, name, description, language string, tags []string) Base {
	now := time.Now().UTC()
	return Base{
		Kind:        kind,
		Name:        name,
		Description: description,
		Language:    svc.language(language),
		Tags:        tags,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Courses

func (svc *service) CreateCourse(ctx context.Context, authorID string, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	course := Course{
		Base:                svc.newBase(KindCourse, authorID, nc.Name, nc.Description, nc.Language, nc.Tags),
		State:               nc.State,
		Access:              nc.Access,
		RegistrationEnabled: nc.RegistrationEnabled,
	}
	slug, err := core.MakeUniqueSlug(course.Name, core.SlugMaxLength, func(s string) (bool, error) {
		return svc.courses.CourseSlugExists(ctx, s)
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "generating course slug")
	}
	course.Slug = slug
	return svc.courses.CreateCourse(ctx, course)
}

func (svc *service) GetCourse(ctx context.Context, filter GetFilter) (Course, error) {
	return svc.courses.GetCourse(ctx, filter)
}

func (svc *service) QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.courses.QueryCourses(ctx, filter, ordering)
}

func (svc *service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: id})
	if err != nil {
		return Course{}, err
	}
	uc.Apply(&course)
	if err = svc.validate.Struct(&course); err != nil {
		return Course{}, err
	}
	course.UpdatedAt = time.Now().UTC()
	return svc.courses.UpdateCourse(ctx, course)
}

func (svc *service) DeleteCourses(ctx context.Context, ids ...string) error {
	_, err := svc.courses.DeleteCoursesByID(ctx, ids)
	return err
}

func (svc *service) AddCourseCollaborator(ctx context.Context, courseID, userID string, role CollaboratorRole) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	col, err := course.AddCollaborator(userID, role)
	if err != nil {
		return err
	}
	return svc.courses.SaveCourseCollaborator(ctx, course.ID, *col)
}

func (svc *service) ChangeCourseCollaboratorRole(ctx context.Context, courseID, userID string, role CollaboratorRole) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.ChangeCollaboratorRole(userID, role); err != nil {
		return err
	}
	col, _ := course.Collaborator(userID)
	return svc.courses.SaveCourseCollaborator(ctx, course.ID, *col)
}

func (svc *service) RemoveCourseCollaborator(ctx context.Context, courseID, userID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.RemoveCollaborator(userID); err != nil {
		return err
	}
	return svc.courses.DeleteCourseCollaborator(ctx, course.ID, userID)
}

func (svc *service) Register(ctx context.Context, courseID, studentID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	reg, err := course.Register(studentID)
	if err != nil {
		return err
	}
	return svc.courses.SaveRegistration(ctx, course.ID, *reg)
}

func (svc *service) RegisterStudent(ctx context.Context, courseID, studentID string, locked bool) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	reg, err := course.RegisterStudent(studentID, locked)
	if err != nil {
		return err
	}
	if err = svc.courses.SaveRegistration(ctx, course.ID, *reg); err != nil {
		return err
	}
	svc.sendRegistrationMail(ctx, course, studentID)
	return nil
}

func (svc *service) Unsubscribe(ctx context.Context, courseID, studentID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.Unsubscribe(studentID); err != nil {
		return err
	}
	return svc.courses.DeleteRegistration(ctx, course.ID, studentID)
}

func (svc *service) UnsubscribeStudent(ctx context.Context, courseID, studentID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.UnsubscribeStudent(studentID); err != nil {
		return err
	}
	return svc.courses.DeleteRegistration(ctx, course.ID, studentID)
}

func (svc *service) sendRegistrationMail(ctx context.Context, course Course, studentID string) {
	student, err := svc.users.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("registration mail not sent: %v", err))
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      "Course Registration",
		TemplateName: "course-registration",
		TemplateData: struct {
			Student user.User
			Course  Course
		}{student, course},
	})
}

func (svc *service) AddActivityToCourse(ctx context.Context, courseID, activityID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	if err = course.AddActivity(&act); err != nil {
		return err
	}
	return svc.courses.SetActivityLinks(ctx, course.ID, course.Activities)
}

func (svc *service) RemoveActivityFromCourse(ctx context.Context, courseID, activityID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.RemoveActivity(activityID); err != nil {
		return err
	}
	return svc.courses.SetActivityLinks(ctx, course.ID, course.Activities)
}

func (svc *service) SetActivityRank(ctx context.Context, courseID, activityID string, rank int) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	if err = course.SetActivityRank(activityID, rank); err != nil {
		return err
	}
	return svc.courses.SetActivityLinks(ctx, course.ID, course.Activities)
}

func (svc *service) ReorderCourseActivities(ctx context.Context, courseID string) error {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return err
	}
	course.ReorderActivities()
	return svc.courses.SetActivityLinks(ctx, course.ID, course.Activities)
}

func (svc *service) ToggleCourseFavourite(ctx context.Context, courseID, userID string) (bool, error) {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return false, err
	}
	fav := course.ToggleFavourite(userID)
	return fav, svc.courses.SetCourseFavourite(ctx, course.ID, userID, fav)
}

func (svc *service) Progression(ctx context.Context, courseID, studentID string) (*ProgressionReport, error) {
	course, err := svc.courses.GetCourse(ctx, GetFilter{ID: courseID})
	if err != nil {
		return nil, err
	}
	return course.Progression(studentID), nil
}

// Activities

func (svc *service) CreateActivity(ctx context.Context, authorID string, na NewActivity) (Activity, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Activity{}, err
	}
	act := Activity{
		Base:   svc.newBase(KindActivity, authorID, na.Name, na.Description, na.Language, na.Tags),
		Access: na.Access,
		Reuse:  na.Reuse,
	}
	slug, err := core.MakeUniqueSlug(act.Name, core.SlugMaxLength, func(s string) (bool, error) {
		return svc.activities.ActivitySlugExists(ctx, s)
	})
	if err != nil {
		return Activity{}, errors.Wrap(err, "generating activity slug")
	}
	act.Slug = slug
	return svc.activities.CreateActivity(ctx, act)
}

func (svc *service) GetActivity(ctx context.Context, filter GetFilter) (Activity, error) {
	return svc.activities.GetActivity(ctx, filter)
}

func (svc *service) QueryActivities(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Activity, error) {
	return svc.activities.QueryActivities(ctx, filter, ordering)
}

func (svc *service) UpdateActivity(ctx context.Context, id string, ua UpdateActivity) (Activity, error) {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: id})
	if err != nil {
		return Activity{}, err
	}
	ua.Apply(&act)
	if err = svc.validate.Struct(&act); err != nil {
		return Activity{}, err
	}
	act.UpdatedAt = time.Now().UTC()
	return svc.activities.UpdateActivity(ctx, act)
}

func (svc *service) DeleteActivities(ctx context.Context, ids ...string) error {
	_, err := svc.activities.DeleteActivitiesByID(ctx, ids)
	return err
}

func (svc *service) AddActivityCollaborator(ctx context.Context, activityID, userID string, role CollaboratorRole) error {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	col, err := act.AddCollaborator(userID, role)
	if err != nil {
		return err
	}
	return svc.activities.SaveActivityCollaborator(ctx, act.ID, *col)
}

func (svc *service) ChangeActivityCollaboratorRole(ctx context.Context, activityID, userID string, role CollaboratorRole) error {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	if err = act.ChangeCollaboratorRole(userID, role); err != nil {
		return err
	}
	col, _ := act.Collaborator(userID)
	return svc.activities.SaveActivityCollaborator(ctx, act.ID, *col)
}

func (svc *service) RemoveActivityCollaborator(ctx context.Context, activityID, userID string) error {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	if err = act.RemoveCollaborator(userID); err != nil {
		return err
	}
	return svc.activities.DeleteActivityCollaborator(ctx, act.ID, userID)
}

func (svc *service) AddResourceToActivity(ctx context.Context, activityID, resourceID string) error {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return err
	}
	if err = act.AddResource(&res); err != nil {
		return err
	}
	return svc.activities.AddResourceLink(ctx, act.ID, res.ID)
}

func (svc *service) RemoveResourceFromActivity(ctx context.Context, activityID, resourceID string) error {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return err
	}
	if err = act.RemoveResource(resourceID); err != nil {
		return err
	}
	return svc.activities.DeleteResourceLink(ctx, act.ID, resourceID)
}

func (svc *service) ToggleActivityFavourite(ctx context.Context, activityID, userID string) (bool, error) {
	act, err := svc.activities.GetActivity(ctx, GetFilter{ID: activityID})
	if err != nil {
		return false, err
	}
	fav := act.ToggleFavourite(userID)
	return fav, svc.activities.SetActivityFavourite(ctx, act.ID, userID, fav)
}

// Resources

func (svc *service) CreateResource(ctx context.Context, authorID string, nr NewResource) (Resource, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, err
	}
	res := Resource{
		Base:     svc.newBase(KindResource, authorID, nr.Name, nr.Description, nr.Language, nr.Tags),
		Type:     nr.Type,
		Duration: nr.Duration,
		Licence:  nr.Licence,
		Access:   nr.Access,
		Reuse:    nr.Reuse,
	}
	slug, err := core.MakeUniqueSlug(res.Name, core.SlugMaxLength, func(s string) (bool, error) {
		return svc.resources.ResourceSlugExists(ctx, s)
	})
	if err != nil {
		return Resource{}, errors.Wrap(err, "generating resource slug")
	}
	res.Slug = slug
	return svc.resources.CreateResource(ctx, res)
}

func (svc *service) GetResource(ctx context.Context, filter GetFilter) (Resource, error) {
	return svc.resources.GetResource(ctx, filter)
}

func (svc *service) QueryResources(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Resource, error) {
	return svc.resources.QueryResources(ctx, filter, ordering)
}

func (svc *service) UpdateResource(ctx context.Context, id string, ur UpdateResource) (Resource, error) {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: id})
	if err != nil {
		return Resource{}, err
	}
	ur.Apply(&res)
	if err = svc.validate.Struct(&res); err != nil {
		return Resource{}, err
	}
	res.UpdatedAt = time.Now().UTC()
	return svc.resources.UpdateResource(ctx, res)
}

func (svc *service) DeleteResources(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		res, err := svc.resources.GetResource(ctx, GetFilter{ID: id})
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		svc.deleteAttachmentFile(res)
	}
	_, err := svc.resources.DeleteResourcesByID(ctx, ids)
	return err
}

func (svc *service) AddResourceCollaborator(ctx context.Context, resourceID, userID string, role CollaboratorRole) error {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return err
	}
	col, err := res.AddCollaborator(userID, role)
	if err != nil {
		return err
	}
	return svc.resources.SaveResourceCollaborator(ctx, res.ID, *col)
}

func (svc *service) ChangeResourceCollaboratorRole(ctx context.Context, resourceID, userID string, role CollaboratorRole) error {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return err
	}
	if err = res.ChangeCollaboratorRole(userID, role); err != nil {
		return err
	}
	col, _ := res.Collaborator(userID)
	return svc.resources.SaveResourceCollaborator(ctx, res.ID, *col)
}

func (svc *service) RemoveResourceCollaborator(ctx context.Context, resourceID, userID string) error {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return err
	}
	if err = res.RemoveCollaborator(userID); err != nil {
		return err
	}
	return svc.resources.DeleteResourceCollaborator(ctx, res.ID, userID)
}

// SaveResourceAttachment stores the uploaded media, replacing (and deleting)
// any previous one. Uploads above Config.MaxUploadSize are rejected.
func (svc *service) SaveResourceAttachment(ctx context.Context, resourceID, filename string, size int64, r io.Reader) (Resource, error) {
	if size > svc.conf.MaxUploadSize {
		return Resource{}, core.NewValidationError(nil, core.FieldError{
			Field: "attachment",
			Error: fmt.Sprintf("file too large: maximum size is %d bytes", svc.conf.MaxUploadSize),
		})
	}
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return Resource{}, err
	}

	old := res.Attachment
	stored, err := svc.files.Save(path.Join("resources", res.ID, filename), io.LimitReader(r, svc.conf.MaxUploadSize))
	if err != nil {
		return Resource{}, errors.Wrap(err, "storing attachment")
	}
	res.Attachment = stored
	res.UpdatedAt = time.Now().UTC()
	res, err = svc.resources.UpdateResource(ctx, res)
	if err != nil {
		return Resource{}, err
	}
	if old != "" && old != stored {
		if derr := svc.files.Delete(old); derr != nil {
			svc.logger.Warn(fmt.Sprintf("deleting replaced attachment %s: %v", old, derr))
		}
	}
	return res, nil
}

func (svc *service) OpenResourceAttachment(ctx context.Context, resourceID string) (io.ReadCloser, string, error) {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return nil, "", err
	}
	if res.Attachment == "" {
		return nil, "", ErrNotFound
	}
	rc, err := svc.files.Open(res.Attachment)
	return rc, res.Attachment, err
}

// deleteAttachmentFile attempts media deletion; failures are logged, never
// raised, so they cannot block the owning database mutation.
func (svc *service) deleteAttachmentFile(res Resource) {
	if res.Attachment == "" {
		return
	}
	if err := svc.files.Delete(res.Attachment); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting attachment %s: %v", res.Attachment, err))
	}
}

func (svc *service) ToggleResourceFavourite(ctx context.Context, resourceID, userID string) (bool, error) {
	res, err := svc.resources.GetResource(ctx, GetFilter{ID: resourceID})
	if err != nil {
		return false, err
	}
	fav := res.ToggleFavourite(userID)
	return fav, svc.resources.SetResourceFavourite(ctx, res.ID, userID, fav)
}

// Objectives

func (svc *service) CreateObjective(ctx context.Context, authorID string, no NewObjective) (Objective, error) {
	if err := no.Validate(svc.validate); err != nil {
		return Objective{}, err
	}
	exists, err := svc.objectives.ObjectiveAbilityExists(ctx, no.Ability, nil)
	if err != nil {
		return Objective{}, err
	}
	if exists {
		return Objective{}, core.NewValidationError(ErrObjectiveAlreadyExists,
			core.FieldError{Field: "ability", Error: ErrObjectiveAlreadyExists.Error()})
	}
	now := time.Now().UTC()
	obj := Objective{
		Ability:   no.Ability,
		Language:  svc.language(no.Language),
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slug, err := core.MakeUniqueSlug(obj.Ability, core.SlugMaxLength, func(s string) (bool, error) {
		return svc.objectives.ObjectiveSlugExists(ctx, s)
	})
	if err != nil {
		return Objective{}, errors.Wrap(err, "generating objective slug")
	}
	obj.Slug = slug
	return svc.objectives.CreateObjective(ctx, obj)
}

func (svc *service) GetObjective(ctx context.Context, filter GetFilter) (Objective, error) {
	return svc.objectives.GetObjective(ctx, filter)
}

func (svc *service) QueryObjectives(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Objective, error) {
	return svc.objectives.QueryObjectives(ctx, filter, ordering)
}

func (svc *service) DeleteObjectives(ctx context.Context, ids ...string) error {
	_, err := svc.objectives.DeleteObjectivesByID(ctx, ids)
	return err
}

// entityBase loads the aggregate base for the tagged kind.
func (svc *service) entityBase(ctx context.Context, kind Kind, entityID string) (*Base, error) {
	switch kind {
	case KindCourse:
		course, err := svc.courses.GetCourse(ctx, GetFilter{ID: entityID})
		if err != nil {
			return nil, err
		}
		return &course.Base, nil
	case KindActivity:
		act, err := svc.activities.GetActivity(ctx, GetFilter{ID: entityID})
		if err != nil {
			return nil, err
		}
		return &act.Base, nil
	case KindResource:
		res, err := svc.resources.GetResource(ctx, GetFilter{ID: entityID})
		if err != nil {
			return nil, err
		}
		return &res.Base, nil
	}
	return nil, errors.Errorf("learning: unknown entity kind %d", kind)
}

func (svc *service) AttachObjectiveTo(ctx context.Context, kind Kind, entityID string, ao AttachObjective) (EntityObjective, error) {
	if err := ao.Validate(svc.validate); err != nil {
		return EntityObjective{}, err
	}
	base, err := svc.entityBase(ctx, kind, entityID)
	if err != nil {
		return EntityObjective{}, err
	}
	obj, err := svc.objectives.GetObjective(ctx, GetFilter{ID: ao.ObjectiveID})
	if err != nil {
		return EntityObjective{}, err
	}
	eo, err := base.AddObjective(&obj, ao.TaxonomyLevel, ao.Reusable)
	if err != nil {
		return EntityObjective{}, err
	}
	eo.NeedsTest = ao.NeedsTest
	return svc.objectives.SaveAttachment(ctx, *eo)
}

func (svc *service) DetachObjectiveFrom(ctx context.Context, kind Kind, entityID, objectiveID string) error {
	base, err := svc.entityBase(ctx, kind, entityID)
	if err != nil {
		return err
	}
	eo, ok := base.ObjectiveAttachment(objectiveID)
	if !ok {
		return ErrNotInModel
	}
	if err = base.RemoveObjective(objectiveID); err != nil {
		return err
	}
	return svc.objectives.DeleteAttachment(ctx, eo.ID)
}

// ChangeValidation toggles the student on the attachment and, for reusable
// attachments, propagates to the global objective and every reusable sibling.
// The whole change is applied in one repository transaction.
func (svc *service) ChangeValidation(ctx context.Context, attachmentID, studentID string) (*ValidationChange, error) {
	eo, err := svc.objectives.GetAttachment(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	obj, err := svc.objectives.GetObjective(ctx, GetFilter{ID: eo.ObjectiveID})
	if err != nil {
		return nil, err
	}
	attachments, err := svc.objectives.QueryAttachments(ctx, eo.ObjectiveID)
	if err != nil {
		return nil, err
	}
	siblings := make([]*EntityObjective, 0, len(attachments))
	for i := range attachments {
		if attachments[i].ID != eo.ID {
			siblings = append(siblings, &attachments[i])
		}
	}
	change, err := eo.ChangeValidation(studentID, &obj, siblings)
	if err != nil {
		return nil, err
	}
	if err = svc.objectives.ApplyValidationChange(ctx, *change); err != nil {
		return nil, err
	}
	return change, nil
}
