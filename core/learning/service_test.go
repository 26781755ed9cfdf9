package learning_test

import (
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	filestore "github.com/trezcool/darasa/storage/files"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool)                          {}
func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

type testEnv struct {
	svc   learning.Service
	users user.Repository
	objs  learning.ObjectiveRepository
	conf  *core.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		AppName:         "darasa",
		TestMode:        true,
		DefaultLanguage: "en",
		MaxUploadSize:   1 << 20,
		FrontendBaseURL: "http://localhost:3000",
		WorkDir:         core.Getwd(),
		DefaultFromEmail: mail.Address{
			Name:    "Darasa",
			Address: "noreply@darasa.test",
		},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	learning.InitValidators(validate, translator)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	users := dummydb.NewUserRepository(db)
	objectives := dummydb.NewObjectiveRepository(db)

	svc := learning.NewService(learning.ServiceDeps{
		Courses:    dummydb.NewCourseRepository(db),
		Activities: dummydb.NewActivityRepository(db),
		Resources:  dummydb.NewResourceRepository(db),
		Objectives: objectives,
		Users:      users,
		Files:      filestore.NewDiskStorage(t.TempDir()),
		MailSvc:    emailsvc.NewConsoleServiceMock(conf),
		Validate:   validate,
		Logger:     testLogger{t: t},
		Conf:       conf,
	})
	return &testEnv{svc: svc, users: users, objs: objectives, conf: conf}
}

func createCourse(t *testing.T, env *testEnv, name string, state learning.CourseState) learning.Course {
	t.Helper()
	course, err := env.svc.CreateCourse(context.Background(), "author", learning.NewCourse{
		Name:                name,
		State:               state,
		Access:              learning.CourseAccessPublic,
		RegistrationEnabled: state == learning.CourseStatePublished,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func createActivity(t *testing.T, env *testEnv, name string) learning.Activity {
	t.Helper()
	act, err := env.svc.CreateActivity(context.Background(), "author", learning.NewActivity{
		Name:   name,
		Access: learning.ActivityAccessPublic,
		Reuse:  learning.ReuseNoRestriction,
	})
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}
	return act
}

func TestServiceCreateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := createCourse(t, env, "Algebra Basics", learning.CourseStatePublished)
	if course.ID == "" {
		t.Errorf("CreateCourse() did not assign an ID")
	}
	if course.Slug != "algebra-basics" {
		t.Errorf("CreateCourse() slug = %q; want %q", course.Slug, "algebra-basics")
	}
	if course.Language != "en" {
		t.Errorf("CreateCourse() language = %q; want default %q", course.Language, "en")
	}

	// same name gets a suffixed slug
	dup := createCourse(t, env, "Algebra Basics", learning.CourseStatePublished)
	if dup.Slug != "algebra-basics-1" {
		t.Errorf("CreateCourse() duplicate slug = %q; want %q", dup.Slug, "algebra-basics-1")
	}

	got, err := env.svc.GetCourse(ctx, learning.GetFilter{Slug: "algebra-basics"})
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if got.ID != course.ID {
		t.Errorf("GetCourse() by slug returned %q; want %q", got.ID, course.ID)
	}

	// registration on a non-published course is invalid
	_, err = env.svc.CreateCourse(ctx, "author", learning.NewCourse{
		Name:                "Drafty",
		State:               learning.CourseStateDraft,
		RegistrationEnabled: true,
	})
	if err == nil {
		t.Errorf("CreateCourse() accepted registration on a draft course")
	}
}

func TestServiceUpdateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := createCourse(t, env, "Algebra", learning.CourseStateDraft)

	name := "Linear Algebra"
	updated, err := env.svc.UpdateCourse(ctx, course.ID, learning.UpdateCourse{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCourse() failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("UpdateCourse() name = %q; want %q", updated.Name, name)
	}
	if updated.Slug != course.Slug {
		t.Errorf("UpdateCourse() changed the slug to %q", updated.Slug)
	}

	// enabling registration while the course stays draft must fail
	enabled := true
	if _, err = env.svc.UpdateCourse(ctx, course.ID, learning.UpdateCourse{RegistrationEnabled: &enabled}); err == nil {
		t.Errorf("UpdateCourse() enabled registration on a draft course")
	}

	published := learning.CourseStatePublished
	if _, err = env.svc.UpdateCourse(ctx, course.ID, learning.UpdateCourse{State: &published, RegistrationEnabled: &enabled}); err != nil {
		t.Errorf("UpdateCourse() publish with registration failed: %v", err)
	}
}

func TestServiceRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := createCourse(t, env, "Algebra", learning.CourseStatePublished)

	student, err := env.users.CreateUser(ctx, user.User{
		Name:     "Student One",
		Username: "student1",
		Email:    "student1@darasa.test",
		Roles:    []string{user.RoleStudent},
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	if err = env.svc.Register(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err = env.svc.Register(ctx, course.ID, student.ID); err != learning.ErrAlreadyStudent {
		t.Errorf("Register() twice error = %v; want %v", err, learning.ErrAlreadyStudent)
	}
	if err = env.svc.Unsubscribe(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}

	// teacher-initiated registration sends the notification mail
	sent := len(emailsvc.SentMessages)
	if err = env.svc.RegisterStudent(ctx, course.ID, student.ID, true); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != sent+1 {
		t.Errorf("registration mail not sent")
	} else {
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if len(msg.To) != 1 || msg.To[0].Address != student.Email {
			t.Errorf("registration mail recipients = %v", msg.To)
		}
		if !strings.Contains(msg.TextContent, course.Name) {
			t.Errorf("registration mail does not mention the course:\n%s", msg.TextContent)
		}
	}

	// the registration is locked; the student cannot leave on their own
	if err = env.svc.Unsubscribe(ctx, course.ID, student.ID); err != learning.ErrRegistrationDisabled {
		t.Errorf("Unsubscribe() locked error = %v; want %v", err, learning.ErrRegistrationDisabled)
	}
	if err = env.svc.UnsubscribeStudent(ctx, course.ID, student.ID); err != nil {
		t.Errorf("UnsubscribeStudent() failed: %v", err)
	}
}

func TestServiceActivityLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := createCourse(t, env, "Algebra", learning.CourseStateDraft)
	a1 := createActivity(t, env, "Vectors")
	a2 := createActivity(t, env, "Matrices")

	if err := env.svc.AddActivityToCourse(ctx, course.ID, a1.ID); err != nil {
		t.Fatalf("AddActivityToCourse() failed: %v", err)
	}
	if err := env.svc.AddActivityToCourse(ctx, course.ID, a2.ID); err != nil {
		t.Fatalf("AddActivityToCourse() failed: %v", err)
	}
	if err := env.svc.AddActivityToCourse(ctx, course.ID, a1.ID); err != learning.ErrAlreadyLinked {
		t.Errorf("AddActivityToCourse() twice error = %v; want %v", err, learning.ErrAlreadyLinked)
	}

	if err := env.svc.SetActivityRank(ctx, course.ID, a2.ID, 1); err != nil {
		t.Fatalf("SetActivityRank() failed: %v", err)
	}
	got, err := env.svc.GetCourse(ctx, learning.GetFilter{ID: course.ID})
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if len(got.Activities) != 2 || got.Activities[0].Activity.ID != a2.ID || got.Activities[0].Rank != 1 {
		t.Errorf("activity order not persisted: %+v", got.Activities)
	}

	// the activity now reports its container
	gotAct, err := env.svc.GetActivity(ctx, learning.GetFilter{ID: a1.ID})
	if err != nil {
		t.Fatalf("GetActivity() failed: %v", err)
	}
	if len(gotAct.Courses) != 1 || gotAct.Courses[0].ID != course.ID {
		t.Errorf("activity containers not hydrated: %+v", gotAct.Courses)
	}

	if err = env.svc.RemoveActivityFromCourse(ctx, course.ID, a2.ID); err != nil {
		t.Fatalf("RemoveActivityFromCourse() failed: %v", err)
	}
	got, _ = env.svc.GetCourse(ctx, learning.GetFilter{ID: course.ID})
	if len(got.Activities) != 1 || got.Activities[0].Rank != 1 {
		t.Errorf("ranks not healed after removal: %+v", got.Activities)
	}
}

func TestServiceObjectiveLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	obj, err := env.svc.CreateObjective(ctx, "author", learning.NewObjective{Ability: "Count to ten"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	if obj.Slug != "count-to-ten" {
		t.Errorf("CreateObjective() slug = %q", obj.Slug)
	}

	// abilities are unique, case-insensitively
	if _, err = env.svc.CreateObjective(ctx, "author", learning.NewObjective{Ability: "count to TEN"}); err == nil {
		t.Errorf("CreateObjective() accepted a duplicate ability")
	}

	course := createCourse(t, env, "Algebra", learning.CourseStateDraft)
	act := createActivity(t, env, "Vectors")

	courseAtt, err := env.svc.AttachObjectiveTo(ctx, learning.KindCourse, course.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
		Reusable:      true,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo(course) failed: %v", err)
	}
	actAtt, err := env.svc.AttachObjectiveTo(ctx, learning.KindActivity, act.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyApplication,
		Reusable:      true,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo(activity) failed: %v", err)
	}
	if _, err = env.svc.AttachObjectiveTo(ctx, learning.KindCourse, course.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
	}); err != learning.ErrAlreadyInModel {
		t.Errorf("AttachObjectiveTo() twice error = %v; want %v", err, learning.ErrAlreadyInModel)
	}

	// toggling on the course propagates to the reusable activity attachment
	change, err := env.svc.ChangeValidation(ctx, courseAtt.ID, "s1")
	if err != nil {
		t.Fatalf("ChangeValidation() failed: %v", err)
	}
	if !change.Add || len(change.Attachments) != 2 || change.Objective == nil {
		t.Errorf("unexpected change: add=%v attachments=%d obj=%v", change.Add, len(change.Attachments), change.Objective)
	}

	stored, err := env.objs.GetAttachment(ctx, actAtt.ID)
	if err != nil {
		t.Fatalf("GetAttachment() failed: %v", err)
	}
	if !stored.Validated("s1") {
		t.Errorf("propagated validation not persisted on the sibling attachment")
	}
	storedObj, err := env.svc.GetObjective(ctx, learning.GetFilter{ID: obj.ID})
	if err != nil {
		t.Fatalf("GetObjective() failed: %v", err)
	}
	if !storedObj.Validated("s1") {
		t.Errorf("propagated validation not persisted on the global objective")
	}

	// toggling again on the activity removes everywhere
	if _, err = env.svc.ChangeValidation(ctx, actAtt.ID, "s1"); err != nil {
		t.Fatalf("ChangeValidation() failed: %v", err)
	}
	stored, _ = env.objs.GetAttachment(ctx, courseAtt.ID)
	if stored.Validated("s1") {
		t.Errorf("removal did not propagate to the course attachment")
	}

	if err = env.svc.DetachObjectiveFrom(ctx, learning.KindActivity, act.ID, obj.ID); err != nil {
		t.Fatalf("DetachObjectiveFrom() failed: %v", err)
	}
	if err = env.svc.DetachObjectiveFrom(ctx, learning.KindActivity, act.ID, obj.ID); err != learning.ErrNotInModel {
		t.Errorf("DetachObjectiveFrom() twice error = %v; want %v", err, learning.ErrNotInModel)
	}
}

func TestServiceResourceAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CreateResource(ctx, "author", learning.NewResource{
		Name:    "Chapter One",
		Type:    learning.ResourceTypeFile,
		Licence: learning.LicenceCCBy,
		Access:  learning.ResourceAccessPublic,
		Reuse:   learning.ReuseNoRestriction,
	})
	if err != nil {
		t.Fatalf("CreateResource() failed: %v", err)
	}

	content := "chapter one content"
	res, err = env.svc.SaveResourceAttachment(ctx, res.ID, "chapter1.txt", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("SaveResourceAttachment() failed: %v", err)
	}
	if res.Attachment == "" {
		t.Fatalf("attachment path not recorded")
	}

	rc, _, err := env.svc.OpenResourceAttachment(ctx, res.ID)
	if err != nil {
		t.Fatalf("OpenResourceAttachment() failed: %v", err)
	}
	rc.Close()

	// over the size cap
	_, err = env.svc.SaveResourceAttachment(ctx, res.ID, "big.bin", env.conf.MaxUploadSize+1, strings.NewReader("x"))
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("SaveResourceAttachment() oversized error = %v; want a validation error", err)
	}

	if err = env.svc.DeleteResources(ctx, res.ID); err != nil {
		t.Fatalf("DeleteResources() failed: %v", err)
	}
	if _, err = env.svc.GetResource(ctx, learning.GetFilter{ID: res.ID}); err != learning.ErrNotFound {
		t.Errorf("GetResource() after delete error = %v; want %v", err, learning.ErrNotFound)
	}
}

func TestServiceProgression(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := createCourse(t, env, "Algebra", learning.CourseStateDraft)
	act := createActivity(t, env, "Vectors")
	if err := env.svc.AddActivityToCourse(ctx, course.ID, act.ID); err != nil {
		t.Fatalf("AddActivityToCourse() failed: %v", err)
	}

	obj1, err := env.svc.CreateObjective(ctx, "author", learning.NewObjective{Ability: "Count to ten"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	obj2, err := env.svc.CreateObjective(ctx, "author", learning.NewObjective{Ability: "Add vectors"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}

	att1, err := env.svc.AttachObjectiveTo(ctx, learning.KindCourse, course.ID, learning.AttachObjective{
		ObjectiveID:   obj1.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo() failed: %v", err)
	}
	if _, err = env.svc.AttachObjectiveTo(ctx, learning.KindActivity, act.ID, learning.AttachObjective{
		ObjectiveID:   obj2.ID,
		TaxonomyLevel: learning.TaxonomyApplication,
	}); err != nil {
		t.Fatalf("AttachObjectiveTo() failed: %v", err)
	}

	if _, err = env.svc.ChangeValidation(ctx, att1.ID, "s1"); err != nil {
		t.Fatalf("ChangeValidation() failed: %v", err)
	}

	report, err := env.svc.Progression(ctx, course.ID, "s1")
	if err != nil {
		t.Fatalf("Progression() failed: %v", err)
	}
	if report.TotalAttachments != 2 {
		t.Errorf("TotalAttachments = %d; want 2", report.TotalAttachments)
	}
	var knowledge learning.LevelProgress
	for _, lp := range report.Levels {
		if lp.Level == learning.TaxonomyKnowledge {
			knowledge = lp
		}
	}
	if knowledge.Total != 1 || knowledge.Validated != 1 || knowledge.Progress != 100 {
		t.Errorf("knowledge level = %+v", knowledge)
	}
	// 1/2 * 100 * 1/1 = 50
	if knowledge.ProgressDimension != 50 {
		t.Errorf("knowledge progress dimension = %d; want 50", knowledge.ProgressDimension)
	}
}
