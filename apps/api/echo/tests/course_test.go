package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func createCourse(t *testing.T, env *env, authorID, name string, nc learning.NewCourse) learning.Course {
	t.Helper()
	nc.Name = name
	course, err := env.svc.CreateCourse(context.Background(), authorID, nc)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func Test_courseApi_create(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, env.conf, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, learning.NewCourse{Name: "Algebra"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: getToken(t, env.conf, teacher), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "Course created", token: getToken(t, env.conf, teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, learning.NewCourse{Name: "Algebra Basics", State: learning.CourseStatePublished}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/courses"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var course learning.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if course.ID == "" {
					t.Error("failed! course has no ID")
				}
				if course.Slug != "algebra-basics" {
					t.Errorf("failed! slug = %q; want %q", course.Slug, "algebra-basics")
				}
				if course.AuthorID != teacher.ID {
					t.Errorf("failed! author = %q; want %q", course.AuthorID, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	public := createCourse(t, env, teacher.ID, "Public Course", learning.NewCourse{
		State:  learning.CourseStatePublished,
		Access: learning.CourseAccessPublic,
	})
	private := createCourse(t, env, teacher.ID, "Private Course", learning.NewCourse{
		State:  learning.CourseStateDraft,
		Access: learning.CourseAccessPrivate,
	})

	tests := []httpTest{
		{name: "Auth required", path: "/v1/courses/" + public.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Public course visible", path: "/v1/courses/" + public.ID, token: getToken(t, env.conf, student), wantCode: http.StatusOK},
		{
			name: "Private course hidden", path: "/v1/courses/" + private.ID, token: getToken(t, env.conf, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Author sees own private course", path: "/v1/courses/" + private.ID, token: getToken(t, env.conf, teacher), wantCode: http.StatusOK},
		{name: "Admin sees all", path: "/v1/courses/" + private.ID, token: getToken(t, env.conf, admin), wantCode: http.StatusOK},
		{
			name: "Unknown course", path: "/v1/courses/lol", token: getToken(t, env.conf, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var course learning.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if course.ID == "" {
					t.Error("failed! course has no ID")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_registration(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	open := createCourse(t, env, teacher.ID, "Open Course", learning.NewCourse{
		State:               learning.CourseStatePublished,
		Access:              learning.CourseAccessPublic,
		RegistrationEnabled: true,
	})
	draft := createCourse(t, env, teacher.ID, "Draft Course", learning.NewCourse{
		State:  learning.CourseStateDraft,
		Access: learning.CourseAccessPublic,
	})

	studentToken := getToken(t, env.conf, student)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/courses/" + open.ID + "/register", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Registration disabled", method: http.MethodPost, path: "/v1/courses/" + draft.ID + "/register",
			token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: learning.ErrRegistrationDisabled.Error()}),
		},
		{name: "Registered", method: http.MethodPost, path: "/v1/courses/" + open.ID + "/register", token: studentToken, wantCode: http.StatusCreated},
		{
			name: "Already registered", method: http.MethodPost, path: "/v1/courses/" + open.ID + "/register",
			token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: learning.ErrAlreadyStudent.Error()}),
		},
		{name: "Unsubscribed", method: http.MethodDelete, path: "/v1/courses/" + open.ID + "/register", token: studentToken, wantCode: http.StatusNoContent},
		{
			name: "Not a student", method: http.MethodDelete, path: "/v1/courses/" + open.ID + "/register",
			token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: learning.ErrNotStudent.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated || tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	course, err := env.courses.GetCourse(context.Background(), learning.GetFilter{ID: open.ID})
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if course.IsStudent(student.ID) {
		t.Error("student should be unsubscribed")
	}
}

func Test_courseApi_progression(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	course := createCourse(t, env, teacher.ID, "Algebra Basics", learning.NewCourse{
		State:               learning.CourseStatePublished,
		Access:              learning.CourseAccessPublic,
		RegistrationEnabled: true,
	})
	if err := env.svc.RegisterStudent(ctx, course.ID, student.ID, false); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}

	obj, err := env.svc.CreateObjective(ctx, teacher.ID, learning.NewObjective{Ability: "solve linear equations"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	eo, err := env.svc.AttachObjectiveTo(ctx, learning.KindCourse, course.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo() failed: %v", err)
	}
	if _, err = env.svc.ChangeValidation(ctx, eo.ID, student.ID); err != nil {
		t.Fatalf("ChangeValidation() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+course.ID+"/progression", getToken(t, env.conf, student))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var report learning.ProgressionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if report.TotalAttachments != 1 {
		t.Errorf("failed! total attachments = %d; want 1", report.TotalAttachments)
	}
	if len(report.Objectives) != 1 || !report.Objectives[0].Validated {
		t.Errorf("failed! objective should be validated: %+v", report.Objectives)
	}
	for _, level := range report.Levels {
		if level.Level == learning.TaxonomyKnowledge {
			if level.Progress != 100 {
				t.Errorf("failed! knowledge progress = %d; want 100", level.Progress)
			}
		} else if level.Total != 0 {
			t.Errorf("failed! level %v should be empty", level.Level)
		}
	}
}
