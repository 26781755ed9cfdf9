package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_objectiveApi_create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	if _, err := env.svc.CreateObjective(ctx, teacher.ID, learning.NewObjective{Ability: "factor polynomials"}); err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, env.conf, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, learning.NewObjective{Ability: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Duplicate ability", token: getToken(t, env.conf, teacher), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, learning.NewObjective{Ability: "factor polynomials"}),
			wantData: marchallObj(t, map[string]string{"ability": learning.ErrObjectiveAlreadyExists.Error()}),
		},
		{
			name: "Objective created", token: getToken(t, env.conf, teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, learning.NewObjective{Ability: "solve linear equations"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/objectives"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var obj learning.Objective
				if err := json.Unmarshal(rec.Body.Bytes(), &obj); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if obj.Slug != "solve-linear-equations" {
					t.Errorf("failed! slug = %q; want %q", obj.Slug, "solve-linear-equations")
				}
				if obj.AuthorID != teacher.ID {
					t.Errorf("failed! author = %q; want %q", obj.AuthorID, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_objectiveApi_changeValidation(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	course, err := env.svc.CreateCourse(ctx, teacher.ID, learning.NewCourse{
		Name:   "Algebra Basics",
		State:  learning.CourseStatePublished,
		Access: learning.CourseAccessPublic,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	act, err := env.svc.CreateActivity(ctx, teacher.ID, learning.NewActivity{Name: "Equations Drill"})
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}
	obj, err := env.svc.CreateObjective(ctx, teacher.ID, learning.NewObjective{Ability: "solve linear equations"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}

	// two reusable attachments of the same objective
	courseAtt, err := env.svc.AttachObjectiveTo(ctx, learning.KindCourse, course.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
		Reusable:      true,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo() failed: %v", err)
	}
	actAtt, err := env.svc.AttachObjectiveTo(ctx, learning.KindActivity, act.ID, learning.AttachObjective{
		ObjectiveID:   obj.ID,
		TaxonomyLevel: learning.TaxonomyKnowledge,
		Reusable:      true,
	})
	if err != nil {
		t.Fatalf("AttachObjectiveTo() failed: %v", err)
	}

	studentToken := getToken(t, env.conf, student)
	path := "/v1/objectives/validations/" + courseAtt.ID

	// a student toggles their own validation on
	req, rec := newAuthRequest(http.MethodPost, path, studentToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp echoapi.ValidationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !resp.Validated || resp.StudentID != student.ID {
		t.Errorf("failed! resp = %+v; want validated for %q", resp, student.ID)
	}

	// propagated to the sibling reusable attachment
	sibling, err := env.objectives.GetAttachment(ctx, actAtt.ID)
	if err != nil {
		t.Fatalf("GetAttachment() failed: %v", err)
	}
	if !sibling.Validated(student.ID) {
		t.Error("validation should propagate to the sibling attachment")
	}

	// toggling again turns it off
	req, rec = newAuthRequest(http.MethodPost, path, studentToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if resp.Validated {
		t.Error("failed! second toggle should invalidate")
	}

	// a teacher may toggle on a student's behalf
	body := marchallObj(t, echoapi.ValidationRequest{StudentID: student.ID})
	req, rec = newAuthRequest(http.MethodPost, path, getToken(t, env.conf, teacher), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !resp.Validated || resp.StudentID != student.ID {
		t.Errorf("failed! resp = %+v; want validated for %q", resp, student.ID)
	}

	// a student may not toggle for someone else
	body = marchallObj(t, echoapi.ValidationRequest{StudentID: student.ID})
	req, rec = newAuthRequest(http.MethodPost, path, getToken(t, env.conf, other), body)
	env.app.ServeHTTP(rec, req)
	tt := httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "permission denied"}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_objectiveApi_destroy(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	rival := testutil.CreateUser(t, env.usrRepo, "Rival", "rival", "rival@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	obj, err := env.svc.CreateObjective(ctx, teacher.ID, learning.NewObjective{Ability: "solve linear equations"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	obj2, err := env.svc.CreateObjective(ctx, teacher.ID, learning.NewObjective{Ability: "factor polynomials"})
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/objectives/" + obj.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Author required", path: "/v1/objectives/" + obj.ID, token: getToken(t, env.conf, rival),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Author deletes own", path: "/v1/objectives/" + obj.ID, token: getToken(t, env.conf, teacher), wantCode: http.StatusNoContent},
		{name: "Admin deletes any", path: "/v1/objectives/" + obj2.ID, token: getToken(t, env.conf, admin), wantCode: http.StatusNoContent},
		{
			name: "Unknown objective", path: "/v1/objectives/" + obj.ID, token: getToken(t, env.conf, teacher),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
