package learning

import "testing"

func TestCoursePermissions(t *testing.T) {
	author := "author"
	student := "student"
	teacher := "teacher"
	viewer := "viewer"
	stranger := "stranger"

	setup := func(t *testing.T, access CourseAccess) *Course {
		c := newTestCourse("c1", author)
		c.Access = access
		if _, err := c.RegisterStudent(student, false); err != nil {
			t.Fatalf("RegisterStudent() failed: %v", err)
		}
		if _, err := c.AddCollaborator(teacher, RoleTeacher); err != nil {
			t.Fatalf("AddCollaborator() failed: %v", err)
		}
		if _, err := c.AddCollaborator(viewer, RoleNonEditorTeacher); err != nil {
			t.Fatalf("AddCollaborator() failed: %v", err)
		}
		return c
	}

	t.Run("author gets everything", func(t *testing.T) {
		c := setup(t, CourseAccessPrivate)
		perms := c.Permissions(author)
		if !perms.HasAll(PermView, PermChange, PermDelete, PermChangePrivacy, PermAddStudent, PermAddCollaborator, PermAddObjective) {
			t.Errorf("author permissions incomplete: %v", perms.Slice())
		}
	})

	t.Run("anonymous view on public only", func(t *testing.T) {
		for _, access := range []CourseAccess{CourseAccessPublic, CourseAccessStudentsOnly, CourseAccessCollaboratorsOnly, CourseAccessPrivate} {
			c := setup(t, access)
			got := c.Permissions("").Has(PermView)
			want := access == CourseAccessPublic
			if got != want {
				t.Errorf("access %v: anonymous view = %v; want %v", access, got, want)
			}
		}
	})

	t.Run("student view up to students only", func(t *testing.T) {
		for _, access := range []CourseAccess{CourseAccessPublic, CourseAccessStudentsOnly, CourseAccessCollaboratorsOnly, CourseAccessPrivate} {
			c := setup(t, access)
			perms := c.Permissions(student)
			want := access <= CourseAccessStudentsOnly
			if got := perms.Has(PermView); got != want {
				t.Errorf("access %v: student view = %v; want %v", access, got, want)
			}
			if perms.Has(PermChange) {
				t.Errorf("access %v: student may change", access)
			}
		}
	})

	t.Run("collaborator role sets up to collaborators only", func(t *testing.T) {
		for _, access := range []CourseAccess{CourseAccessCollaboratorsOnly, CourseAccessPrivate} {
			c := setup(t, access)
			teacherPerms := c.Permissions(teacher)
			viewerPerms := c.Permissions(viewer)
			want := access <= CourseAccessCollaboratorsOnly
			if got := teacherPerms.Has(PermChange); got != want {
				t.Errorf("access %v: teacher change = %v; want %v", access, got, want)
			}
			if viewerPerms.Has(PermChange) {
				t.Errorf("access %v: non-editor teacher may change", access)
			}
			if want && !viewerPerms.HasAll(PermView, PermViewHidden, PermViewStudents) {
				t.Errorf("access %v: non-editor teacher view set incomplete: %v", access, viewerPerms.Slice())
			}
		}
	})

	t.Run("stranger gets nothing on private", func(t *testing.T) {
		c := setup(t, CourseAccessPrivate)
		if perms := c.Permissions(stranger); len(perms) != 0 {
			t.Errorf("stranger permissions = %v; want none", perms.Slice())
		}
	})
}

func TestActivityPermissionsExistingCourses(t *testing.T) {
	author := "author"
	student := "student"
	stranger := "stranger"

	course := newTestCourse("c1", author)
	course.Access = CourseAccessStudentsOnly
	if _, err := course.RegisterStudent(student, false); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}

	act := newTestActivity("a1", "other", ReuseNoRestriction)
	act.Access = ActivityAccessExistingCourses
	act.Courses = []*Course{course}

	if !act.Permissions(student).Has(PermView) {
		t.Errorf("student of containing course cannot view activity")
	}
	if act.Permissions(stranger).Has(PermView) {
		t.Errorf("stranger can view activity through existing courses rule")
	}

	// without hydrated containers the rule grants nothing
	act.Courses = nil
	if act.Permissions(student).Has(PermView) {
		t.Errorf("view granted without containing courses")
	}
}

func TestResourcePermissionsExistingActivities(t *testing.T) {
	author := "author"
	student := "student"

	course := newTestCourse("c1", author)
	if _, err := course.RegisterStudent(student, false); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}

	act := newTestActivity("a1", author, ReuseNoRestriction)
	act.Access = ActivityAccessExistingCourses
	act.Courses = []*Course{course}

	res := newTestResource("r1", "other", ReuseNoRestriction)
	res.Access = ResourceAccessExistingActivities
	res.Activities = []*Activity{act}

	if !res.Permissions(student).Has(PermView) {
		t.Errorf("student cannot view resource through containing activity")
	}
	if res.Permissions("stranger").Has(PermView) {
		t.Errorf("stranger can view resource")
	}
	if !res.Permissions("other").HasAll(PermView, PermViewUsage, PermToggleImportantQuestion) {
		t.Errorf("resource author permission set incomplete: %v", res.Permissions("other").Slice())
	}
}

func TestRolePermissionsTable(t *testing.T) {
	owner := NewPermissionSet(RolePermissions[RoleOwner]...)
	teacher := NewPermissionSet(RolePermissions[RoleTeacher]...)
	viewer := NewPermissionSet(RolePermissions[RoleNonEditorTeacher]...)

	// each role's set contains the next one's
	for _, p := range viewer.Slice() {
		if !teacher.Has(p) {
			t.Errorf("teacher is missing non-editor permission %q", p)
		}
	}
	for _, p := range teacher.Slice() {
		if !owner.Has(p) {
			t.Errorf("owner is missing teacher permission %q", p)
		}
	}

	if teacher.HasAll(PermDelete) || teacher.HasAll(PermChangePrivacy) || teacher.HasAll(PermAddCollaborator) {
		t.Errorf("teacher holds owner-only permissions: %v", teacher.Slice())
	}
	if viewer.Has(PermChange) || viewer.Has(PermAddStudent) || viewer.Has(PermAddObjective) {
		t.Errorf("non-editor teacher holds editing permissions: %v", viewer.Slice())
	}
}
