package learning

import (
	"testing"
)

func newTestCourse(id, authorID string) *Course {
	return &Course{
		Base: Base{
			ID:       id,
			Kind:     KindCourse,
			Name:     "Course " + id,
			AuthorID: authorID,
		},
		State:               CourseStatePublished,
		Access:              CourseAccessPublic,
		RegistrationEnabled: true,
	}
}

func newTestActivity(id, authorID string, reuse Reuse) *Activity {
	return &Activity{
		Base: Base{
			ID:       id,
			Kind:     KindActivity,
			Name:     "Activity " + id,
			AuthorID: authorID,
		},
		Access: ActivityAccessPublic,
		Reuse:  reuse,
	}
}

func newTestResource(id, authorID string, reuse Reuse) *Resource {
	return &Resource{
		Base: Base{
			ID:       id,
			Kind:     KindResource,
			Name:     "Resource " + id,
			AuthorID: authorID,
		},
		Access: ResourceAccessPublic,
		Reuse:  reuse,
	}
}

func TestCourseRegister(t *testing.T) {
	author := "author"
	student := "student"

	tests := []struct {
		name    string
		setup   func() *Course
		student string
		wantErr error
	}{
		{
			name:    "ok",
			setup:   func() *Course { return newTestCourse("c1", author) },
			student: student,
		},
		{
			name: "registration disabled",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				c.RegistrationEnabled = false
				return c
			},
			student: student,
			wantErr: ErrRegistrationDisabled,
		},
		{
			name: "draft course",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				c.State = CourseStateDraft
				return c
			},
			student: student,
			wantErr: ErrRegistrationDisabled,
		},
		{
			name:    "author cannot register",
			setup:   func() *Course { return newTestCourse("c1", author) },
			student: author,
			wantErr: ErrAlreadyAuthor,
		},
		{
			name: "collaborator cannot register",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				if _, err := c.AddCollaborator("colab", RoleTeacher); err != nil {
					t.Fatalf("AddCollaborator() failed: %v", err)
				}
				return c
			},
			student: "colab",
			wantErr: ErrAlreadyCollaborator,
		},
		{
			name: "double registration",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				if _, err := c.Register(student); err != nil {
					t.Fatalf("Register() failed: %v", err)
				}
				return c
			},
			student: student,
			wantErr: ErrAlreadyStudent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.setup()
			reg, err := c.Register(tt.student)
			if err != tt.wantErr {
				t.Fatalf("Register() error = %v; want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reg.SelfRegistration {
				t.Errorf("Register() SelfRegistration = false; want true")
			}
			if !c.IsStudent(tt.student) {
				t.Errorf("IsStudent(%q) = false after Register()", tt.student)
			}
		})
	}
}

func TestCourseRegisterStudentBypassesGate(t *testing.T) {
	c := newTestCourse("c1", "author")
	c.RegistrationEnabled = false
	c.State = CourseStateDraft

	reg, err := c.RegisterStudent("student", true)
	if err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}
	if reg.SelfRegistration {
		t.Errorf("RegisterStudent() SelfRegistration = true; want false")
	}
	if !reg.Locked {
		t.Errorf("RegisterStudent() Locked = false; want true")
	}
}

func TestCourseUnsubscribe(t *testing.T) {
	author := "author"

	tests := []struct {
		name    string
		setup   func() *Course
		student string
		wantErr error
	}{
		{
			name: "ok",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				if _, err := c.Register("student"); err != nil {
					t.Fatalf("Register() failed: %v", err)
				}
				return c
			},
			student: "student",
		},
		{
			name: "locked registration",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				if _, err := c.RegisterStudent("student", true); err != nil {
					t.Fatalf("RegisterStudent() failed: %v", err)
				}
				return c
			},
			student: "student",
			wantErr: ErrRegistrationDisabled,
		},
		{
			name: "registration closed",
			setup: func() *Course {
				c := newTestCourse("c1", author)
				if _, err := c.Register("student"); err != nil {
					t.Fatalf("Register() failed: %v", err)
				}
				c.RegistrationEnabled = false
				return c
			},
			student: "student",
			wantErr: ErrRegistrationDisabled,
		},
		{
			name:    "not a student",
			setup:   func() *Course { return newTestCourse("c1", author) },
			student: "stranger",
			wantErr: ErrNotStudent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.setup()
			if err := c.Unsubscribe(tt.student); err != tt.wantErr {
				t.Fatalf("Unsubscribe() error = %v; want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && c.IsStudent(tt.student) {
				t.Errorf("IsStudent(%q) = true after Unsubscribe()", tt.student)
			}
		})
	}
}

func TestCourseUnsubscribeStudentBypassesLock(t *testing.T) {
	c := newTestCourse("c1", "author")
	c.RegistrationEnabled = false
	if _, err := c.RegisterStudent("student", true); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}

	if err := c.UnsubscribeStudent("student"); err != nil {
		t.Fatalf("UnsubscribeStudent() failed: %v", err)
	}
	if c.IsStudent("student") {
		t.Errorf("IsStudent() = true after UnsubscribeStudent()")
	}
	if err := c.UnsubscribeStudent("student"); err != ErrNotStudent {
		t.Errorf("UnsubscribeStudent() error = %v; want %v", err, ErrNotStudent)
	}
}

func TestCourseAddCollaboratorStudentExclusivity(t *testing.T) {
	c := newTestCourse("c1", "author")
	if _, err := c.Register("student"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := c.AddCollaborator("student", RoleTeacher); err != ErrAlreadyStudent {
		t.Errorf("AddCollaborator() error = %v; want %v", err, ErrAlreadyStudent)
	}
}

func assertRanks(t *testing.T, c *Course, wantIDs ...string) {
	t.Helper()
	if len(c.Activities) != len(wantIDs) {
		t.Fatalf("got %d linked activities; want %d", len(c.Activities), len(wantIDs))
	}
	for i, link := range c.Activities {
		if link.Rank != i+1 {
			t.Errorf("rank at index %d = %d; want %d", i, link.Rank, i+1)
		}
		if link.Activity.ID != wantIDs[i] {
			t.Errorf("activity at rank %d = %q; want %q", i+1, link.Activity.ID, wantIDs[i])
		}
	}
}

func TestCourseAddActivity(t *testing.T) {
	author := "author"
	c := newTestCourse("c1", author)

	for _, id := range []string{"a1", "a2", "a3"} {
		if err := c.AddActivity(newTestActivity(id, author, ReuseNoRestriction)); err != nil {
			t.Fatalf("AddActivity(%q) failed: %v", id, err)
		}
	}
	assertRanks(t, c, "a1", "a2", "a3")

	if err := c.AddActivity(newTestActivity("a1", author, ReuseNoRestriction)); err != ErrAlreadyLinked {
		t.Errorf("AddActivity() error = %v; want %v", err, ErrAlreadyLinked)
	}
	if err := c.AddActivity(newTestActivity("a4", author, ReuseNonReusable)); err != ErrNotReusable {
		t.Errorf("AddActivity() error = %v; want %v", err, ErrNotReusable)
	}

	c.State = CourseStateArchived
	if err := c.AddActivity(newTestActivity("a5", author, ReuseNoRestriction)); err != ErrReadOnly {
		t.Errorf("AddActivity() on archived course error = %v; want %v", err, ErrReadOnly)
	}
	if err := c.RemoveActivity("a1"); err != ErrReadOnly {
		t.Errorf("RemoveActivity() on archived course error = %v; want %v", err, ErrReadOnly)
	}
}

func TestCourseRemoveActivityClosesGaps(t *testing.T) {
	author := "author"
	c := newTestCourse("c1", author)
	for _, id := range []string{"a1", "a2", "a3"} {
		if err := c.AddActivity(newTestActivity(id, author, ReuseNoRestriction)); err != nil {
			t.Fatalf("AddActivity(%q) failed: %v", id, err)
		}
	}

	if err := c.RemoveActivity("a2"); err != nil {
		t.Fatalf("RemoveActivity() failed: %v", err)
	}
	assertRanks(t, c, "a1", "a3")

	if err := c.RemoveActivity("a2"); err != ErrNotLinked {
		t.Errorf("RemoveActivity() error = %v; want %v", err, ErrNotLinked)
	}
}

func TestCourseSetActivityRank(t *testing.T) {
	author := "author"

	setup := func(t *testing.T) *Course {
		c := newTestCourse("c1", author)
		for _, id := range []string{"a1", "a2", "a3", "a4"} {
			if err := c.AddActivity(newTestActivity(id, author, ReuseNoRestriction)); err != nil {
				t.Fatalf("AddActivity(%q) failed: %v", id, err)
			}
		}
		return c
	}

	tests := []struct {
		name     string
		activity string
		rank     int
		want     []string
		wantErr  error
	}{
		{name: "move down", activity: "a1", rank: 3, want: []string{"a2", "a3", "a1", "a4"}},
		{name: "move up", activity: "a4", rank: 2, want: []string{"a1", "a4", "a2", "a3"}},
		{name: "same rank", activity: "a2", rank: 2, want: []string{"a1", "a2", "a3", "a4"}},
		{name: "clamped low", activity: "a3", rank: -5, want: []string{"a3", "a1", "a2", "a4"}},
		{name: "clamped high", activity: "a1", rank: 99, want: []string{"a2", "a3", "a4", "a1"}},
		{name: "not linked", activity: "nope", rank: 1, wantErr: ErrNotLinked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setup(t)
			if err := c.SetActivityRank(tt.activity, tt.rank); err != tt.wantErr {
				t.Fatalf("SetActivityRank() error = %v; want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				assertRanks(t, c, tt.want...)
			}
		})
	}
}

func TestCourseReorderActivitiesHealsRanks(t *testing.T) {
	c := newTestCourse("c1", "author")
	c.Activities = []CourseActivity{
		{Rank: 7, Activity: newTestActivity("a1", "author", ReuseNoRestriction)},
		{Rank: 2, Activity: newTestActivity("a2", "author", ReuseNoRestriction)},
		{Rank: 7, Activity: newTestActivity("a3", "author", ReuseNoRestriction)},
	}

	c.ReorderActivities()
	assertRanks(t, c, "a2", "a1", "a3")

	// idempotent
	c.ReorderActivities()
	assertRanks(t, c, "a2", "a1", "a3")
}
