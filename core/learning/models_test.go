package learning

import "testing"

func TestCollaborators(t *testing.T) {
	c := newTestCourse("c1", "author")

	if _, err := c.AddCollaborator("author", RoleTeacher); err != ErrAlreadyAuthor {
		t.Errorf("AddCollaborator(author) error = %v; want %v", err, ErrAlreadyAuthor)
	}

	col, err := c.AddCollaborator("u1", RoleNonEditorTeacher)
	if err != nil {
		t.Fatalf("AddCollaborator() failed: %v", err)
	}
	if col.Role != RoleNonEditorTeacher {
		t.Errorf("collaborator role = %v; want %v", col.Role, RoleNonEditorTeacher)
	}
	if _, err = c.AddCollaborator("u1", RoleTeacher); err != ErrAlreadyCollaborator {
		t.Errorf("AddCollaborator() error = %v; want %v", err, ErrAlreadyCollaborator)
	}

	if err = c.ChangeCollaboratorRole("u1", RoleTeacher); err != nil {
		t.Fatalf("ChangeCollaboratorRole() failed: %v", err)
	}
	col, ok := c.Collaborator("u1")
	if !ok || col.Role != RoleTeacher {
		t.Errorf("collaborator role after change = %v; want %v", col.Role, RoleTeacher)
	}
	if err = c.ChangeCollaboratorRole("u2", RoleTeacher); err != ErrNotCollaborator {
		t.Errorf("ChangeCollaboratorRole() error = %v; want %v", err, ErrNotCollaborator)
	}

	if err = c.RemoveCollaborator("u1"); err != nil {
		t.Fatalf("RemoveCollaborator() failed: %v", err)
	}
	if err = c.RemoveCollaborator("u1"); err != ErrNotCollaborator {
		t.Errorf("RemoveCollaborator() error = %v; want %v", err, ErrNotCollaborator)
	}
}

func TestToggleFavourite(t *testing.T) {
	a := newTestActivity("a1", "author", ReuseNoRestriction)

	if fav := a.ToggleFavourite("u1"); !fav {
		t.Errorf("first toggle = false; want true")
	}
	if !a.IsFavouriteFor("u1") {
		t.Errorf("IsFavouriteFor() = false after toggle on")
	}
	if fav := a.ToggleFavourite("u1"); fav {
		t.Errorf("second toggle = true; want false")
	}
	if a.IsFavouriteFor("u1") {
		t.Errorf("IsFavouriteFor() = true after toggle off")
	}
}
