package learning

import "testing"

func TestActivityCanReuse(t *testing.T) {
	author := "author"
	other := "other"

	tests := []struct {
		name    string
		reuse   Reuse
		target  *Course
		wantErr error
	}{
		{name: "no restriction", reuse: ReuseNoRestriction, target: newTestCourse("c1", other)},
		{name: "author only, same author", reuse: ReuseOnlyAuthor, target: newTestCourse("c1", author)},
		{name: "author only, other author", reuse: ReuseOnlyAuthor, target: newTestCourse("c1", other), wantErr: ErrNotReusableByAuthorOnly},
		{name: "author only, no target", reuse: ReuseOnlyAuthor, wantErr: errReuseTargetRequired},
		{name: "non reusable", reuse: ReuseNonReusable, target: newTestCourse("c1", author), wantErr: ErrNotReusable},
		{name: "non reusable, no target", reuse: ReuseNonReusable, wantErr: ErrNotReusable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := newTestActivity("a1", author, tt.reuse)
			if err := act.CanReuse(tt.target); err != tt.wantErr {
				t.Errorf("CanReuse() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResourceCanReuse(t *testing.T) {
	author := "author"

	res := newTestResource("r1", author, ReuseOnlyAuthor)
	if err := res.CanReuse(newTestActivity("a1", author, ReuseNoRestriction)); err != nil {
		t.Errorf("CanReuse() same author error = %v; want nil", err)
	}
	if err := res.CanReuse(newTestActivity("a2", "other", ReuseNoRestriction)); err != ErrNotReusableByAuthorOnly {
		t.Errorf("CanReuse() other author error = %v; want %v", err, ErrNotReusableByAuthorOnly)
	}
}

func TestActivityAddResource(t *testing.T) {
	author := "author"
	act := newTestActivity("a1", author, ReuseNoRestriction)

	if err := act.AddResource(newTestResource("r1", author, ReuseNoRestriction)); err != nil {
		t.Fatalf("AddResource() failed: %v", err)
	}
	if err := act.AddResource(newTestResource("r1", author, ReuseNoRestriction)); err != ErrAlreadyLinked {
		t.Errorf("AddResource() error = %v; want %v", err, ErrAlreadyLinked)
	}
	if err := act.AddResource(newTestResource("r2", "other", ReuseNonReusable)); err != ErrNotReusable {
		t.Errorf("AddResource() error = %v; want %v", err, ErrNotReusable)
	}

	if err := act.RemoveResource("r1"); err != nil {
		t.Fatalf("RemoveResource() failed: %v", err)
	}
	if err := act.RemoveResource("r1"); err != ErrNotLinked {
		t.Errorf("RemoveResource() error = %v; want %v", err, ErrNotLinked)
	}
}
