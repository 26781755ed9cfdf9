package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func newBase(kind learning.Kind, authorID, name string) learning.Base {
	now := time.Now().UTC()
	return learning.Base{
		Kind:      kind,
		Name:      name,
		Language:  "en",
		Slug:      core.Slugify(name),
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func CreateCourse(
	t *testing.T,
	repo learning.CourseRepository,
	authorID, name string,
	state learning.CourseState,
	access learning.CourseAccess,
) learning.Course {
	t.Helper()
	course := learning.Course{
		Base:   newBase(learning.KindCourse, authorID, name),
		State:  state,
		Access: access,
	}
	course, err := repo.CreateCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func CreateActivity(
	t *testing.T,
	repo learning.ActivityRepository,
	authorID, name string,
	access learning.ActivityAccess,
	reuse learning.Reuse,
) learning.Activity {
	t.Helper()
	act := learning.Activity{
		Base:   newBase(learning.KindActivity, authorID, name),
		Access: access,
		Reuse:  reuse,
	}
	act, err := repo.CreateActivity(context.Background(), act)
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}
	return act
}

func CreateResource(
	t *testing.T,
	repo learning.ResourceRepository,
	authorID, name string,
	access learning.ResourceAccess,
	reuse learning.Reuse,
) learning.Resource {
	t.Helper()
	res := learning.Resource{
		Base:   newBase(learning.KindResource, authorID, name),
		Access: access,
		Reuse:  reuse,
	}
	res, err := repo.CreateResource(context.Background(), res)
	if err != nil {
		t.Fatalf("CreateResource() failed: %v", err)
	}
	return res
}

func CreateObjective(
	t *testing.T,
	repo learning.ObjectiveRepository,
	authorID, ability string,
) learning.Objective {
	t.Helper()
	now := time.Now().UTC()
	obj := learning.Objective{
		Ability:   ability,
		Language:  "en",
		Slug:      core.Slugify(ability),
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	obj, err := repo.CreateObjective(context.Background(), obj)
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	return obj
}
