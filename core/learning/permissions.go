package learning

import "sort"

type Permission string

const (
	PermView          Permission = "view"
	PermViewHidden    Permission = "view_hidden"
	PermViewSimilar   Permission = "view_similar"
	PermAdd           Permission = "add"
	PermChange        Permission = "change"
	PermDelete        Permission = "delete"
	PermChangePrivacy Permission = "change_privacy"

	PermViewStudents  Permission = "view_students"
	PermAddStudent    Permission = "add_student"
	PermChangeStudent Permission = "change_student"
	PermDeleteStudent Permission = "delete_student"

	PermViewCollaborators  Permission = "view_collaborators"
	PermAddCollaborator    Permission = "add_collaborator"
	PermChangeCollaborator Permission = "change_collaborator"
	PermDeleteCollaborator Permission = "delete_collaborator"

	PermAddObjective    Permission = "add_objective"
	PermViewObjective   Permission = "view_objective"
	PermDeleteObjective Permission = "delete_objective"
	PermChangeObjective Permission = "change_objective"

	PermViewUsage               Permission = "view_usage"
	PermToggleImportantQuestion Permission = "toggle_important_question"
)

type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	set.add(perms...)
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

func (s PermissionSet) add(perms ...Permission) {
	for _, p := range perms {
		s[p] = struct{}{}
	}
}

func (s PermissionSet) union(other []Permission) {
	s.add(other...)
}

// Slice returns the permissions sorted, for stable JSON output.
func (s PermissionSet) Slice() []Permission {
	perms := make([]Permission, 0, len(s))
	for p := range s {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// RolePermissions is the static role -> permissions table for collaborators.
var RolePermissions = map[CollaboratorRole][]Permission{
	RoleOwner: {
		PermView, PermViewHidden, PermViewSimilar, PermAdd, PermChange, PermDelete,
		PermChangePrivacy,
		PermViewStudents, PermAddStudent, PermChangeStudent, PermDeleteStudent,
		PermViewCollaborators, PermAddCollaborator, PermChangeCollaborator, PermDeleteCollaborator,
		PermAddObjective, PermViewObjective, PermDeleteObjective, PermChangeObjective,
	},
	RoleTeacher: {
		PermView, PermViewHidden, PermViewSimilar, PermAdd, PermChange,
		PermViewCollaborators, PermViewStudents, PermAddStudent, PermChangeStudent, PermDeleteStudent,
		PermAddObjective, PermViewObjective, PermDeleteObjective, PermChangeObjective,
	},
	RoleNonEditorTeacher: {
		PermView, PermViewHidden, PermViewSimilar, PermViewCollaborators, PermViewStudents, PermViewObjective,
	},
}

// StudentPermissions are granted implicitly to registered students.
var StudentPermissions = []Permission{PermView, PermViewSimilar}

// authorPermissions are granted to the author of any entity.
var authorPermissions = []Permission{
	PermView, PermDelete, PermAdd, PermChange, PermViewSimilar,
	PermAddCollaborator, PermDeleteCollaborator, PermChangeCollaborator, PermViewCollaborators,
	PermAddObjective, PermViewObjective, PermDeleteObjective, PermChangeObjective,
}

// Permissions computes the effective capability set for userID on the course.
// Rules are cumulative: a later rule can only widen the set. Absence of any
// matching rule yields the empty set.
func (c *Course) Permissions(userID string) PermissionSet {
	perms := NewPermissionSet()
	if c.IsAuthor(userID) {
		perms.union(authorPermissions)
		perms.union(RolePermissions[RoleOwner])
	}
	if c.Access == CourseAccessPublic {
		perms.add(PermView)
	}
	if c.IsStudent(userID) && c.Access <= CourseAccessStudentsOnly {
		perms.union(StudentPermissions)
	}
	if col, ok := c.Collaborator(userID); ok && c.Access <= CourseAccessCollaboratorsOnly {
		perms.union(RolePermissions[col.Role])
	}
	return perms
}

// Permissions computes the effective capability set for userID on the
// activity. With ExistingCourses access, view is granted when the user can
// view any course containing the activity; a.Courses must be hydrated with
// the containers for that rule to apply.
func (a *Activity) Permissions(userID string) PermissionSet {
	perms := NewPermissionSet()
	if a.IsAuthor(userID) {
		perms.union(authorPermissions)
		perms.add(PermViewUsage, PermToggleImportantQuestion)
	}
	switch a.Access {
	case ActivityAccessPublic:
		perms.add(PermView)
	case ActivityAccessExistingCourses:
		for _, course := range a.Courses {
			if course.Permissions(userID).Has(PermView) {
				perms.add(PermView)
				break
			}
		}
	}
	if col, ok := a.Collaborator(userID); ok && a.Access <= ActivityAccessCollaboratorsOnly {
		perms.union(RolePermissions[col.Role])
	}
	return perms
}

// Permissions computes the effective capability set for userID on the
// resource; symmetric to Activity.Permissions via containing activities.
func (r *Resource) Permissions(userID string) PermissionSet {
	perms := NewPermissionSet()
	if r.IsAuthor(userID) {
		perms.union(authorPermissions)
		perms.add(PermViewUsage, PermToggleImportantQuestion)
	}
	switch r.Access {
	case ResourceAccessPublic:
		perms.add(PermView)
	case ResourceAccessExistingActivities:
		for _, act := range r.Activities {
			if act.Permissions(userID).Has(PermView) {
				perms.add(PermView)
				break
			}
		}
	}
	if col, ok := r.Collaborator(userID); ok && r.Access <= ResourceAccessCollaboratorsOnly {
		perms.union(RolePermissions[col.Role])
	}
	return perms
}
