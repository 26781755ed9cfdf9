package learning

import (
	"time"
)

// Kind tags the closed set of content kinds.
type Kind int

const (
	KindCourse Kind = iota
	KindActivity
	KindResource
)

var kindNames = map[Kind][2]string{
	KindCourse:   {"course", "Course"},
	KindActivity: {"activity", "Activity"},
	KindResource: {"resource", "Resource"},
}

func (k Kind) Valid() bool    { _, ok := kindNames[k]; return ok }
func (k Kind) String() string { return enumString(kindNames[k][0], int(k)) }
func (k Kind) Label() string  { return kindNames[k][1] }
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *Kind) UnmarshalText(text []byte) error {
	for v, names := range kindNames {
		if names[0] == string(text) {
			*k = v
			return nil
		}
	}
	return ErrNotFound
}

// Collaborator is a non-author user granted a role-scoped permission subset
// on an entity.
type Collaborator struct {
	UserID    string           `json:"user_id"`
	Role      CollaboratorRole `json:"role"`
	CreatedAt time.Time        `json:"created_at"` // UTC
	UpdatedAt time.Time        `json:"updated_at"` // UTC
}

// Registration is a (course, student) membership record.
type Registration struct {
	StudentID string `json:"student_id"`
	// SelfRegistration records whether the student registered themselves
	// rather than being added by a teacher.
	SelfRegistration bool `json:"self_registration"`
	// Locked students may not self-unregister.
	Locked    bool      `json:"registration_locked"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// CourseActivity links an activity into a course with a 1-based rank,
// contiguous and gapless after every structural change.
type CourseActivity struct {
	Rank      int       `json:"rank"`
	Activity  *Activity `json:"activity"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Base carries the state and behavior shared by the three content kinds.
type Base struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	Slug        string   `json:"slug"`
	AuthorID    string   `json:"author_id"`

	Collaborators []Collaborator     `json:"collaborators,omitempty"`
	Objectives    []*EntityObjective `json:"objectives,omitempty"`
	FavouriteFor  []string           `json:"-"` // user IDs

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (b *Base) IsAuthor(userID string) bool { return userID != "" && b.AuthorID == userID }

func (b *Base) Collaborator(userID string) (*Collaborator, bool) {
	for i := range b.Collaborators {
		if b.Collaborators[i].UserID == userID {
			return &b.Collaborators[i], true
		}
	}
	return nil, false
}

func (b *Base) IsCollaborator(userID string) bool {
	_, ok := b.Collaborator(userID)
	return ok
}

// AddCollaborator records userID as a collaborator with the given role.
// The author can never also collaborate on their own entity.
func (b *Base) AddCollaborator(userID string, role CollaboratorRole) (*Collaborator, error) {
	if b.IsAuthor(userID) {
		return nil, ErrAlreadyAuthor
	}
	if b.IsCollaborator(userID) {
		return nil, ErrAlreadyCollaborator
	}
	now := time.Now().UTC()
	b.Collaborators = append(b.Collaborators, Collaborator{
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return &b.Collaborators[len(b.Collaborators)-1], nil
}

func (b *Base) RemoveCollaborator(userID string) error {
	for i := range b.Collaborators {
		if b.Collaborators[i].UserID == userID {
			b.Collaborators = append(b.Collaborators[:i], b.Collaborators[i+1:]...)
			return nil
		}
	}
	return ErrNotCollaborator
}

func (b *Base) ChangeCollaboratorRole(userID string, role CollaboratorRole) error {
	col, ok := b.Collaborator(userID)
	if !ok {
		return ErrNotCollaborator
	}
	col.Role = role
	col.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Base) IsFavouriteFor(userID string) bool {
	for _, id := range b.FavouriteFor {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleFavourite flips the favourite mark for userID and reports the new state.
func (b *Base) ToggleFavourite(userID string) bool {
	for i, id := range b.FavouriteFor {
		if id == userID {
			b.FavouriteFor = append(b.FavouriteFor[:i], b.FavouriteFor[i+1:]...)
			return false
		}
	}
	b.FavouriteFor = append(b.FavouriteFor, userID)
	return true
}

func (b *Base) ObjectiveAttachment(objectiveID string) (*EntityObjective, bool) {
	for _, eo := range b.Objectives {
		if eo.ObjectiveID == objectiveID {
			return eo, true
		}
	}
	return nil, false
}

// AddObjective attaches obj to the entity. When reusable, the new attachment
// is seeded with every student who already validated the global objective so
// earlier achievements keep counting on the new attachment.
func (b *Base) AddObjective(obj *Objective, level TaxonomyLevel, reusable bool) (*EntityObjective, error) {
	if _, ok := b.ObjectiveAttachment(obj.ID); ok {
		return nil, ErrAlreadyInModel
	}
	now := time.Now().UTC()
	eo := &EntityObjective{
		EntityKind:    b.Kind,
		EntityID:      b.ID,
		EntityName:    b.Name,
		ObjectiveID:   obj.ID,
		Objective:     obj,
		TaxonomyLevel: level,
		Reusable:      reusable,
		CreatedAt:     now,
	}
	if reusable {
		for _, v := range obj.Validators {
			eo.Validators = append(eo.Validators, ValidationRecord{
				StudentID: v.StudentID,
				Slug:      validationSlug(obj.Ability, v.StudentID, b.Name),
				CreatedAt: now,
			})
		}
	}
	b.Objectives = append(b.Objectives, eo)
	return eo, nil
}

func (b *Base) RemoveObjective(objectiveID string) error {
	for i, eo := range b.Objectives {
		if eo.ObjectiveID == objectiveID {
			b.Objectives = append(b.Objectives[:i], b.Objectives[i+1:]...)
			return nil
		}
	}
	return ErrNotInModel
}
