package learning

import (
	"sort"
	"time"
)

// Course is the top-level container: ordered activities, registered students
// and a publication state.
type Course struct {
	Base
	State  CourseState  `json:"state"`
	Access CourseAccess `json:"access"`
	// RegistrationEnabled gates student self-registration; it may only be
	// enabled while the course is published.
	RegistrationEnabled bool `json:"registration_enabled"`

	Registrations []Registration   `json:"registrations,omitempty"`
	Activities    []CourseActivity `json:"activities,omitempty"`
}

// ReadOnly reports whether structural changes are forbidden.
func (c *Course) ReadOnly() bool { return c.State == CourseStateArchived }

// CanRegister reports whether students may self-register right now.
func (c *Course) CanRegister() bool {
	return c.RegistrationEnabled && c.State == CourseStatePublished
}

func (c *Course) Registration(studentID string) (*Registration, bool) {
	for i := range c.Registrations {
		if c.Registrations[i].StudentID == studentID {
			return &c.Registrations[i], true
		}
	}
	return nil, false
}

func (c *Course) IsStudent(studentID string) bool {
	_, ok := c.Registration(studentID)
	return ok
}

func (c *Course) StudentIDs() []string {
	ids := make([]string, 0, len(c.Registrations))
	for _, reg := range c.Registrations {
		ids = append(ids, reg.StudentID)
	}
	return ids
}

// AddCollaborator keeps the author/collaborator/student sets mutually
// exclusive before delegating to the shared behavior.
func (c *Course) AddCollaborator(userID string, role CollaboratorRole) (*Collaborator, error) {
	if c.IsStudent(userID) {
		return nil, ErrAlreadyStudent
	}
	return c.Base.AddCollaborator(userID, role)
}

func (c *Course) checkNewStudent(studentID string) error {
	if c.IsAuthor(studentID) {
		return ErrAlreadyAuthor
	}
	if c.IsCollaborator(studentID) {
		return ErrAlreadyCollaborator
	}
	if c.IsStudent(studentID) {
		return ErrAlreadyStudent
	}
	return nil
}

// Register self-registers studentID; only open on a published course with
// registration enabled.
func (c *Course) Register(studentID string) (*Registration, error) {
	if !c.CanRegister() {
		return nil, ErrRegistrationDisabled
	}
	if err := c.checkNewStudent(studentID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.Registrations = append(c.Registrations, Registration{
		StudentID:        studentID,
		SelfRegistration: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	return &c.Registrations[len(c.Registrations)-1], nil
}

// RegisterStudent is the teacher-initiated registration: it bypasses the
// self-registration gate but keeps the identity-exclusivity checks.
func (c *Course) RegisterStudent(studentID string, locked bool) (*Registration, error) {
	if err := c.checkNewStudent(studentID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.Registrations = append(c.Registrations, Registration{
		StudentID: studentID,
		Locked:    locked,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return &c.Registrations[len(c.Registrations)-1], nil
}

// Unsubscribe is the student's self-service exit; locked registrations and
// closed courses refuse it.
func (c *Course) Unsubscribe(studentID string) error {
	if !c.CanRegister() {
		return ErrRegistrationDisabled
	}
	reg, ok := c.Registration(studentID)
	if !ok {
		return ErrNotStudent
	}
	if reg.Locked {
		return ErrRegistrationDisabled
	}
	return c.removeRegistration(studentID)
}

// UnsubscribeStudent is the teacher-initiated removal; it bypasses the lock
// and registration gates.
func (c *Course) UnsubscribeStudent(studentID string) error {
	if !c.IsStudent(studentID) {
		return ErrNotStudent
	}
	return c.removeRegistration(studentID)
}

func (c *Course) removeRegistration(studentID string) error {
	for i := range c.Registrations {
		if c.Registrations[i].StudentID == studentID {
			c.Registrations = append(c.Registrations[:i], c.Registrations[i+1:]...)
			return nil
		}
	}
	return ErrNotStudent
}

func (c *Course) LinkedActivity(activityID string) (*CourseActivity, bool) {
	for i := range c.Activities {
		if c.Activities[i].Activity != nil && c.Activities[i].Activity.ID == activityID {
			return &c.Activities[i], true
		}
	}
	return nil, false
}

// AddActivity links act at the end of the course, after the read-only and
// reuse checks pass.
func (c *Course) AddActivity(act *Activity) error {
	if c.ReadOnly() {
		return ErrReadOnly
	}
	if _, ok := c.LinkedActivity(act.ID); ok {
		return ErrAlreadyLinked
	}
	if err := act.CanReuse(c); err != nil {
		return err
	}
	maxRank := 0
	for _, link := range c.Activities {
		if link.Rank > maxRank {
			maxRank = link.Rank
		}
	}
	c.Activities = append(c.Activities, CourseActivity{
		Rank:      maxRank + 1,
		Activity:  act,
		CreatedAt: time.Now().UTC(),
	})
	c.ReorderActivities()
	return nil
}

func (c *Course) RemoveActivity(activityID string) error {
	if c.ReadOnly() {
		return ErrReadOnly
	}
	for i := range c.Activities {
		if c.Activities[i].Activity != nil && c.Activities[i].Activity.ID == activityID {
			c.Activities = append(c.Activities[:i], c.Activities[i+1:]...)
			c.ReorderActivities()
			return nil
		}
	}
	return ErrNotLinked
}

// SetActivityRank moves the linked activity to rank (1-based, clamped) and
// renumbers the rest.
func (c *Course) SetActivityRank(activityID string, rank int) error {
	if c.ReadOnly() {
		return ErrReadOnly
	}
	link, ok := c.LinkedActivity(activityID)
	if !ok {
		return ErrNotLinked
	}
	if rank < 1 {
		rank = 1
	}
	if rank > len(c.Activities) {
		rank = len(c.Activities)
	}
	cur := link.Rank
	if rank == cur {
		return nil
	}
	for i := range c.Activities {
		other := &c.Activities[i]
		switch {
		case other.Activity != nil && other.Activity.ID == activityID:
			other.Rank = rank
		case rank < cur && other.Rank >= rank && other.Rank < cur:
			other.Rank++
		case rank > cur && other.Rank > cur && other.Rank <= rank:
			other.Rank--
		}
	}
	c.ReorderActivities()
	return nil
}

// ReorderActivities rewrites ranks to the contiguous sequence 1..N in the
// current relative order. It is idempotent and self-healing: it runs after
// every structural change so gaps or duplicates never persist.
func (c *Course) ReorderActivities() {
	sort.SliceStable(c.Activities, func(i, j int) bool {
		return c.Activities[i].Rank < c.Activities[j].Rank
	})
	for i := range c.Activities {
		c.Activities[i].Rank = i + 1
	}
}
