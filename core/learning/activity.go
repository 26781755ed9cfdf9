package learning

// Activity aggregates resources and is linked into courses in order.
type Activity struct {
	Base
	Access ActivityAccess `json:"access"`
	Reuse  Reuse          `json:"reuse"`

	// Resources are the linked children (unordered many-to-many).
	Resources []*Resource `json:"resources,omitempty"`
	// Courses holds the hydrated containers, used by the ExistingCourses
	// access rule; not always loaded.
	Courses []*Course `json:"-"`
}

func (a *Activity) LinkedResource(resourceID string) (*Resource, bool) {
	for _, res := range a.Resources {
		if res.ID == resourceID {
			return res, true
		}
	}
	return nil, false
}

// AddResource links res into the activity after the reuse check passes.
func (a *Activity) AddResource(res *Resource) error {
	if _, ok := a.LinkedResource(res.ID); ok {
		return ErrAlreadyLinked
	}
	if err := res.CanReuse(a); err != nil {
		return err
	}
	a.Resources = append(a.Resources, res)
	return nil
}

func (a *Activity) RemoveResource(resourceID string) error {
	for i, res := range a.Resources {
		if res.ID == resourceID {
			a.Resources = append(a.Resources[:i], a.Resources[i+1:]...)
			return nil
		}
	}
	return ErrNotLinked
}
