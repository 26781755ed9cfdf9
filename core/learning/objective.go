package learning

import (
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
)

// Objective is a global, author-owned ability statement, unique by ability
// text. Its direct validator set is independent of any entity attachment.
type Objective struct {
	ID        string             `json:"id"`
	Ability   string             `json:"ability"`
	Language  string             `json:"language"`
	Slug      string             `json:"slug"`
	AuthorID  string             `json:"author_id"`
	Validators []ValidationRecord `json:"validators,omitempty"`
	CreatedAt time.Time          `json:"created_at"` // UTC
	UpdatedAt time.Time          `json:"updated_at"` // UTC
}

// ValidationRecord records one student's validation event.
type ValidationRecord struct {
	StudentID string    `json:"student_id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (o *Objective) Validated(studentID string) bool {
	for _, v := range o.Validators {
		if v.StudentID == studentID {
			return true
		}
	}
	return false
}

func (o *Objective) AddValidator(studentID string) error {
	if o.Validated(studentID) {
		return ErrAlreadyValidated
	}
	o.Validators = append(o.Validators, ValidationRecord{
		StudentID: studentID,
		Slug:      validationSlug(o.Ability, studentID, ""),
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (o *Objective) RemoveValidator(studentID string) error {
	for i, v := range o.Validators {
		if v.StudentID == studentID {
			o.Validators = append(o.Validators[:i], o.Validators[i+1:]...)
			return nil
		}
	}
	return ErrNotValidated
}

// EntityObjective attaches one Objective to one entity with a taxonomy level
// and its own validator set, distinct from the objective's global one.
type EntityObjective struct {
	ID            string        `json:"id"`
	EntityKind    Kind          `json:"entity_kind"`
	EntityID      string        `json:"entity_id"`
	EntityName    string        `json:"entity_name"`
	ObjectiveID   string        `json:"objective_id"`
	Objective     *Objective    `json:"objective,omitempty"`
	TaxonomyLevel TaxonomyLevel `json:"taxonomy_level"`
	// Reusable attachments take part in validation propagation; non-reusable
	// ones are only ever toggled directly.
	Reusable bool `json:"objective_reusable"`
	// NeedsTest marks attachments whose validation should go through a test.
	NeedsTest  bool               `json:"needs_test"`
	Validators []ValidationRecord `json:"validators,omitempty"`
	CreatedAt  time.Time          `json:"created_at"` // UTC
}

func (eo *EntityObjective) Validated(studentID string) bool {
	for _, v := range eo.Validators {
		if v.StudentID == studentID {
			return true
		}
	}
	return false
}

func (eo *EntityObjective) addValidator(studentID, ability string) error {
	if eo.Validated(studentID) {
		return ErrAlreadyValidated
	}
	eo.Validators = append(eo.Validators, ValidationRecord{
		StudentID: studentID,
		Slug:      validationSlug(ability, studentID, eo.EntityName),
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (eo *EntityObjective) removeValidator(studentID string) error {
	for i, v := range eo.Validators {
		if v.StudentID == studentID {
			eo.Validators = append(eo.Validators[:i], eo.Validators[i+1:]...)
			return nil
		}
	}
	return ErrNotValidated
}

// ValidationChange is the full set of records touched by one validation
// toggle; the repository applies it in a single transaction.
type ValidationChange struct {
	Add       bool
	StudentID string
	// Objective is set when the toggle propagated to the global objective.
	Objective *Objective
	// Attachments holds every entity objective whose validator set changed,
	// the toggled one included.
	Attachments []*EntityObjective
}

// ChangeValidation toggles studentID on eo: add when absent, remove when
// present. When eo is reusable, the same direction is mirrored on the global
// objective and on every reusable sibling in siblings; mirrored updates are
// guarded (skipped when already in the target state) so propagation stays
// idempotent. Non-reusable siblings are never touched.
func (eo *EntityObjective) ChangeValidation(studentID string, obj *Objective, siblings []*EntityObjective) (*ValidationChange, error) {
	change := &ValidationChange{StudentID: studentID}

	if eo.Validated(studentID) {
		if err := eo.removeValidator(studentID); err != nil {
			return nil, err
		}
	} else {
		change.Add = true
		if err := eo.addValidator(studentID, obj.Ability); err != nil {
			return nil, err
		}
	}
	change.Attachments = append(change.Attachments, eo)

	if !eo.Reusable {
		return change, nil
	}

	if change.Add {
		if !obj.Validated(studentID) {
			if err := obj.AddValidator(studentID); err != nil {
				return nil, err
			}
			change.Objective = obj
		}
	} else {
		if obj.Validated(studentID) {
			if err := obj.RemoveValidator(studentID); err != nil {
				return nil, err
			}
			change.Objective = obj
		}
	}

	for _, sib := range siblings {
		if sib.ID == eo.ID || !sib.Reusable || sib.ObjectiveID != eo.ObjectiveID {
			continue
		}
		if change.Add {
			if sib.Validated(studentID) {
				continue
			}
			if err := sib.addValidator(studentID, obj.Ability); err != nil {
				return nil, err
			}
		} else {
			if !sib.Validated(studentID) {
				continue
			}
			if err := sib.removeValidator(studentID); err != nil {
				return nil, err
			}
		}
		change.Attachments = append(change.Attachments, sib)
	}
	return change, nil
}

func validationSlug(ability, studentID, entityName string) string {
	if entityName == "" {
		return core.Slugify(fmt.Sprintf("%s-%s", ability, studentID))
	}
	return core.Slugify(fmt.Sprintf("%s-%s-%s", ability, studentID, entityName))
}
