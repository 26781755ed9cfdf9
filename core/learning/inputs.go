package learning

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// NewCourse contains the information needed to create a Course.
type NewCourse struct {
	Name                string       `json:"name" validate:"required,max=255"`
	Description         string       `json:"description"`
	Language            string       `json:"language" validate:"omitempty,max=10"`
	Tags                []string     `json:"tags"`
	State               CourseState  `json:"state"`
	Access              CourseAccess `json:"access"`
	RegistrationEnabled bool         `json:"registration_enabled"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Language = core.CleanString(nc.Language, true /* lower */)
	cleanTags(nc.Tags)
	return validate.Struct(nc)
}

// UpdateCourse defines what may be modified on an existing Course; nil
// fields are left unchanged.
type UpdateCourse struct {
	Name                *string       `json:"name"`
	Description         *string       `json:"description"`
	Language            *string       `json:"language"`
	Tags                []string      `json:"tags"`
	State               *CourseState  `json:"state"`
	Access              *CourseAccess `json:"access"`
	RegistrationEnabled *bool         `json:"registration_enabled"`
}

// Apply merges the update into course; the merged aggregate still has to be
// validated before persisting.
func (uc *UpdateCourse) Apply(course *Course) {
	if uc.Name != nil {
		course.Name = core.CleanString(*uc.Name)
	}
	if uc.Description != nil {
		course.Description = *uc.Description
	}
	if uc.Language != nil {
		course.Language = core.CleanString(*uc.Language, true /* lower */)
	}
	if uc.Tags != nil {
		cleanTags(uc.Tags)
		course.Tags = uc.Tags
	}
	if uc.State != nil {
		course.State = *uc.State
	}
	if uc.Access != nil {
		course.Access = *uc.Access
	}
	if uc.RegistrationEnabled != nil {
		course.RegistrationEnabled = *uc.RegistrationEnabled
	}
}

type NewActivity struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description"`
	Language    string         `json:"language" validate:"omitempty,max=10"`
	Tags        []string       `json:"tags"`
	Access      ActivityAccess `json:"access"`
	Reuse       Reuse          `json:"reuse"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Language = core.CleanString(na.Language, true /* lower */)
	cleanTags(na.Tags)
	return validate.Struct(na)
}

type UpdateActivity struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Language    *string         `json:"language"`
	Tags        []string        `json:"tags"`
	Access      *ActivityAccess `json:"access"`
	Reuse       *Reuse          `json:"reuse"`
}

func (ua *UpdateActivity) Apply(act *Activity) {
	if ua.Name != nil {
		act.Name = core.CleanString(*ua.Name)
	}
	if ua.Description != nil {
		act.Description = *ua.Description
	}
	if ua.Language != nil {
		act.Language = core.CleanString(*ua.Language, true /* lower */)
	}
	if ua.Tags != nil {
		cleanTags(ua.Tags)
		act.Tags = ua.Tags
	}
	if ua.Access != nil {
		act.Access = *ua.Access
	}
	if ua.Reuse != nil {
		act.Reuse = *ua.Reuse
	}
}

type NewResource struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description"`
	Language    string         `json:"language" validate:"omitempty,max=10"`
	Tags        []string       `json:"tags"`
	Type        ResourceType   `json:"type"`
	Duration    Duration       `json:"duration"`
	Licence     Licence        `json:"licence"`
	Access      ResourceAccess `json:"access"`
	Reuse       Reuse          `json:"reuse"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Language = core.CleanString(nr.Language, true /* lower */)
	cleanTags(nr.Tags)
	return validate.Struct(nr)
}

type UpdateResource struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Language    *string         `json:"language"`
	Tags        []string        `json:"tags"`
	Type        *ResourceType   `json:"type"`
	Duration    *Duration       `json:"duration"`
	Licence     *Licence        `json:"licence"`
	Access      *ResourceAccess `json:"access"`
	Reuse       *Reuse          `json:"reuse"`
}

func (ur *UpdateResource) Apply(res *Resource) {
	if ur.Name != nil {
		res.Name = core.CleanString(*ur.Name)
	}
	if ur.Description != nil {
		res.Description = *ur.Description
	}
	if ur.Language != nil {
		res.Language = core.CleanString(*ur.Language, true /* lower */)
	}
	if ur.Tags != nil {
		cleanTags(ur.Tags)
		res.Tags = ur.Tags
	}
	if ur.Type != nil {
		res.Type = *ur.Type
	}
	if ur.Duration != nil {
		res.Duration = *ur.Duration
	}
	if ur.Licence != nil {
		res.Licence = *ur.Licence
	}
	if ur.Access != nil {
		res.Access = *ur.Access
	}
	if ur.Reuse != nil {
		res.Reuse = *ur.Reuse
	}
}

type NewObjective struct {
	Ability  string `json:"ability" validate:"required,max=255"`
	Language string `json:"language" validate:"omitempty,max=10"`
}

func (no *NewObjective) Validate(validate *validator.Validate) error {
	no.Ability = core.CleanString(no.Ability)
	no.Language = core.CleanString(no.Language, true /* lower */)
	if no.Ability == "" {
		return core.NewValidationError(ErrObjectiveAbilityEmpty,
			core.FieldError{Field: "ability", Error: ErrObjectiveAbilityEmpty.Error()})
	}
	return validate.Struct(no)
}

// AttachObjective attaches an existing objective to an entity.
type AttachObjective struct {
	ObjectiveID   string        `json:"objective_id" validate:"required"`
	TaxonomyLevel TaxonomyLevel `json:"taxonomy_level"`
	Reusable      bool          `json:"objective_reusable"`
	NeedsTest     bool          `json:"needs_test"`
}

func (ao *AttachObjective) Validate(validate *validator.Validate) error {
	return validate.Struct(ao)
}

func cleanTags(tags []string) {
	for i, tag := range tags {
		tags[i] = core.CleanString(tag, true /* lower */)
	}
}
