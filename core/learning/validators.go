package learning

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	enumTag  = "enum"
	enumText = "invalid value"

	registrationStateTag  = "registration_requires_published"
	registrationStateText = "registration can only be enabled on a published course"

	publishedAccessTag  = "published_access_conflict"
	publishedAccessText = "a published course cannot be restricted to collaborators or stricter"

	privateReuseTag  = "private_reuse_conflict"
	privateReuseText = "a private entity cannot be freely reusable"

	licenceReuseTag  = "licence_reuse_conflict"
	licenceReuseText = "this licence does not allow unrestricted reuse"

	taxonomyTag  = "taxonomy_level"
	taxonomyText = "invalid taxonomy level"
)

// InitValidators registers this package's struct-level invariants on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(courseStructValidation, Course{}, NewCourse{})
	validate.RegisterStructValidation(activityStructValidation, Activity{}, NewActivity{})
	validate.RegisterStructValidation(resourceStructValidation, Resource{}, NewResource{})
	validate.RegisterStructValidation(attachObjectiveStructValidation, AttachObjective{})

	core.RegisterCustomTranslation(validate, translator, enumTag, enumText)
	core.RegisterCustomTranslation(validate, translator, registrationStateTag, registrationStateText)
	core.RegisterCustomTranslation(validate, translator, publishedAccessTag, publishedAccessText)
	core.RegisterCustomTranslation(validate, translator, privateReuseTag, privateReuseText)
	core.RegisterCustomTranslation(validate, translator, licenceReuseTag, licenceReuseText)
	core.RegisterCustomTranslation(validate, translator, taxonomyTag, taxonomyText)
}

func courseStructValidation(sl validator.StructLevel) {
	var (
		state      CourseState
		access     CourseAccess
		regEnabled bool
	)
	switch c := sl.Current().Interface().(type) {
	case Course:
		state, access, regEnabled = c.State, c.Access, c.RegistrationEnabled
	case NewCourse:
		state, access, regEnabled = c.State, c.Access, c.RegistrationEnabled
	default:
		return
	}

	if !state.Valid() {
		sl.ReportError(state, "state", "State", enumTag, "")
	}
	if !access.Valid() {
		sl.ReportError(access, "access", "Access", enumTag, "")
	}
	if regEnabled && state != CourseStatePublished {
		sl.ReportError(regEnabled, "registration_enabled", "RegistrationEnabled", registrationStateTag, "")
	}
	if state == CourseStatePublished && access >= CourseAccessCollaboratorsOnly {
		sl.ReportError(access, "access", "Access", publishedAccessTag, "")
	}
}

func activityStructValidation(sl validator.StructLevel) {
	var (
		access ActivityAccess
		reuse  Reuse
	)
	switch a := sl.Current().Interface().(type) {
	case Activity:
		access, reuse = a.Access, a.Reuse
	case NewActivity:
		access, reuse = a.Access, a.Reuse
	default:
		return
	}

	if !access.Valid() {
		sl.ReportError(access, "access", "Access", enumTag, "")
	}
	if !reuse.Valid() {
		sl.ReportError(reuse, "reuse", "Reuse", enumTag, "")
	}
	if access == ActivityAccessPrivate && reuse == ReuseNoRestriction {
		sl.ReportError(reuse, "reuse", "Reuse", privateReuseTag, "")
	}
}

func resourceStructValidation(sl validator.StructLevel) {
	var (
		rtype   ResourceType
		dur     Duration
		licence Licence
		access  ResourceAccess
		reuse   Reuse
	)
	switch r := sl.Current().Interface().(type) {
	case Resource:
		rtype, dur, licence, access, reuse = r.Type, r.Duration, r.Licence, r.Access, r.Reuse
	case NewResource:
		rtype, dur, licence, access, reuse = r.Type, r.Duration, r.Licence, r.Access, r.Reuse
	default:
		return
	}

	if !rtype.Valid() {
		sl.ReportError(rtype, "type", "Type", enumTag, "")
	}
	if !dur.Valid() {
		sl.ReportError(dur, "duration", "Duration", enumTag, "")
	}
	if !licence.Valid() {
		sl.ReportError(licence, "licence", "Licence", enumTag, "")
	}
	if !access.Valid() {
		sl.ReportError(access, "access", "Access", enumTag, "")
	}
	if !reuse.Valid() {
		sl.ReportError(reuse, "reuse", "Reuse", enumTag, "")
	}
	if access == ResourceAccessPrivate && reuse == ReuseNoRestriction {
		sl.ReportError(reuse, "reuse", "Reuse", privateReuseTag, "")
	}
	if licence > LicenceCCByNCND && reuse == ReuseNoRestriction {
		sl.ReportError(reuse, "reuse", "Reuse", licenceReuseTag, "")
	}
}

func attachObjectiveStructValidation(sl validator.StructLevel) {
	ao, ok := sl.Current().Interface().(AttachObjective)
	if !ok {
		return
	}
	if !ao.TaxonomyLevel.Valid() {
		sl.ReportError(ao.TaxonomyLevel, "taxonomy_level", "TaxonomyLevel", taxonomyTag, "")
	}
}
