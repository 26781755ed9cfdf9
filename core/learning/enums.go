package learning

import "fmt"

// Ordered enums compare by their integer weight: "access stricter than X" is
// a plain < / > on the constant. Plain enums (state, type, role) compare by
// identity only.

type CourseAccess int

const (
	CourseAccessPublic CourseAccess = iota
	CourseAccessStudentsOnly
	CourseAccessCollaboratorsOnly
	CourseAccessPrivate
)

var courseAccessNames = map[CourseAccess][2]string{
	CourseAccessPublic:            {"public", "Public"},
	CourseAccessStudentsOnly:      {"students_only", "Students only"},
	CourseAccessCollaboratorsOnly: {"collaborators_only", "Collaborators only"},
	CourseAccessPrivate:           {"private", "Private"},
}

func (a CourseAccess) Valid() bool     { _, ok := courseAccessNames[a]; return ok }
func (a CourseAccess) String() string  { return enumString(courseAccessNames[a][0], int(a)) }
func (a CourseAccess) Label() string   { return courseAccessNames[a][1] }
func (a CourseAccess) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *CourseAccess) UnmarshalText(text []byte) error {
	for v, names := range courseAccessNames {
		if names[0] == string(text) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown course access %q", text)
}

type ActivityAccess int

const (
	ActivityAccessPublic ActivityAccess = iota
	ActivityAccessExistingCourses
	ActivityAccessCollaboratorsOnly
	ActivityAccessPrivate
)

var activityAccessNames = map[ActivityAccess][2]string{
	ActivityAccessPublic:            {"public", "Public"},
	ActivityAccessExistingCourses:   {"existing_courses", "Only in courses"},
	ActivityAccessCollaboratorsOnly: {"collaborators_only", "Collaborators only"},
	ActivityAccessPrivate:           {"private", "Private"},
}

func (a ActivityAccess) Valid() bool    { _, ok := activityAccessNames[a]; return ok }
func (a ActivityAccess) String() string { return enumString(activityAccessNames[a][0], int(a)) }
func (a ActivityAccess) Label() string  { return activityAccessNames[a][1] }
func (a ActivityAccess) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *ActivityAccess) UnmarshalText(text []byte) error {
	for v, names := range activityAccessNames {
		if names[0] == string(text) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown activity access %q", text)
}

type ResourceAccess int

const (
	ResourceAccessPublic ResourceAccess = iota
	ResourceAccessExistingActivities
	ResourceAccessCollaboratorsOnly
	ResourceAccessPrivate
)

var resourceAccessNames = map[ResourceAccess][2]string{
	ResourceAccessPublic:             {"public", "Public"},
	ResourceAccessExistingActivities: {"existing_activities", "Only in activities"},
	ResourceAccessCollaboratorsOnly:  {"collaborators_only", "Collaborators only"},
	ResourceAccessPrivate:            {"private", "Private"},
}

func (a ResourceAccess) Valid() bool    { _, ok := resourceAccessNames[a]; return ok }
func (a ResourceAccess) String() string { return enumString(resourceAccessNames[a][0], int(a)) }
func (a ResourceAccess) Label() string  { return resourceAccessNames[a][1] }
func (a ResourceAccess) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *ResourceAccess) UnmarshalText(text []byte) error {
	for v, names := range resourceAccessNames {
		if names[0] == string(text) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown resource access %q", text)
}

// Reuse governs whether an activity/resource may be linked into additional
// containers beyond its original context.
type Reuse int

const (
	ReuseNoRestriction Reuse = iota
	ReuseOnlyAuthor
	ReuseNonReusable
)

var reuseNames = map[Reuse][2]string{
	ReuseNoRestriction: {"no_restriction", "Reusable"},
	ReuseOnlyAuthor:    {"only_author", "Author only"},
	ReuseNonReusable:   {"non_reusable", "Non reusable"},
}

func (r Reuse) Valid() bool    { _, ok := reuseNames[r]; return ok }
func (r Reuse) String() string { return enumString(reuseNames[r][0], int(r)) }
func (r Reuse) Label() string  { return reuseNames[r][1] }
func (r Reuse) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *Reuse) UnmarshalText(text []byte) error {
	for v, names := range reuseNames {
		if names[0] == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown reuse %q", text)
}

// Licence orders the authorised resource licences by degree of freedom to
// reuse the content.
type Licence int

const (
	LicenceCC0 Licence = iota
	LicenceCCBy
	LicenceCCBySA
	LicenceCCByNC
	LicenceCCByNCSA
	LicenceCCByND
	LicenceCCByNCND
	LicenceNotAppropriate
	LicenceAllRightsReserved
)

var licenceNames = map[Licence][2]string{
	LicenceCC0:               {"cc_0", "Creative Commons 0 (Public domain)"},
	LicenceCCBy:              {"cc_by", "Creative Commons Attribution"},
	LicenceCCBySA:            {"cc_by_sa", "Creative Commons Attribution, Share Alike"},
	LicenceCCByNC:            {"cc_by_nc", "Creative Commons Attribution, Non Commercial"},
	LicenceCCByNCSA:          {"cc_by_nc_sa", "Creative Commons Attribution, Non Commercial, Share Alike"},
	LicenceCCByND:            {"cc_by_nd", "Creative Commons Attribution, No Derivatives"},
	LicenceCCByNCND:          {"cc_by_nc_nd", "Creative Commons Attribution, No Commercial, No Derivatives"},
	LicenceNotAppropriate:    {"na", "Not appropriate"},
	LicenceAllRightsReserved: {"all_rights_reserved", "All rights reserved"},
}

func (l Licence) Valid() bool    { _, ok := licenceNames[l]; return ok }
func (l Licence) String() string { return enumString(licenceNames[l][0], int(l)) }
func (l Licence) Label() string  { return licenceNames[l][1] }
func (l Licence) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *Licence) UnmarshalText(text []byte) error {
	for v, names := range licenceNames {
		if names[0] == string(text) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("unknown licence %q", text)
}

// Duration indicates how long content takes to view. Several members share a
// weight, so ordering goes through Weight(), not the constant itself.
type Duration int

const (
	DurationFiveOrLess Duration = iota
	DurationTenOrLess
	DurationFifteenOrLess
	DurationTwentyOrLess
	DurationTwentyFiveOrLess
	DurationThirtyOrMore
	DurationNotSpecified
)

var durationNames = map[Duration][2]string{
	DurationFiveOrLess:       {"five_or_less", "Less than 5 minutes"},
	DurationTenOrLess:        {"ten_or_less", "Less than 10 minutes"},
	DurationFifteenOrLess:    {"fifteen_or_less", "Less than 15 minutes"},
	DurationTwentyOrLess:     {"twenty_or_less", "Less than 20 minutes"},
	DurationTwentyFiveOrLess: {"twenty_five_or_less", "Less than 25 minutes"},
	DurationThirtyOrMore:     {"thirty_or_more", "30 minutes or more"},
	DurationNotSpecified:     {"not_specified", "Not specified"},
}

var durationWeights = map[Duration]int{
	DurationFiveOrLess:       0,
	DurationTenOrLess:        0,
	DurationFifteenOrLess:    1,
	DurationTwentyOrLess:     1,
	DurationTwentyFiveOrLess: 2,
	DurationThirtyOrMore:     2,
	DurationNotSpecified:     3,
}

func (d Duration) Valid() bool    { _, ok := durationNames[d]; return ok }
func (d Duration) String() string { return enumString(durationNames[d][0], int(d)) }
func (d Duration) Label() string  { return durationNames[d][1] }
func (d Duration) Weight() int    { return durationWeights[d] }
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *Duration) UnmarshalText(text []byte) error {
	for v, names := range durationNames {
		if names[0] == string(text) {
			*d = v
			return nil
		}
	}
	return fmt.Errorf("unknown duration %q", text)
}

// TaxonomyLevel is the Bloom-scale ordinal classification attached to each
// entity objective. See https://en.wikipedia.org/wiki/Bloom%27s_taxonomy
type TaxonomyLevel int

const (
	TaxonomyKnowledge TaxonomyLevel = iota + 1
	TaxonomyComprehension
	TaxonomyApplication
	TaxonomyAnalysis
	TaxonomySynthesis
	TaxonomyEvaluation
)

var taxonomyNames = map[TaxonomyLevel][2]string{
	TaxonomyKnowledge:     {"knowledge", "Knowledge"},
	TaxonomyComprehension: {"comprehension", "Comprehension"},
	TaxonomyApplication:   {"application", "Application"},
	TaxonomyAnalysis:      {"analysis", "Analysis"},
	TaxonomySynthesis:     {"synthesis", "Synthesis"},
	TaxonomyEvaluation:    {"evaluation", "Evaluation"},
}

// TaxonomyLevels lists all levels in ascending order.
var TaxonomyLevels = []TaxonomyLevel{
	TaxonomyKnowledge,
	TaxonomyComprehension,
	TaxonomyApplication,
	TaxonomyAnalysis,
	TaxonomySynthesis,
	TaxonomyEvaluation,
}

func (t TaxonomyLevel) Valid() bool    { _, ok := taxonomyNames[t]; return ok }
func (t TaxonomyLevel) String() string { return enumString(taxonomyNames[t][0], int(t)) }
func (t TaxonomyLevel) Label() string  { return taxonomyNames[t][1] }
func (t TaxonomyLevel) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *TaxonomyLevel) UnmarshalText(text []byte) error {
	for v, names := range taxonomyNames {
		if names[0] == string(text) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown taxonomy level %q", text)
}

// Plain enums

type CourseState int

const (
	CourseStateDraft CourseState = iota
	CourseStatePublished
	CourseStateArchived
)

var courseStateNames = map[CourseState][2]string{
	CourseStateDraft:     {"draft", "Draft"},
	CourseStatePublished: {"published", "Published"},
	CourseStateArchived:  {"archived", "Archived"},
}

func (s CourseState) Valid() bool    { _, ok := courseStateNames[s]; return ok }
func (s CourseState) String() string { return enumString(courseStateNames[s][0], int(s)) }
func (s CourseState) Label() string  { return courseStateNames[s][1] }
func (s CourseState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *CourseState) UnmarshalText(text []byte) error {
	for v, names := range courseStateNames {
		if names[0] == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown course state %q", text)
}

type ResourceType int

const (
	ResourceTypeFile ResourceType = iota
	ResourceTypeVideo
	ResourceTypeAudio
)

var resourceTypeNames = map[ResourceType][2]string{
	ResourceTypeFile:  {"file", "File"},
	ResourceTypeVideo: {"video", "Video"},
	ResourceTypeAudio: {"audio", "Audio"},
}

func (t ResourceType) Valid() bool    { _, ok := resourceTypeNames[t]; return ok }
func (t ResourceType) String() string { return enumString(resourceTypeNames[t][0], int(t)) }
func (t ResourceType) Label() string  { return resourceTypeNames[t][1] }
func (t ResourceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *ResourceType) UnmarshalText(text []byte) error {
	for v, names := range resourceTypeNames {
		if names[0] == string(text) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown resource type %q", text)
}

type CollaboratorRole int

const (
	RoleOwner CollaboratorRole = iota
	RoleTeacher
	RoleNonEditorTeacher
)

var collaboratorRoleNames = map[CollaboratorRole][2]string{
	RoleOwner:            {"owner", "Owner"},
	RoleTeacher:          {"teacher", "Teacher"},
	RoleNonEditorTeacher: {"non_editor_teacher", "Non-editor Teacher"},
}

func (r CollaboratorRole) Valid() bool    { _, ok := collaboratorRoleNames[r]; return ok }
func (r CollaboratorRole) String() string { return enumString(collaboratorRoleNames[r][0], int(r)) }
func (r CollaboratorRole) Label() string  { return collaboratorRoleNames[r][1] }
func (r CollaboratorRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *CollaboratorRole) UnmarshalText(text []byte) error {
	for v, names := range collaboratorRoleNames {
		if names[0] == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown collaborator role %q", text)
}

func enumString(name string, val int) string {
	if name == "" {
		return fmt.Sprintf("unknown(%d)", val)
	}
	return name
}
