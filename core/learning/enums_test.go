package learning

import "testing"

func TestAccessOrdering(t *testing.T) {
	if !(CourseAccessPublic < CourseAccessStudentsOnly &&
		CourseAccessStudentsOnly < CourseAccessCollaboratorsOnly &&
		CourseAccessCollaboratorsOnly < CourseAccessPrivate) {
		t.Errorf("course access levels out of order")
	}
	if !(ActivityAccessPublic < ActivityAccessExistingCourses &&
		ActivityAccessExistingCourses < ActivityAccessCollaboratorsOnly &&
		ActivityAccessCollaboratorsOnly < ActivityAccessPrivate) {
		t.Errorf("activity access levels out of order")
	}
	if !(ReuseNoRestriction < ReuseOnlyAuthor && ReuseOnlyAuthor < ReuseNonReusable) {
		t.Errorf("reuse levels out of order")
	}
}

func TestLicenceOrdering(t *testing.T) {
	// freest first, most restrictive last
	if !(LicenceCC0 < LicenceCCBy && LicenceCCByNCND < LicenceNotAppropriate && LicenceNotAppropriate < LicenceAllRightsReserved) {
		t.Errorf("licences out of order")
	}
}

func TestDurationWeights(t *testing.T) {
	// members pair up by weight; ordering goes through Weight()
	pairs := [][2]Duration{
		{DurationFiveOrLess, DurationTenOrLess},
		{DurationFifteenOrLess, DurationTwentyOrLess},
		{DurationTwentyFiveOrLess, DurationThirtyOrMore},
	}
	for _, pair := range pairs {
		if pair[0].Weight() != pair[1].Weight() {
			t.Errorf("%v and %v should share a weight", pair[0], pair[1])
		}
	}
	if !(DurationFiveOrLess.Weight() < DurationFifteenOrLess.Weight() &&
		DurationFifteenOrLess.Weight() < DurationTwentyFiveOrLess.Weight() &&
		DurationTwentyFiveOrLess.Weight() < DurationNotSpecified.Weight()) {
		t.Errorf("duration weights out of order")
	}
}

func TestTaxonomyLevels(t *testing.T) {
	if len(TaxonomyLevels) != 6 {
		t.Fatalf("got %d taxonomy levels; want 6", len(TaxonomyLevels))
	}
	for i, level := range TaxonomyLevels {
		if int(level) != i+1 {
			t.Errorf("taxonomy level %v has ordinal %d; want %d", level, int(level), i+1)
		}
		if !level.Valid() {
			t.Errorf("taxonomy level %v not valid", level)
		}
	}
	if TaxonomyLevel(0).Valid() || TaxonomyLevel(7).Valid() {
		t.Errorf("out-of-range taxonomy levels report valid")
	}
}

func TestEnumText(t *testing.T) {
	if got := CourseAccessStudentsOnly.String(); got != "students_only" {
		t.Errorf("String() = %q; want %q", got, "students_only")
	}
	var access CourseAccess
	if err := access.UnmarshalText([]byte("collaborators_only")); err != nil {
		t.Fatalf("UnmarshalText() failed: %v", err)
	}
	if access != CourseAccessCollaboratorsOnly {
		t.Errorf("UnmarshalText() = %v; want %v", access, CourseAccessCollaboratorsOnly)
	}
	if err := access.UnmarshalText([]byte("nope")); err == nil {
		t.Errorf("UnmarshalText() accepted an unknown value")
	}
	if got := Licence(42).String(); got != "unknown(42)" {
		t.Errorf("String() = %q; want %q", got, "unknown(42)")
	}
}
