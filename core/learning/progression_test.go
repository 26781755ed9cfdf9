package learning

import "testing"

func levelByName(t *testing.T, report *ProgressionReport, level TaxonomyLevel) LevelProgress {
	t.Helper()
	for _, lp := range report.Levels {
		if lp.Level == level {
			return lp
		}
	}
	t.Fatalf("level %v missing from report", level)
	return LevelProgress{}
}

func TestCourseObjectiveClosure(t *testing.T) {
	author := "author"
	c := newTestCourse("c1", author)
	a := newTestActivity("a1", author, ReuseNoRestriction)
	r := newTestResource("r1", author, ReuseNoRestriction)

	attach(t, &c.Base, newTestObjective("o1", "one"), false)
	attach(t, &a.Base, newTestObjective("o2", "two"), false)
	attach(t, &r.Base, newTestObjective("o3", "three"), false)

	if err := a.AddResource(r); err != nil {
		t.Fatalf("AddResource() failed: %v", err)
	}
	if err := c.AddActivity(a); err != nil {
		t.Fatalf("AddActivity() failed: %v", err)
	}

	closure := c.ObjectiveClosure()
	if len(closure) != 3 {
		t.Fatalf("closure has %d attachments; want 3", len(closure))
	}
}

func TestCourseProgression(t *testing.T) {
	author := "author"
	student := "s1"

	c := newTestCourse("c1", author)
	a := newTestActivity("a1", author, ReuseNoRestriction)

	o1 := newTestObjective("o1", "one")
	o2 := newTestObjective("o2", "two")
	o3 := newTestObjective("o3", "three")

	eo1 := attach(t, &c.Base, o1, false)
	eo1.TaxonomyLevel = TaxonomyKnowledge
	eo2 := attach(t, &c.Base, o2, false)
	eo2.TaxonomyLevel = TaxonomyKnowledge
	eo3 := attach(t, &a.Base, o3, false)
	eo3.TaxonomyLevel = TaxonomyApplication
	// o1 appears a second time on the activity
	eo1bis := attach(t, &a.Base, o1, false)
	eo1bis.TaxonomyLevel = TaxonomyApplication

	if err := c.AddActivity(a); err != nil {
		t.Fatalf("AddActivity() failed: %v", err)
	}

	if err := eo1.addValidator(student, o1.Ability); err != nil {
		t.Fatalf("addValidator() failed: %v", err)
	}
	if err := eo3.addValidator(student, o3.Ability); err != nil {
		t.Fatalf("addValidator() failed: %v", err)
	}

	report := c.Progression(student)

	if report.TotalAttachments != 4 {
		t.Errorf("TotalAttachments = %d; want 4", report.TotalAttachments)
	}
	if len(report.Objectives) != 3 {
		t.Fatalf("report has %d objectives; want 3", len(report.Objectives))
	}
	validated := map[string]bool{}
	for _, op := range report.Objectives {
		validated[op.ObjectiveID] = op.Validated
	}
	// o1 counts as validated even though only one of its two attachments is
	if !validated["o1"] || validated["o2"] || !validated["o3"] {
		t.Errorf("objective validation flags wrong: %v", validated)
	}

	knowledge := levelByName(t, report, TaxonomyKnowledge)
	if knowledge.Total != 2 || knowledge.Validated != 1 {
		t.Errorf("knowledge level = %d/%d; want 1/2", knowledge.Validated, knowledge.Total)
	}
	if knowledge.Progress != 50 {
		t.Errorf("knowledge progress = %d; want 50", knowledge.Progress)
	}
	// 2/4 * 100 * 1/2 = 25
	if knowledge.ProgressDimension != 25 {
		t.Errorf("knowledge progress dimension = %d; want 25", knowledge.ProgressDimension)
	}

	application := levelByName(t, report, TaxonomyApplication)
	if application.Total != 2 || application.Validated != 1 {
		t.Errorf("application level = %d/%d; want 1/2", application.Validated, application.Total)
	}

	// untouched levels report zeroes, not division errors
	synthesis := levelByName(t, report, TaxonomySynthesis)
	if synthesis.Total != 0 || synthesis.Progress != 0 || synthesis.ProgressDimension != 0 {
		t.Errorf("empty level not zeroed: %+v", synthesis)
	}
}

func TestCourseProgressionEmptyCourse(t *testing.T) {
	c := newTestCourse("c1", "author")
	report := c.Progression("s1")
	if report.TotalAttachments != 0 {
		t.Errorf("TotalAttachments = %d; want 0", report.TotalAttachments)
	}
	for _, lp := range report.Levels {
		if lp.Progress != 0 || lp.ProgressDimension != 0 {
			t.Errorf("empty course level not zeroed: %+v", lp)
		}
	}
}
