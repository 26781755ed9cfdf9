package learning

type (
	// LevelProgress aggregates one taxonomy level of a course's objective
	// closure for one student.
	LevelProgress struct {
		Level     TaxonomyLevel `json:"level"`
		Total     int           `json:"total"`
		Validated int           `json:"validated"`
		// Progress is the share of validated attachments within the level,
		// in percent.
		Progress int `json:"progress"`
		// ProgressDimension is the level's weighted contribution to overall
		// course progress: level_total/course_total * 100 * level_validated/level_total.
		// Kept as-is from the historical formula even though the double
		// weighting looks unintended.
		ProgressDimension int `json:"progress_dimension"`
	}

	ObjectiveProgress struct {
		ObjectiveID string `json:"objective_id"`
		Ability     string `json:"ability"`
		Validated   bool   `json:"validated"`
	}

	ProgressionReport struct {
		CourseID         string              `json:"course_id"`
		StudentID        string              `json:"student_id"`
		TotalAttachments int                 `json:"total_attachments"`
		Objectives       []ObjectiveProgress `json:"objectives"`
		Levels           []LevelProgress     `json:"levels"`
	}
)

// ObjectiveClosure collects every entity objective reachable from the
// course: its own, those of every linked activity and those of every
// resource linked to those activities.
func (c *Course) ObjectiveClosure() []*EntityObjective {
	var closure []*EntityObjective
	closure = append(closure, c.Objectives...)
	for _, link := range c.Activities {
		if link.Activity == nil {
			continue
		}
		closure = append(closure, link.Activity.Objectives...)
		for _, res := range link.Activity.Resources {
			closure = append(closure, res.Objectives...)
		}
	}
	return closure
}

// Progression computes the student's completion statistics over the course's
// objective closure. An objective counts as validated when the student
// validates it on any of its attachments within this course. Levels with no
// attachments report zero rather than dividing by zero.
func (c *Course) Progression(studentID string) *ProgressionReport {
	closure := c.ObjectiveClosure()

	report := &ProgressionReport{
		CourseID:  c.ID,
		StudentID: studentID,
	}

	// per-objective status, deduplicated by objective identity
	seen := make(map[string]int) // objective ID -> index in report.Objectives
	for _, eo := range closure {
		ability := ""
		if eo.Objective != nil {
			ability = eo.Objective.Ability
		}
		idx, ok := seen[eo.ObjectiveID]
		if !ok {
			seen[eo.ObjectiveID] = len(report.Objectives)
			report.Objectives = append(report.Objectives, ObjectiveProgress{
				ObjectiveID: eo.ObjectiveID,
				Ability:     ability,
			})
			idx = len(report.Objectives) - 1
		}
		if eo.Validated(studentID) {
			report.Objectives[idx].Validated = true
		}
	}

	// per-level aggregates over attachments
	totals := make(map[TaxonomyLevel]int)
	validated := make(map[TaxonomyLevel]int)
	for _, eo := range closure {
		totals[eo.TaxonomyLevel]++
		if eo.Validated(studentID) {
			validated[eo.TaxonomyLevel]++
		}
	}
	report.TotalAttachments = len(closure)

	for _, level := range TaxonomyLevels {
		total := totals[level]
		lp := LevelProgress{Level: level, Total: total, Validated: validated[level]}
		if total > 0 && report.TotalAttachments > 0 {
			lp.Progress = int(100 * float64(lp.Validated) / float64(total))
			lp.ProgressDimension = int(
				float64(total) / float64(report.TotalAttachments) * 100 * float64(lp.Validated) / float64(total))
		}
		report.Levels = append(report.Levels, lp)
	}
	return report
}
