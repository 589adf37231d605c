// Package fusion merges per-modality predictions into one result. The primary
// modality is the one the reporter authored directly (text, or the audio
// transcript when no text was given); secondary modalities can raise severity
// but never silently replace the primary department.
package fusion

import (
	"fmt"

	"civic-ml-pipeline/models"
)

// Merge fuses the primary and secondary predictions. Either side may be
// absent; if both are, the result is unusable and carries the no-title
// sentinel so callers can reject it.
func Merge(primary, secondary models.ModalityPrediction) models.FusionResult {
	switch {
	case primary.Absent() && secondary.Absent():
		return models.FusionResult{Title: models.NoTitle}
	case secondary.Absent():
		return fromSingle(primary)
	case primary.Absent():
		return fromSingle(secondary)
	}

	result := models.FusionResult{Title: primary.Title}

	// Severity: take the worse of the two. On a tie the primary wins, which
	// keeps its confidence attached to the report.
	if secondary.Severity > primary.Severity {
		result.Severity = secondary.Severity
		result.SeverityConfidence = secondary.SeverityConfidence
	} else {
		result.Severity = primary.Severity
		result.SeverityConfidence = primary.SeverityConfidence
	}

	if primary.Department == secondary.Department {
		result.Department = primary.Department
		result.DepartmentConfidence = maxFloat(primary.DepartmentConfidence, secondary.DepartmentConfidence)
	} else {
		result.Department = primary.Department
		result.DepartmentConfidence = primary.DepartmentConfidence
		result.ConflictNote = fmt.Sprintf("Text suggests %s, image suggests %s",
			primary.Department.FullName(), secondary.Department.FullName())
	}

	return result
}

func fromSingle(p models.ModalityPrediction) models.FusionResult {
	return models.FusionResult{
		Severity:             p.Severity,
		Department:           p.Department,
		Title:                p.Title,
		SeverityConfidence:   p.SeverityConfidence,
		DepartmentConfidence: p.DepartmentConfidence,
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
