// Package corrections post-filters department predictions. The zero-shot
// models systematically file lexically specific issues (mosquitoes, sewage)
// under broad categories like Environment or Public Health; a deterministic
// lexical override is cheaper and more predictable than retraining.
package corrections

import (
	"strings"

	"civic-ml-pipeline/models"
)

type rule struct {
	keywords []string
	target   models.Department
	// guard reports whether the current department may be overridden.
	guard func(models.Department) bool
}

// rules are evaluated in priority order; the first rule whose keywords match
// the text ends evaluation, whether or not its guard allows an override.
// That keeps re-application of the filter a no-op.
var rules = []rule{
	{
		keywords: []string{
			"mosquito", "mosquitoes", "pest", "insects", "flies", "rats", "rodents",
			"garbage", "trash", "waste", "dump", "litter", "dirty", "smell", "odor",
			"toilet", "bathroom", "sewage", "sewer", "cleaning", "hygiene",
		},
		target: models.DepartmentSanitation,
		guard: func(d models.Department) bool {
			return d == models.DepartmentEnvironment || d == models.DepartmentHealth
		},
	},
	{
		keywords: []string{
			"water supply", "tap water", "drinking water", "water shortage",
			"no water", "water pressure", "water quality", "contaminated water",
		},
		target: models.DepartmentWater,
		guard: func(d models.Department) bool {
			return d != models.DepartmentWater
		},
	},
	{
		keywords: []string{
			"traffic", "vehicle", "parking", "signal", "zebra crossing",
			"footpath", "sidewalk", "pavement",
		},
		target: models.DepartmentRoads,
		guard: func(d models.Department) bool {
			return d != models.DepartmentRoads
		},
	},
}

// Apply returns the corrected department for the given cleaned report text.
// It is pure and idempotent.
func Apply(text string, department models.Department) models.Department {
	lower := strings.ToLower(text)

	for _, r := range rules {
		if !containsAny(lower, r.keywords) {
			continue
		}
		if r.guard(department) {
			return r.target
		}
		return department
	}

	return department
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
