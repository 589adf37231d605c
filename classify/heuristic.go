package classify

import (
	"strings"

	"civic-ml-pipeline/models"
	"civic-ml-pipeline/titles"
)

// Keyword tables for the degraded text path, used when the inference service
// is down. Confidences are fixed because there is no model to ask.

var highSeverityKeywords = []string{
	"emergency", "urgent", "dangerous", "severe", "critical",
	"major", "serious", "broken", "overflow", "blocked completely",
}

var lowSeverityKeywords = []string{
	"minor", "small", "little", "slight", "cosmetic",
}

var departmentKeywords = []struct {
	Department models.Department
	Keywords   []string
}{
	{models.DepartmentSanitation, []string{
		"garbage", "trash", "waste", "dump", "litter", "dirty", "smell", "odor",
		"toilet", "bathroom", "sewage", "sewer", "mosquito", "mosquitoes", "pest",
		"insects", "flies", "rats", "rodents", "cleaning", "hygiene",
	}},
	{models.DepartmentRoads, []string{
		"road", "street", "pothole", "traffic", "vehicle", "parking", "signal",
		"zebra crossing", "footpath", "sidewalk", "pavement",
	}},
	{models.DepartmentElectricity, []string{
		"electricity", "power", "light", "streetlight", "street light", "bulb",
		"wire", "pole", "transformer",
	}},
	{models.DepartmentWater, []string{
		"water", "leak", "pipe", "drain", "drainage", "tap", "supply",
		"pressure", "quality", "contaminated", "shortage",
	}},
	{models.DepartmentHealth, []string{
		"health", "medical", "hospital", "clinic", "disease", "illness",
		"contamination",
	}},
	{models.DepartmentEnvironment, []string{
		"environment", "pollution", "air", "noise", "dust", "tree", "park", "green",
	}},
	{models.DepartmentSafety, []string{
		"safety", "security", "crime", "theft", "violence", "accident", "emergency",
	}},
}

// heuristicText classifies cleaned text with keyword matching only. Ties on
// department match count keep the earlier table entry, so the result is
// deterministic for a given input.
func heuristicText(text string) models.ModalityPrediction {
	lower := strings.ToLower(text)

	severity := models.SeverityModerate
	severityConf := 0.6
	for _, kw := range highSeverityKeywords {
		if strings.Contains(lower, kw) {
			severity = models.SeveritySevere
			severityConf = 0.8
			break
		}
	}
	if severity == models.SeverityModerate {
		for _, kw := range lowSeverityKeywords {
			if strings.Contains(lower, kw) {
				severity = models.SeverityMinor
				severityConf = 0.7
				break
			}
		}
	}

	department := models.DepartmentHealth
	departmentConf := 0.5
	maxMatches := 0
	for _, entry := range departmentKeywords {
		matches := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			department = entry.Department
			departmentConf = minFloat(0.9, 0.5+float64(matches)*0.1)
		}
	}

	return models.ModalityPrediction{
		Severity:             severity,
		Department:           department,
		Title:                titles.Generate(text, department),
		SeverityConfidence:   severityConf,
		DepartmentConfidence: departmentConf,
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
