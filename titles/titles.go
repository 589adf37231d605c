package titles

import (
	"sort"
	"strings"
	"sync"

	"civic-ml-pipeline/models"
)

// GenericTitle is the final fallback when no heuristic produces a title.
const GenericTitle = "Civic Issue Report"

const maxTitleWords = 4
const maxTitleLen = 25

// issueKeywords maps issue keywords found in the report text to short titles.
// Longer keywords win over shorter ones, so "street light" beats "light".
var issueKeywords = []struct {
	Keyword string
	Title   string
}{
	{"pothole", "Pothole Issue"},
	{"garbage", "Garbage Problem"},
	{"trash", "Waste Issue"},
	{"waste", "Waste Problem"},
	{"streetlight", "Streetlight Issue"},
	{"street light", "Streetlight Issue"},
	{"light", "Lighting Issue"},
	{"water", "Water Issue"},
	{"leak", "Water Leak"},
	{"pipe", "Pipe Issue"},
	{"drain", "Drainage Issue"},
	{"road", "Road Problem"},
	{"broken", "Broken Item"},
	{"damaged", "Damage Report"},
	{"not working", "Malfunction"},
	{"overflow", "Overflow Issue"},
	{"blocked", "Blockage Issue"},
	{"dust", "Dust Problem"},
	{"dirty", "Cleanliness Issue"},
	{"noise", "Noise Problem"},
	{"smell", "Odor Issue"},
	{"crack", "Crack Issue"},
	{"hole", "Hole Problem"},
	{"mosquito", "Mosquito Problem"},
	{"mosquitoes", "Mosquito Problem"},
	{"pest", "Pest Issue"},
	{"insects", "Insect Problem"},
	{"flies", "Fly Problem"},
	{"rats", "Rodent Problem"},
	{"rodents", "Rodent Problem"},
	{"toilet", "Toilet Issue"},
	{"bathroom", "Bathroom Problem"},
	{"sewage", "Sewage Issue"},
	{"sewer", "Sewer Problem"},
}

// actionPatterns catches action phrasing when no issue keyword matched.
var actionPatterns = []struct {
	Keyword string
	Title   string
}{
	{"everywhere", "Widespread Issue"},
	{"causing", "Problem Report"},
	{"need", "Repair Needed"},
	{"fix", "Fix Required"},
	{"repair", "Repair Needed"},
}

var departmentTitles = map[models.Department]string{
	models.DepartmentSanitation:  "Sanitation Issue",
	models.DepartmentRoads:       "Road Issue",
	models.DepartmentElectricity: "Electrical Issue",
	models.DepartmentWater:       "Water Issue",
	models.DepartmentHealth:      "Health Issue",
	models.DepartmentEnvironment: "Environmental Issue",
	models.DepartmentSafety:      "Safety Issue",
}

// stopWords are skipped when extracting content words for a heuristic title.
var stopWords = map[string]bool{
	"the": true, "and": true, "are": true, "is": true, "on": true,
	"in": true, "at": true, "to": true, "of": true,
}

var sortOnce sync.Once

func sortedIssueKeywords() []struct {
	Keyword string
	Title   string
} {
	sortOnce.Do(func() {
		sort.SliceStable(issueKeywords, func(i, j int) bool {
			return len(issueKeywords[i].Keyword) > len(issueKeywords[j].Keyword)
		})
	})
	return issueKeywords
}

// Generate produces a short human-readable title for a report text. It is
// deterministic, never calls a model, always returns a non-empty string and
// never panics past its boundary.
func Generate(text string, department models.Department) (title string) {
	defer func() {
		if r := recover(); r != nil {
			title = GenericTitle
		}
	}()

	lower := strings.ToLower(text)

	for _, entry := range sortedIssueKeywords() {
		if strings.Contains(lower, entry.Keyword) {
			return entry.Title
		}
	}

	for _, entry := range actionPatterns {
		if strings.Contains(lower, entry.Keyword) {
			return entry.Title
		}
	}

	if t, ok := departmentTitles[department]; ok {
		return t
	}

	words := strings.Fields(text)

	if len(words) >= 2 {
		var keyWords []string
		for _, word := range words[:min(len(words), maxTitleWords)] {
			if len(word) > 2 && !stopWords[strings.ToLower(word)] {
				keyWords = append(keyWords, titleCaseWord(word))
			}
			if len(keyWords) >= 2 {
				break
			}
		}
		if len(keyWords) > 0 {
			return strings.Join(keyWords, " ") + " Issue"
		}
	}

	if len(words) > 0 {
		for i := range words {
			words[i] = titleCaseWord(words[i])
		}
		t := strings.Join(words[:min(len(words), maxTitleWords)], " ")
		if r := []rune(t); len(r) > maxTitleLen {
			t = string(r[:maxTitleLen-3]) + "..."
		}
		return t
	}

	return GenericTitle
}

func titleCaseWord(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return word
	}
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
