package titles

import (
	"strings"
	"testing"
	"unicode/utf8"

	"civic-ml-pipeline/models"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		department models.Department
		expected   string
	}{
		{
			name:     "issue keyword match",
			text:     "Big pothole near bus stand causing traffic jam",
			expected: "Pothole Issue",
		},
		{
			name:     "longest keyword wins over substring",
			text:     "the street light is flickering",
			expected: "Streetlight Issue",
		},
		{
			name:     "mosquito keyword",
			text:     "mosquito problem in the area",
			expected: "Mosquito Problem",
		},
		{
			name:     "keyword match is case insensitive",
			text:     "GARBAGE piling up near the park",
			expected: "Garbage Problem",
		},
		{
			name:     "action pattern when no issue keyword",
			text:     "we need someone here urgently",
			expected: "Repair Needed",
		},
		{
			name:       "department fallback",
			text:       "something odd going wrong here somehow",
			department: models.DepartmentElectricity,
			expected:   "Electrical Issue",
		},
		{
			name:     "heuristic content word extraction",
			text:     "strange situation near market gate",
			expected: "Strange Situation Issue",
		},
		{
			name:     "stop words skipped in heuristic",
			text:     "the are situation worsening quickly",
			expected: "Situation Worsening Issue",
		},
		{
			name:     "single word falls to final fallback",
			text:     "helpmeplease",
			expected: "Helpmeplease",
		},
		{
			name:     "accented word title cased",
			text:     "überschwemmung",
			expected: "Überschwemmung",
		},
		{
			name:     "empty input yields generic title",
			text:     "",
			expected: GenericTitle,
		},
		{
			name:       "whitespace only yields generic title",
			text:       "   ",
			department: models.DepartmentUnknown,
			expected:   GenericTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.text, tt.department)
			if got != tt.expected {
				t.Errorf("Generate(%q, %v) = %q, want %q", tt.text, tt.department, got, tt.expected)
			}
		})
	}
}

func TestGenerateTruncatesLongFallback(t *testing.T) {
	// Words of 1-2 letters dodge both the keyword tables and the content-word
	// heuristic, so this lands on the truncating fallback.
	got := Generate("zz qq xx ww vv uu", models.DepartmentUnknown)
	if len(got) > 25 {
		t.Errorf("Generate() returned %d chars, want <= 25: %q", len(got), got)
	}
	if !strings.HasSuffix(got, "...") && len(got) == 25 {
		t.Errorf("Generate() long title not truncated with ellipsis: %q", got)
	}
}

func TestGenerateTruncationKeepsRunesIntact(t *testing.T) {
	// The accent sits right on the truncation cut, so a byte-index slice
	// would split it in half.
	got := Generate(strings.Repeat("a", 21)+"éxxxx", models.DepartmentUnknown)
	if !utf8.ValidString(got) {
		t.Fatalf("Generate() returned invalid UTF-8: %q", got)
	}
	want := "A" + strings.Repeat("a", 20) + "é..."
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestGenerateIsDeterministicAndTotal(t *testing.T) {
	inputs := []string{
		"", " ", "a", "pothole", "water leak on main road",
		"\t\n", "漢字 テスト issue", strings.Repeat("longword ", 50),
	}
	for _, in := range inputs {
		first := Generate(in, models.DepartmentWater)
		second := Generate(in, models.DepartmentWater)
		if first == "" {
			t.Errorf("Generate(%q) returned empty title", in)
		}
		if first != second {
			t.Errorf("Generate(%q) not deterministic: %q vs %q", in, first, second)
		}
	}
}
