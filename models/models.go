package models

// PlaceholderTitle is the temporary title a client submits while a report is
// still being classified. The pipeline strips it from classifier input and
// overwrites it once a real title is available.
const PlaceholderTitle = "Processing..."

// NoTitle is the sentinel the classifier returns when no usable input
// produced a title.
const NoTitle = "No title"

// Severity is the issue severity tier, totally ordered.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
)

var severityLabels = map[Severity]string{
	SeverityMinor:    "Minor issue",
	SeverityModerate: "Moderate issue",
	SeveritySevere:   "Severe issue",
}

var severityCodes = map[Severity]string{
	SeverityMinor:    "LOW",
	SeverityModerate: "MEDIUM",
	SeveritySevere:   "HIGH",
}

// Label returns the classifier-facing label, e.g. "Severe issue".
func (s Severity) Label() string {
	return severityLabels[s]
}

// Code returns the external short code: LOW, MEDIUM or HIGH.
// Unknown severity maps to MEDIUM, matching the service's historical default.
func (s Severity) Code() string {
	if code, ok := severityCodes[s]; ok {
		return code
	}
	return "MEDIUM"
}

// SeverityLabels returns the ordered label set submitted to zero-shot backends.
func SeverityLabels() []string {
	return []string{
		SeverityMinor.Label(),
		SeverityModerate.Label(),
		SeveritySevere.Label(),
	}
}

// ParseSeverityLabel maps a backend label back to a Severity.
func ParseSeverityLabel(label string) (Severity, bool) {
	for sev, l := range severityLabels {
		if l == label {
			return sev, true
		}
	}
	return SeverityUnknown, false
}

// ParseSeverityCode maps an external short code back to a Severity.
func ParseSeverityCode(code string) (Severity, bool) {
	for sev, c := range severityCodes {
		if c == code {
			return sev, true
		}
	}
	return SeverityUnknown, false
}

// Department is the responsible municipal department.
type Department int

const (
	DepartmentUnknown Department = iota
	DepartmentSanitation
	DepartmentRoads
	DepartmentElectricity
	DepartmentWater
	DepartmentHealth
	DepartmentEnvironment
	DepartmentSafety
)

var departmentNames = map[Department]string{
	DepartmentSanitation:  "Sanitation and Waste Management",
	DepartmentRoads:       "Roads and Transport",
	DepartmentElectricity: "Electricity and Streetlights",
	DepartmentWater:       "Water Supply and Drainage",
	DepartmentHealth:      "Public Health",
	DepartmentEnvironment: "Environment",
	DepartmentSafety:      "Public Safety",
}

var departmentCodes = map[Department]string{
	DepartmentSanitation:  "Sanitation",
	DepartmentRoads:       "Roads",
	DepartmentElectricity: "Electricity",
	DepartmentWater:       "Water",
	DepartmentHealth:      "Health",
	DepartmentEnvironment: "Environment",
	DepartmentSafety:      "Safety",
}

// FullName returns the canonical department name, e.g. "Roads and Transport".
func (d Department) FullName() string {
	return departmentNames[d]
}

// Code returns the external short code; unmapped departments are "Other".
func (d Department) Code() string {
	if code, ok := departmentCodes[d]; ok {
		return code
	}
	return "Other"
}

// DepartmentLabels returns the ordered name set submitted to zero-shot backends.
func DepartmentLabels() []string {
	return []string{
		DepartmentSanitation.FullName(),
		DepartmentRoads.FullName(),
		DepartmentElectricity.FullName(),
		DepartmentWater.FullName(),
		DepartmentHealth.FullName(),
		DepartmentEnvironment.FullName(),
		DepartmentSafety.FullName(),
	}
}

// Departments returns all seven departments in label order.
func Departments() []Department {
	return []Department{
		DepartmentSanitation,
		DepartmentRoads,
		DepartmentElectricity,
		DepartmentWater,
		DepartmentHealth,
		DepartmentEnvironment,
		DepartmentSafety,
	}
}

// ParseDepartmentLabel maps a backend label (full name) back to a Department.
func ParseDepartmentLabel(label string) (Department, bool) {
	for dept, name := range departmentNames {
		if name == label {
			return dept, true
		}
	}
	return DepartmentUnknown, false
}

// ModalityPrediction is the outcome of one modality classifier. The zero
// value is the absent sentinel: the modality produced no usable signal,
// which is distinct from a low-confidence real prediction.
type ModalityPrediction struct {
	Severity             Severity
	Department           Department
	Title                string
	SeverityConfidence   float64
	DepartmentConfidence float64
}

// Absent reports whether this prediction carries no signal at all.
func (p ModalityPrediction) Absent() bool {
	return p.Severity == SeverityUnknown && p.Department == DepartmentUnknown
}

// FusionResult is the single fused answer for one classification request.
// Every fusion path produces this same shape; absent fields stay zero.
type FusionResult struct {
	Severity             Severity
	Department           Department
	Title                string
	SeverityConfidence   float64
	DepartmentConfidence float64
	ConflictNote         string
}

// Usable reports whether fusion had at least one modality to work with.
func (r FusionResult) Usable() bool {
	return r.Severity != SeverityUnknown || r.Department != DepartmentUnknown
}

// ClassificationJob is one queued classification request, read once from the
// work queue and never mutated. Field names match the queue producer.
type ClassificationJob struct {
	ReportID    string `json:"reportId"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
}

// ClassificationRequest is the classify endpoint request body. At least one
// field must be present.
type ClassificationRequest struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Confidence carries per-field confidences, rounded to 3 decimals on the wire.
type Confidence struct {
	Severity   float64 `json:"severity"`
	Department float64 `json:"department"`
}

// ClassificationResponse is the classify endpoint response body.
type ClassificationResponse struct {
	Severity   string     `json:"severity"`
	Department string     `json:"department"`
	Title      string     `json:"title"`
	Confidence Confidence `json:"confidence"`
	Conflicts  string     `json:"conflicts,omitempty"`
}

// AudioClassificationResponse extends the classification response with the
// transcript for the audio-upload variant.
type AudioClassificationResponse struct {
	TranscribedText string `json:"transcribed_text"`
	ClassificationResponse
}
