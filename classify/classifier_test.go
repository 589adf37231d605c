package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civic-ml-pipeline/models"
)

type fakeBackend struct {
	available     bool
	classifyText  func(text string, labels []string) ([]Score, error)
	classifyImage func(image []byte, labels []string) ([]Score, error)
	transcribe    func(audio []byte, sampleRate int) (string, error)
}

func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) ClassifyText(_ context.Context, text string, labels []string) ([]Score, error) {
	return f.classifyText(text, labels)
}

func (f *fakeBackend) ClassifyImage(_ context.Context, image []byte, labels []string) ([]Score, error) {
	return f.classifyImage(image, labels)
}

func (f *fakeBackend) Transcribe(_ context.Context, audio []byte, sampleRate int) (string, error) {
	return f.transcribe(audio, sampleRate)
}

// scoresFor answers severity or department queries by label set size.
func scoresFor(severity string, sevConf float64, department string, deptConf float64) func(string, []string) ([]Score, error) {
	return func(_ string, labels []string) ([]Score, error) {
		if len(labels) == len(models.SeverityLabels()) {
			return []Score{{Label: severity, Score: sevConf}}, nil
		}
		return []Score{{Label: department, Score: deptConf}}, nil
	}
}

func TestTextEmptyInputIsAbsent(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		classifyText: func(text string, _ []string) ([]Score, error) {
			t.Fatalf("backend called with %q, want no call", text)
			return nil, nil
		},
	}
	c := New(backend, time.Second)

	for _, text := range []string{"", "   ", "Processing...", "Processing... Processing..."} {
		got := c.Text(context.Background(), text)
		if !got.Absent() {
			t.Errorf("Text(%q) = %+v, want absent", text, got)
		}
	}
}

func TestTextStripsPlaceholderBeforeClassifying(t *testing.T) {
	var seen string
	backend := &fakeBackend{
		available: true,
		classifyText: func(text string, labels []string) ([]Score, error) {
			seen = text
			return scoresFor("Severe issue", 0.9, "Roads and Transport", 0.8)(text, labels)
		},
	}
	c := New(backend, time.Second)

	c.Text(context.Background(), "Processing... pothole on main road")
	if seen != "pothole on main road" {
		t.Errorf("backend saw %q, want placeholder stripped", seen)
	}
}

func TestTextBackendPath(t *testing.T) {
	backend := &fakeBackend{
		available:    true,
		classifyText: scoresFor("Severe issue", 0.91, "Roads and Transport", 0.84),
	}
	c := New(backend, time.Second)

	got := c.Text(context.Background(), "Big pothole near bus stand")
	if got.Severity != models.SeveritySevere || got.SeverityConfidence != 0.91 {
		t.Errorf("severity = %v/%v, want Severe/0.91", got.Severity, got.SeverityConfidence)
	}
	if got.Department != models.DepartmentRoads || got.DepartmentConfidence != 0.84 {
		t.Errorf("department = %v/%v, want Roads/0.84", got.Department, got.DepartmentConfidence)
	}
	if got.Title != "Pothole Issue" {
		t.Errorf("title = %q, want %q", got.Title, "Pothole Issue")
	}
}

func TestTextAppliesDepartmentCorrections(t *testing.T) {
	backend := &fakeBackend{
		available:    true,
		classifyText: scoresFor("Moderate issue", 0.7, "Environment", 0.65),
	}
	c := New(backend, time.Second)

	got := c.Text(context.Background(), "mosquito problem in the area")
	if got.Department != models.DepartmentSanitation {
		t.Errorf("department = %v, want corrected Sanitation", got.Department)
	}
	if got.DepartmentConfidence != 0.65 {
		t.Errorf("correction should keep model confidence, got %v", got.DepartmentConfidence)
	}
	if got.Title != "Mosquito Problem" {
		t.Errorf("title = %q, want %q", got.Title, "Mosquito Problem")
	}
}

func TestTextFallsBackToHeuristicWhenBackendDown(t *testing.T) {
	c := New(&fakeBackend{available: false}, time.Second)

	got := c.Text(context.Background(), "urgent garbage overflow near school")
	if got.Absent() {
		t.Fatal("heuristic path should still classify")
	}
	if got.Severity != models.SeveritySevere {
		t.Errorf("severity = %v, want Severe", got.Severity)
	}
	if got.Department != models.DepartmentSanitation {
		t.Errorf("department = %v, want Sanitation", got.Department)
	}
	if c.Mode() != "heuristic" {
		t.Errorf("Mode() = %q, want heuristic", c.Mode())
	}
}

func TestTextBackendErrorIsAbsent(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		classifyText: func(string, []string) ([]Score, error) {
			return nil, context.DeadlineExceeded
		},
	}
	c := New(backend, time.Second)

	got := c.Text(context.Background(), "pothole on main road")
	if !got.Absent() {
		t.Errorf("Text() = %+v, want absent on backend error", got)
	}
}

func TestImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	backend := &fakeBackend{
		available: true,
		classifyImage: func(image []byte, labels []string) ([]Score, error) {
			if string(image) != "jpegbytes" {
				t.Errorf("backend got image %q, want fetched bytes", image)
			}
			if len(labels) == len(models.SeverityLabels()) {
				return []Score{
					{Label: "Minor issue", Score: 0.2},
					{Label: "Severe issue", Score: 0.7},
					{Label: "Moderate issue", Score: 0.1},
				}, nil
			}
			return []Score{{Label: "Electricity and Streetlights", Score: 0.55}}, nil
		},
	}
	c := New(backend, time.Second)

	got := c.Image(context.Background(), srv.URL+"/photo.jpg")
	if got.Severity != models.SeveritySevere || got.SeverityConfidence != 0.7 {
		t.Errorf("severity = %v/%v, want top-scored Severe/0.7", got.Severity, got.SeverityConfidence)
	}
	if got.Department != models.DepartmentElectricity {
		t.Errorf("department = %v, want Electricity", got.Department)
	}
	if got.Title != "Issue in Electricity" {
		t.Errorf("title = %q, want %q", got.Title, "Issue in Electricity")
	}
}

func TestImageAbsentWhenBackendDown(t *testing.T) {
	c := New(&fakeBackend{available: false}, time.Second)
	got := c.Image(context.Background(), "http://127.0.0.1:1/unreachable.jpg")
	if !got.Absent() {
		t.Errorf("Image() = %+v, want absent without a backend", got)
	}
}

func TestImageAbsentOnFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(&fakeBackend{available: true}, time.Second)
	got := c.Image(context.Background(), srv.URL+"/missing.jpg")
	if !got.Absent() {
		t.Errorf("Image() = %+v, want absent on fetch failure", got)
	}
}

func TestAudioBytes(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		transcribe: func(audio []byte, sampleRate int) (string, error) {
			if sampleRate != audioSampleRate {
				t.Errorf("sample rate = %d, want %d", sampleRate, audioSampleRate)
			}
			return "water leaking from broken pipe", nil
		},
		classifyText: scoresFor("Severe issue", 0.88, "Water Supply and Drainage", 0.77),
	}
	c := New(backend, time.Second)

	got, transcript := c.AudioBytes(context.Background(), []byte("wavbytes"))
	if transcript != "water leaking from broken pipe" {
		t.Errorf("transcript = %q", transcript)
	}
	if got.Severity != models.SeveritySevere || got.Department != models.DepartmentWater {
		t.Errorf("prediction = %+v, want Severe/Water from transcript", got)
	}
}

func TestAudioBytesTranscriptionErrorIsAbsent(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		transcribe: func([]byte, int) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	c := New(backend, time.Second)

	got, transcript := c.AudioBytes(context.Background(), []byte("wavbytes"))
	if !got.Absent() || transcript != "" {
		t.Errorf("AudioBytes() = %+v, %q, want absent and empty transcript", got, transcript)
	}
}
