package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civic-ml-pipeline/classify"
	"civic-ml-pipeline/models"
)

type stubBackend struct {
	available bool
	text      func(text string, labels []string) ([]classify.Score, error)
	image     func(image []byte, labels []string) ([]classify.Score, error)
	audio     func(audio []byte, sampleRate int) (string, error)
}

func (b *stubBackend) Available() bool { return b.available }

func (b *stubBackend) ClassifyText(_ context.Context, text string, labels []string) ([]classify.Score, error) {
	if b.text == nil {
		return nil, errors.New("no text stub")
	}
	return b.text(text, labels)
}

func (b *stubBackend) ClassifyImage(_ context.Context, image []byte, labels []string) ([]classify.Score, error) {
	if b.image == nil {
		return nil, errors.New("no image stub")
	}
	return b.image(image, labels)
}

func (b *stubBackend) Transcribe(_ context.Context, audio []byte, sampleRate int) (string, error) {
	if b.audio == nil {
		return "", errors.New("no audio stub")
	}
	return b.audio(audio, sampleRate)
}

func topScore(severity string, sevConf float64, department string, deptConf float64) func(string, []string) ([]classify.Score, error) {
	return func(_ string, labels []string) ([]classify.Score, error) {
		if len(labels) == len(models.SeverityLabels()) {
			return []classify.Score{{Label: severity, Score: sevConf}}, nil
		}
		return []classify.Score{{Label: department, Score: deptConf}}, nil
	}
}

func newService(backend classify.ModelBackend) *Service {
	return New(classify.New(backend, time.Second))
}

func TestClassifyRejectsEmptyRequest(t *testing.T) {
	svc := newService(&stubBackend{available: true})
	_, err := svc.Classify(context.Background(), models.ClassificationRequest{})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("Classify(empty) error = %v, want ErrNoInput", err)
	}
}

func TestClassifyTextOnly(t *testing.T) {
	svc := newService(&stubBackend{
		available: true,
		text:      topScore("Severe issue", 0.912345, "Roads and Transport", 0.843),
	})

	resp, err := svc.Classify(context.Background(), models.ClassificationRequest{
		Text: "Big pothole near bus stand",
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if resp.Severity != "HIGH" || resp.Department != "Roads" {
		t.Errorf("got %s/%s, want HIGH/Roads", resp.Severity, resp.Department)
	}
	if resp.Title != "Pothole Issue" {
		t.Errorf("title = %q, want %q", resp.Title, "Pothole Issue")
	}
	if resp.Confidence.Severity != 0.912 {
		t.Errorf("severity confidence = %v, want rounded 0.912", resp.Confidence.Severity)
	}
	if resp.Conflicts != "" {
		t.Errorf("unexpected conflicts %q", resp.Conflicts)
	}
}

func TestClassifyTextImageConflict(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("jpegbytes"))
	}))
	defer imgSrv.Close()

	svc := newService(&stubBackend{
		available: true,
		text:      topScore("Severe issue", 0.9, "Roads and Transport", 0.8),
		image: func(_ []byte, labels []string) ([]classify.Score, error) {
			if len(labels) == len(models.SeverityLabels()) {
				return []classify.Score{{Label: "Minor issue", Score: 0.6}}, nil
			}
			return []classify.Score{{Label: "Electricity and Streetlights", Score: 0.7}}, nil
		},
	})

	resp, err := svc.Classify(context.Background(), models.ClassificationRequest{
		Text:     "Big pothole near bus stand",
		ImageURL: imgSrv.URL + "/photo.jpg",
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if resp.Severity != "HIGH" {
		t.Errorf("severity = %s, want HIGH from the worse modality", resp.Severity)
	}
	if resp.Department != "Roads" {
		t.Errorf("department = %s, want primary Roads", resp.Department)
	}
	if resp.Title != "Pothole Issue" {
		t.Errorf("title = %q, want text title", resp.Title)
	}
	want := "Text suggests Roads and Transport, image suggests Electricity and Streetlights"
	if resp.Conflicts != want {
		t.Errorf("conflicts = %q, want %q", resp.Conflicts, want)
	}
}

func TestClassifyAudioBecomesPrimaryWithoutText(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("wavbytes"))
	}))
	defer audioSrv.Close()

	svc := newService(&stubBackend{
		available: true,
		audio: func([]byte, int) (string, error) {
			return "garbage overflowing near the park", nil
		},
		text: topScore("Severe issue", 0.85, "Sanitation and Waste Management", 0.8),
	})

	resp, err := svc.Classify(context.Background(), models.ClassificationRequest{
		AudioURL: audioSrv.URL + "/clip.wav",
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if resp.Department != "Sanitation" {
		t.Errorf("department = %s, want Sanitation from the transcript", resp.Department)
	}
}

func TestClassifyAllModalitiesFailed(t *testing.T) {
	svc := newService(&stubBackend{
		available: true,
		image: func([]byte, []string) ([]classify.Score, error) {
			return nil, errors.New("model crashed")
		},
	})

	_, err := svc.Classify(context.Background(), models.ClassificationRequest{
		ImageURL: "http://127.0.0.1:1/unreachable.jpg",
	})
	if !errors.Is(err, ErrClassificationFailed) {
		t.Errorf("Classify() error = %v, want ErrClassificationFailed", err)
	}
}

func TestClassifyHeuristicModeWithoutBackend(t *testing.T) {
	svc := newService(&stubBackend{available: false})
	if svc.Mode() != "heuristic" {
		t.Errorf("Mode() = %q, want heuristic", svc.Mode())
	}

	resp, err := svc.Classify(context.Background(), models.ClassificationRequest{
		Text: "urgent garbage overflow near school",
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if resp.Severity != "HIGH" || resp.Department != "Sanitation" {
		t.Errorf("got %s/%s, want HIGH/Sanitation from keywords", resp.Severity, resp.Department)
	}
}

func TestClassifyAudioUpload(t *testing.T) {
	svc := newService(&stubBackend{
		available: true,
		audio: func([]byte, int) (string, error) {
			return "street light not working", nil
		},
		text: topScore("Moderate issue", 0.66, "Electricity and Streetlights", 0.71),
	})

	resp, err := svc.ClassifyAudioUpload(context.Background(), []byte("wavbytes"))
	if err != nil {
		t.Fatalf("ClassifyAudioUpload() error: %v", err)
	}
	if resp.TranscribedText != "street light not working" {
		t.Errorf("transcript = %q", resp.TranscribedText)
	}
	if resp.Severity != "MEDIUM" || resp.Department != "Electricity" {
		t.Errorf("got %s/%s, want MEDIUM/Electricity", resp.Severity, resp.Department)
	}
}
