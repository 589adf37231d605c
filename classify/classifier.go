package classify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	"civic-ml-pipeline/corrections"
	"civic-ml-pipeline/models"
	"civic-ml-pipeline/titles"
)

// audioSampleRate is the rate audio is resampled to before transcription.
const audioSampleRate = 16000

// Classifier produces per-modality predictions. Failures on any modality
// yield an absent prediction rather than an error; fusion decides whether the
// request as a whole still succeeds.
type Classifier struct {
	backend ModelBackend
	fetch   *http.Client
}

// New creates a Classifier. fetchTimeout bounds downloads of image and audio
// URLs referenced by requests.
func New(backend ModelBackend, fetchTimeout time.Duration) *Classifier {
	return &Classifier{
		backend: backend,
		fetch:   &http.Client{Timeout: fetchTimeout},
	}
}

// Mode reports how text classification currently runs.
func (c *Classifier) Mode() string {
	if c.backend != nil && c.backend.Available() {
		return "full"
	}
	return "heuristic"
}

// Text classifies report text. Placeholder titles are stripped before
// classification so they never influence the model.
func (c *Classifier) Text(ctx context.Context, text string) models.ModalityPrediction {
	clean := strings.TrimSpace(strings.ReplaceAll(text, models.PlaceholderTitle, ""))
	if clean == "" {
		return models.ModalityPrediction{}
	}

	if c.backend == nil || !c.backend.Available() {
		return heuristicText(clean)
	}

	sevTop, err := c.classifyTop(ctx, clean, models.SeverityLabels())
	if err != nil {
		log.WithError(err).Error("text severity classification failed")
		return models.ModalityPrediction{}
	}
	deptTop, err := c.classifyTop(ctx, clean, models.DepartmentLabels())
	if err != nil {
		log.WithError(err).Error("text department classification failed")
		return models.ModalityPrediction{}
	}

	severity, ok := models.ParseSeverityLabel(sevTop.Label)
	if !ok {
		log.Errorf("backend returned unknown severity label %q", sevTop.Label)
		return models.ModalityPrediction{}
	}
	department, ok := models.ParseDepartmentLabel(deptTop.Label)
	if !ok {
		log.Errorf("backend returned unknown department label %q", deptTop.Label)
		return models.ModalityPrediction{}
	}

	department = corrections.Apply(clean, department)

	return models.ModalityPrediction{
		Severity:             severity,
		Department:           department,
		Title:                titles.Generate(clean, department),
		SeverityConfidence:   sevTop.Score,
		DepartmentConfidence: deptTop.Score,
	}
}

// Image classifies the image at the given URL. Requires the model backend;
// there is no heuristic image path.
func (c *Classifier) Image(ctx context.Context, imageURL string) models.ModalityPrediction {
	if c.backend == nil || !c.backend.Available() {
		return models.ModalityPrediction{}
	}

	data, err := c.fetchBytes(ctx, imageURL)
	if err != nil {
		log.WithError(err).Errorf("failed to fetch image %s", imageURL)
		return models.ModalityPrediction{}
	}

	sevScores, err := c.backend.ClassifyImage(ctx, data, models.SeverityLabels())
	if err != nil {
		log.WithError(err).Error("image severity classification failed")
		return models.ModalityPrediction{}
	}
	deptScores, err := c.backend.ClassifyImage(ctx, data, models.DepartmentLabels())
	if err != nil {
		log.WithError(err).Error("image department classification failed")
		return models.ModalityPrediction{}
	}

	sevTop, ok := best(sevScores)
	if !ok {
		return models.ModalityPrediction{}
	}
	deptTop, ok := best(deptScores)
	if !ok {
		return models.ModalityPrediction{}
	}

	severity, ok := models.ParseSeverityLabel(sevTop.Label)
	if !ok {
		return models.ModalityPrediction{}
	}
	department, ok := models.ParseDepartmentLabel(deptTop.Label)
	if !ok {
		return models.ModalityPrediction{}
	}

	return models.ModalityPrediction{
		Severity:             severity,
		Department:           department,
		Title:                "Issue in " + department.Code(),
		SeverityConfidence:   sevTop.Score,
		DepartmentConfidence: deptTop.Score,
	}
}

// Audio classifies the audio at the given URL by transcribing it and running
// the text path. The transcript is returned alongside the prediction.
func (c *Classifier) Audio(ctx context.Context, audioURL string) (models.ModalityPrediction, string) {
	data, err := c.fetchBytes(ctx, audioURL)
	if err != nil {
		log.WithError(err).Errorf("failed to fetch audio %s", audioURL)
		return models.ModalityPrediction{}, ""
	}
	return c.AudioBytes(ctx, data)
}

// AudioBytes classifies raw audio bytes, e.g. from a direct file upload.
func (c *Classifier) AudioBytes(ctx context.Context, data []byte) (models.ModalityPrediction, string) {
	if c.backend == nil || !c.backend.Available() {
		return models.ModalityPrediction{}, ""
	}

	transcript, err := c.backend.Transcribe(ctx, data, audioSampleRate)
	if err != nil {
		log.WithError(err).Error("audio transcription failed")
		return models.ModalityPrediction{}, ""
	}

	return c.Text(ctx, transcript), transcript
}

func (c *Classifier) classifyTop(ctx context.Context, text string, labels []string) (Score, error) {
	scores, err := c.backend.ClassifyText(ctx, text, labels)
	if err != nil {
		return Score{}, err
	}
	top, ok := best(scores)
	if !ok {
		return Score{}, fmt.Errorf("backend returned no scores")
	}
	return top, nil
}

func (c *Classifier) fetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
