// Package service orchestrates classification requests end to end: fan out
// to the per-modality classifiers, fuse the predictions, shape the response.
package service

import (
	"context"
	"errors"
	"math"

	"civic-ml-pipeline/classify"
	"civic-ml-pipeline/fusion"
	"civic-ml-pipeline/models"
)

// ErrNoInput means the request carried no text, image URL or audio URL.
var ErrNoInput = errors.New("at least one of text, image_url, or audio_url must be provided")

// ErrClassificationFailed means every supplied modality failed to classify.
var ErrClassificationFailed = errors.New("classification failed")

type Service struct {
	classifier *classify.Classifier
}

func New(classifier *classify.Classifier) *Service {
	return &Service{classifier: classifier}
}

// Mode reports the current classification mode, full or heuristic.
func (s *Service) Mode() string {
	return s.classifier.Mode()
}

// Classify runs every supplied modality and fuses the results. The primary
// modality is text when it produced a prediction, otherwise the audio
// transcript; the image acts as the secondary signal.
func (s *Service) Classify(ctx context.Context, req models.ClassificationRequest) (models.ClassificationResponse, error) {
	if req.Text == "" && req.ImageURL == "" && req.AudioURL == "" {
		return models.ClassificationResponse{}, ErrNoInput
	}

	var textPred, imagePred, audioPred models.ModalityPrediction

	if req.Text != "" {
		textPred = s.classifier.Text(ctx, req.Text)
	}
	if req.ImageURL != "" {
		imagePred = s.classifier.Image(ctx, req.ImageURL)
	}
	if req.AudioURL != "" {
		audioPred, _ = s.classifier.Audio(ctx, req.AudioURL)
	}

	primary := textPred
	if primary.Absent() {
		primary = audioPred
	}

	result := fusion.Merge(primary, imagePred)
	if !result.Usable() {
		return models.ClassificationResponse{}, ErrClassificationFailed
	}

	return toResponse(result), nil
}

// ClassifyAudioUpload classifies raw uploaded audio and returns the
// transcript alongside the classification.
func (s *Service) ClassifyAudioUpload(ctx context.Context, data []byte) (models.AudioClassificationResponse, error) {
	pred, transcript := s.classifier.AudioBytes(ctx, data)

	result := fusion.Merge(pred, models.ModalityPrediction{})
	if !result.Usable() {
		return models.AudioClassificationResponse{}, ErrClassificationFailed
	}

	return models.AudioClassificationResponse{
		TranscribedText:        transcript,
		ClassificationResponse: toResponse(result),
	}, nil
}

func toResponse(result models.FusionResult) models.ClassificationResponse {
	return models.ClassificationResponse{
		Severity:   result.Severity.Code(),
		Department: result.Department.Code(),
		Title:      result.Title,
		Confidence: models.Confidence{
			Severity:   round3(result.SeverityConfidence),
			Department: round3(result.DepartmentConfidence),
		},
		Conflicts: result.ConflictNote,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
