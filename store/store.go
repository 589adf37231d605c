// Package store persists classification results onto report documents in
// MongoDB. Reports are created by the main application; this service only
// updates the classification fields, so a repeated update for the same job
// is a harmless no-op.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"civic-ml-pipeline/models"
)

const collectionReports = "reports"

// ErrReportNotFound means no report document matches the job's report id.
// The report was likely deleted while the job sat in the queue.
var ErrReportNotFound = errors.New("report not found")

type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client:     client,
		collection: client.Database(dbName).Collection(collectionReports),
	}, nil
}

// ClassificationUpdate carries the fields written back to a report document.
type ClassificationUpdate struct {
	Result models.ClassificationResponse
	// Title, when non-empty, replaces the report's display title.
	Title string
}

// SaveClassification writes the classification onto the report document.
func (s *Store) SaveClassification(ctx context.Context, reportID string, update ClassificationUpdate) error {
	id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", reportID, err)
	}

	set := bson.M{
		"mlClassified": true,
		"mlSeverity":   update.Result.Severity,
		"mlDepartment": update.Result.Department,
		"mlConfidence": update.Result.Confidence,
		"mlTitle":      update.Result.Title,
		"mlConflicts":  update.Result.Conflicts,
		"department":   update.Result.Department,
		"severity":     update.Result.Severity,
	}
	if update.Title != "" {
		set["title"] = update.Title
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ReportProjection is the sanitized view of a report sent to webhooks.
type ReportProjection struct {
	ID           string            `bson:"-" json:"_id"`
	Title        string            `bson:"title" json:"title"`
	Description  string            `bson:"description" json:"description"`
	Department   string            `bson:"department" json:"department"`
	Severity     string            `bson:"severity" json:"severity"`
	MLClassified bool              `bson:"mlClassified" json:"mlClassified"`
	MLSeverity   string            `bson:"mlSeverity" json:"mlSeverity"`
	MLDepartment string            `bson:"mlDepartment" json:"mlDepartment"`
	MLConfidence models.Confidence `bson:"mlConfidence" json:"mlConfidence"`
	MLTitle      string            `bson:"mlTitle" json:"mlTitle"`
	MLConflicts  string            `bson:"mlConflicts,omitempty" json:"mlConflicts,omitempty"`
}

// GetReport reads back the report after an update, with internal fields
// stripped so the projection can be forwarded verbatim.
func (s *Store) GetReport(ctx context.Context, reportID string) (*ReportProjection, error) {
	id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return nil, fmt.Errorf("invalid report id %q: %w", reportID, err)
	}

	var doc struct {
		ID               primitive.ObjectID `bson:"_id"`
		ReportProjection `bson:",inline"`
	}
	err = s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	proj := doc.ReportProjection
	proj.ID = doc.ID.Hex()
	return &proj, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
