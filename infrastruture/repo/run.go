package repo

import (
	"context"
	"errors"
	"time"

	dmn "github.com/beka-birhanu/maze-solver/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// runDocument is the stored form of a run. IDs are kept as strings so the
// collection stays readable from the mongo shell.
type runDocument struct {
	ID          string    `bson:"_id"`
	SessionID   string    `bson:"sessionId"`
	Algorithm   string    `bson:"algorithm"`
	Rows        int       `bson:"rows"`
	Cols        int       `bson:"cols"`
	Walls       int       `bson:"walls"`
	TraceLength int       `bson:"traceLength"`
	PathLength  int       `bson:"pathLength"`
	Found       bool      `bson:"found"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func toDocument(r *dmn.Run) *runDocument {
	return &runDocument{
		ID:          r.ID.String(),
		SessionID:   r.SessionID.String(),
		Algorithm:   r.Algorithm,
		Rows:        r.Rows,
		Cols:        r.Cols,
		Walls:       r.Walls,
		TraceLength: r.TraceLength,
		PathLength:  r.PathLength,
		Found:       r.Found,
		CreatedAt:   r.CreatedAt,
	}
}

func (d *runDocument) toRun() (*dmn.Run, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	sessionID, err := uuid.Parse(d.SessionID)
	if err != nil {
		return nil, err
	}

	return &dmn.Run{
		ID:          id,
		SessionID:   sessionID,
		Algorithm:   d.Algorithm,
		Rows:        d.Rows,
		Cols:        d.Cols,
		Walls:       d.Walls,
		TraceLength: d.TraceLength,
		PathLength:  d.PathLength,
		Found:       d.Found,
		CreatedAt:   d.CreatedAt,
	}, nil
}

// RunRepo handles the persistence of solve runs.
type RunRepo struct {
	collection *mongo.Collection
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &RunRepo{
		collection: collection,
	}
}

// Save inserts a run.
func (r *RunRepo) Save(ctx context.Context, run *dmn.Run) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, toDocument(run)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("run id conflict")
		}
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// ByID retrieves a run by its ID.
// Returns dmn.ErrRunNotFound if no run has the ID.
func (r *RunRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	filter := bson.M{"_id": id.String()}
	var doc runDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrRunNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return doc.toRun()
}

// BySession lists up to limit runs of a session, newest first.
func (r *RunRepo) BySession(ctx context.Context, sessionID uuid.UUID, limit int64) ([]*dmn.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	filter := bson.M{"sessionId": sessionID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}

	var docs []runDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}

	runs := make([]*dmn.Run, 0, len(docs))
	for i := range docs {
		run, err := docs[i].toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
