// Package teacherdir is the identity directory: it answers whether a
// teacher email exists and looks up display info. Teacher profiles are
// owned by an external service; this store only reads, plus a Create
// used by seeding and tests.
package teacherdir

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aalaeg1/into-EdU/internal/app/system/normalize"
	"github.com/aalaeg1/into-EdU/internal/domain/models"
)

// CollectionName is the MongoDB collection holding teacher records.
const CollectionName = "teachers"

// Store provides access to the teachers collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new teacher directory store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a teacher record. Emails are normalized before
// storage.
func (s *Store) Create(ctx context.Context, t models.Teacher) (*models.Teacher, error) {
	t.ID = primitive.NewObjectID()
	t.Email = normalize.Email(t.Email)
	t.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Missing resolves the given emails against the directory and returns
// the ones that do not exist, in the order given. Inputs are
// normalized before lookup; an empty input resolves trivially.
func (s *Store) Missing(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if n := normalize.Email(e); n != "" {
			normalized = append(normalized, n)
		}
	}

	cur, err := s.c.Find(ctx,
		bson.M{"email": bson.M{"$in": normalized}},
		options.Find().SetProjection(bson.M{"email": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	found := make(map[string]bool, len(normalized))
	for cur.Next(ctx) {
		var t models.Teacher
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		found[t.Email] = true
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, e := range normalized {
		if !found[e] {
			missing = append(missing, e)
		}
	}
	return missing, nil
}

// FindByEmails returns the teacher records for the given emails.
// Unknown emails are simply absent from the result.
func (s *Store) FindByEmails(ctx context.Context, emails []string) ([]models.Teacher, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, normalize.Email(e))
	}

	cur, err := s.c.Find(ctx, bson.M{"email": bson.M{"$in": normalized}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teachers []models.Teacher
	if err := cur.All(ctx, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// Search finds teachers whose email, nom, or prenom starts with the
// query, excluding the caller. Used by the share picker.
func (s *Store) Search(ctx context.Context, query, excludeEmail string, limit int64) ([]models.Teacher, error) {
	query = normalize.QueryParam(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	prefix := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(query), Options: "i"}
	match := bson.M{"$or": []bson.M{
		{"email": prefix},
		{"nom": prefix},
		{"prenom": prefix},
	}}

	filter := match
	if ex := normalize.Email(excludeEmail); ex != "" {
		filter = bson.M{"$and": []bson.M{
			{"email": bson.M{"$ne": ex}},
			match,
		}}
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "email", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teachers []models.Teacher
	if err := cur.All(ctx, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}
