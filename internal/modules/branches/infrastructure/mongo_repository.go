package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentalWs/internal/modules/branches/domain"
)

type branchDoc struct {
	ID            string `bson:"_id"`
	Name          string `bson:"name"`
	Location      string `bson:"location"`
	ContactNumber string `bson:"contact_number"`
}

func toDoc(b *domain.Branch) branchDoc {
	return branchDoc{ID: b.ID, Name: b.Name, Location: b.Location, ContactNumber: b.ContactNumber}
}

func (d branchDoc) toDomain() *domain.Branch {
	return &domain.Branch{ID: d.ID, Name: d.Name, Location: d.Location, ContactNumber: d.ContactNumber}
}

// MongoRepository stores branches in the "branches" collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("branches")}
}

func (r *MongoRepository) Insert(ctx context.Context, branch *domain.Branch) error {
	if _, err := r.col.InsertOne(ctx, toDoc(branch)); err != nil {
		return fmt.Errorf("branches insert: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	var doc branchDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("branches find: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("branches find all: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []*domain.Branch
	for cursor.Next(ctx) {
		var doc branchDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("branches decode: %w", err)
		}
		branches = append(branches, doc.toDomain())
	}
	return branches, cursor.Err()
}

func (r *MongoRepository) Update(ctx context.Context, branch *domain.Branch) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": branch.ID}, toDoc(branch))
	if err != nil {
		return fmt.Errorf("branches update: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("branches delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
