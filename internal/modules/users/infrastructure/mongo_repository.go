package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentalWs/internal/modules/users/domain"
)

type userDoc struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password"`
	Role         string `bson:"role"`
}

func toDoc(u *domain.User) userDoc {
	return userDoc{ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash, Role: string(u.Role)}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{ID: d.ID, Name: d.Name, Email: d.Email, PasswordHash: d.PasswordHash, Role: domain.Role(d.Role)}
}

// MongoRepository stores users in the "users" collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("users")}
}

func (r *MongoRepository) Insert(ctx context.Context, user *domain.User) error {
	if err := r.col.FindOne(ctx, bson.M{"email": user.Email}).Err(); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("users insert precheck: %w", err)
	}
	if _, err := r.col.InsertOne(ctx, toDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("users insert: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("users find: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("users find all: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("users decode: %w", err)
		}
		users = append(users, doc.toDomain())
	}
	return users, cursor.Err()
}

func (r *MongoRepository) Update(ctx context.Context, user *domain.User) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, toDoc(user))
	if err != nil {
		return fmt.Errorf("users update: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("users delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
