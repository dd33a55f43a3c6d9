package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentalWs/internal/modules/vehicles/domain"
)

type vehicleDoc struct {
	ID          string  `bson:"_id"`
	Name        string  `bson:"name"`
	Model       string  `bson:"model"`
	Type        string  `bson:"vehicle_type"`
	PricePerDay float64 `bson:"rental_price_per_day"`
	Status      string  `bson:"availability_status"`
	Location    string  `bson:"location"`
}

func toDoc(v *domain.Vehicle) vehicleDoc {
	return vehicleDoc{
		ID:          v.ID,
		Name:        v.Name,
		Model:       v.Model,
		Type:        string(v.Type),
		PricePerDay: v.PricePerDay,
		Status:      string(v.Status),
		Location:    v.Location,
	}
}

func (d vehicleDoc) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		ID:          d.ID,
		Name:        d.Name,
		Model:       d.Model,
		Type:        domain.Type(d.Type),
		PricePerDay: d.PricePerDay,
		Status:      domain.Status(d.Status),
		Location:    d.Location,
	}
}

// MongoRepository stores vehicles in the "vehicles" collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("vehicles")}
}

func (r *MongoRepository) Insert(ctx context.Context, vehicle *domain.Vehicle) error {
	if _, err := r.col.InsertOne(ctx, toDoc(vehicle)); err != nil {
		return fmt.Errorf("vehicles insert: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var doc vehicleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("vehicles find: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) Find(ctx context.Context, filter domain.Filter) ([]*domain.Vehicle, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["vehicle_type"] = string(filter.Type)
	}
	if filter.Status != "" {
		query["availability_status"] = string(filter.Status)
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["rental_price_per_day"] = price
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vehicles find: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*domain.Vehicle
	for cursor.Next(ctx) {
		var doc vehicleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("vehicles decode: %w", err)
		}
		vehicles = append(vehicles, doc.toDomain())
	}
	return vehicles, cursor.Err()
}

func (r *MongoRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": vehicle.ID}, toDoc(vehicle))
	if err != nil {
		return fmt.Errorf("vehicles update: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"availability_status": string(status)}})
	if err != nil {
		return fmt.Errorf("vehicles update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("vehicles delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
