package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rentalWs/internal/modules/rentals/domain"
)

type rentalDoc struct {
	ID         string    `bson:"_id"`
	VehicleID  string    `bson:"vehicle_id"`
	CustomerID string    `bson:"customer_id"`
	StartDate  time.Time `bson:"rental_start_date"`
	EndDate    time.Time `bson:"rental_end_date"`
	TotalCost  float64   `bson:"total_cost"`
	Status     string    `bson:"rental_status"`
}

func toDoc(r *domain.Rental) rentalDoc {
	return rentalDoc{
		ID:         r.ID,
		VehicleID:  r.VehicleID,
		CustomerID: r.CustomerID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		TotalCost:  r.TotalCost,
		Status:     string(r.Status),
	}
}

func (d rentalDoc) toDomain() *domain.Rental {
	return &domain.Rental{
		ID:         d.ID,
		VehicleID:  d.VehicleID,
		CustomerID: d.CustomerID,
		StartDate:  d.StartDate.UTC(),
		EndDate:    d.EndDate.UTC(),
		TotalCost:  d.TotalCost,
		Status:     domain.Status(d.Status),
	}
}

// MongoRepository stores rentals in the "rentals" collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("rentals")}
}

func (r *MongoRepository) Insert(ctx context.Context, rental *domain.Rental) error {
	if _, err := r.col.InsertOne(ctx, toDoc(rental)); err != nil {
		return fmt.Errorf("rentals insert: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.Rental, error) {
	var doc rentalDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("rentals find: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]*domain.Rental, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) FindByVehicle(ctx context.Context, vehicleID string, status domain.Status) ([]*domain.Rental, error) {
	return r.find(ctx, bson.M{"vehicle_id": vehicleID, "rental_status": string(status)})
}

func (r *MongoRepository) find(ctx context.Context, query bson.M) ([]*domain.Rental, error) {
	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rentals find: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*domain.Rental
	for cursor.Next(ctx) {
		var doc rentalDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("rentals decode: %w", err)
		}
		rentals = append(rentals, doc.toDomain())
	}
	return rentals, cursor.Err()
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rental_status": string(status)}})
	if err != nil {
		return fmt.Errorf("rentals update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("rentals delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
