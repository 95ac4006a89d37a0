package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

func (db *Database) InsertGuarantee(ctx context.Context, guarantee *model.GuaranteeDocument) error {
	client := db.Client.Database(db.DbName).Collection(model.GuaranteeCollection)
	_, err := client.InsertOne(ctx, guarantee)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     guarantee.Id,
						Message: "Guarantee already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) FindGuaranteeById(ctx context.Context, id string) (*model.GuaranteeDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.GuaranteeCollection)
	filter := bson.M{"_id": id}
	var guarantee model.GuaranteeDocument
	err := client.FindOne(ctx, filter).Decode(&guarantee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "Guarantee not found",
			}
		}
		return nil, err
	}
	return &guarantee, nil
}

// TransitionGuarantee replaces the guarantee document only if its stored
// status is still one of the eligible previous states. A non-matching status
// returns NotFoundError and writes nothing, which is what turns a wrong-status
// call into a no-op at the persistence layer.
func (db *Database) TransitionGuarantee(
	ctx context.Context, guarantee *model.GuaranteeDocument, eligiblePreviousStates []types.GuaranteeStatus,
) error {
	client := db.Client.Database(db.DbName).Collection(model.GuaranteeCollection)

	qualifiedStates := make([]string, 0, len(eligiblePreviousStates))
	for _, status := range eligiblePreviousStates {
		qualifiedStates = append(qualifiedStates, status.ToString())
	}

	filter := bson.M{"_id": guarantee.Id, "status": bson.M{"$in": qualifiedStates}}
	result, err := client.ReplaceOne(ctx, filter, guarantee)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     guarantee.Id,
			Message: "Guarantee not found or not in an eligible status",
		}
	}
	return nil
}

func (db *Database) FindGuaranteesByParty(
	ctx context.Context, party string, status types.GuaranteeStatus, paginationToken string,
) (*DbResultMap[model.GuaranteeDocument], error) {
	client := db.Client.Database(db.DbName).Collection(model.GuaranteeCollection)

	partyFilter := bson.M{
		"$or": []bson.M{
			{"buyer": party},
			{"seller": party},
			{"logistics_partner": party},
		},
	}
	if status != "" {
		partyFilter = bson.M{
			"status": status.ToString(),
			"$or":    partyFilter["$or"],
		}
	}
	filter := partyFilter
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	opts.SetLimit(db.cfg.MaxPaginationLimit)

	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.GuaranteePagination](paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		filter = bson.M{
			"$and": []bson.M{
				partyFilter,
				{"$or": []bson.M{
					{"created_at": bson.M{"$lt": decodedToken.CreatedAt}},
					{"created_at": decodedToken.CreatedAt, "_id": bson.M{"$gt": decodedToken.Id}},
				}},
			},
		}
	}

	cursor, err := client.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var guarantees []model.GuaranteeDocument
	if err = cursor.All(ctx, &guarantees); err != nil {
		return nil, err
	}

	return toResultMapWithPaginationToken(db.cfg, guarantees, model.BuildGuaranteePaginationToken)
}
