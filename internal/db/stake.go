package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
)

// GetOrCreatePoolState fetches the singleton pool accumulator, initializing it
// on first use with the configured initial reward rate.
func (db *Database) GetOrCreatePoolState(ctx context.Context, initialRateBps, now int64) (*model.PoolStateDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.PoolStateCollection)
	filter := bson.M{"_id": model.PoolStateDocId}
	// setOnInsert is only applied when the document does not exist yet
	update := bson.M{
		"$setOnInsert": model.NewPoolStateDocument(initialRateBps, now),
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var result model.PoolStateDocument
	err := client.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (db *Database) GetStakePosition(ctx context.Context, staker, asset string) (*model.StakePositionDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.StakePositionCollection)
	filter := bson.M{"_id": model.StakePositionId(staker, asset)}
	var position model.StakePositionDocument
	err := client.FindOne(ctx, filter).Decode(&position)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.StakePositionId(staker, asset),
				Message: "Stake position not found",
			}
		}
		return nil, err
	}
	return &position, nil
}

// SaveStakeState upserts the pool accumulator and the mutated stake position
// in a single transaction. Every stake mutation goes through here so the pool
// totals, reward index and the acting account's position stay consistent.
func (db *Database) SaveStakeState(
	ctx context.Context, pool *model.PoolStateDocument, position *model.StakePositionDocument,
) error {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		poolClient := db.Client.Database(db.DbName).Collection(model.PoolStateCollection)
		positionClient := db.Client.Database(db.DbName).Collection(model.StakePositionCollection)

		poolFilter := bson.M{"_id": pool.Id}
		_, err := poolClient.ReplaceOne(sessCtx, poolFilter, pool, options.Replace().SetUpsert(true))
		if err != nil {
			return nil, err
		}

		positionFilter := bson.M{"_id": position.Id}
		_, err = positionClient.ReplaceOne(sessCtx, positionFilter, position, options.Replace().SetUpsert(true))
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, txErr := db.txWithRetries(ctx, transactionWork)
	return txErr
}

// FindStakePositionsByStaker returns every active position held by one account
// across assets. Voting power is aggregated over this set.
func (db *Database) FindStakePositionsByStaker(ctx context.Context, staker string) ([]model.StakePositionDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.StakePositionCollection)
	filter := bson.M{"staker": staker, "active": true}

	cursor, err := client.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var positions []model.StakePositionDocument
	if err = cursor.All(ctx, &positions); err != nil {
		return nil, err
	}

	return positions, nil
}

func (db *Database) FindActiveStakePositions(ctx context.Context) ([]model.StakePositionDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.StakePositionCollection)
	filter := bson.M{"active": true}

	cursor, err := client.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var positions []model.StakePositionDocument
	if err = cursor.All(ctx, &positions); err != nil {
		return nil, err
	}

	return positions, nil
}
