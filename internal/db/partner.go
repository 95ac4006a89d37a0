package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
)

func (db *Database) SaveAuthorizedPartner(ctx context.Context, account, authorizedBy string, now int64) error {
	client := db.Client.Database(db.DbName).Collection(model.AuthorizedPartnerCollection)
	filter := bson.M{"_id": account}
	update := bson.M{
		"$setOnInsert": model.NewAuthorizedPartnerDocument(account, authorizedBy, now),
	}
	// Authorizing an already-authorized partner is a no-op.
	_, err := client.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) DeleteAuthorizedPartner(ctx context.Context, account string) error {
	client := db.Client.Database(db.DbName).Collection(model.AuthorizedPartnerCollection)
	result, err := client.DeleteOne(ctx, bson.M{"_id": account})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{
			Key:     account,
			Message: "Partner not found",
		}
	}
	return nil
}

func (db *Database) IsAuthorizedPartner(ctx context.Context, account string) (bool, error) {
	client := db.Client.Database(db.DbName).Collection(model.AuthorizedPartnerCollection)
	var partner model.AuthorizedPartnerDocument
	err := client.FindOne(ctx, bson.M{"_id": account}).Decode(&partner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (db *Database) FindAuthorizedPartners(ctx context.Context) ([]model.AuthorizedPartnerDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.AuthorizedPartnerCollection)

	cursor, err := client.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var partners []model.AuthorizedPartnerDocument
	if err = cursor.All(ctx, &partners); err != nil {
		return nil, err
	}

	return partners, nil
}
