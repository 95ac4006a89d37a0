package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
)

func (db *Database) SaveUnpublishedEvent(ctx context.Context, id string, eventType int, body string, now int64) error {
	client := db.Client.Database(db.DbName).Collection(model.UnpublishedEventCollection)

	_, err := client.InsertOne(ctx, model.NewUnpublishedEventDocument(id, eventType, body, now))
	if err != nil {
		return err
	}

	return nil
}

func (db *Database) FindUnpublishedEvents(ctx context.Context) ([]model.UnpublishedEventDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.UnpublishedEventCollection)

	cursor, err := client.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.UnpublishedEventDocument
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (db *Database) DeleteUnpublishedEvent(ctx context.Context, id string) error {
	client := db.Client.Database(db.DbName).Collection(model.UnpublishedEventCollection)
	_, err := client.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
