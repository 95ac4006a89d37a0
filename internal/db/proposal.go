package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
)

func (db *Database) InsertProposal(ctx context.Context, proposal *model.ProposalDocument) error {
	client := db.Client.Database(db.DbName).Collection(model.ProposalCollection)
	_, err := client.InsertOne(ctx, proposal)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     proposal.Id,
						Message: "Proposal already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) FindProposalById(ctx context.Context, id string) (*model.ProposalDocument, error) {
	client := db.Client.Database(db.DbName).Collection(model.ProposalCollection)
	filter := bson.M{"_id": id}
	var proposal model.ProposalDocument
	err := client.FindOne(ctx, filter).Decode(&proposal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "Proposal not found",
			}
		}
		return nil, err
	}
	return &proposal, nil
}

// UpdateProposal replaces an unresolved proposal document. The resolved filter
// guards against a tally write racing a concurrent resolution.
func (db *Database) UpdateProposal(ctx context.Context, proposal *model.ProposalDocument) error {
	client := db.Client.Database(db.DbName).Collection(model.ProposalCollection)
	filter := bson.M{"_id": proposal.Id, "resolved": false}
	result, err := client.ReplaceOne(ctx, filter, proposal)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     proposal.Id,
			Message: "Proposal not found or already resolved",
		}
	}
	return nil
}

func (db *Database) FindProposals(ctx context.Context, paginationToken string) (*DbResultMap[model.ProposalDocument], error) {
	client := db.Client.Database(db.DbName).Collection(model.ProposalCollection)

	filter := bson.M{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	opts.SetLimit(db.cfg.MaxPaginationLimit)

	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.ProposalPagination](paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		filter = bson.M{
			"$or": []bson.M{
				{"created_at": bson.M{"$lt": decodedToken.CreatedAt}},
				{"created_at": decodedToken.CreatedAt, "_id": bson.M{"$gt": decodedToken.Id}},
			},
		}
	}

	cursor, err := client.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var proposals []model.ProposalDocument
	if err = cursor.All(ctx, &proposals); err != nil {
		return nil, err
	}

	return toResultMapWithPaginationToken(db.cfg, proposals, model.BuildProposalPaginationToken)
}
