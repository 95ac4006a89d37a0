package model

const UnpublishedEventCollection = "unpublished_events"

// UnpublishedEventDocument is the outbox entry for an activity event whose
// queue publish failed. The replay script republishes and deletes these.
type UnpublishedEventDocument struct {
	Id        string `bson:"_id"`
	EventType int    `bson:"event_type"`
	Body      string `bson:"body"`
	CreatedAt int64  `bson:"created_at"`
}

func NewUnpublishedEventDocument(id string, eventType int, body string, createdAt int64) *UnpublishedEventDocument {
	return &UnpublishedEventDocument{
		Id:        id,
		EventType: eventType,
		Body:      body,
		CreatedAt: createdAt,
	}
}
