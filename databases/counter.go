package databases

// go generate: mockery --name CounterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterName = "counters"

// CounterDatabase hands out monotonic sequence numbers keyed by name,
// used for the per-day case-number counter.
type CounterDatabase interface {
	NextSequence(ctx context.Context, key string) (int64, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

type counterDoc struct {
	Seq int64 `bson:"seq"`
}

// NextSequence atomically increments and returns the counter for key. The
// upsert creates the day document on first use, so the first case of a day
// gets sequence 1.
func (c *counterDatabase) NextSequence(ctx context.Context, key string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	doc := &counterDoc{}
	err := c.db.Collection(counterName).FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
