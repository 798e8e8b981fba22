package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/crime-report-api/models"
)

const notificationName = "notifications"

// NotificationDatabase is the injected notification store: append, query by
// user and mark-read. Persisted so restarts do not drop pending
// notifications.
type NotificationDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error)
	InsertOne(ctx context.Context, n models.Notification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error) {
	var notifications []models.Notification
	curr, err := n.db.Collection(notificationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification models.Notification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := n.db.Collection(notificationName).InsertOne(ctx, notification, opts...)
	return res, err
}

func (n *notificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return n.db.Collection(notificationName).UpdateOne(ctx, filter, update, opts...)
}

func (n *notificationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, filter, opts...)
}
