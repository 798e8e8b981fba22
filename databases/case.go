package databases

// go generate: mockery --name CaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/crime-report-api/models"
)

const caseName = "cases"

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Case, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error)
	InsertOne(ctx context.Context, c models.Case, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error)
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Case, error) {
	crimeCase := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, filter, opts...).Decode(&crimeCase)
	if err != nil {
		return nil, err
	}
	return crimeCase, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Case, error) {
	var cases []models.Case
	curr, err := c.db.Collection(caseName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &cases)
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *caseDatabase) InsertOne(ctx context.Context, crimeCase models.Case, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(caseName).InsertOne(ctx, crimeCase, opts...)
	return res, err
}

func (c *caseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(caseName).UpdateOne(ctx, filter, update, opts...)
}

func (c *caseDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(caseName).UpdateMany(ctx, filter, update, opts...)
}

func (c *caseDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(caseName).CountDocuments(ctx, filter, opts...)
}

func (c *caseDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error) {
	return c.db.Collection(caseName).Aggregate(ctx, pipeline, opts...)
}
