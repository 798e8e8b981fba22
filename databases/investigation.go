package databases

// go generate: mockery --name InvestigationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/crime-report-api/models"
)

const investigationName = "investigations"

// InvestigationDatabase contains the methods to use with the investigation database
type InvestigationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Investigation, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Investigation, error)
	InsertOne(ctx context.Context, inv models.Investigation, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type investigationDatabase struct {
	db DatabaseHelper
}

// NewInvestigationDatabase initializes a new instance of investigation database with the provided db connection
func NewInvestigationDatabase(db DatabaseHelper) InvestigationDatabase {
	return &investigationDatabase{
		db: db,
	}
}

func (i *investigationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Investigation, error) {
	inv := &models.Investigation{}
	err := i.db.Collection(investigationName).FindOne(ctx, filter, opts...).Decode(&inv)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (i *investigationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Investigation, error) {
	var invs []models.Investigation
	curr, err := i.db.Collection(investigationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &invs)
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (i *investigationDatabase) InsertOne(ctx context.Context, inv models.Investigation, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := i.db.Collection(investigationName).InsertOne(ctx, inv, opts...)
	return res, err
}

func (i *investigationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return i.db.Collection(investigationName).CountDocuments(ctx, filter, opts...)
}
