package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtside/infras/otel"
	"courtside/infras/postgres"
	"courtside/internal/domains/facility/model"
	gDto "courtside/shared/dto"
	gRepo "courtside/shared/repository"
)

type Facility interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Facility, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Facility]
}

func New(db *postgres.Connection, otel otel.Otel) Facility {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Facility](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
