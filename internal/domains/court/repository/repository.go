package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtside/infras/otel"
	"courtside/infras/postgres"
	"courtside/internal/domains/court/model"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	gRepo "courtside/shared/repository"
	"fmt"
)

type Court interface {
	// GetActive returns the bookable courts of a facility category ordered by id.
	GetActive(ctx context.Context, facilityID, categoryID int64) ([]model.Court, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Court, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Court]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Court {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Court](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

var orderByID = gDto.QueryParams{
	SortBy:  model.TableName + "." + model.FieldID,
	SortDir: gDto.SortDirAsc,
}

func (r *repositoryImpl) GetActive(ctx context.Context, facilityID, categoryID int64) ([]model.Court, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".court.GetActive")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldFacilityID, Value: facilityID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldCategoryID, Value: categoryID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusActive, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	courts, err := r.GetAll(ctx, orderByID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get active courts: %w", err)
	}

	return courts, nil
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, ids []int64) ([]model.Court, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".court.GetByIDs")
	defer scope.End()

	if len(ids) == 0 {
		return nil, nil
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: ids, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	courts, err := r.GetAll(ctx, orderByID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get courts by ids: %w", err)
	}

	return courts, nil
}
