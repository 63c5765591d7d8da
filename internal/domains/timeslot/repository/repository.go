package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtside/infras/otel"
	"courtside/infras/postgres"
	"courtside/internal/domains/timeslot/model"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	gRepo "courtside/shared/repository"
	"fmt"
)

type TimeSlot interface {
	GetByFacility(ctx context.Context, facilityID int64) ([]model.TimeSlot, error)
	// GetByIDs returns only slots that belong to facilityID.
	GetByIDs(ctx context.Context, facilityID int64, ids []int64) ([]model.TimeSlot, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.TimeSlot]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) TimeSlot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.TimeSlot](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

var orderByStart = gDto.QueryParams{
	SortBy:  model.TableName + "." + model.FieldStartTime,
	SortDir: gDto.SortDirAsc,
}

func (r *repositoryImpl) GetByFacility(ctx context.Context, facilityID int64) ([]model.TimeSlot, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".time_slot.GetByFacility")
	defer scope.End()

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldFacilityID, Value: facilityID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	slots, err := r.GetAll(ctx, orderByStart, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get facility time slots: %w", err)
	}

	return slots, nil
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, facilityID int64, ids []int64) ([]model.TimeSlot, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".time_slot.GetByIDs")
	defer scope.End()

	if len(ids) == 0 {
		return nil, nil
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldFacilityID, Value: facilityID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldID, Value: ids, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	slots, err := r.GetAll(ctx, orderByStart, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get time slots by ids: %w", err)
	}

	return slots, nil
}
