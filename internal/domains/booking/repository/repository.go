package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"courtside/infras/otel"
	"courtside/infras/postgres"
	"courtside/internal/domains/booking/model"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/logger"
	gRepo "courtside/shared/repository"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrSlotTaken is returned when another active line already holds a court, slot and date.
	ErrSlotTaken = errors.New("court slot already taken")
	// ErrStatusChanged is returned when the booking left the expected statuses before the update ran.
	ErrStatusChanged = errors.New("booking status changed")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetDetails(ctx context.Context, bookingID int64) ([]model.Detail, error)
	// GetBookedLines returns the lines on date that still hold one of the given courts and slots.
	GetBookedLines(ctx context.Context, courtIDs, slotIDs []int64, date time.Time) ([]model.Detail, error)
	// InsertWithDetails stores the header and its lines atomically and returns the new booking id.
	InsertWithDetails(ctx context.Context, booking model.Booking, details []model.Detail) (int64, error)
	// UpdateStatus moves the header and every line to status in one transaction, only while the
	// header is still in one of from. Otherwise nothing is written and ErrStatusChanged is returned.
	UpdateStatus(ctx context.Context, bookingID int64, from []model.Status, status model.Status, fields map[string]any) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	details gRepo.Repository[model.Detail]
	db      *postgres.Connection
	otel    otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		details:    gRepo.NewRepository[model.Detail](model.DetailEntityName, model.DetailTableName, model.DetailFieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetDetails(ctx context.Context, bookingID int64) ([]model.Detail, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetDetails")
	defer scope.End()

	params := gDto.QueryParams{
		SortBy:  model.DetailTableName + "." + model.DetailFieldTimeSlotID,
		SortDir: gDto.SortDirAsc,
	}
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.DetailFieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.DetailTableName},
		},
	}

	details, err := r.details.GetAll(ctx, params, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}

	return details, nil
}

func (r *repositoryImpl) GetBookedLines(ctx context.Context, courtIDs, slotIDs []int64, date time.Time) ([]model.Detail, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetBookedLines")
	defer scope.End()

	if len(courtIDs) == 0 || len(slotIDs) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select(
		model.DetailFieldID,
		model.DetailFieldBookingID,
		model.DetailFieldCourtID,
		model.DetailFieldTimeSlotID,
		model.DetailFieldCheckInDate,
		model.DetailFieldPrice,
		model.DetailFieldStatus,
	).
		From(model.DetailTableName).
		Where(squirrel.Eq{
			model.DetailFieldCourtID:    courtIDs,
			model.DetailFieldTimeSlotID: slotIDs,
		}).
		Where(squirrel.NotEq{model.DetailFieldStatus: model.StatusCancelled}).
		Where(squirrel.Expr(model.DetailFieldCheckInDate+" = ?::date", date.Format(constant.DateOnlyFormat))).
		OrderBy(model.DetailFieldCourtID, model.DetailFieldTimeSlotID).
		ToSql()
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to build booked lines query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var lines []model.Detail
	if err = r.db.Read.SelectContext(ctx, &lines, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get booked lines: %w", err)
	}

	return lines, nil
}

func (r *repositoryImpl) InsertWithDetails(ctx context.Context, booking model.Booking, details []model.Detail) (id int64, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertWithDetails")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err = r.InsertReturningIDTx(ctx, tx, booking)
		if err != nil {
			return err //nolint:wrapcheck
		}

		for i := range details {
			details[i].BookingID = id
		}

		err = r.details.InsertBulkTx(ctx, tx, details)
		if gRepo.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrSlotTaken, err)
		}

		return err //nolint:wrapcheck
	})
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	return id, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, bookingID int64, from []model.Status, status model.Status, fields map[string]any) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(from) == 0 {
		return ErrStatusChanged
	}

	header := map[string]any{model.FieldStatus: status}
	maps.Copy(header, fields)

	query, args, err := psql.Update(model.TableName).
		SetMap(header).
		Where(squirrel.Eq{model.FieldID: bookingID, model.FieldStatus: from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build booking status update: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	lineFilter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.DetailFieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.DetailTableName},
		},
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to update booking status: %w", err)
		}

		updated, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read updated rows: %w", err)
		}

		if updated == 0 {
			return ErrStatusChanged
		}

		return r.details.UpdateTx(ctx, tx, map[string]any{model.DetailFieldStatus: status}, lineFilter) //nolint:wrapcheck
	})
}
