package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"confbook/infras/otel"
	"confbook/infras/postgres"
	"confbook/internal/domains/report/model"
	"confbook/shared/constant"
	"confbook/shared/logger"
)

const queryStatusCounts = `
	SELECT status, COUNT(id) AS total
	FROM bookings
	GROUP BY status`

const queryMonthlyCounts = `
	SELECT date_trunc('month', created_at) AS month, COUNT(id) AS total
	FROM bookings
	WHERE created_at >= NOW() - INTERVAL '365 days'
	GROUP BY month
	ORDER BY month`

const queryDepartmentStats = `
	SELECT users.department AS department,
		COUNT(bookings.id) AS total,
		COUNT(bookings.id) FILTER (WHERE bookings.status = 'approved') AS approved,
		COALESCE(SUM(conferences.price) FILTER (WHERE bookings.status = 'approved'), 0) AS approved_cost
	FROM bookings
	JOIN users ON users.id = bookings.user_id
	JOIN conferences ON conferences.id = bookings.conference_id
	GROUP BY users.department
	ORDER BY users.department`

const queryExportRows = `
	SELECT users.full_name AS user_name,
		users.email AS user_email,
		users.department AS department,
		conferences.title AS conference_title,
		bookings.status AS status,
		bookings.created_at AS booked_at,
		conferences.price AS cost,
		approvers.email AS approver_email
	FROM bookings
	JOIN users ON users.id = bookings.user_id
	JOIN conferences ON conferences.id = bookings.conference_id
	LEFT JOIN users approvers ON approvers.id = bookings.approved_by
	ORDER BY bookings.created_at DESC`

type Report interface {
	StatusCounts(ctx context.Context) ([]model.StatusCount, error)
	MonthlyCounts(ctx context.Context) ([]model.MonthlyCount, error)
	DepartmentStats(ctx context.Context) ([]model.DepartmentStat, error)
	ExportRows(ctx context.Context) ([]model.ExportRow, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Report {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) StatusCounts(ctx context.Context) ([]model.StatusCount, error) {
	rows := []model.StatusCount{}

	err := r.selectQuery(ctx, "StatusCounts", queryStatusCounts, &rows)

	return rows, err
}

func (r *repositoryImpl) MonthlyCounts(ctx context.Context) ([]model.MonthlyCount, error) {
	rows := []model.MonthlyCount{}

	err := r.selectQuery(ctx, "MonthlyCounts", queryMonthlyCounts, &rows)

	return rows, err
}

func (r *repositoryImpl) DepartmentStats(ctx context.Context) ([]model.DepartmentStat, error) {
	rows := []model.DepartmentStat{}

	err := r.selectQuery(ctx, "DepartmentStats", queryDepartmentStats, &rows)

	return rows, err
}

func (r *repositoryImpl) ExportRows(ctx context.Context) ([]model.ExportRow, error) {
	rows := []model.ExportRow{}

	err := r.selectQuery(ctx, "ExportRows", queryExportRows, &rows)

	return rows, err
}

func (r *repositoryImpl) selectQuery(ctx context.Context, name, query string, dest any) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, name))
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := r.db.Read.SelectContext(ctx, dest, query); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to query %s (%s): %w", name, model.EntityName, err)
	}

	return nil
}
