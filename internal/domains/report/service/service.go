package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"confbook/config"
	"confbook/infras/otel"
	"confbook/internal/domains/report/model/dto"
	"confbook/internal/domains/report/repository"
	"confbook/shared/cache"
	"confbook/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	cacheSummaryReport = "report:summary"

	timestampFormat = "2006-01-02 15:04:05"
)

var exportHeader = []string{"user", "email", "department", "conference_title", "status", "booking_timestamp", "cost", "approver"}

type Report interface {
	Summary(ctx context.Context) (dto.SummaryResponse, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type serviceImpl struct {
	repo  repository.Report
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Report, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Report {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Summary(ctx context.Context) (res dto.SummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Summary")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.cache.Get(ctx, cacheSummaryReport, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheSummaryReport).Msg("cache hit for report summary")

		return res, nil
	}

	statuses, err := s.repo.StatusCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get status counts")

		return res, fmt.Errorf("failed to get status counts: %w", err)
	}

	months, err := s.repo.MonthlyCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get monthly counts")

		return res, fmt.Errorf("failed to get monthly counts: %w", err)
	}

	departments, err := s.repo.DepartmentStats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get department stats")

		return res, fmt.Errorf("failed to get department stats: %w", err)
	}

	res.FromModels(statuses, months, departments)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheSummaryReport, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save report summary to cache")
		}
	}()

	return res, nil
}

// ExportCSV renders every booking as one CSV row. The export always reads
// live data, a cached snapshot would be stale the moment a decision lands.
func (s *serviceImpl) ExportCSV(ctx context.Context) (res []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportCSV")
	defer scope.End()
	defer scope.TraceIfError(err)

	rows, err := s.repo.ExportRows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get export rows")

		return nil, fmt.Errorf("failed to get export rows: %w", err)
	}

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	if err = writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		approver := constant.Empty
		if row.ApproverEmail != nil {
			approver = *row.ApproverEmail
		}

		record := []string{
			row.UserName,
			row.UserEmail,
			row.Department,
			row.ConferenceTitle,
			row.Status,
			row.BookedAt.Format(timestampFormat),
			strconv.FormatFloat(row.Cost, 'f', 2, 64),
			approver,
		}

		if err = writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
