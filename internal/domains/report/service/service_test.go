package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"confbook/config"
	"confbook/infras/otel/mocks"
	reportMocks "confbook/internal/domains/report/mocks"
	"confbook/internal/domains/report/model"
	"confbook/internal/domains/report/service"
	cacheMocks "confbook/shared/cache/mocks"
)

func TestReportService_Summary(t *testing.T) {
	t.Run("aggregates statuses, trend and departments on cache miss", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		mockRepo := reportMocks.NewMockReport(ctrl)
		mockCache := cacheMocks.NewMockRedisCache(ctrl)
		svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

		mockCache.EXPECT().
			Get(gomock.Any(), "report:summary", gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			StatusCounts(gomock.Any()).
			Return([]model.StatusCount{
				{Status: "pending", Total: 3},
				{Status: "approved", Total: 5},
				{Status: "rejected", Total: 2},
			}, nil)

		mockRepo.EXPECT().
			MonthlyCounts(gomock.Any()).
			Return([]model.MonthlyCount{
				{Month: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Total: 4},
				{Month: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Total: 6},
			}, nil)

		mockRepo.EXPECT().
			DepartmentStats(gomock.Any()).
			Return([]model.DepartmentStat{
				{Department: "Engineering", Total: 7, Approved: 4, ApprovedCost: 1996},
			}, nil)

		var wg sync.WaitGroup
		wg.Add(1)

		mockCache.EXPECT().
			Save(gomock.Any(), "report:summary", gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, int) error {
				wg.Done()
				return nil
			})

		res, err := svc.Summary(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 10, res.Bookings.Total)
		assert.Equal(t, 3, res.Bookings.Pending)
		assert.Equal(t, 5, res.Bookings.Approved)
		assert.Equal(t, 2, res.Bookings.Rejected)
		assert.Len(t, res.Trend, 2)
		assert.Equal(t, "2025-07", res.Trend[0].Month)
		assert.Equal(t, "Engineering", res.Departments[0].Department)
		assert.Equal(t, float64(1996), res.Departments[0].ApprovedCost)

		wg.Wait()
	})

	t.Run("repository error bubbles up", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		mockRepo := reportMocks.NewMockReport(ctrl)
		mockCache := cacheMocks.NewMockRedisCache(ctrl)
		svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			StatusCounts(gomock.Any()).
			Return(nil, errors.New("db down"))

		_, err := svc.Summary(context.Background())

		assert.Error(t, err)
	})
}

func TestReportService_ExportCSV(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockRepo := reportMocks.NewMockReport(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	approver := "boss@example.com"

	mockRepo.EXPECT().
		ExportRows(gomock.Any()).
		Return([]model.ExportRow{
			{
				UserName:        "Staff Member",
				UserEmail:       "staffer@example.com",
				Department:      "Engineering",
				ConferenceTitle: "GopherCon",
				Status:          "approved",
				BookedAt:        time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC),
				Cost:            499.5,
				ApproverEmail:   &approver,
			},
			{
				UserName:        "Other Member",
				UserEmail:       "other@example.com",
				Department:      "Finance",
				ConferenceTitle: "FinTech Summit",
				Status:          "pending",
				BookedAt:        time.Date(2025, 8, 20, 14, 0, 0, 0, time.UTC),
				Cost:            250,
			},
		}, nil)

	out, err := svc.ExportCSV(context.Background())

	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")

	assert.Len(t, lines, 3)
	assert.Equal(t, "user,email,department,conference_title,status,booking_timestamp,cost,approver", lines[0])
	assert.Equal(t, "Staff Member,staffer@example.com,Engineering,GopherCon,approved,2025-08-15 09:30:00,499.50,boss@example.com", lines[1])
	assert.Equal(t, "Other Member,other@example.com,Finance,FinTech Summit,pending,2025-08-20 14:00:00,250.00,", lines[2])
}
