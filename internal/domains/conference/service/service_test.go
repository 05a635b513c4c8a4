package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"confbook/config"
	"confbook/infras/otel/mocks"
	s3Mocks "confbook/infras/s3/mocks"
	bookingMocks "confbook/internal/domains/booking/mocks"
	bookingModel "confbook/internal/domains/booking/model"
	confMocks "confbook/internal/domains/conference/mocks"
	"confbook/internal/domains/conference/model"
	"confbook/internal/domains/conference/model/dto"
	"confbook/internal/domains/conference/service"
	cacheMocks "confbook/shared/cache/mocks"
	"confbook/shared/constant"
	gDto "confbook/shared/dto"
	"confbook/shared/failure"
)

type fixtures struct {
	repo        *confMocks.MockConference
	bookingRepo *bookingMocks.MockBooking
	cache       *cacheMocks.MockRedisCache
	s3          *s3Mocks.MockS3
	svc         service.Conference
}

func newFixtures(t *testing.T) fixtures {
	ctrl := gomock.NewController(t)

	f := fixtures{
		repo:        confMocks.NewMockConference(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
		s3:          s3Mocks.NewMockS3(ctrl),
	}

	f.svc = service.New(f.repo, f.bookingRepo, &config.Config{}, f.cache, mocks.NewOtel(), f.s3)

	return f
}

func (f fixtures) expectInvalidate() func() {
	var wg sync.WaitGroup
	wg.Add(2)

	f.cache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			wg.Done()
			return nil
		}).
		Times(2)

	return wg.Wait
}

// expectEvict covers the delete/update invalidation path: one keyed delete
// plus the two prefix clears.
func (f fixtures) expectEvict() func() {
	var wg sync.WaitGroup
	wg.Add(3)

	f.cache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			wg.Done()
			return nil
		})

	f.cache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			wg.Done()
			return nil
		}).
		Times(2)

	return wg.Wait
}

func activeConference() model.Conference {
	return model.Conference{
		ID:               "conf-id-123",
		Title:            "GopherCon",
		Capacity:         100,
		Price:            499,
		RequiresApproval: true,
		Active:           true,
	}
}

func ctxWithUser(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func TestConferenceService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateConferenceRequest
		setupMock func(f fixtures) func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful create without image",
			req: dto.CreateConferenceRequest{
				Title:     "GopherCon",
				Capacity:  100,
				Price:     499,
				StartDate: "2026-10-01",
			},
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, conference model.Conference) error {
						assert.Equal(t, "GopherCon", conference.Title)
						assert.True(t, conference.RequiresApproval)
						assert.True(t, conference.Active)
						assert.Equal(t, "2026-10-01", conference.StartDate.Format("2006-01-02"))
						return nil
					})

				return f.expectInvalidate()
			},
		},
		{
			name: "invalid start date",
			req: dto.CreateConferenceRequest{
				Title:     "GopherCon",
				StartDate: "not-a-date",
			},
			setupMock: func(f fixtures) func() { return nil },
			wantErr:   true,
			wantCode:  400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			wait := tt.setupMock(f)

			err := f.svc.Create(ctxWithUser("admin-id"), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}

			if wait != nil {
				wait()
			}
		})
	}
}

func TestConferenceService_Availability(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(f fixtures)
		wantSeats  int
		wantIsOpen bool
		wantErr    bool
		wantCode   int
	}{
		{
			name: "seats remaining",
			setupMock: func(f fixtures) {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeConference(), nil)

				f.bookingRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(40, nil)
			},
			wantSeats:  60,
			wantIsOpen: true,
		},
		{
			name: "exactly full",
			setupMock: func(f fixtures) {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeConference(), nil)

				f.bookingRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(100, nil)
			},
			wantSeats:  0,
			wantIsOpen: false,
		},
		{
			name: "oversubscribed goes negative",
			setupMock: func(f fixtures) {
				conference := activeConference()
				conference.Capacity = 30

				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(conference, nil)

				f.bookingRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(42, nil)
			},
			wantSeats:  -12,
			wantIsOpen: false,
		},
		{
			name: "conference not found",
			setupMock: func(f fixtures) {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Conference{}, nil)
			},
			wantErr:  true,
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			tt.setupMock(f)

			res, err := f.svc.Availability(context.Background(), "conf-id-123")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantSeats, res.AvailableSeats)
			assert.Equal(t, tt.wantIsOpen, res.IsAvailable)
		})
	}
}

func TestConferenceService_Delete(t *testing.T) {
	t.Run("deletes existing conference", func(t *testing.T) {
		f := newFixtures(t)

		f.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		f.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		wait := f.expectEvict()

		err := f.svc.Delete(ctxWithUser("admin-id"), "conf-id-123")

		assert.NoError(t, err)
		wait()
	})

	t.Run("missing conference", func(t *testing.T) {
		f := newFixtures(t)

		f.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		err := f.svc.Delete(ctxWithUser("admin-id"), "missing")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestConferenceService_GetAll(t *testing.T) {
	f := newFixtures(t)

	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	// Both the list and its count miss the cache.
	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss")).
		Times(2)

	f.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	f.repo.EXPECT().
		GetAll(gomock.Any(), params, gomock.Any()).
		Return([]model.Conference{activeConference()}, nil)

	var wg sync.WaitGroup
	wg.Add(2)

	f.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, any, int) error {
			wg.Done()
			return nil
		}).
		Times(2)

	res, err := f.svc.GetAll(context.Background(), params, filter)

	assert.NoError(t, err)
	assert.Len(t, res.Conferences, 1)
	assert.Equal(t, 1, res.TotalData)

	wg.Wait()
}

func TestConferenceService_Get(t *testing.T) {
	t.Run("attaches caller booking on cache miss", func(t *testing.T) {
		f := newFixtures(t)

		f.cache.EXPECT().
			Get(gomock.Any(), "conference:get:conf-id-123", gomock.Any()).
			Return(errors.New("cache miss"))

		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeConference(), nil)

		var wg sync.WaitGroup
		wg.Add(1)

		f.cache.EXPECT().
			Save(gomock.Any(), "conference:get:conf-id-123", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
				cached, ok := value.(dto.ConferenceResponse)
				assert.True(t, ok)
				assert.Nil(t, cached.MyBooking)
				wg.Done()
				return nil
			})

		f.bookingRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bookingModel.Booking{
				ID:           "booking-id-123",
				UserID:       "user-id-123",
				ConferenceID: "conf-id-123",
				Status:       bookingModel.StatusPending,
			}, nil)

		res, err := f.svc.Get(ctxWithUser("user-id-123"), "conf-id-123")
		wg.Wait()

		assert.NoError(t, err)
		assert.Equal(t, "GopherCon", res.Title)
		if assert.NotNil(t, res.MyBooking) {
			assert.Equal(t, "booking-id-123", res.MyBooking.ID)
			assert.Equal(t, bookingModel.StatusPending, res.MyBooking.Status)
		}
	})

	t.Run("skips booking lookup for anonymous caller", func(t *testing.T) {
		f := newFixtures(t)

		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeConference(), nil)

		var wg sync.WaitGroup
		wg.Add(1)

		f.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, int) error {
				wg.Done()
				return nil
			})

		res, err := f.svc.Get(context.Background(), "conf-id-123")
		wg.Wait()

		assert.NoError(t, err)
		assert.Nil(t, res.MyBooking)
	})

	t.Run("returns not found for missing conference", func(t *testing.T) {
		f := newFixtures(t)

		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Conference{}, nil)

		_, err := f.svc.Get(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}
