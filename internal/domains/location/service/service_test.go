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
	locationMocks "confbook/internal/domains/location/mocks"
	"confbook/internal/domains/location/model"
	"confbook/internal/domains/location/model/dto"
	"confbook/internal/domains/location/service"
	cacheMocks "confbook/shared/cache/mocks"
	"confbook/shared/constant"
	"confbook/shared/failure"
)

func newService(t *testing.T) (service.Location, *locationMocks.MockLocation, *cacheMocks.MockRedisCache) {
	ctrl := gomock.NewController(t)

	mockRepo := locationMocks.NewMockLocation(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	return service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func TestLocationService_Create(t *testing.T) {
	svc, mockRepo, mockCache := newService(t)

	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, location model.Location) error {
			assert.Equal(t, "Jakarta Convention Center", location.Name)
			assert.True(t, location.Active)
			return nil
		})

	var wg sync.WaitGroup
	wg.Add(2)

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			wg.Done()
			return nil
		}).
		Times(2)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")

	err := svc.Create(ctx, dto.CreateLocationRequest{
		Name: "Jakarta Convention Center",
		City: "Jakarta",
	})

	assert.NoError(t, err)
	wg.Wait()
}

func TestLocationService_Get(t *testing.T) {
	t.Run("cache miss falls through to repository", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockCache.EXPECT().
			Get(gomock.Any(), "location:get:location-id-123", gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Location{ID: "location-id-123", Name: "Jakarta Convention Center", Active: true}, nil)

		var wg sync.WaitGroup
		wg.Add(1)

		mockCache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, int) error {
				wg.Done()
				return nil
			})

		res, err := svc.Get(context.Background(), "location-id-123")

		assert.NoError(t, err)
		assert.Equal(t, "Jakarta Convention Center", res.Name)

		wg.Wait()
	})

	t.Run("missing location", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Location{}, nil)

		_, err := svc.Get(context.Background(), "missing")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}
