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
	userMocks "confbook/internal/domains/user/mocks"
	"confbook/internal/domains/user/model"
	"confbook/internal/domains/user/model/dto"
	"confbook/internal/domains/user/service"
	cacheMocks "confbook/shared/cache/mocks"
	"confbook/shared/constant"
	"confbook/shared/failure"
	gModel "confbook/shared/model"
)

func newService(t *testing.T) (service.User, *userMocks.MockUser, *cacheMocks.MockRedisCache) {
	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	return service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func TestUserService_Get(t *testing.T) {
	t.Run("returns user on cache miss", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockCache.EXPECT().
			Get(gomock.Any(), "user:get:user-id-123", gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.User{
				ID:         "user-id-123",
				Email:      "staffer@example.com",
				FullName:   "Staff Member",
				Role:       constant.RoleStaff,
				Department: "Engineering",
				Active:     true,
				Metadata:   gModel.Metadata{},
			}, nil)

		var wg sync.WaitGroup
		wg.Add(1)

		mockCache.EXPECT().
			Save(gomock.Any(), "user:get:user-id-123", gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, any) error {
				wg.Done()
				return nil
			})

		res, err := svc.Get(context.Background(), "user-id-123")
		wg.Wait()

		assert.NoError(t, err)
		assert.Equal(t, "staffer@example.com", res.Email)
		assert.Equal(t, "Engineering", res.Department)
	})

	t.Run("returns not found for missing user", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.User{}, nil)

		_, err := svc.Get(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestUserService_Update(t *testing.T) {
	t.Run("updates role and department", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, constant.RoleManager, fields[model.FieldRole])
				assert.Equal(t, "Finance", fields[model.FieldDepartment])
				assert.Equal(t, "admin-id", fields["modified_by"])
				return nil
			})

		var wg sync.WaitGroup
		wg.Add(3)

		mockCache.EXPECT().
			Delete(gomock.Any(), "user:get:user-id-123").
			DoAndReturn(func(context.Context, string) error {
				wg.Done()
				return nil
			})

		mockCache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string) error {
				wg.Done()
				return nil
			}).
			Times(2)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")

		err := svc.Update(ctx, dto.UpdateUserRequest{
			Role:       constant.RoleManager,
			Department: "Finance",
		}, "user-id-123")
		wg.Wait()

		assert.NoError(t, err)
	})

	t.Run("returns not found for missing user", func(t *testing.T) {
		svc, mockRepo, _ := newService(t)

		mockRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		err := svc.Update(context.Background(), dto.UpdateUserRequest{Department: "Finance"}, "missing-id")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deletes existing user", func(t *testing.T) {
		svc, mockRepo, mockCache := newService(t)

		mockRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		mockRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		var wg sync.WaitGroup
		wg.Add(3)

		mockCache.EXPECT().
			Delete(gomock.Any(), "user:get:user-id-123").
			DoAndReturn(func(context.Context, string) error {
				wg.Done()
				return nil
			})

		mockCache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string) error {
				wg.Done()
				return nil
			}).
			Times(2)

		err := svc.Delete(context.Background(), "user-id-123")
		wg.Wait()

		assert.NoError(t, err)
	})

	t.Run("returns not found for missing user", func(t *testing.T) {
		svc, mockRepo, _ := newService(t)

		mockRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		err := svc.Delete(context.Background(), "missing-id")

		assert.Error(t, err)
		assert.Equal(t, 404, failure.GetCode(err))
	})
}
