package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"confbook/config"
	"confbook/infras/otel/mocks"
	bookingMocks "confbook/internal/domains/booking/mocks"
	"confbook/internal/domains/booking/model"
	"confbook/internal/domains/booking/model/dto"
	"confbook/internal/domains/booking/service"
	confMocks "confbook/internal/domains/conference/mocks"
	confModel "confbook/internal/domains/conference/model"
	userMocks "confbook/internal/domains/user/mocks"
	userModel "confbook/internal/domains/user/model"
	"confbook/internal/notification"
	notifierMocks "confbook/internal/notification/mocks"
	cacheMocks "confbook/shared/cache/mocks"
	"confbook/shared/constant"
	gDto "confbook/shared/dto"
	"confbook/shared/failure"
)

type fixtures struct {
	repo     *bookingMocks.MockBooking
	confRepo *confMocks.MockConference
	userRepo *userMocks.MockUser
	cache    *cacheMocks.MockRedisCache
	notifier *notifierMocks.MockNotifier
	svc      service.Booking
}

func newFixtures(t *testing.T) fixtures {
	ctrl := gomock.NewController(t)

	f := fixtures{
		repo:     bookingMocks.NewMockBooking(ctrl),
		confRepo: confMocks.NewMockConference(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		notifier: notifierMocks.NewMockNotifier(ctrl),
	}

	f.svc = service.New(f.repo, f.confRepo, f.userRepo, &config.Config{}, f.cache, mocks.NewOtel(), f.notifier)

	return f
}

// expectInvalidate registers the post-commit cache invalidation expectations
// and returns a wait func so the test can block until the detached goroutine
// has finished.
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

func ctxWithUser(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func openConference() confModel.Conference {
	return confModel.Conference{
		ID:               "conf-id-123",
		Title:            "GopherCon",
		Capacity:         100,
		RequiresApproval: true,
		Active:           true,
	}
}

func pendingBooking() model.Booking {
	return model.Booking{
		ID:              "booking-id-123",
		UserID:          "user-id-123",
		ConferenceID:    "conf-id-123",
		Status:          model.StatusPending,
		Justification:   "relevant to current project",
		UserEmail:       "staffer@example.com",
		UserName:        "Staff Member",
		UserDepartment:  "Engineering",
		ConferenceTitle: "GopherCon",
		ConferencePrice: 499,
	}
}

func TestBookingService_Create(t *testing.T) {
	req := dto.CreateBookingRequest{
		ConferenceID:  "conf-id-123",
		Justification: "relevant to current project",
	}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixtures) func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "pending when conference requires approval",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(openConference(), nil)

				f.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(10, nil)

				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, model.StatusPending, booking.Status)
						assert.Equal(t, "user-id-123", booking.UserID)
						return nil
					})

				return f.expectInvalidate()
			},
		},
		{
			name: "auto approved when conference skips approval",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				conference := openConference()
				conference.RequiresApproval = false

				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(conference, nil)

				f.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, nil)

				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, model.StatusApproved, booking.Status)
						return nil
					})

				return f.expectInvalidate()
			},
		},
		{
			name: "conference not found",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confModel.Conference{}, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 404,
		},
		{
			name: "conference inactive",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				conference := openConference()
				conference.Active = false

				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(conference, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 400,
		},
		{
			name: "conference fully booked",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(openConference(), nil)

				f.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(100, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "duplicate booking maps to conflict",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.confRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(openConference(), nil)

				f.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(10, nil)

				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeUniqueViolation)})

				return nil
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name:      "missing user identity",
			ctx:       context.Background(),
			setupMock: func(f fixtures) func() { return nil },
			wantErr:   true,
			wantCode:  401,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			wait := tt.setupMock(f)

			err := f.svc.Create(tt.ctx, req)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			if wait != nil {
				wait()
			}
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixtures) func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "owner cancels own booking",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				return f.expectInvalidate()
			},
		},
		{
			name: "admin cancels any booking",
			ctx:  ctxWithUser("admin-id", constant.RoleAdmin),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				return f.expectInvalidate()
			},
		},
		{
			name: "other staff cannot cancel",
			ctx:  ctxWithUser("someone-else", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				return nil
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name: "booking not found",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			wait := tt.setupMock(f)

			err := f.svc.Cancel(tt.ctx, "booking-id-123")

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

func TestBookingService_Approve(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixtures) func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "admin approves pending booking",
			ctx:  ctxWithUser("admin-id", constant.RoleAdmin),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusApproved, fields[model.FieldStatus])
						assert.Equal(t, "admin-id", fields[model.FieldApprovedBy])
						assert.Contains(t, fields, model.FieldApprovedAt)
						return nil
					})

				wait := f.expectInvalidate()

				var wg sync.WaitGroup
				wg.Add(1)

				f.notifier.EXPECT().
					BookingApproved(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, event notification.BookingEvent) error {
						assert.Equal(t, "booking-id-123", event.BookingID)
						assert.Equal(t, "staffer@example.com", event.UserEmail)
						assert.Equal(t, model.StatusApproved, event.Status)
						wg.Done()
						return nil
					})

				return func() {
					wait()
					wg.Wait()
				}
			},
		},
		{
			name: "manager approves booking in own department",
			ctx:  ctxWithUser("manager-id", constant.RoleManager),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(userModel.User{ID: "manager-id", Role: constant.RoleManager, Department: "Engineering"}, nil)

				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				wait := f.expectInvalidate()

				var wg sync.WaitGroup
				wg.Add(1)

				f.notifier.EXPECT().
					BookingApproved(gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, notification.BookingEvent) error {
						wg.Done()
						return nil
					})

				return func() {
					wait()
					wg.Wait()
				}
			},
		},
		{
			name: "manager from another department is refused",
			ctx:  ctxWithUser("manager-id", constant.RoleManager),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(userModel.User{ID: "manager-id", Role: constant.RoleManager, Department: "Finance"}, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name: "staff cannot approve",
			ctx:  ctxWithUser("user-id-123", constant.RoleStaff),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				return nil
			},
			wantErr:  true,
			wantCode: 403,
		},
		{
			name: "already approved booking conflicts",
			ctx:  ctxWithUser("admin-id", constant.RoleAdmin),
			setupMock: func(f fixtures) func() {
				booking := pendingBooking()
				booking.Status = model.StatusApproved

				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "booking not found",
			ctx:  ctxWithUser("admin-id", constant.RoleAdmin),
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			wait := tt.setupMock(f)

			err := f.svc.Approve(tt.ctx, "booking-id-123", dto.ApproveBookingRequest{Notes: "approved for training budget"})

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

func TestBookingService_Reject(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixtures) func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "admin rejects with reason",
			setupMock: func(f fixtures) func() {
				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking(), nil)

				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusRejected, fields[model.FieldStatus])
						assert.Equal(t, "no budget left this quarter", fields[model.FieldRejectionReason])
						return nil
					})

				wait := f.expectInvalidate()

				var wg sync.WaitGroup
				wg.Add(1)

				f.notifier.EXPECT().
					BookingRejected(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, event notification.BookingEvent) error {
						assert.Equal(t, model.StatusRejected, event.Status)
						assert.Equal(t, "no budget left this quarter", event.RejectionReason)
						wg.Done()
						return nil
					})

				return func() {
					wait()
					wg.Wait()
				}
			},
		},
		{
			name: "rejected booking cannot be rejected again",
			setupMock: func(f fixtures) func() {
				booking := pendingBooking()
				booking.Status = model.StatusRejected

				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)

				return nil
			},
			wantErr:  true,
			wantCode: 409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures(t)
			wait := tt.setupMock(f)

			err := f.svc.Reject(ctxWithUser("admin-id", constant.RoleAdmin), "booking-id-123", dto.RejectBookingRequest{Reason: "no budget left this quarter"})

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

func TestBookingService_MyBookings(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}

	t.Run("returns own bookings on cache miss", func(t *testing.T) {
		f := newFixtures(t)

		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		f.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		f.repo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any()).
			Return([]model.Booking{pendingBooking()}, nil)

		var wg sync.WaitGroup
		wg.Add(1)

		f.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, int) error {
				wg.Done()
				return nil
			})

		res, err := f.svc.MyBookings(ctxWithUser("user-id-123", constant.RoleStaff), params, "")

		assert.NoError(t, err)
		assert.Len(t, res.Bookings, 1)
		assert.Equal(t, 1, res.TotalData)

		wg.Wait()
	})

	t.Run("missing user identity", func(t *testing.T) {
		f := newFixtures(t)

		_, err := f.svc.MyBookings(context.Background(), params, "")

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})
}

func TestBookingService_Manage(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 15, SortBy: "created_at", SortDir: "DESC"}

	t.Run("manager sees only own department", func(t *testing.T) {
		f := newFixtures(t)

		f.userRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(userModel.User{ID: "manager-id", Role: constant.RoleManager, Department: "Engineering"}, nil)

		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))

		f.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		f.repo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				_, args := filter.GetWhereClause()
				assert.Equal(t, "Engineering", args["user_department"])
				assert.Equal(t, model.StatusPending, args[model.FieldStatus])
				return []model.Booking{pendingBooking()}, nil
			})

		var wg sync.WaitGroup
		wg.Add(1)

		f.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, any, int) error {
				wg.Done()
				return nil
			})

		res, err := f.svc.Manage(ctxWithUser("manager-id", constant.RoleManager), params, model.StatusPending)

		assert.NoError(t, err)
		assert.Len(t, res.Bookings, 1)

		wg.Wait()
	})

	t.Run("staff is refused", func(t *testing.T) {
		f := newFixtures(t)

		_, err := f.svc.Manage(ctxWithUser("user-id-123", constant.RoleStaff), params, model.StatusPending)

		assert.Error(t, err)
		assert.Equal(t, 403, failure.GetCode(err))
	})
}

func TestCanApprove(t *testing.T) {
	tests := []struct {
		name              string
		role              string
		actorDepartment   string
		bookingDepartment string
		want              bool
	}{
		{"admin approves anything", constant.RoleAdmin, "", "Engineering", true},
		{"manager same department", constant.RoleManager, "Engineering", "Engineering", true},
		{"manager other department", constant.RoleManager, "Finance", "Engineering", false},
		{"manager without department", constant.RoleManager, "", "", false},
		{"staff never approves", constant.RoleStaff, "Engineering", "Engineering", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CanApprove(tt.role, tt.actorDepartment, tt.bookingDepartment))
		})
	}
}
