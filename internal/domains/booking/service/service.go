package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"confbook/config"
	"confbook/infras/otel"
	"confbook/internal/domains/booking/model"
	"confbook/internal/domains/booking/model/dto"
	"confbook/internal/domains/booking/repository"
	confModel "confbook/internal/domains/conference/model"
	confRepo "confbook/internal/domains/conference/repository"
	userModel "confbook/internal/domains/user/model"
	userRepo "confbook/internal/domains/user/repository"
	"confbook/internal/notification"
	"confbook/shared"
	"confbook/shared/cache"
	"confbook/shared/constant"
	gDto "confbook/shared/dto"
	"confbook/shared/failure"
	"confbook/shared/timezone"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) error
	MyBookings(ctx context.Context, req gDto.QueryParams, status string) (dto.GetBookingsResponse, error)
	Manage(ctx context.Context, req gDto.QueryParams, status string) (dto.GetBookingsResponse, error)
	Cancel(ctx context.Context, id string) error
	Approve(ctx context.Context, id string, req dto.ApproveBookingRequest) error
	Reject(ctx context.Context, id string, req dto.RejectBookingRequest) error
}

type serviceImpl struct {
	repo     repository.Booking
	confRepo confRepo.Conference
	userRepo userRepo.User
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	notifier notification.Notifier
}

func New(repo repository.Booking, confRepo confRepo.Conference, userRepo userRepo.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, notifier notification.Notifier) Booking {
	return &serviceImpl{
		repo:     repo,
		confRepo: confRepo,
		userRepo: userRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		notifier: notifier,
	}
}

// CanApprove reports whether an actor may decide a booking: admins always,
// managers only within their own department.
func CanApprove(role, actorDepartment, bookingDepartment string) bool {
	if role == constant.RoleAdmin {
		return true
	}

	return role == constant.RoleManager && actorDepartment != constant.Empty && actorDepartment == bookingDepartment
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
	}

	return false
}

func activeSeatsFilter(conferenceID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldConferenceID,
				Operator: gDto.FilterOperatorEq,
				Value:    conferenceID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    []string{model.StatusPending, model.StatusApproved},
				Table:    model.TableName,
			},
		},
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return failure.Unauthorized("missing user identity") // nolint:wrapcheck
	}

	conference, err := s.confRepo.Get(ctx, shared.FilterByID(req.ConferenceID, confModel.FieldID, confModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get conference")

		return fmt.Errorf("failed to get conference: %w", err)
	}

	if conference.ID == constant.Empty {
		return failure.NotFound("conference not found") // nolint:wrapcheck
	}

	if !conference.Active {
		return failure.BadRequestFromString("conference is not open for booking") // nolint:wrapcheck
	}

	booked, err := s.repo.Count(ctx, activeSeatsFilter(conference.ID))
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return fmt.Errorf("failed to count bookings: %w", err)
	}

	if booked >= conference.Capacity {
		return failure.Conflict("conference is fully booked") // nolint:wrapcheck
	}

	status := model.StatusApproved
	if conference.RequiresApproval {
		status = model.StatusPending
	}

	if err = s.repo.Insert(ctx, req.ToModel(userID, status)); err != nil {
		if isUniqueViolation(err) {
			return failure.Conflict("booking already exists for this conference") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create booking")

		return fmt.Errorf("failed to create booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return nil
}

func (s *serviceImpl) MyBookings(ctx context.Context, req gDto.QueryParams, status string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MyBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return res, failure.Unauthorized("missing user identity") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUserID,
				Operator: gDto.FilterOperatorEq,
				Value:    userID,
				Table:    model.TableName,
			},
		},
	}

	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	return s.getAll(ctx, req, filter)
}

func (s *serviceImpl) Manage(ctx context.Context, req gDto.QueryParams, status string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Manage")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAdmin && role != constant.RoleManager {
		return res, failure.Forbidden("approver role required") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	// Managers only see their own department's queue.
	if role == constant.RoleManager {
		actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)

		actor, err := s.userRepo.Get(ctx, shared.FilterByID(actorID, userModel.FieldID, userModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get approver")

			return res, fmt.Errorf("failed to get approver: %w", err)
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			ArgName:  "user_department",
			Field:    userModel.FieldDepartment,
			Operator: gDto.FilterOperatorEq,
			Value:    actor.Department,
			Table:    userModel.TableName,
		})
	}

	return s.getAll(ctx, req, filter)
}

func (s *serviceImpl) getAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

// Cancel removes the booking row entirely so the seat frees up and the user
// can book the same conference again later.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.UserID != actorID && role != constant.RoleAdmin {
		return failure.Forbidden("only the owner or an admin can cancel a booking") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")

		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return nil
}

func (s *serviceImpl) Approve(ctx context.Context, id string, req dto.ApproveBookingRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.decidableBooking(ctx, id)
	if err != nil {
		return err
	}

	actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	decision := dto.UpdateDecisionRequest{
		Status:     model.StatusApproved,
		Notes:      req.Notes,
		ApprovedBy: actorID,
		ApprovedAt: timezone.Now(),
	}

	updatedFields := shared.TransformFields(decision, actorID)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to approve booking")

		return fmt.Errorf("failed to approve booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		event := notification.BookingEvent{
			BookingID:       booking.ID,
			ConferenceID:    booking.ConferenceID,
			ConferenceTitle: booking.ConferenceTitle,
			UserEmail:       booking.UserEmail,
			Status:          model.StatusApproved,
			Notes:           req.Notes,
		}

		if err := s.notifier.BookingApproved(c, event); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify booking approval")
		}
	}()

	return nil
}

func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.RejectBookingRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.decidableBooking(ctx, id)
	if err != nil {
		return err
	}

	actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	decision := dto.UpdateDecisionRequest{
		Status:          model.StatusRejected,
		ApprovedBy:      actorID,
		ApprovedAt:      timezone.Now(),
		RejectionReason: req.Reason,
	}

	updatedFields := shared.TransformFields(decision, actorID)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to reject booking")

		return fmt.Errorf("failed to reject booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		event := notification.BookingEvent{
			BookingID:       booking.ID,
			ConferenceID:    booking.ConferenceID,
			ConferenceTitle: booking.ConferenceTitle,
			UserEmail:       booking.UserEmail,
			Status:          model.StatusRejected,
			RejectionReason: req.Reason,
		}

		if err := s.notifier.BookingRejected(c, event); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to notify booking rejection")
		}
	}()

	return nil
}

// decidableBooking loads the booking and enforces the decision guards: the
// booking must exist, still be pending, and the actor must be allowed to
// decide it.
func (s *serviceImpl) decidableBooking(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if booking.Status != model.StatusPending {
		return booking, failure.Conflict("booking is not pending") // nolint:wrapcheck
	}

	actorID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	actorDepartment := constant.Empty
	if role == constant.RoleManager {
		actor, err := s.userRepo.Get(ctx, shared.FilterByID(actorID, userModel.FieldID, userModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get approver")

			return booking, fmt.Errorf("failed to get approver: %w", err)
		}

		actorDepartment = actor.Department
	}

	if !CanApprove(role, actorDepartment, booking.UserDepartment) {
		return booking, failure.Forbidden("you cannot decide bookings for this department") // nolint:wrapcheck
	}

	return booking, nil
}
