package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"confbook/config"
	"confbook/infras/otel"
	"confbook/infras/s3"
	bookingModel "confbook/internal/domains/booking/model"
	bookingRepo "confbook/internal/domains/booking/repository"
	"confbook/internal/domains/conference/model"
	"confbook/internal/domains/conference/model/dto"
	"confbook/internal/domains/conference/repository"
	"confbook/shared"
	"confbook/shared/cache"
	"confbook/shared/constant"
	gDto "confbook/shared/dto"
	"confbook/shared/failure"
	"confbook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetConference    = "conference:get"
	cacheGetAllConference = "conference:gets"
	cacheCountConference  = "conference:count"
)

type Conference interface {
	Create(ctx context.Context, req dto.CreateConferenceRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetConferencesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ConferenceResponse, error)
	Update(ctx context.Context, req dto.UpdateConferenceRequest, id string) error
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, id string) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo        repository.Conference
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	s3          s3.S3
}

func New(repo repository.Conference, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Conference {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		s3:          s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateConferenceRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	imageURL := constant.Empty
	var uploadedObjectName string
	if req.Image != nil {
		bucketName := s.cfg.External.S3.BucketName
		filename := uuid.NewString()

		parts := strings.Split(req.Image.Filename, ".")
		if len(parts) > 1 {
			filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
		}

		url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, filename)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload image to S3")

			return fmt.Errorf("failed to upload image: %w", err)
		}
		imageURL = url
		uploadedObjectName = filename
	}

	conference, err := req.ToModel(user, imageURL)
	if err != nil {
		return failure.BadRequestFromString("invalid start date") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, conference); err != nil {
		if uploadedObjectName != constant.Empty {
			bucketName := s.cfg.External.S3.BucketName
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllConference)
		shared.InvalidateCaches(c, s.cache, cacheCountConference)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetConferencesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllConference, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for conferences")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count conferences")

		return res, fmt.Errorf("failed to count conferences: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get conferences")

		return res, fmt.Errorf("failed to get conferences: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save conferences to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountConference, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for conference count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count conferences")

		return res, fmt.Errorf("failed to count conferences: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save conference count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ConferenceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetConference, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for conference")

		s.attachCallerBooking(ctx, id, &res)

		return res, nil
	}

	conference, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get conference")

		return res, fmt.Errorf("failed to get conference: %w", err)
	}

	if conference.ID == constant.Empty {
		return res, failure.NotFound("conference not found") // nolint:wrapcheck
	}

	res.FromModel(conference)

	// Cache the user-agnostic snapshot before the caller's booking is
	// attached, so the entry can be shared across users.
	snapshot := res

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, snapshot, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save conference to cache")
		}
	}()

	s.attachCallerBooking(ctx, id, &res)

	return res, nil
}

// attachCallerBooking adds the requesting user's booking on the conference,
// when one exists. Lookup failures degrade to a detail without the booking.
func (s *serviceImpl) attachCallerBooking(ctx context.Context, conferenceID string, res *dto.ConferenceResponse) {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		return
	}

	booking, err := s.bookingRepo.Get(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldUserID,
				Operator: gDto.FilterOperatorEq,
				Value:    userID,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldConferenceID,
				Operator: gDto.FilterOperatorEq,
				Value:    conferenceID,
				Table:    bookingModel.TableName,
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get caller booking for conference")

		return
	}

	if booking.ID == constant.Empty {
		return
	}

	res.MyBooking = &dto.CallerBooking{
		ID:        booking.ID,
		Status:    booking.Status,
		CreatedAt: timezone.Format(booking.CreatedAt, constant.DateFormat),
	}
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateConferenceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check conference existence")

		return err
	}

	if current.ID == constant.Empty {
		log.Error().Msg("conference not found")

		return failure.NotFound("conference not found")
	}

	return s.updateInternal(ctx, req, current, user, filter)
}

func (s *serviceImpl) updateInternal(ctx context.Context, req dto.UpdateConferenceRequest, current model.Conference, user string, filter gDto.FilterGroup) error {
	startDate, hasStartDate, err := req.ParseStartDate()
	if err != nil {
		return failure.BadRequestFromString("invalid start date") // nolint:wrapcheck
	}

	imageURL := constant.Empty
	var uploadedObjectName string
	bucketName := s.cfg.External.S3.BucketName

	if req.Image != nil {
		filename := uuid.NewString()

		parts := strings.Split(req.Image.Filename, ".")
		if len(parts) > 1 {
			filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
		}

		url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, filename)
		if err != nil {
			return fmt.Errorf("failed to upload image: %w", err)
		}
		imageURL = url
		uploadedObjectName = filename
	}

	updatedFields := shared.TransformFields(req, user)
	if imageURL != constant.Empty {
		updatedFields[model.FieldImage] = imageURL
	}

	if hasStartDate {
		updatedFields[model.FieldStartDate] = startDate
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update conference")

		// Cleanup: delete newly uploaded image if DB update fails
		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return fmt.Errorf("failed to update conference: %w", err)
	}

	// Delete old image if update succeeded and new image was uploaded
	if imageURL != constant.Empty && current.Image != constant.Empty {
		oldObjectName := s.s3.GetObjectNameFromURL(bucketName, current.Image)
		if oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, oldObjectName)
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetConference, current.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete conference cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllConference)
		shared.InvalidateCaches(c, s.cache, cacheCountConference)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if conference exists")

		return fmt.Errorf("failed to check if conference exists: %w", err)
	}

	if !exist {
		log.Error().Msg("conference not found")

		return failure.NotFound("conference not found") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete conference")

		return fmt.Errorf("failed to delete conference: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetConference, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete conference from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllConference)
		shared.InvalidateCaches(c, s.cache, cacheCountConference)
	}()

	return nil
}

// Availability computes remaining seats from the live booking count. Both
// pending and approved bookings hold a seat, so the value is never cached.
func (s *serviceImpl) Availability(ctx context.Context, id string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer scope.TraceIfError(err)

	conference, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get conference")

		return res, fmt.Errorf("failed to get conference: %w", err)
	}

	if conference.ID == constant.Empty {
		return res, failure.NotFound("conference not found") // nolint:wrapcheck
	}

	booked, err := s.bookingRepo.Count(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldConferenceID,
				Operator: gDto.FilterOperatorEq,
				Value:    id,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    []string{bookingModel.StatusPending, bookingModel.StatusApproved},
				Table:    bookingModel.TableName,
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	return dto.AvailabilityResponse{
		ConferenceID:   conference.ID,
		Capacity:       conference.Capacity,
		BookedSeats:    booked,
		AvailableSeats: conference.Capacity - booked,
		IsAvailable:    conference.Capacity-booked > 0,
	}, nil
}
