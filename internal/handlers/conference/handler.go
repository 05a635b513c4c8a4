package conference

import (
	"net/http"

	"confbook/infras/otel"
	"confbook/internal/domains/conference/model"
	"confbook/internal/domains/conference/model/dto"
	"confbook/internal/domains/conference/service"
	"confbook/shared"
	"confbook/shared/constant"
	gDto "confbook/shared/dto"
	"confbook/shared/validator"
	"confbook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Conference
	otel    otel.Otel
}

func New(service service.Conference, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/conferences", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateConference)
		routerGroup.Get("/", handler.GetConferences)
		routerGroup.Get("/{id}", handler.GetConferenceByID)
		routerGroup.Get("/{id}/availability", handler.GetAvailability)
		routerGroup.Patch("/{id}", handler.UpdateConference)
		routerGroup.Delete("/{id}", handler.DeleteConference)
	})
}

// CreateConference handles the creation of a new conference.
// @Summary Create a new conference
// @Description Create a new conference with the provided details.
// @Tags Conference
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Conference title"
// @Param description formData string false "Conference description"
// @Param location_id formData string false "Location ID"
// @Param category_id formData string false "Category ID"
// @Param capacity formData integer false "Seat capacity"
// @Param price formData number false "Ticket price"
// @Param start_date formData string true "Start date (YYYY-MM-DD)"
// @Param requires_approval formData boolean false "Bookings need approval"
// @Param active formData boolean false "Conference active status"
// @Param image formData file false "Conference image"
// @Success 201 {object} response.Message "Conference created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences [post]
// @Security BearerAuth
func (handler *Handler) CreateConference(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateConference")
	defer scope.End()

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, err)

		return
	}

	req := dto.CreateConferenceRequest{
		Title:       request.FormValue("title"),
		Description: request.FormValue("description"),
		LocationID:  request.FormValue("location_id"),
		CategoryID:  request.FormValue("category_id"),
		StartDate:   request.FormValue("start_date"),
	}

	if capStr := request.FormValue("capacity"); capStr != "" {
		if c, err := shared.ConvertStringToInt(capStr); err == nil {
			req.Capacity = c
		}
	}

	if priceStr := request.FormValue("price"); priceStr != "" {
		if p, err := shared.ConvertStringToFloat(priceStr); err == nil {
			req.Price = p
		}
	}

	if approvalStr := request.FormValue("requires_approval"); approvalStr != "" {
		req.RequiresApproval = shared.ConvertStringToBool(approvalStr)
	}

	if activeStr := request.FormValue("active"); activeStr != "" {
		req.Active = shared.ConvertStringToBool(activeStr)
	}

	file, fileHeader, err := request.FormFile(constant.FormFile)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create conference")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Conference created successfully by user " + user)

	response.WithMessage(writer, http.StatusCreated, "Conference created successfully")
}

// GetConferences retrieves all conferences based on query parameters.
// @Summary Get all conferences
// @Description Retrieve all conferences with optional filtering and pagination.
// @Tags Conference
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param title query string false "Filter by title"
// @Param location_id query string false "Filter by location"
// @Param category_id query string false "Filter by category"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.ConferenceResponse] "List of conferences"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences [get]
func (handler *Handler) GetConferences(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConferences")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldTitle,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldTitle),
				Table:    model.TableName,
			},
		},
	}

	if locationID := r.URL.Query().Get(model.FieldLocationID); locationID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldLocationID,
			Operator: gDto.FilterOperatorEq,
			Value:    locationID,
			Table:    model.TableName,
		})
	}

	if categoryID := r.URL.Query().Get(model.FieldCategoryID); categoryID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCategoryID,
			Operator: gDto.FilterOperatorEq,
			Value:    categoryID,
			Table:    model.TableName,
		})
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	conferences, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get conferences")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Conferences retrieved successfully")

	response.WithJSON(w, http.StatusOK, conferences)
}

// GetConferenceByID retrieves a conference by its ID.
// @Summary Get a conference by ID
// @Description Retrieve a conference by its unique identifier.
// @Tags Conference
// @Accept json
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Data[dto.ConferenceResponse] "Conference details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences/{id} [get]
func (handler *Handler) GetConferenceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConferenceByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	conference, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get conference by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Conference retrieved successfully")

	response.WithJSON(w, http.StatusOK, conference)
}

// GetAvailability reports live seat availability for a conference.
// @Summary Get conference availability
// @Description Report remaining seats for a conference. Pending and approved bookings both hold a seat.
// @Tags Conference
// @Accept json
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Seat availability"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences/{id}/availability [get]
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	availability, err := handler.service.Availability(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get conference availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Conference availability retrieved successfully")

	response.WithJSON(w, http.StatusOK, availability)
}

// UpdateConference updates an existing conference by its ID.
// @Summary Update a conference by ID
// @Description Update the details of an existing conference.
// @Tags Conference
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Conference ID"
// @Param title formData string false "Conference title"
// @Param description formData string false "Conference description"
// @Param location_id formData string false "Location ID"
// @Param category_id formData string false "Category ID"
// @Param capacity formData integer false "Seat capacity"
// @Param price formData number false "Ticket price"
// @Param start_date formData string false "Start date (YYYY-MM-DD)"
// @Param requires_approval formData boolean false "Bookings need approval"
// @Param active formData boolean false "Conference active status"
// @Param image formData file false "Conference image"
// @Success 200 {object} response.Message "Conference updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateConference(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateConference")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.UpdateConferenceRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		StartDate:   r.FormValue("start_date"),
	}

	if locationID := r.FormValue("location_id"); locationID != "" {
		req.LocationID = &locationID
	}

	if categoryID := r.FormValue("category_id"); categoryID != "" {
		req.CategoryID = &categoryID
	}

	if capStr := r.FormValue("capacity"); capStr != "" {
		if c, err := shared.ConvertStringToInt(capStr); err == nil {
			req.Capacity = &c
		}
	}

	if priceStr := r.FormValue("price"); priceStr != "" {
		if p, err := shared.ConvertStringToFloat(priceStr); err == nil {
			req.Price = &p
		}
	}

	if approvalStr := r.FormValue("requires_approval"); approvalStr != "" {
		req.RequiresApproval = shared.ConvertStringToBool(approvalStr)
	}

	if activeStr := r.FormValue("active"); activeStr != "" {
		req.Active = shared.ConvertStringToBool(activeStr)
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update conference")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Conference updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Conference updated successfully")
}

// DeleteConference deletes a conference by its ID.
// @Summary Delete a conference by ID
// @Description Delete a conference using its unique identifier.
// @Tags Conference
// @Accept json
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Message "Conference deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/conferences/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteConference(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteConference")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete conference")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Conference deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Conference deleted successfully")
}
