package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/gartstein/jobboard/internal/jobboard/controller"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ApplicationController is the application lifecycle the HTTP routes invoke.
type ApplicationController interface {
	Submit(ctx context.Context, email string, req controller.SubmitRequest) (*models.JobApplication, error)
	HasApplied(ctx context.Context, email string, offerID uuid.UUID) (bool, error)
	ListForActor(ctx context.Context, email string) ([]*models.JobApplication, error)
	GetOne(ctx context.Context, email string, id uuid.UUID) (*models.JobApplication, error)
	GetCandidateView(ctx context.Context, email string, id uuid.UUID) (*models.ApplicationView, error)
	ListCandidateViews(ctx context.Context, email string) ([]*models.ApplicationView, error)
	UpdateStatus(ctx context.Context, email string, id uuid.UUID, status models.ApplicationStatus, notify bool) (*models.JobApplication, error)
	UpdatePositionStatus(ctx context.Context, email string, id uuid.UUID, title string, status models.PositionStatus) (*models.JobApplication, error)
	ScheduleInterview(ctx context.Context, email string, id uuid.UUID, req controller.InterviewRequest) (*models.JobApplication, error)
	DeleteByCompany(ctx context.Context, email string, id uuid.UUID) error
	DeleteByApplicant(ctx context.Context, email string, id uuid.UUID) error
}

type NotificationController interface {
	Create(ctx context.Context, email string, req controller.CreateNotificationRequest) (*models.Notification, error)
	List(ctx context.Context, email string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, email string, id uuid.UUID) error
}

type ProfileController interface {
	Get(ctx context.Context, email string) (*models.User, error)
	Setup(ctx context.Context, email string, setup *models.ProfileSetup) (*models.User, error)
	Delete(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, imageURL string) (*models.User, error)
	UpdateCover(ctx context.Context, email, imageURL string) (*models.User, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListCandidates(ctx context.Context, q models.CandidateQuery) (*models.CandidatePage, error)
}

type OfferController interface {
	Create(ctx context.Context, email string, offer *models.JobOffer) (*models.JobOffer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.JobOffer, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]*models.JobOffer, error)
	Update(ctx context.Context, email string, offer *models.JobOffer) (*models.JobOffer, error)
	Delete(ctx context.Context, email string, id uuid.UUID) error
}

type RequestController interface {
	Create(ctx context.Context, email string, req *models.JobRequest) (*models.JobRequest, error)
	List(ctx context.Context, email string) ([]*models.JobRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.JobRequest, error)
	Update(ctx context.Context, email string, req *models.JobRequest) (*models.JobRequest, error)
	Delete(ctx context.Context, email string, id uuid.UUID) error
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Services groups the controllers served over HTTP.
type Services struct {
	Applications  ApplicationController
	Notifications NotificationController
	Profiles      ProfileController
	Offers        OfferController
	Requests      RequestController
	Health        HealthChecker
}

// Handler implements the JSON routes of the job board.
type Handler struct {
	svc    Services
	logger *zap.Logger
	mux    *runtime.ServeMux
	now    func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.Named("http"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/healthz", h.healthz},

		{http.MethodPost, "/api/jobs/apply/{offerId}", h.submitApplication},
		{http.MethodGet, "/api/jobs/apply/{offerId}", h.hasApplied},
		{http.MethodGet, "/api/jobs/applications", h.listApplications},
		{http.MethodGet, "/api/jobs/applications/{id}", h.getApplication},
		{http.MethodPatch, "/api/jobs/applications/{id}", h.patchApplication},
		{http.MethodDelete, "/api/jobs/applications/{id}", h.deleteApplication},
		{http.MethodPatch, "/api/jobs/applications/{id}/status", h.updateStatus},
		{http.MethodPatch, "/api/jobs/applications/{id}/positions", h.updatePositionStatus},
		{http.MethodPost, "/api/jobs/applications/{id}/interview", h.scheduleInterview},
		{http.MethodGet, "/api/jobs/my-applications", h.listMyApplications},
		{http.MethodGet, "/api/jobs/my-applications/{id}", h.getMyApplication},
		{http.MethodDelete, "/api/jobs/my-applications/{id}", h.deleteMyApplication},

		{http.MethodGet, "/api/notifications", h.listNotifications},
		{http.MethodPost, "/api/notifications", h.createNotification},
		{http.MethodPatch, "/api/notifications/{id}", h.markNotificationRead},

		{http.MethodGet, "/api/profile", h.getProfile},
		{http.MethodPost, "/api/profile", h.setupProfile},
		{http.MethodDelete, "/api/profile", h.deleteProfile},
		{http.MethodPost, "/api/profile/update-avatar", h.updateAvatar},
		{http.MethodPost, "/api/profile/update-cover", h.updateCover},

		{http.MethodGet, "/api/users/{id}", h.getUser},
		{http.MethodGet, "/api/candidates", h.listCandidates},

		{http.MethodGet, "/api/job-offers", h.listOffers},
		{http.MethodPost, "/api/job-offers", h.createOffer},
		{http.MethodGet, "/api/job-offers/{id}", h.getOffer},
		{http.MethodPatch, "/api/job-offers/{id}", h.updateOffer},
		{http.MethodDelete, "/api/job-offers/{id}", h.deleteOffer},

		{http.MethodGet, "/api/request-job", h.listRequests},
		{http.MethodPost, "/api/request-job", h.createRequest},
		{http.MethodGet, "/api/request-job/{id}", h.getRequest},
		{http.MethodPatch, "/api/request-job/{id}", h.updateRequest},
		{http.MethodDelete, "/api/request-job/{id}", h.deleteRequest},
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *runtime.ServeMux) error {
	h.mux = mux
	for _, rt := range h.routes() {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return nil
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	buf, err := outbound.Marshal(v)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(buf); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	inbound, _ := runtime.MarshalerForRequest(h.mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", e.ErrInvalidInput)
	}
	return nil
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.svc.Health != nil {
		if err := h.svc.Health.Ping(r.Context()); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			h.writeError(w, r, status.Error(codes.Unavailable, "database unavailable"))
			return
		}
	}
	h.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Applications

func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	offerID, err := parseID(params, "offerId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body SubmitApplicationRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	companyID, err := parseOptionalID(body.CompanyID, "companyId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	app, err := h.svc.Applications.Submit(r.Context(), auth.EmailFromContext(r.Context()), controller.SubmitRequest{
		OfferID:        offerID,
		CompanyID:      companyID,
		PositionTitles: body.PositionTitles,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationToDTO(app))
}

func (h *Handler) hasApplied(w http.ResponseWriter, r *http.Request, params map[string]string) {
	offerID, err := parseID(params, "offerId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	applied, err := h.svc.Applications.HasApplied(r.Context(), auth.EmailFromContext(r.Context()), offerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, HasAppliedResponse{HasApplied: applied})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	apps, err := h.svc.Applications.ListForActor(r.Context(), auth.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, mapSlice(apps, applicationToDTO))
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.svc.Applications.GetOne(r.Context(), auth.EmailFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationToDTO(app))
}

func (h *Handler) patchApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.changeStatus(w, r, params, false)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.changeStatus(w, r, params, true)
}

// changeStatus backs both status routes; only /status notifies the candidate.
func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, params map[string]string, notify bool) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body StatusRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.svc.Applications.UpdateStatus(r.Context(), auth.EmailFromContext(r.Context()), id,
		models.ApplicationStatus(body.Status), notify)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationToDTO(app))
}

func (h *Handler) updatePositionStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body PositionStatusRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.svc.Applications.UpdatePositionStatus(r.Context(), auth.EmailFromContext(r.Context()), id,
		body.PositionTitle, models.PositionStatus(body.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationToDTO(app))
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body InterviewRequestDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.svc.Applications.ScheduleInterview(r.Context(), auth.EmailFromContext(r.Context()), id, controller.InterviewRequest{
		Date:     body.Date,
		Time:     body.Time,
		Location: body.Location,
		Notes:    body.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationToDTO(app))
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Applications.DeleteByCompany(r.Context(), auth.EmailFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) listMyApplications(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	views, err := h.svc.Applications.ListCandidateViews(r.Context(), auth.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, mapSlice(views, applicationViewToDTO))
}

func (h *Handler) getMyApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.Applications.GetCandidateView(r.Context(), auth.EmailFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, applicationViewToDTO(view))
}

func (h *Handler) deleteMyApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Applications.DeleteByApplicant(r.Context(), auth.EmailFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// Notifications

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	list, err := h.svc.Notifications.List(r.Context(), auth.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, mapSlice(list, notificationToDTO))
}

func (h *Handler) createNotification(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var body CreateNotificationRequestDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := notificationRequestFromDTO(&body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.svc.Notifications.Create(r.Context(), auth.EmailFromContext(r.Context()), *req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, notificationToDTO(n))
}

func notificationRequestFromDTO(body *CreateNotificationRequestDTO) (*controller.CreateNotificationRequest, error) {
	recipientID, err := uuid.Parse(body.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid recipientId", e.ErrInvalidInput)
	}
	applicationID, err := parseOptionalID(body.ApplicationID, "applicationId")
	if err != nil {
		return nil, err
	}
	offerID, err := parseOptionalID(body.OfferID, "offerId")
	if err != nil {
		return nil, err
	}
	req := &controller.CreateNotificationRequest{
		RecipientID:   recipientID,
		Type:          models.NotificationType(body.Type),
		Message:       body.Message,
		ApplicationID: applicationID,
		OfferID:       offerID,
		Positions:     body.Positions,
		CompanyName:   body.CompanyName,
	}
	if iv := body.Interview; iv != nil {
		req.Interview = &models.InterviewDetails{
			Date:        iv.Date,
			Time:        iv.Time,
			Location:    iv.Location,
			Notes:       iv.Notes,
			CompanyName: iv.CompanyName,
		}
	}
	return req, nil
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Notifications.MarkRead(r.Context(), auth.EmailFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// Profile

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	user, err := h.svc.Profiles.Get(r.Context(), auth.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, userToDTO(user))
}

func (h *Handler) setupProfile(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var body ProfileSetupRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.svc.Profiles.Setup(r.Context(), auth.EmailFromContext(r.Context()), profileSetupFromDTO(&body))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, userToDTO(user))
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if err := h.svc.Profiles.Delete(r.Context(), auth.EmailFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.updateImage(w, r, h.svc.Profiles.UpdateAvatar)
}

func (h *Handler) updateCover(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.updateImage(w, r, h.svc.Profiles.UpdateCover)
}

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request,
	update func(ctx context.Context, email, imageURL string) (*models.User, error)) {
	var body ImageRequest
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := update(r.Context(), auth.EmailFromContext(r.Context()), body.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, userToDTO(user))
}

// Public readers

// getUser serves the public profile of a user. The endpoint query parameter
// selects the projection: type (default), company or offers.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	switch endpoint := r.URL.Query().Get("endpoint"); endpoint {
	case "", "type":
		user, err := h.svc.Profiles.GetPublic(ctx, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.respond(w, r, http.StatusOK, UserTypeResponse{UserType: string(user.Type)})
	case "company":
		company, err := h.svc.Profiles.GetCompany(ctx, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.respond(w, r, http.StatusOK, companyProfileToDTO(company))
	case "offers":
		company, err := h.svc.Profiles.GetCompany(ctx, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		offers, err := h.svc.Offers.List(ctx, &company.ID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.respond(w, r, http.StatusOK, CompanyOffersResponse{
			Profile: companyProfileToDTO(company),
			Offers:  mapSlice(offers, offerToDTO),
		})
	default:
		h.writeError(w, r, fmt.Errorf("%w: unknown endpoint %q", e.ErrInvalidInput, endpoint))
	}
}

func (h *Handler) listCandidates(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	query := r.URL.Query()
	page, err := queryInt(query.Get("page"), "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(query.Get("limit"), "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Profiles.ListCandidates(r.Context(), models.CandidateQuery{
		Page:   page,
		Limit:  limit,
		Search: query.Get("search"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, candidatesToDTO(result, h.now()))
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", e.ErrInvalidInput, name)
	}
	return n, nil
}

// Offers

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	ownerID, err := parseOptionalID(r.URL.Query().Get("userId"), "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	offers, err := h.svc.Offers.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, mapSlice(offers, offerToDTO))
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var body OfferDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	offer, err := h.svc.Offers.Create(r.Context(), auth.EmailFromContext(r.Context()), offerFromDTO(&body))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, offerToDTO(offer))
}

func (h *Handler) getOffer(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	offer, err := h.svc.Offers.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, offerToDTO(offer))
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body OfferDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	offer := offerFromDTO(&body)
	offer.ID = id
	updated, err := h.svc.Offers.Update(r.Context(), auth.EmailFromContext(r.Context()), offer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, offerToDTO(updated))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Offers.Delete(r.Context(), auth.EmailFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// Job requests

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	list, err := h.svc.Requests.List(r.Context(), auth.EmailFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	now := h.now()
	h.respond(w, r, http.StatusOK, mapSlice(list, func(jr *models.JobRequest) *JobRequestDTO {
		return requestToDTO(jr, now)
	}))
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var body JobRequestDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.Requests.Create(r.Context(), auth.EmailFromContext(r.Context()), requestFromDTO(&body))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, requestToDTO(created, h.now()))
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.svc.Requests.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, requestToDTO(req, h.now()))
}

func (h *Handler) updateRequest(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body JobRequestDTO
	if err := h.decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req := requestFromDTO(&body)
	req.ID = id
	updated, err := h.svc.Requests.Update(r.Context(), auth.EmailFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, requestToDTO(updated, h.now()))
}

func (h *Handler) deleteRequest(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Requests.Delete(r.Context(), auth.EmailFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, SuccessResponse{Success: true})
}
