package api

import (
	"net/http"

	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeHandler serves the student's own workout screens. Every route runs behind StudentMiddleware.
type MeHandler struct {
	plans    service.PlanService
	progress service.ProgressService
	photos   service.PhotoService
}

func NewMeHandler(plans service.PlanService, progress service.ProgressService, photos service.PhotoService) *MeHandler {
	return &MeHandler{plans: plans, progress: progress, photos: photos}
}

type CheckInRequest struct {
	EntryID string `json:"entryId" binding:"required"`
	Date    string `json:"date"` // YYYY-MM-DD, defaults to today
	Done    *bool  `json:"done" binding:"required"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ResetWeekResponse struct {
	Deleted int64 `json:"deleted"`
}

// MyPlans godoc
// @Summary The caller's plans in display order
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanResponse
// @Router /me/plans [get]
func (h *MeHandler) MyPlans(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, mapPlans(plans))
}

// MyPlan godoc
// @Summary One of the caller's plans with today's check-ins
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} service.PlanDay
// @Failure 403 {object} gin.H "Plan belongs to another student"
// @Router /me/plans/{planId} [get]
func (h *MeHandler) MyPlan(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	// An empty date query means today
	day, err := h.progress.PlanDay(c.Request.Context(), studentID, planID, c.Query("date"))
	if err != nil {
		respondError(c, err, "load plan")
		return
	}
	c.JSON(http.StatusOK, day)
}

// ToggleCheckIn godoc
// @Summary Mark or unmark one exercise as done for a day
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkin body CheckInRequest true "Check-in"
// @Success 200 {object} domain.CheckIn
// @Router /me/checkins [put]
func (h *MeHandler) ToggleCheckIn(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	// 1. Bind JSON request body
	var req CheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	// 2. Validate the entry ID format
	entryID, err := primitive.ObjectIDFromHex(req.EntryID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid entryId format.")
		return
	}
	// 3. Call the service; it checks the entry belongs to this student
	row, err := h.progress.ToggleCheckIn(c.Request.Context(), studentID, entryID, req.Date, *req.Done)
	if err != nil {
		respondError(c, err, "save check-in")
		return
	}
	c.JSON(http.StatusOK, row)
}

// MyWeek godoc
// @Summary Today's progress of every normal plan
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WeekResponse
// @Router /me/week [get]
func (h *MeHandler) MyWeek(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	ov, err := h.progress.WeekOverview(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "load week")
		return
	}
	c.JSON(http.StatusOK, mapWeek(ov))
}

// ResetMyWeek godoc
// @Summary Clear every check-in of the current week
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResetWeekResponse
// @Router /me/week/reset [post]
func (h *MeHandler) ResetMyWeek(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	n, err := h.progress.ResetCurrentWeek(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "reset week")
		return
	}
	c.JSON(http.StatusOK, ResetWeekResponse{Deleted: n})
}

// --- Photos ---

// MyPhotos godoc
// @Summary The caller's progress photos, newest first
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Photo
// @Router /me/photos [get]
func (h *MeHandler) MyPhotos(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	photos, err := h.photos.List(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "list photos")
		return
	}
	c.JSON(http.StatusOK, photos)
}

// RequestPhotoUpload godoc
// @Summary Get a presigned URL to PUT a photo to
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadURLRequest true "Image content type"
// @Success 200 {object} service.UploadTicket
// @Failure 503 {object} gin.H "Photo storage not configured"
// @Router /me/photos/upload-url [post]
func (h *MeHandler) RequestPhotoUpload(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.photos.RequestUpload(c.Request.Context(), studentID, req.ContentType)
	if err != nil {
		respondError(c, err, "prepare photo upload")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmPhoto godoc
// @Summary Record a photo after its upload finished
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param photo body service.PhotoConfirmation true "Uploaded object"
// @Success 201 {object} domain.Photo
// @Router /me/photos [post]
func (h *MeHandler) ConfirmPhoto(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	var req service.PhotoConfirmation
	if !bindJSON(c, &req) {
		return
	}
	// The key must sit under this student's prefix; the service checks it
	photo, err := h.photos.Confirm(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err, "save photo")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// DeletePhoto godoc
// @Summary Delete one of the caller's photos
// @Tags Me
// @Security BearerAuth
// @Param photoId path string true "Photo ID"
// @Success 204
// @Router /me/photos/{photoId} [delete]
func (h *MeHandler) DeletePhoto(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	photoID, ok := pathObjectID(c, "photoId")
	if !ok {
		return
	}
	// Removes the stored object, then the record
	if err := h.photos.Delete(c.Request.Context(), studentID, photoID); err != nil {
		respondError(c, err, "delete photo")
		return
	}
	c.Status(http.StatusNoContent)
}
