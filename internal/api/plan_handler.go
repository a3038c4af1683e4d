package api

import (
	"bytes"
	"fmt"
	"net/http"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/planning"
	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlanHandler serves the trainer's plan editor.
type PlanHandler struct {
	plans service.PlanService
}

func NewPlanHandler(plans service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// --- DTOs ---

// PlanResponse is a plan as listed: MuscleGroupSummary is derived from its entries, and
// MuscleGroups (embedded) is the stored fallback.
type PlanResponse struct {
	domain.Plan
	MuscleGroupList    []string `json:"muscleGroupList"`
	MuscleGroupSummary string   `json:"muscleGroupSummary"`
	EntryCount         int      `json:"entryCount"`
	RestDay            bool     `json:"restDay"`
}

type PlanStatusResponse struct {
	Plan     PlanResponse      `json:"plan"`
	Progress planning.Progress `json:"progress"`
}

type WeekResponse struct {
	Date         string               `json:"date"`
	WeekStart    string               `json:"weekStart"`
	WeekEnd      string               `json:"weekEnd"`
	WeekComplete bool                 `json:"weekComplete"`
	Plans        []PlanStatusResponse `json:"plans"`
}

type ReorderRequest struct {
	PlanIDs []string `json:"planIds" binding:"required"`
}

type MoveRequest struct {
	PlanID string `json:"planId" binding:"required"`
	OverID string `json:"overId" binding:"required"`
}

func mapPlan(p planning.AggregatedPlan) PlanResponse {
	groups := p.MuscleGroups
	if groups == nil {
		groups = []string{}
	}
	return PlanResponse{
		Plan:               p.Plan,
		MuscleGroupList:    groups,
		MuscleGroupSummary: p.MuscleGroupSummary,
		EntryCount:         len(p.EntryIDs),
		RestDay:            p.Plan.IsRestDay(),
	}
}

func mapPlans(plans []planning.AggregatedPlan) []PlanResponse {
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = mapPlan(p)
	}
	return out
}

func mapWeek(ov *planning.WeekOverview) WeekResponse {
	resp := WeekResponse{
		Date:         ov.Date,
		WeekStart:    ov.WeekStart,
		WeekEnd:      ov.WeekEnd,
		WeekComplete: ov.WeekComplete,
		Plans:        make([]PlanStatusResponse, len(ov.Plans)),
	}
	for i, p := range ov.Plans {
		resp.Plans[i] = PlanStatusResponse{Plan: mapPlan(p.Plan), Progress: p.Progress}
	}
	return resp
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(raw))
	for i, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid plan id %q", s)
		}
		ids[i] = id
	}
	return ids, nil
}

// --- Plans ---

// ListPlans godoc
// @Summary A student's plans in display order
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} PlanResponse
// @Router /students/{studentId}/plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
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

// UpsertPlan godoc
// @Summary Create or update a plan
// @Description Without an id, a plan of the student with the same name is updated instead of duplicated.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param plan body service.PlanInput true "Plan"
// @Success 200 {object} domain.Plan
// @Router /students/{studentId}/plans [put]
func (h *PlanHandler) UpsertPlan(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	// Bind JSON request body; an ID in it switches to update
	var req service.PlanInput
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.UpsertPlan(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err, "save plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetPlan godoc
// @Summary One plan with its entries
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.PlanDetail
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	detail, err := h.plans.GetPlan(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err, "load plan")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeletePlan godoc
// @Summary Delete a plan with its entries and check-ins
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204
// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	if err := h.plans.DeletePlan(c.Request.Context(), planID); err != nil {
		respondError(c, err, "delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderPlans godoc
// @Summary Save the order of a student's normal plans
// @Description Ranks are written one plan at a time. A failure part way answers 500 with how many were applied.
// @Tags Plans
// @Accept json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param order body ReorderRequest true "Every normal plan id, in the new order"
// @Success 204
// @Router /students/{studentId}/plans/order [put]
func (h *PlanHandler) ReorderPlans(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	// 1. Bind JSON request body
	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	// 2. Every ID must parse before anything is written
	order, err := parseObjectIDs(req.PlanIDs)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	// 3. Call the service; unknown or foreign plans come back as errors
	if err := h.plans.ReorderPlans(c.Request.Context(), studentID, order); err != nil {
		respondError(c, err, "save plan order")
		return
	}
	c.Status(http.StatusNoContent)
}

// MovePlan godoc
// @Summary Drop one plan onto the position of another
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param move body MoveRequest true "Dragged plan and drop target"
// @Success 200 {array} PlanResponse
// @Router /students/{studentId}/plans/move [post]
func (h *PlanHandler) MovePlan(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	var req MoveRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := parseObjectIDs([]string{req.PlanID, req.OverID})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	// Move, then answer with the list in its new order
	changed, err := h.plans.MovePlan(c.Request.Context(), studentID, ids[0], ids[1])
	if err != nil {
		respondError(c, err, "save plan order")
		return
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "plans": mapPlans(plans)})
}

// ExportPlans godoc
// @Summary Download a student's plans as XLSX
// @Tags Plans
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {file} file
// @Router /students/{studentId}/plans/export [get]
func (h *PlanHandler) ExportPlans(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	// Render fully before writing headers, so a failure can still be a JSON error
	var buf bytes.Buffer
	if err := h.plans.ExportPlans(c.Request.Context(), studentID, &buf); err != nil {
		respondError(c, err, "export plans")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="treinos-%s.xlsx"`, studentID.Hex()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- Entries ---

// ListEntries godoc
// @Summary Entries of a plan, by position
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {array} service.EntryDetail
// @Router /plans/{planId}/entries [get]
func (h *PlanHandler) ListEntries(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	entries, err := h.plans.ListEntries(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err, "list exercises of plan")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateEntry godoc
// @Summary Add an exercise to a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param entry body service.EntryInput true "Prescription"
// @Success 201 {object} domain.PlanEntry
// @Router /plans/{planId}/entries [post]
func (h *PlanHandler) CreateEntry(c *gin.Context) {
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	var req service.EntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.plans.CreateEntry(c.Request.Context(), planID, req)
	if err != nil {
		respondError(c, err, "add exercise to plan")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry godoc
// @Summary Edit a prescription
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Param entry body service.EntryInput true "Prescription"
// @Success 200 {object} domain.PlanEntry
// @Router /entries/{entryId} [put]
func (h *PlanHandler) UpdateEntry(c *gin.Context) {
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}
	var req service.EntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.plans.UpdateEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondError(c, err, "update exercise of plan")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Remove an exercise from a plan
// @Tags Plans
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 204
// @Router /entries/{entryId} [delete]
func (h *PlanHandler) DeleteEntry(c *gin.Context) {
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}
	if err := h.plans.DeleteEntry(c.Request.Context(), entryID); err != nil {
		respondError(c, err, "remove exercise from plan")
		return
	}
	c.Status(http.StatusNoContent)
}
