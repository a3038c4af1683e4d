package api

import (
	"net/http"

	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the exercise library and the muscle group vocabulary.
type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type MuscleGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- Muscle groups ---

// CreateMuscleGroup godoc
// @Summary Add a muscle group
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body MuscleGroupRequest true "Muscle group"
// @Success 201 {object} domain.MuscleGroup
// @Failure 409 {object} gin.H "Name already exists"
// @Router /muscle-groups [post]
func (h *CatalogHandler) CreateMuscleGroup(c *gin.Context) {
	var req MuscleGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.catalog.CreateMuscleGroup(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "create muscle group")
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListMuscleGroups godoc
// @Summary List muscle groups
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MuscleGroup
// @Router /muscle-groups [get]
func (h *CatalogHandler) ListMuscleGroups(c *gin.Context) {
	groups, err := h.catalog.ListMuscleGroups(c.Request.Context())
	if err != nil {
		respondError(c, err, "list muscle groups")
		return
	}
	c.JSON(http.StatusOK, groups)
}

// RenameMuscleGroup godoc
// @Summary Rename a muscle group
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Muscle group ID"
// @Param group body MuscleGroupRequest true "New name"
// @Success 200 {object} domain.MuscleGroup
// @Router /muscle-groups/{id} [put]
func (h *CatalogHandler) RenameMuscleGroup(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req MuscleGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.catalog.RenameMuscleGroup(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err, "rename muscle group")
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteMuscleGroup godoc
// @Summary Delete a muscle group
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Muscle group ID"
// @Success 204
// @Router /muscle-groups/{id} [delete]
func (h *CatalogHandler) DeleteMuscleGroup(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteMuscleGroup(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete muscle group")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Exercises ---

// CreateExercise godoc
// @Summary Add an exercise to the library
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body service.ExerciseInput true "Exercise"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Missing fields or unknown muscle group"
// @Failure 409 {object} gin.H "Name already exists"
// @Router /exercises [post]
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	var req service.ExerciseInput
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.catalog.CreateExercise(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary List the exercise library
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Exercise
// @Router /exercises [get]
func (h *CatalogHandler) ListExercises(c *gin.Context) {
	exercises, err := h.catalog.ListExercises(c.Request.Context())
	if err != nil {
		respondError(c, err, "list exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{id} [get]
func (h *CatalogHandler) GetExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.catalog.GetExercise(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load exercise")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Edit an exercise
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body service.ExerciseInput true "Exercise"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{id} [put]
func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.catalog.UpdateExercise(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Description Plan entries that reference it are kept.
// @Tags Catalog
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 204
// @Router /exercises/{id} [delete]
func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteExercise(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}
