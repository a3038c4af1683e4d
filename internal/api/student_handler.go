package api

import (
	"net/http"

	"bassinifit/coach-app/internal/metabolic"
	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves the trainer's student management and the student's own profile.
type StudentHandler struct {
	students  service.StudentService
	progress  service.ProgressService
	metabolic service.MetabolicService
}

func NewStudentHandler(students service.StudentService, progress service.ProgressService, metabolicService service.MetabolicService) *StudentHandler {
	return &StudentHandler{students: students, progress: progress, metabolic: metabolicService}
}

// CreateStudent godoc
// @Summary Create a student account and profile
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body service.StudentInput true "Student"
// @Success 201 {object} domain.StudentProfile
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "Email already in use"
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req service.StudentInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.students.CreateStudent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create student")
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// ListStudents godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.StudentProfile
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	profiles, err := h.students.ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err, "list students")
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetStudent godoc
// @Summary Get one student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} domain.StudentProfile
// @Failure 404 {object} gin.H "Student not found"
// @Router /students/{studentId} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	profile, err := h.students.GetStudent(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "load student")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateStudent godoc
// @Summary Partially update a student profile
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param student body service.StudentUpdate true "Fields to change"
// @Success 200 {object} domain.StudentProfile
// @Router /students/{studentId} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	var req service.StudentUpdate
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.students.UpdateStudent(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err, "update student")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteStudent godoc
// @Summary Delete a student with all their data
// @Tags Students
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /students/{studentId} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	// Cascades to plans, check-ins, photos and the login account
	if err := h.students.DeleteStudent(c.Request.Context(), studentID); err != nil {
		respondError(c, err, "delete student")
		return
	}
	c.Status(http.StatusNoContent)
}

// StudentProgress godoc
// @Summary Today's progress of a student's plans
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} WeekResponse
// @Router /students/{studentId}/progress [get]
func (h *StudentHandler) StudentProgress(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	ov, err := h.progress.WeekOverview(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "load progress")
		return
	}
	c.JSON(http.StatusOK, mapWeek(ov))
}

// Calculate godoc
// @Summary Harris-Benedict TMB and GET
// @Description Pure calculation; nothing is stored.
// @Tags Metabolic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body metabolic.Input true "Biometrics"
// @Success 200 {object} metabolic.Result
// @Failure 400 {object} gin.H "Missing or invalid biometrics"
// @Router /calculator [post]
func (h *StudentHandler) Calculate(c *gin.Context) {
	var req metabolic.Input
	if !bindJSON(c, &req) {
		return
	}
	// Preview only, nothing is stored
	res, err := h.metabolic.Calculate(req)
	if err != nil {
		respondError(c, err, "calculate")
		return
	}
	c.JSON(http.StatusOK, res)
}

// SaveMetabolic godoc
// @Summary Calculate and store TMB/GET on a student
// @Tags Metabolic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param input body metabolic.Input true "Biometrics"
// @Success 200 {object} domain.StudentProfile
// @Router /students/{studentId}/metabolic [put]
func (h *StudentHandler) SaveMetabolic(c *gin.Context) {
	studentID, ok := pathObjectID(c, "studentId")
	if !ok {
		return
	}
	var req metabolic.Input
	if !bindJSON(c, &req) {
		return
	}
	// Compute and write the biometrics and results onto the profile
	profile, err := h.metabolic.SaveToStudent(c.Request.Context(), studentID, req)
	if err != nil {
		respondError(c, err, "save metabolic data")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// MyProfile godoc
// @Summary The caller's student profile
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.StudentProfile
// @Router /me/profile [get]
func (h *StudentHandler) MyProfile(c *gin.Context) {
	studentID, ok := getStudentIDFromContext(c)
	if !ok {
		return
	}
	profile, err := h.students.GetStudent(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err, "load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
