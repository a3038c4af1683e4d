package api

import (
	"net/http"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Students  service.StudentService
	Catalog   service.CatalogService
	Plans     service.PlanService
	Progress  service.ProgressService
	Metabolic service.MetabolicService
	Photos    service.PhotoService
}

func SetupRoutes(router *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	studentHandler := NewStudentHandler(svc.Students, svc.Progress, svc.Metabolic)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	planHandler := NewPlanHandler(svc.Plans)
	meHandler := NewMeHandler(svc.Plans, svc.Progress, svc.Photos)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", authHandler.Me)

		// --- Trainer routes ---
		admin := protected.Group("")
		admin.Use(RoleMiddleware(domain.RoleAdmin))
		{
			admin.POST("/students", studentHandler.CreateStudent)
			admin.GET("/students", studentHandler.ListStudents)
			admin.GET("/students/:studentId", studentHandler.GetStudent)
			admin.PUT("/students/:studentId", studentHandler.UpdateStudent)
			admin.DELETE("/students/:studentId", studentHandler.DeleteStudent)
			admin.GET("/students/:studentId/progress", studentHandler.StudentProgress)
			admin.PUT("/students/:studentId/metabolic", studentHandler.SaveMetabolic)
			admin.POST("/calculator", studentHandler.Calculate)

			admin.POST("/muscle-groups", catalogHandler.CreateMuscleGroup)
			admin.GET("/muscle-groups", catalogHandler.ListMuscleGroups)
			admin.PUT("/muscle-groups/:id", catalogHandler.RenameMuscleGroup)
			admin.DELETE("/muscle-groups/:id", catalogHandler.DeleteMuscleGroup)

			admin.POST("/exercises", catalogHandler.CreateExercise)
			admin.GET("/exercises", catalogHandler.ListExercises)
			admin.GET("/exercises/:id", catalogHandler.GetExercise)
			admin.PUT("/exercises/:id", catalogHandler.UpdateExercise)
			admin.DELETE("/exercises/:id", catalogHandler.DeleteExercise)

			admin.GET("/students/:studentId/plans", planHandler.ListPlans)
			admin.PUT("/students/:studentId/plans", planHandler.UpsertPlan)
			admin.PUT("/students/:studentId/plans/order", planHandler.ReorderPlans)
			admin.POST("/students/:studentId/plans/move", planHandler.MovePlan)
			admin.GET("/students/:studentId/plans/export", planHandler.ExportPlans)
			admin.GET("/plans/:planId", planHandler.GetPlan)
			admin.DELETE("/plans/:planId", planHandler.DeletePlan)
			admin.GET("/plans/:planId/entries", planHandler.ListEntries)
			admin.POST("/plans/:planId/entries", planHandler.CreateEntry)
			admin.PUT("/entries/:entryId", planHandler.UpdateEntry)
			admin.DELETE("/entries/:entryId", planHandler.DeleteEntry)
		}

		// --- Student routes ---
		me := protected.Group("/me")
		me.Use(RoleMiddleware(domain.RoleStudent), StudentMiddleware(svc.Students))
		{
			me.GET("/profile", studentHandler.MyProfile)
			me.GET("/plans", meHandler.MyPlans)
			me.GET("/plans/:planId", meHandler.MyPlan)
			me.PUT("/checkins", meHandler.ToggleCheckIn)
			me.GET("/week", meHandler.MyWeek)
			me.POST("/week/reset", meHandler.ResetMyWeek)
			me.GET("/photos", meHandler.MyPhotos)
			me.POST("/photos/upload-url", meHandler.RequestPhotoUpload)
			me.POST("/photos", meHandler.ConfirmPhoto)
			me.DELETE("/photos/:photoId", meHandler.DeletePhoto)
		}
	}
}
