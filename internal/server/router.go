package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-dashboard/api/swagger"
	"github.com/noah-isme/academic-dashboard/internal/handler"
	"github.com/noah-isme/academic-dashboard/internal/middleware"
	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/service"
	"github.com/noah-isme/academic-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-dashboard/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Student     *handler.StudentHandler
	Chatbot     *handler.ChatbotHandler
	Teacher     *handler.TeacherHandler
	Content     *handler.ContentHandler
	Courses     *handler.WriteHandler
	Assignments *handler.WriteHandler
	Grades      *handler.WriteHandler
	Ops         *handler.MetricsHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Audit          middleware.AuditRecorder
	Metrics        *service.MetricsService
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)

	// --- Public token routes ---
	api.POST("/token/", h.Auth.Login)
	api.POST("/token/refresh/", h.Auth.Refresh)

	// --- Authenticated routes ---
	authed := api.Group("")
	authed.Use(middleware.JWT(opts.Tokens))
	{
		authed.POST("/token/logout/", h.Auth.Logout)
		authed.GET("/user/me/", h.Auth.Me)
		authed.GET("/contents/:id/download", middleware.Audit(opts.Audit, models.AuditActionDownload, "course_content"), h.Content.Download)
	}

	student := authed.Group("")
	student.Use(middleware.RequireGroup(models.GroupStudents))
	{
		student.GET("/my-courses/", h.Student.MyCourses)
		student.GET("/my-assignments/", h.Student.MyAssignments)
		student.GET("/my-grades/", h.Student.MyGrades)
		student.POST("/my-submissions/", h.Student.Submit)
		student.POST("/chatbot/query/", h.Chatbot.Query)
		student.GET("/chatbot/history/", h.Chatbot.History)
	}

	teacher := authed.Group("")
	teacher.Use(middleware.RequireGroup(models.GroupTeachers))
	{
		teacher.GET("/teacher/my-courses/", h.Teacher.MyCourses)
		teacher.POST("/teacher/upload-content/", h.Teacher.UploadContent)
		teacher.GET("/teacher/courses/:id/contents/", h.Teacher.Contents)
		teacher.GET("/teacher/courses/:id/grades/export", middleware.Audit(opts.Audit, models.AuditActionGradeExport, "course"), h.Teacher.ExportGrades)
		teacher.POST("/assignments/", h.Assignments.Create)
		teacher.PATCH("/assignments/:id/", h.Assignments.Update)
		teacher.POST("/grades/", h.Grades.Create)
		teacher.PATCH("/grades/:id/", h.Grades.Update)
	}

	staff := authed.Group("")
	staff.Use(middleware.RequireStaff())
	{
		staff.POST("/courses/", h.Courses.Create)
		staff.PATCH("/courses/:id/", h.Courses.Update)
	}

	return r
}
