package routes

import (
	"log/slog"

	"coursehub/backend/config"
	"coursehub/backend/controllers"
	"coursehub/backend/middleware"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// bodyLimit leaves room for a maximum-size lecture video plus form overhead.
const bodyLimit = 520 << 20

type Dependencies struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Sessions *services.SessionService
	Users    *services.UserService
	Courses  *services.CourseService
	Contact  *services.ContactService
}

// NewApp builds the fiber application with the middleware stack and every route.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "coursehub",
		ErrorHandler: utils.ErrorHandler(deps.Logger),
		BodyLimit:    bodyLimit,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: deps.Cfg.CORSOrigins != "*",
	}))
	app.Use(middleware.LoggingMiddleware(deps.Logger))

	if deps.Cfg.AssetDriver == "local" {
		app.Static("/uploads", deps.Cfg.UploadDir)
	}

	SetupRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFound(c, "Not Found")
	})

	return app
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	authController := controllers.NewAuthController(deps.Users, deps.Sessions, deps.Cfg)
	userController := controllers.NewUserController(deps.Users, deps.Cfg)
	coursesController := controllers.NewCoursesController(deps.Courses)
	contactController := controllers.NewContactController(deps.Contact)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(deps.Sessions, deps.Users)
	adminMiddleware := middleware.AdminMiddleware()
	studentMiddleware := middleware.StudentMiddleware()

	app.Get("/status", controllers.Status)
	app.Post("/api/contact", contactController.Submit)

	// User routes
	users := app.Group("/api/users")
	users.Post("/register", authController.Register)
	users.Post("/login", authController.Login)
	users.Post("/logout", authMiddleware, authController.Logout)
	users.Get("/profile", authMiddleware, userController.GetProfile)
	users.Put("/profile/avatar", authMiddleware,
		middleware.UploadMiddleware(middleware.AvatarUpload.Require()), userController.UploadAvatar)
	users.Post("/forgotpassword", authController.ForgotPassword)
	users.Put("/resetpassword/:token", authController.ResetPassword)
	users.Put("/profile", authMiddleware,
		middleware.UploadMiddleware(middleware.AvatarUpload), userController.UpdateProfile)
	users.Put("/changepassword", authMiddleware, userController.ChangePassword)

	// Courses routes; /enrolled must precede /:courseId
	courses := app.Group("/api/courses")
	courses.Post("/create", authMiddleware, adminMiddleware,
		middleware.UploadMiddleware(middleware.ThumbnailUpload.Require()), coursesController.CreateCourse)
	courses.Get("/", coursesController.GetAvailableCourses)
	courses.Get("/enrolled", authMiddleware, studentMiddleware, coursesController.GetEnrolledCourses)
	courses.Post("/:courseId/lectures", authMiddleware, adminMiddleware,
		middleware.UploadMiddleware(middleware.VideoUpload.Require()), coursesController.AddLecture)
	courses.Put("/:courseId", authMiddleware, adminMiddleware,
		middleware.UploadMiddleware(middleware.ThumbnailUpload), coursesController.UpdateCourse)
	courses.Delete("/:courseId", authMiddleware, adminMiddleware, coursesController.DeleteCourse)
	courses.Get("/:courseId/students", authMiddleware, adminMiddleware, coursesController.GetEnrolledStudents)
	courses.Post("/:courseId/enroll", authMiddleware, studentMiddleware, coursesController.EnrollInCourse)
	courses.Get("/:courseId", coursesController.GetCourse)
}
