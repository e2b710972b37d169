package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	commentRoute "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/route"
	postRoute "github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/route"
	jobRoute "github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/route"
	consultationRoute "github.com/abassolaiya/phibitechbackend/internals/features/consultations/route"
	courseRoute "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/route"
	registrationRoute "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/route"
	paymentRoute "github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/route"
	paymentService "github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/service"
	mediaRoute "github.com/abassolaiya/phibitechbackend/internals/features/media/route"
	authRoute "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/route"
	authorRoute "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/route"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	"github.com/abassolaiya/phibitechbackend/internals/middlewares"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

var startTime time.Time

// Deps carries the collaborators shared by every feature router.
type Deps struct {
	DB       *gorm.DB
	Config   *configs.Config
	Sessions sessions.Store
	Uploader helperOSS.Uploader
	Mailer   mailer.Mailer
	Gateway  paymentService.Gateway
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	authn := authMiddleware.NewAuthenticator(d.DB, d.Config, d.Sessions)
	api := app.Group("/api", middlewares.GlobalRateLimiter())

	log.Println("[INFO] Mounting auth & author routes...")
	authRoute.AuthRoutes(api, d.DB, d.Config, authn, d.Sessions, d.Mailer)
	authorRoute.AuthorRoutes(api, d.DB, authn, d.Uploader)

	log.Println("[INFO] Mounting course routes...")
	courseRoute.CourseRoutes(api, d.DB, authn, d.Uploader)
	registrationRoute.RegistrationRoutes(api, d.DB, authn, d.Mailer)
	paymentRoute.AllPaymentRoutes(api, d.DB, authn, d.Gateway)

	log.Println("[INFO] Mounting blog routes...")
	postRoute.PostRoutes(api, d.DB, authn, d.Uploader)
	commentRoute.CommentRoutes(api, d.DB, authn)

	log.Println("[INFO] Mounting job, consultation & media routes...")
	jobRoute.JobRoutes(api, d.DB, authn)
	consultationRoute.ConsultationRoutes(api, d.DB, authn, d.Mailer, d.Config.SMTP.AdminInbox)
	mediaRoute.MediaRoutes(api, authn, d.Uploader)
}
