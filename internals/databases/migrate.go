package database

import (
	"log"

	"gorm.io/gorm"

	commentModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/model"
	likeModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/model"
	postModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/model"
	jobModel "github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/model"
	consultationModel "github.com/abassolaiya/phibitechbackend/internals/features/consultations/model"
	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	registrationModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	paymentModel "github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/model"
	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

// Models lists every table in dependency order (referenced tables first).
func Models() []any {
	return []any{
		&authorModel.AuthorModel{},
		&authModel.RefreshToken{},
		&authModel.TokenBlacklist{},

		&courseModel.CourseModel{},
		&registrationModel.RegistrationModel{},
		&paymentModel.PaymentOrderModel{},
		&paymentModel.PaymentEventModel{},

		&postModel.BlogPostModel{},
		&commentModel.CommentModel{},
		&commentModel.ReplyModel{},
		&likeModel.LikeModel{},

		&jobModel.JobModel{},
		&consultationModel.ConsultationModel{},
	}
}

// Migrate creates or alters the tables to match the models. It never drops columns.
func Migrate(db *gorm.DB) error {
	log.Println("[INFO] running auto-migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("[INFO] migrations done.")
	return nil
}
