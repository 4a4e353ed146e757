package bootstrap

import (
	"anoa.com/communityforum/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Sujet{},
		&entity.Comment{},
		&entity.ResetPasswordRequest{},
	)
}
