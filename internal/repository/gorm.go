package repository

import (
	"gorm.io/gorm"
)

// NewGormConfig is the configuration every database handle is opened with.
// References between tables stay soft: AutoMigrate creates the columns and
// indexes but no FOREIGN KEY constraints, so a job can be removed while
// applications still point at it.
func NewGormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}
