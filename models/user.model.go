package models

import (
	"time"

	"gorm.io/gorm"
)

// Role constants
const (
	RoleLearner = "LEARNER"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

type User struct {
	gorm.Model
	Name      string    `json:"name" gorm:"default:''"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Role      string    `json:"role" gorm:"default:'LEARNER'"` // LEARNER, CREATOR, ADMIN
	Password  string    `json:"-" gorm:"not null"`
	LastLogin time.Time `json:"last_login" gorm:"default:NULL"`
	IsDeleted bool      `gorm:"default:false"`
}
