package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdgate/ticketline/internal/ledger"
)

type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key"`
	Name      string    `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type User struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Email    string    `gorm:"unique;not null"`
	Password string    `gorm:"not null"`
	RoleID   uuid.UUID
	Role     Role
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

// Account is the holder identifier the ledger sees for this user.
func (user *User) Account() ledger.AccountID {
	return ledger.AccountFromUUID(user.ID)
}
