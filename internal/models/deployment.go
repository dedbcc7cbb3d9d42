package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deployment records an event ledger instantiated through the runtime. The
// ledger's live state stays in memory; this row is the durable audit trail of
// what was deployed, by whom and at which derived addresses.
type Deployment struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Address       string    `gorm:"unique;not null;index"`
	SupplyAddress string    `gorm:"not null"`
	CodeHash      string    `gorm:"not null"`
	Version       uint32    `gorm:"not null"`
	Name          string    `gorm:"not null"`
	Location      string    `gorm:"not null"`
	Symbol        string    `gorm:"not null"`
	Date          string    `gorm:"not null"`
	Price         uint32    `gorm:"not null"`
	TotalTickets  uint64    `gorm:"not null"`
	DeployerID    uuid.UUID
	Deployer      User
}

func (deployment *Deployment) BeforeCreate(tx *gorm.DB) (err error) {
	if deployment.ID == uuid.Nil {
		deployment.ID = uuid.New()
	}
	return
}
