package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallRecord journals one mutating ledger call and its outcome, successful or
// not. Faulted calls leave no ledger state behind, so the journal is the only
// place they show up.
type CallRecord struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DeploymentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Deployment   Deployment
	Caller       string `gorm:"not null"`
	Method       string `gorm:"not null"`
	TicketID     *uint32
	Amount       *uint64
	Outcome      string `gorm:"not null"`
}

func (record *CallRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return
}
