package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/crowdgate/ticketline/internal/models"
)

var ErrDeploymentNotFound = errors.New("deployment not found")

// LedgerStore is the audit-trail surface the handlers depend on. The gorm
// implementation below is the production one; tests substitute a fake.
type LedgerStore interface {
	CreateDeployment(deployment *models.Deployment) error
	DeploymentByAddress(address string) (*models.Deployment, error)
	ListDeployments(offset, limit int) ([]models.Deployment, int64, error)
	RecordCall(record *models.CallRecord) error
	CallsByDeployment(deploymentID string, limit int) ([]models.CallRecord, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateDeployment(deployment *models.Deployment) error {
	if err := s.db.Create(deployment).Error; err != nil {
		return fmt.Errorf("create deployment: %w", err)
	}
	return nil
}

func (s *GormStore) DeploymentByAddress(address string) (*models.Deployment, error) {
	var deployment models.Deployment
	err := s.db.Preload("Deployer").Where("address = ?", address).First(&deployment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("deployment by address: %w", err)
	}
	return &deployment, nil
}

func (s *GormStore) ListDeployments(offset, limit int) ([]models.Deployment, int64, error) {
	var total int64
	if err := s.db.Model(&models.Deployment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count deployments: %w", err)
	}

	var deployments []models.Deployment
	err := s.db.Preload("Deployer").Offset(offset).Limit(limit).Order("created_at DESC").Find(&deployments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list deployments: %w", err)
	}
	return deployments, total, nil
}

func (s *GormStore) RecordCall(record *models.CallRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

func (s *GormStore) CallsByDeployment(deploymentID string, limit int) ([]models.CallRecord, error) {
	var records []models.CallRecord
	err := s.db.Where("deployment_id = ?", deploymentID).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("calls by deployment: %w", err)
	}
	return records, nil
}
