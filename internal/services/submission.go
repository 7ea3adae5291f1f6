package services

import (
	"fmt"

	"github.com/dhanavadh/formbuilder-backend/internal"
	gormmodels "github.com/dhanavadh/formbuilder-backend/internal/models/gorm"

	"gorm.io/gorm"
)

type SubmissionService struct{}

func NewSubmissionService() *SubmissionService {
	return &SubmissionService{}
}

func (s *SubmissionService) Create(submission *gormmodels.FormSubmission) error {
	err := internal.DB.Create(submission).Error
	if err != nil {
		return fmt.Errorf("failed to create form submission: %w", err)
	}
	return nil
}

func (s *SubmissionService) GetByID(id string) (*gormmodels.FormSubmission, error) {
	var submission gormmodels.FormSubmission

	err := internal.DB.Where("id = ?", id).First(&submission).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch form submission: %w", err)
	}

	return &submission, nil
}

func (s *SubmissionService) GetByFormID(formID string) ([]gormmodels.FormSubmission, error) {
	var submissions []gormmodels.FormSubmission

	err := internal.DB.Where("form_id = ?", formID).Order("created_at DESC").Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form submissions: %w", err)
	}

	return submissions, nil
}

func (s *SubmissionService) Delete(id string) error {
	err := internal.DB.Where("id = ?", id).Delete(&gormmodels.FormSubmission{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete form submission: %w", err)
	}
	return nil
}
