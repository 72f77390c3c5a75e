package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type SubmissionService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewSubmissionService(db *gorm.DB, storage *StorageService) *SubmissionService {
	return &SubmissionService{db: db, storage: storage}
}

// DaysLate computes lateness as the calendar-date difference between the
// due date and the submission moment, floored at zero. A submission at
// 23:59 on the due date is on time; one at 00:01 the next day is one
// day late.
func DaysLate(dueDate, submittedAt time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	sub := time.Date(submittedAt.Year(), submittedAt.Month(), submittedAt.Day(), 0, 0, 0, 0, time.UTC)

	days := int(sub.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

type SubmitRequest struct {
	MilestoneID    uint
	SubmissionType string
	Remarks        string
	Files          []*StagedFile
}

// Submit records a deliverable against a milestone. The submission row,
// its file rows, the milestone completion and the history entry commit
// in one transaction; staged files are promoted only once the database
// work succeeds inside it, and everything on disk is rolled back if the
// transaction fails.
func (s *SubmissionService) Submit(studentID uint, req *SubmitRequest) (*models.Submission, error) {
	if req.SubmissionType == "" {
		return nil, response.NewValidation("submission type is required")
	}
	if len(req.Files) == 0 {
		return nil, response.NewValidation("at least one file is required")
	}

	var milestone models.Milestone
	if err := s.db.Preload("Project").First(&milestone, req.MilestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("milestone not found")
		}
		return nil, response.NewPersistence(err)
	}
	project := milestone.Project

	var membership int64
	if err := s.db.Model(&models.StudentGroup{}).
		Where("group_id = ? AND student_id = ?", project.GroupID, studentID).
		Count(&membership).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	if membership == 0 {
		return nil, response.NewPermission("you are not a member of this project's group")
	}

	if project.Status != models.ProjectAccepted {
		return nil, response.NewConflict("deliverables can only be submitted to accepted projects")
	}

	now := time.Now()
	daysLate := DaysLate(milestone.DueDate, now)
	status := models.SubmissionOnTime
	if daysLate > 0 {
		status = models.SubmissionLate
	}

	var submission models.Submission
	var promoted []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&models.Submission{}).
			Where("milestone_id = ?", req.MilestoneID).
			Count(&prior).Error; err != nil {
			return err
		}

		submission = models.Submission{
			ProjectID:      project.ID,
			MilestoneID:    milestone.ID,
			SubmissionType: req.SubmissionType,
			Version:        int(prior) + 1,
			SubmittedBy:    studentID,
			SubmittedAt:    now,
			Status:         status,
			DaysLate:       daysLate,
			Remarks:        req.Remarks,
			ReviewStatus:   models.ReviewPending,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		for _, staged := range req.Files {
			finalPath, err := s.storage.Promote(staged)
			if err != nil {
				return err
			}
			promoted = append(promoted, finalPath)

			upload := models.FileUpload{
				FileName:     staged.OriginalName,
				StoredName:   staged.StoredName,
				FilePath:     finalPath,
				FileType:     staged.ContentType,
				FileSize:     staged.Size,
				UploadedBy:   studentID,
				SubmissionID: submission.ID,
				UploadedAt:   now,
			}
			if err := tx.Create(&upload).Error; err != nil {
				return err
			}
		}

		// Any submission completes the milestone, whatever the later
		// review outcome.
		if milestone.Status != models.MilestoneCompleted {
			if err := tx.Model(&models.Milestone{}).Where("id = ?", milestone.ID).
				Update("status", models.MilestoneCompleted).Error; err != nil {
				return err
			}
		}

		action := fmt.Sprintf("Submitted %s for %s", req.SubmissionType, milestone.Title)
		return appendHistory(tx, project.ID, action, studentID, status, daysLate)
	})

	if err != nil {
		for _, path := range promoted {
			os.Remove(path)
		}
		s.storage.Discard(req.Files)
		return nil, wrapErr(err)
	}

	Notify(models.NotifySubmissionReceived, "New submission",
		fmt.Sprintf("A %s was submitted for milestone %q.", req.SubmissionType, milestone.Title),
		&project.ID, project.SupervisorID)

	return &submission, nil
}

type ReviewSubmissionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
	Remarks  string `json:"remarks"`
}

// Review records the supervisor's verdict on a submission. A decided
// submission cannot be re-reviewed.
func (s *SubmissionService) Review(supervisorID, submissionID uint, req *ReviewSubmissionRequest) (*models.Submission, error) {
	var submission models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project").Preload("Milestone").First(&submission, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("submission not found")
			}
			return err
		}
		if submission.Project.SupervisorID != supervisorID {
			return response.NewPermission("you do not supervise this project")
		}
		if submission.ReviewStatus != models.ReviewPending {
			return response.NewConflict("submission has already been reviewed")
		}

		reviewStatus := models.ReviewAccepted
		action := "Submission Accepted"
		if req.Decision == "reject" {
			reviewStatus = models.ReviewRejected
			action = "Submission Rejected"
		}

		now := time.Now()
		if err := tx.Model(&submission).Updates(map[string]interface{}{
			"review_status": reviewStatus,
			"remarks":       req.Remarks,
			"reviewed_by":   supervisorID,
			"reviewed_at":   now,
		}).Error; err != nil {
			return err
		}
		submission.ReviewStatus = reviewStatus
		submission.Remarks = req.Remarks
		submission.ReviewedBy = &supervisorID
		submission.ReviewedAt = &now

		return appendHistory(tx, submission.ProjectID, action, supervisorID, "", 0)
	})

	if err != nil {
		return nil, wrapErr(err)
	}

	Notify(models.NotifySubmissionReviewed, "Submission reviewed",
		fmt.Sprintf("Your submission for %q was %s.", submission.Milestone.Title,
			historyVerb(submission.ReviewStatus)),
		&submission.ProjectID, submission.SubmittedBy)

	return &submission, nil
}

// Get returns a submission with its files, project and milestone.
func (s *SubmissionService) Get(submissionID uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Preload("Project").Preload("Milestone").Preload("Files").
		First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("submission not found")
		}
		return nil, response.NewPersistence(err)
	}
	return &submission, nil
}

// ListByProject returns a project's submissions newest first.
func (s *SubmissionService) ListByProject(projectID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.Preload("Milestone").Preload("Files").
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return submissions, nil
}

// PendingForSupervisor returns unreviewed submissions across all of a
// supervisor's projects.
func (s *SubmissionService) PendingForSupervisor(supervisorID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.Preload("Project").Preload("Milestone").
		Joins("JOIN projects ON projects.id = submissions.project_id").
		Where("projects.supervisor_id = ? AND submissions.review_status = ?",
			supervisorID, models.ReviewPending).
		Order("submissions.submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	return submissions, nil
}
