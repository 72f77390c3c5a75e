package services

import (
	"testing"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
)

func TestCreateMilestone(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	other := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	project := createAcceptedProject(t, db, supervisor.ID, group.ID)

	svc := NewMilestoneService(db)
	milestone, err := svc.Create(supervisor.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Literature Review",
		DueDate:   "2026-10-15",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if milestone.Status != models.MilestonePending {
		t.Errorf("status = %q, expected %q", milestone.Status, models.MilestonePending)
	}

	var entry models.ProjectHistory
	if err := db.Where("project_id = ? AND action = ?", project.ID, "Milestone Created: Literature Review").
		First(&entry).Error; err != nil {
		t.Errorf("expected history row for milestone creation: %v", err)
	}

	// Only the supervising supervisor may add milestones.
	_, err = svc.Create(other.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Methodology",
		DueDate:   "2026-11-01",
	})
	if !response.IsPermission(err) {
		t.Errorf("expected permission error, got %v", err)
	}

	_, err = svc.Create(supervisor.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Bad Date",
		DueDate:   "15/10/2026",
	})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}
}

func TestCreateMilestone_RequiresAcceptedProject(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	project, err := NewProjectService(db).SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Unreviewed",
		Description: "Still a proposal.",
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	_, err = NewMilestoneService(db).Create(supervisor.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Too Early",
		DueDate:   "2026-10-15",
	})
	if !response.IsConflict(err) {
		t.Errorf("expected conflict for non-accepted project, got %v", err)
	}
}

func TestDueSoon(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	project := createAcceptedProject(t, db, supervisor.ID, group.ID)

	createMilestone(t, db, supervisor.ID, project.ID, time.Now().AddDate(0, 0, 2))
	far := createMilestone(t, db, supervisor.ID, project.ID, time.Now().AddDate(0, 0, 30))
	_ = far

	due, err := NewMilestoneService(db).DueSoon(3)
	if err != nil {
		t.Fatalf("DueSoon failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due milestone, got %d", len(due))
	}
	if due[0].Project == nil || due[0].Project.ID != project.ID {
		t.Error("expected project preloaded on due milestone")
	}
}

func TestDueSoon_IncludesToday(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	project := createAcceptedProject(t, db, supervisor.ID, group.ID)

	// Due dates are stored at midnight, so a milestone due today sits
	// behind the wall clock and must still be picked up.
	createMilestone(t, db, supervisor.ID, project.ID, time.Now())

	due, err := NewMilestoneService(db).DueSoon(3)
	if err != nil {
		t.Fatalf("DueSoon failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due milestone, got %d", len(due))
	}
}
