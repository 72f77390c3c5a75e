package services

import (
	"testing"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
)

func TestSubmitProposal(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	svc := NewProjectService(db)
	project, err := svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Sensor Fusion for Indoor Navigation",
		Description: "Investigating multi-sensor fusion approaches.",
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	if project.Status != models.ProjectProposalSubmitted {
		t.Errorf("status = %q, expected %q", project.Status, models.ProjectProposalSubmitted)
	}
	if project.SupervisorID != supervisor.ID {
		t.Errorf("SupervisorID = %d, expected %d", project.SupervisorID, supervisor.ID)
	}

	history, err := svc.History(project.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	if history[0].Action != "Proposal Submitted" {
		t.Errorf("action = %q, expected %q", history[0].Action, "Proposal Submitted")
	}

	// A group with an open project cannot propose another one.
	_, err = svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Second Idea",
		Description: "Something else.",
	})
	if !response.IsConflict(err) {
		t.Errorf("expected conflict for second proposal, got %v", err)
	}
}

func TestSubmitProposal_RequiresGroup(t *testing.T) {
	db := newTestDB(t)
	ungrouped := createUser(t, db, models.RoleStudent, models.StatusActive)

	_, err := NewProjectService(db).SubmitProposal(ungrouped.ID, &ProposalRequest{
		Title:       "No Group",
		Description: "Should fail.",
	})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestReviewProposal(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	other := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	svc := NewProjectService(db)
	project, err := svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Graph Databases for Provenance",
		Description: "Tracking data lineage with property graphs.",
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	// Only the supervising supervisor may decide.
	_, err = svc.ReviewProposal(other.ID, project.ID, &ReviewProposalRequest{Decision: "accept"})
	if !response.IsPermission(err) {
		t.Errorf("expected permission error for foreign supervisor, got %v", err)
	}

	accepted, err := svc.ReviewProposal(supervisor.ID, project.ID, &ReviewProposalRequest{
		Decision: "accept",
		Remarks:  "Looks good",
	})
	if err != nil {
		t.Fatalf("ReviewProposal failed: %v", err)
	}
	if accepted.Status != models.ProjectAccepted {
		t.Errorf("status = %q, expected %q", accepted.Status, models.ProjectAccepted)
	}

	// Decisions are final.
	_, err = svc.ReviewProposal(supervisor.ID, project.ID, &ReviewProposalRequest{Decision: "reject"})
	if !response.IsConflict(err) {
		t.Errorf("expected conflict on re-review, got %v", err)
	}
}

func TestReviewProposal_Reject(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	svc := NewProjectService(db)
	project, err := svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Too Broad",
		Description: "Everything about everything.",
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	rejected, err := svc.ReviewProposal(supervisor.ID, project.ID, &ReviewProposalRequest{
		Decision: "reject",
		Remarks:  "Narrow the scope",
	})
	if err != nil {
		t.Fatalf("ReviewProposal failed: %v", err)
	}
	if rejected.Status != models.ProjectRejected {
		t.Errorf("status = %q, expected %q", rejected.Status, models.ProjectRejected)
	}

	// A rejected project no longer blocks a new proposal.
	if _, err := svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "Narrower Idea",
		Description: "A focused follow-up.",
	}); err != nil {
		t.Errorf("expected new proposal after rejection to succeed, got %v", err)
	}
}

func TestCreateAndComplete(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)

	svc := NewProjectService(db)
	project, err := svc.Create(supervisor.ID, &CreateProjectRequest{
		Title:       "Assigned Topic",
		Description: "Supervisor-defined project.",
		GroupID:     group.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.Status != models.ProjectAccepted {
		t.Errorf("status = %q, expected %q", project.Status, models.ProjectAccepted)
	}

	completed, err := svc.Complete(supervisor.ID, project.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != models.ProjectCompleted {
		t.Errorf("status = %q, expected %q", completed.Status, models.ProjectCompleted)
	}

	// Completing twice is a conflict.
	if _, err := svc.Complete(supervisor.ID, project.ID); !response.IsConflict(err) {
		t.Errorf("expected conflict on second Complete, got %v", err)
	}
}

func TestHistory_AppendOnly(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	svc := NewProjectService(db)
	project, err := svc.SubmitProposal(student.ID, &ProposalRequest{
		Title:       "History Test",
		Description: "Audit trail should only grow.",
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	firstRows, _ := svc.History(project.ID)
	firstID := firstRows[0].ID

	if _, err := svc.ReviewProposal(supervisor.ID, project.ID, &ReviewProposalRequest{Decision: "accept"}); err != nil {
		t.Fatalf("ReviewProposal failed: %v", err)
	}
	if _, err := svc.Complete(supervisor.ID, project.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	history, err := svc.History(project.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	actions := make([]string, len(history))
	for i, h := range history {
		actions[i] = h.Action
	}
	want := []string{"Proposal Submitted", "Proposal Accepted", "Project Completed"}
	if len(actions) != len(want) {
		t.Fatalf("expected %d history rows, got %d (%v)", len(want), len(actions), actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("history[%d] = %q, expected %q", i, actions[i], want[i])
		}
	}

	// The earliest row is untouched by later operations.
	if history[0].ID != firstID {
		t.Errorf("first history row changed: id %d, expected %d", history[0].ID, firstID)
	}
}

func TestList_ScopedByRole(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	other := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	otherStudent := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	otherGroup := createGroup(t, db, other.ID, otherStudent.ID)

	svc := NewProjectService(db)
	createAcceptedProject(t, db, supervisor.ID, group.ID)
	createAcceptedProject(t, db, other.ID, otherGroup.ID)

	admin := createUser(t, db, models.RoleAdmin, models.StatusActive)

	all, err := svc.List(admin.ID, "admin", &ProjectListRequest{})
	if err != nil {
		t.Fatalf("admin List failed: %v", err)
	}
	if all.Total != 2 {
		t.Errorf("admin total = %d, expected 2", all.Total)
	}

	mine, err := svc.List(supervisor.ID, "supervisor", &ProjectListRequest{})
	if err != nil {
		t.Fatalf("supervisor List failed: %v", err)
	}
	if mine.Total != 1 {
		t.Errorf("supervisor total = %d, expected 1", mine.Total)
	}

	theirs, err := svc.List(student.ID, "student", &ProjectListRequest{})
	if err != nil {
		t.Fatalf("student List failed: %v", err)
	}
	if theirs.Total != 1 {
		t.Errorf("student total = %d, expected 1", theirs.Total)
	}

	ungrouped := createUser(t, db, models.RoleStudent, models.StatusActive)
	none, err := svc.List(ungrouped.ID, "student", &ProjectListRequest{})
	if err != nil {
		t.Fatalf("ungrouped student List failed: %v", err)
	}
	if none.Total != 0 {
		t.Errorf("ungrouped student total = %d, expected 0", none.Total)
	}
}
