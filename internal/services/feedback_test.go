package services

import (
	"testing"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
)

func TestSendFeedback(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	outsider := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	project := createAcceptedProject(t, db, supervisor.ID, group.ID)

	svc := NewFeedbackService(db)

	feedback, err := svc.Send(supervisor.ID, "supervisor", &SendFeedbackRequest{
		ProjectID:  project.ID,
		ReceiverID: student.ID,
		Text:       "Please expand the related work section.",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if feedback.SenderID != supervisor.ID {
		t.Errorf("SenderID = %d, expected %d", feedback.SenderID, supervisor.ID)
	}

	// Students can reply to their supervisor.
	if _, err := svc.Send(student.ID, "student", &SendFeedbackRequest{
		ProjectID:  project.ID,
		ReceiverID: supervisor.ID,
		Text:       "Will do, thanks.",
	}); err != nil {
		t.Fatalf("student Send failed: %v", err)
	}

	// Outsiders cannot post into the thread.
	_, err = svc.Send(outsider.ID, "student", &SendFeedbackRequest{
		ProjectID:  project.ID,
		ReceiverID: supervisor.ID,
		Text:       "Let me in.",
	})
	if !response.IsPermission(err) {
		t.Errorf("expected permission error for outsider, got %v", err)
	}

	// Nor can anyone address someone outside the project.
	_, err = svc.Send(supervisor.ID, "supervisor", &SendFeedbackRequest{
		ProjectID:  project.ID,
		ReceiverID: outsider.ID,
		Text:       "Misdirected.",
	})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error for foreign receiver, got %v", err)
	}
}

func TestListFeedback(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	outsider := createUser(t, db, models.RoleStudent, models.StatusActive)
	admin := createUser(t, db, models.RoleAdmin, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)
	project := createAcceptedProject(t, db, supervisor.ID, group.ID)

	svc := NewFeedbackService(db)
	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.Send(supervisor.ID, "supervisor", &SendFeedbackRequest{
			ProjectID:  project.ID,
			ReceiverID: student.ID,
			Text:       text,
		}); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	thread, err := svc.ListByProject(project.ID, student.ID, "student")
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(thread))
	}
	if thread[0].Text != "first" {
		t.Errorf("first message = %q, expected oldest first", thread[0].Text)
	}

	// Admins see every thread.
	if _, err := svc.ListByProject(project.ID, admin.ID, "admin"); err != nil {
		t.Errorf("admin ListByProject failed: %v", err)
	}

	if _, err := svc.ListByProject(project.ID, outsider.ID, "student"); !response.IsPermission(err) {
		t.Errorf("expected permission error for outsider, got %v", err)
	}

	if _, err := svc.ListByProject(9999, student.ID, "student"); !response.IsNotFound(err) {
		t.Errorf("expected not found for unknown project, got %v", err)
	}
}
