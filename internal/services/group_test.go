package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
)

func TestCreateGroup(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	a := createUser(t, db, models.RoleStudent, models.StatusActive)
	b := createUser(t, db, models.RoleStudent, models.StatusActive)

	svc := NewGroupService(db)
	group, err := svc.Create(&CreateGroupRequest{
		Name:         "Group Alpha",
		SupervisorID: supervisor.ID,
		StudentIDs:   []uint{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if group.Status != models.GroupActive {
		t.Errorf("status = %q, expected %q", group.Status, models.GroupActive)
	}

	members, err := svc.MemberIDs(group.ID)
	if err != nil {
		t.Fatalf("MemberIDs failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %d", len(members))
	}

	var owner models.User
	db.First(&owner, supervisor.ID)
	if owner.GroupCount != 1 {
		t.Errorf("supervisor group_count = %d, expected 1", owner.GroupCount)
	}
}

func TestCreateGroup_CapacityLimit(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	svc := NewGroupService(db)

	for i := 0; i < models.MaxGroupsPerSupervisor; i++ {
		student := createUser(t, db, models.RoleStudent, models.StatusActive)
		if _, err := svc.Create(&CreateGroupRequest{
			Name:         fmt.Sprintf("Group %d", i+1),
			SupervisorID: supervisor.ID,
			StudentIDs:   []uint{student.ID},
		}); err != nil {
			t.Fatalf("Create %d failed: %v", i+1, err)
		}
	}

	var before int64
	db.Model(&models.Group{}).Count(&before)

	_, err := svc.Create(&CreateGroupRequest{
		Name:         "One Too Many",
		SupervisorID: supervisor.ID,
	})
	if !response.IsConflict(err) {
		t.Fatalf("expected conflict at capacity, got %v", err)
	}

	var after int64
	db.Model(&models.Group{}).Count(&after)
	if after != before {
		t.Errorf("group count changed from %d to %d, expected no new row", before, after)
	}

	var owner models.User
	db.First(&owner, supervisor.ID)
	if owner.GroupCount != models.MaxGroupsPerSupervisor {
		t.Errorf("group_count = %d, expected %d", owner.GroupCount, models.MaxGroupsPerSupervisor)
	}
}

func TestCreateGroup_InactiveGroupsStillCount(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	svc := NewGroupService(db)

	var firstID uint
	for i := 0; i < models.MaxGroupsPerSupervisor; i++ {
		g, err := svc.Create(&CreateGroupRequest{
			Name:         fmt.Sprintf("Group %d", i+1),
			SupervisorID: supervisor.ID,
		})
		if err != nil {
			t.Fatalf("Create %d failed: %v", i+1, err)
		}
		if i == 0 {
			firstID = g.ID
		}
	}

	if err := svc.Deactivate(firstID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	// Deactivating does not free a slot.
	_, err := svc.Create(&CreateGroupRequest{
		Name:         "Replacement",
		SupervisorID: supervisor.ID,
	})
	if !response.IsConflict(err) {
		t.Errorf("expected conflict after deactivation, got %v", err)
	}
}

func TestAddStudent_OneGroupPerStudent(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	createGroup(t, db, supervisor.ID, student.ID)

	second, err := NewGroupService(db).Create(&CreateGroupRequest{
		Name:         "Second Group",
		SupervisorID: supervisor.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := NewGroupService(db).AddStudent(second.ID, student.ID); !response.IsConflict(err) {
		t.Errorf("expected conflict adding student to second group, got %v", err)
	}
}

func TestAddStudent_RejectsNonStudent(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	group := createGroup(t, db, supervisor.ID)
	other := createUser(t, db, models.RoleSupervisor, models.StatusActive)

	if err := NewGroupService(db).AddStudent(group.ID, other.ID); !response.IsValidation(err) {
		t.Errorf("expected validation error for non-student member, got %v", err)
	}
}

func TestRemoveStudent(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	student := createUser(t, db, models.RoleStudent, models.StatusActive)
	group := createGroup(t, db, supervisor.ID, student.ID)

	svc := NewGroupService(db)
	if err := svc.RemoveStudent(group.ID, student.ID); err != nil {
		t.Fatalf("RemoveStudent failed: %v", err)
	}

	members, _ := svc.MemberIDs(group.ID)
	if len(members) != 0 {
		t.Errorf("expected empty group, got %d members", len(members))
	}

	// Removing again reports not found.
	if err := svc.RemoveStudent(group.ID, student.ID); !response.IsNotFound(err) {
		t.Errorf("expected not found on second removal, got %v", err)
	}
}

func TestChangeSupervisor(t *testing.T) {
	db := newTestDB(t)

	oldSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	newSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	group := createGroup(t, db, oldSup.ID)

	svc := NewGroupService(db)
	if err := svc.ChangeSupervisor(group.ID, newSup.ID); err != nil {
		t.Fatalf("ChangeSupervisor failed: %v", err)
	}

	var updated models.Group
	db.First(&updated, group.ID)
	if updated.SupervisorID != newSup.ID {
		t.Errorf("SupervisorID = %d, expected %d", updated.SupervisorID, newSup.ID)
	}

	var was, is models.User
	db.First(&was, oldSup.ID)
	db.First(&is, newSup.ID)
	if was.GroupCount != 0 {
		t.Errorf("old supervisor group_count = %d, expected 0", was.GroupCount)
	}
	if is.GroupCount != 1 {
		t.Errorf("new supervisor group_count = %d, expected 1", is.GroupCount)
	}

	// Reassigning to the current supervisor is rejected.
	if err := svc.ChangeSupervisor(group.ID, newSup.ID); !response.IsValidation(err) {
		t.Errorf("expected validation error for same supervisor, got %v", err)
	}
}

func TestChangeSupervisor_MovesProjects(t *testing.T) {
	db := newTestDB(t)

	oldSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	newSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	group := createGroup(t, db, oldSup.ID)
	project := createAcceptedProject(t, db, oldSup.ID, group.ID)

	if err := NewGroupService(db).ChangeSupervisor(group.ID, newSup.ID); err != nil {
		t.Fatalf("ChangeSupervisor failed: %v", err)
	}

	var updated models.Project
	db.First(&updated, project.ID)
	if updated.SupervisorID != newSup.ID {
		t.Errorf("project SupervisorID = %d, expected %d", updated.SupervisorID, newSup.ID)
	}

	// The new supervisor can manage the project; the old one cannot.
	milestones := NewMilestoneService(db)
	if _, err := milestones.Create(newSup.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Handover Review",
		DueDate:   time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
	}); err != nil {
		t.Errorf("new supervisor Create milestone failed: %v", err)
	}
	if _, err := milestones.Create(oldSup.ID, &CreateMilestoneRequest{
		ProjectID: project.ID,
		Title:     "Stale Access",
		DueDate:   time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
	}); !response.IsPermission(err) {
		t.Errorf("expected permission error for old supervisor, got %v", err)
	}
}

func TestChangeSupervisor_CountNeverNegative(t *testing.T) {
	db := newTestDB(t)

	oldSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	newSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	group := createGroup(t, db, oldSup.ID)

	// Simulate a drifted counter; the decrement must floor at zero.
	db.Model(&models.User{}).Where("id = ?", oldSup.ID).Update("group_count", 0)

	if err := NewGroupService(db).ChangeSupervisor(group.ID, newSup.ID); err != nil {
		t.Fatalf("ChangeSupervisor failed: %v", err)
	}

	var was models.User
	db.First(&was, oldSup.ID)
	if was.GroupCount != 0 {
		t.Errorf("old supervisor group_count = %d, expected 0", was.GroupCount)
	}
}

func TestChangeSupervisor_CapacityLimit(t *testing.T) {
	db := newTestDB(t)

	oldSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	fullSup := createUser(t, db, models.RoleSupervisor, models.StatusActive)

	svc := NewGroupService(db)
	for i := 0; i < models.MaxGroupsPerSupervisor; i++ {
		if _, err := svc.Create(&CreateGroupRequest{
			Name:         fmt.Sprintf("Full %d", i+1),
			SupervisorID: fullSup.ID,
		}); err != nil {
			t.Fatalf("Create %d failed: %v", i+1, err)
		}
	}
	group := createGroup(t, db, oldSup.ID)

	if err := svc.ChangeSupervisor(group.ID, fullSup.ID); !response.IsConflict(err) {
		t.Errorf("expected conflict moving group to full supervisor, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	db := newTestDB(t)

	supervisor := createUser(t, db, models.RoleSupervisor, models.StatusActive)
	group := createGroup(t, db, supervisor.ID)

	svc := NewGroupService(db)
	if err := svc.Deactivate(group.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	var updated models.Group
	db.First(&updated, group.ID)
	if updated.Status != models.GroupInactive {
		t.Errorf("status = %q, expected %q", updated.Status, models.GroupInactive)
	}

	if err := svc.Deactivate(group.ID); !response.IsConflict(err) {
		t.Errorf("expected conflict deactivating twice, got %v", err)
	}
}
