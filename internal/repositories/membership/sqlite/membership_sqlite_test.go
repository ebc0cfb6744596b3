package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

func testRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := NewSQLiteRepo(filepath.Join(t.TempDir(), "membership.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepo: %v", err)
	}
	t.Cleanup(repo.Disconnect)
	return repo
}

func newPerson(name, nim, email string) *mb.Person {
	return &mb.Person{
		ID:     uuid.NewString(),
		NIM:    nim,
		Name:   name,
		Email:  email,
		Role:   mb.RoleCandidate,
		Status: mb.StatusActive,
	}
}

func TestPersonLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := newPerson("Budi Santoso", "215610001", "budi@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	got, err := repo.GetPersonByID(ctx, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetPersonByID: got=%v err=%v", got, err)
	}
	if got.Name != "Budi Santoso" || got.Role != mb.RoleCandidate || got.Status != mb.StatusActive {
		t.Fatalf("unexpected person: %+v", got)
	}

	if got, err := repo.GetPersonByID(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("GetPersonByID(missing): got=%v err=%v", got, err)
	}

	// duplicate nim
	dup := newPerson("Another", "215610001", "other@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, dup); err != mb.ErrConflict {
		t.Fatalf("CreatePerson(dup nim): err=%v, want ErrConflict", err)
	}

	name := "Budi S."
	phone := "0812000111"
	if err := repo.UpdatePersonProfile(ctx, p.ID, mb.ProfileUpdate{Name: &name, Phone: &phone}); err != nil {
		t.Fatalf("UpdatePersonProfile: %v", err)
	}
	got, _ = repo.GetPersonByID(ctx, p.ID)
	if got.Name != "Budi S." || got.Phone != "0812000111" || got.Email != "budi@students.utdi.ac.id" {
		t.Fatalf("profile update wrote wrong fields: %+v", got)
	}

	if err := repo.UpdatePersonProfile(ctx, "missing", mb.ProfileUpdate{Name: &name}); err != mb.ErrNotFound {
		t.Fatalf("UpdatePersonProfile(missing): err=%v, want ErrNotFound", err)
	}

	if err := repo.DeletePerson(ctx, p.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	if err := repo.DeletePerson(ctx, p.ID); err != mb.ErrNotFound {
		t.Fatalf("DeletePerson(gone): err=%v, want ErrNotFound", err)
	}
}

func TestFindPersonConflict(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := newPerson("Budi Santoso", "215610001", "budi@students.utdi.ac.id")
	p.Username = "bsantoso"
	if err := repo.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	if got, err := repo.FindPersonConflict(ctx, "bsantoso", "", "", ""); err != nil || got == nil {
		t.Fatalf("FindPersonConflict(username): got=%v err=%v", got, err)
	}
	if got, err := repo.FindPersonConflict(ctx, "", "", "215610001", ""); err != nil || got == nil {
		t.Fatalf("FindPersonConflict(nim): got=%v err=%v", got, err)
	}
	// empty arguments must not match the NULL columns
	if got, err := repo.FindPersonConflict(ctx, "", "", "", ""); err != nil || got != nil {
		t.Fatalf("FindPersonConflict(all empty): got=%v err=%v", got, err)
	}
	if got, err := repo.FindPersonConflict(ctx, "nobody", "x@y.z", "999", "9/UKM_IK/I/2020"); err != nil || got != nil {
		t.Fatalf("FindPersonConflict(no match): got=%v err=%v", got, err)
	}
}

func TestCandidacyUpsertKeepsDecision(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := newPerson("Sri", "215610002", "sri@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	c := &mb.Candidacy{PersonID: p.ID, LK1: 80, LK2: 85, SC: 90, Activeness: 70, Average: 81.25}
	if err := repo.UpsertCandidacy(ctx, c); err != nil {
		t.Fatalf("UpsertCandidacy: %v", err)
	}
	if c.ID == 0 || c.Decision != mb.DecisionPending {
		t.Fatalf("candidacy after create: %+v", c)
	}

	// resubmission updates scores in place, same row
	c2 := &mb.Candidacy{PersonID: p.ID, LK1: 90, LK2: 90, SC: 90, Activeness: 90, Average: 90}
	if err := repo.UpsertCandidacy(ctx, c2); err != nil {
		t.Fatalf("UpsertCandidacy(resubmit): %v", err)
	}
	if c2.ID != c.ID || c2.Average != 90 {
		t.Fatalf("resubmission created a new row: first=%+v second=%+v", c, c2)
	}

	if err := repo.RejectCandidate(ctx, p.ID, "incomplete requirements"); err != nil {
		t.Fatalf("RejectCandidate: %v", err)
	}
	// resubmitting after a decision leaves the stored decision untouched
	c3 := &mb.Candidacy{PersonID: p.ID, LK1: 95, LK2: 95, SC: 95, Activeness: 95, Average: 95}
	if err := repo.UpsertCandidacy(ctx, c3); err != nil {
		t.Fatalf("UpsertCandidacy(after decision): %v", err)
	}
	if c3.Decision != mb.DecisionRejected || c3.Description != "incomplete requirements" {
		t.Fatalf("decision fields overwritten: %+v", c3)
	}
}

func TestAcceptCandidate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := newPerson("Budi Santoso", "215610001", "budi@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if err := repo.UpsertCandidacy(ctx, &mb.Candidacy{PersonID: p.ID, LK1: 1, LK2: 1, SC: 1, Activeness: 1, Average: 1}); err != nil {
		t.Fatalf("UpsertCandidacy: %v", err)
	}

	upd := mb.AcceptanceUpdate{
		PersonID:     p.ID,
		Username:     "bsantoso",
		PasswordHash: "$2a$10$fakehash",
		NRA:          "1/UKM_IK/I/2024",
		Role:         mb.RoleMember,
		Description:  "passed every stage",
	}
	if err := repo.AcceptCandidate(ctx, upd); err != nil {
		t.Fatalf("AcceptCandidate: %v", err)
	}

	got, _ := repo.GetPersonByID(ctx, p.ID)
	if got.Username != "bsantoso" || got.NRA != "1/UKM_IK/I/2024" || got.Role != mb.RoleMember {
		t.Fatalf("person after acceptance: %+v", got)
	}
	c, _ := repo.GetCandidacyByPersonID(ctx, p.ID)
	if c.Decision != mb.DecisionAccepted || c.Description != "passed every stage" {
		t.Fatalf("candidacy after acceptance: %+v", c)
	}

	nras, err := repo.ListNRAs(ctx)
	if err != nil || len(nras) != 1 || nras[0] != "1/UKM_IK/I/2024" {
		t.Fatalf("ListNRAs: %v %v", nras, err)
	}
	names, err := repo.ListUsernames(ctx)
	if err != nil || len(names) != 1 || names[0] != "bsantoso" {
		t.Fatalf("ListUsernames: %v %v", names, err)
	}

	// a second acceptance reusing the NRA must conflict and write nothing
	q := newPerson("Sri", "215610002", "sri@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, q); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if err := repo.UpsertCandidacy(ctx, &mb.Candidacy{PersonID: q.ID, LK1: 1, LK2: 1, SC: 1, Activeness: 1, Average: 1}); err != nil {
		t.Fatalf("UpsertCandidacy: %v", err)
	}
	dup := upd
	dup.PersonID = q.ID
	dup.Username = "sri"
	if err := repo.AcceptCandidate(ctx, dup); err != mb.ErrConflict {
		t.Fatalf("AcceptCandidate(dup nra): err=%v, want ErrConflict", err)
	}
	c, _ = repo.GetCandidacyByPersonID(ctx, q.ID)
	if c.Decision != mb.DecisionPending {
		t.Fatalf("failed acceptance left partial state: %+v", c)
	}

	if err := repo.AcceptCandidate(ctx, mb.AcceptanceUpdate{PersonID: "missing", NRA: "2/UKM_IK/I/2024", Role: mb.RoleMember}); err != mb.ErrNotFound {
		t.Fatalf("AcceptCandidate(missing): err=%v, want ErrNotFound", err)
	}
}

func TestRejectCandidate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := newPerson("Sri", "215610002", "sri@students.utdi.ac.id")
	if err := repo.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if err := repo.UpsertCandidacy(ctx, &mb.Candidacy{PersonID: p.ID, LK1: 1, LK2: 1, SC: 1, Activeness: 1, Average: 1}); err != nil {
		t.Fatalf("UpsertCandidacy: %v", err)
	}

	if err := repo.RejectCandidate(ctx, p.ID, "did not attend"); err != nil {
		t.Fatalf("RejectCandidate: %v", err)
	}
	got, _ := repo.GetPersonByID(ctx, p.ID)
	if got.Status != mb.StatusInactive {
		t.Fatalf("person after rejection: %+v", got)
	}
	c, _ := repo.GetCandidacyByPersonID(ctx, p.ID)
	if c.Decision != mb.DecisionRejected {
		t.Fatalf("candidacy after rejection: %+v", c)
	}

	if err := repo.RejectCandidate(ctx, "missing", ""); err != mb.ErrNotFound {
		t.Fatalf("RejectCandidate(missing): err=%v, want ErrNotFound", err)
	}
}

func TestListApplicants(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := newPerson("Budi Santoso", "215610001", "budi@students.utdi.ac.id")
	b := newPerson("Sri", "215610002", "sri@students.utdi.ac.id")
	member := newPerson("Agus Dwi", "215610003", "agus@students.utdi.ac.id")
	member.Role = mb.RoleMember
	for _, p := range []*mb.Person{a, b, member} {
		if err := repo.CreatePerson(ctx, p); err != nil {
			t.Fatalf("CreatePerson(%s): %v", p.Name, err)
		}
	}

	got, err := repo.ListApplicants(ctx)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListApplicants returned %d people, want 2", len(got))
	}
	for _, p := range got {
		if p.Role != mb.RoleCandidate {
			t.Fatalf("non-candidate in applicant list: %+v", p)
		}
	}
}
