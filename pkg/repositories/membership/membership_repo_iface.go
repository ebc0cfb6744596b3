package membership

import (
	"context"
	"errors"
	"time"
)

// Decision is the review state of a candidacy.
type Decision string

const (
	DecisionPending  Decision = "Pending"
	DecisionAccepted Decision = "Accepted"
	DecisionRejected Decision = "Rejected"
)

// Role classifies a person within the organization. Storage-specific role
// codes are resolved at the persistence boundary, not here.
type Role string

const (
	RoleCandidate Role = "Candidate"
	RoleMember    Role = "Member"
)

// Status is a person's activity state.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

var (
	// ErrNotFound indicates the requested person or candidacy does not exist.
	ErrNotFound = errors.New("membership: not found")
	// ErrConflict indicates a write collided with a uniqueness constraint
	// (username, email, nim or nra already in use).
	ErrConflict = errors.New("membership: duplicate attribute")
)

// Person is an applicant or member. Username, PasswordHash, NRA and Role are
// mutated by the approval workflow on acceptance; Status on rejection.
type Person struct {
	ID           string    `json:"id"`
	NIM          string    `json:"nim"`
	Name         string    `json:"nama"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"no_telp,omitempty"`
	Gender       string    `json:"jenis_kelamin,omitempty"`
	Religion     string    `json:"agama,omitempty"`
	Faculty      string    `json:"fakultas,omitempty"`
	StudyProgram string    `json:"program_studi,omitempty"`
	ImageURL     string    `json:"image,omitempty"`
	NRA          string    `json:"nra,omitempty"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Candidacy holds one person's submitted scores and decision state.
// At most one candidacy exists per person; resubmission updates in place.
type Candidacy struct {
	ID          int64     `json:"id"`
	PersonID    string    `json:"user_id"`
	LK1         float64   `json:"lk1"`
	LK2         float64   `json:"lk2"`
	SC          float64   `json:"sc"`
	Activeness  float64   `json:"keaktifan"`
	Average     float64   `json:"rerata"`
	Decision    Decision  `json:"approval"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ProfileUpdate is the explicit field allowlist for registration edits.
// Nil fields are left untouched. Decision-owned fields (username, password,
// nra, role, status) are deliberately absent.
type ProfileUpdate struct {
	Name         *string
	Phone        *string
	Gender       *string
	Religion     *string
	Faculty      *string
	StudyProgram *string
	ImageURL     *string
}

// AcceptanceUpdate carries every field an acceptance decision writes.
// Username empty means the person already has a handle and it is kept.
type AcceptanceUpdate struct {
	PersonID     string
	Username     string
	PasswordHash string
	NRA          string
	Role         Role
	Description  string
}

// Repository defines persistence for people and candidacies.
//
// Get methods return (nil, nil) when the row does not exist. Write methods
// that can trip a uniqueness constraint return ErrConflict. AcceptCandidate
// and RejectCandidate apply the whole decision in one transaction: either
// every field of both records is written or none is.
type Repository interface {
	CreatePerson(ctx context.Context, p *Person) error
	GetPersonByID(ctx context.Context, id string) (*Person, error)
	FindPersonConflict(ctx context.Context, username, email, nim, nra string) (*Person, error)
	ListApplicants(ctx context.Context) ([]*Person, error)
	UpdatePersonProfile(ctx context.Context, id string, upd ProfileUpdate) error
	DeletePerson(ctx context.Context, id string) error

	// ListNRAs returns every issued membership identifier.
	ListNRAs(ctx context.Context) ([]string, error)
	// ListUsernames returns every login handle currently in use.
	ListUsernames(ctx context.Context) ([]string, error)

	UpsertCandidacy(ctx context.Context, c *Candidacy) error
	GetCandidacyByPersonID(ctx context.Context, personID string) (*Candidacy, error)
	ListCandidacies(ctx context.Context) ([]*Candidacy, error)

	AcceptCandidate(ctx context.Context, upd AcceptanceUpdate) error
	RejectCandidate(ctx context.Context, personID, description string) error

	Health() error
	Disconnect()
}
