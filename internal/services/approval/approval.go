// Package approval implements the candidacy accept/reject workflow:
// membership number allocation, credential derivation, transactional
// persistence and the one-time notification email.
package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/utdi/ukmik/be/internal/core/credentials"
	"github.com/utdi/ukmik/be/internal/core/nra"
	"github.com/utdi/ukmik/be/pkg/common/logger"
	"github.com/utdi/ukmik/be/pkg/common/mailer"
	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

var (
	// ErrAlreadyDecided indicates the candidacy has left the Pending state.
	ErrAlreadyDecided = errors.New("approval: candidacy already decided")
	// ErrInvalidDecision indicates the requested decision is neither
	// Accepted nor Rejected.
	ErrInvalidDecision = errors.New("approval: decision must be Accepted or Rejected")
)

// acceptAttempts bounds the retry-with-resuffix loop when an acceptance
// write loses a uniqueness race on username or nra.
const acceptAttempts = 3

// Outcome is the composite result of a decision: the committed state plus
// notification status. A failed notification never reverts the decision.
type Outcome struct {
	Decision         mb.Decision `json:"approval"`
	NRA              string      `json:"nra,omitempty"`
	Username         string      `json:"username,omitempty"`
	NotificationSent bool        `json:"notification_sent"`
	NotificationErr  error       `json:"-"`
}

// Service orchestrates decisions over the membership repository and the
// notification gateway.
type Service struct {
	repo mb.Repository
	mail mailer.Mailer
	now  func() time.Time

	// allocMu serializes the read-allocate-write window of acceptance so
	// concurrent acceptances cannot compute the same sequence number. The
	// UNIQUE constraint on nra is the backstop for multi-process setups.
	allocMu sync.Mutex
}

func NewService(repo mb.Repository, mail mailer.Mailer) *Service {
	return &Service{repo: repo, mail: mail, now: time.Now}
}

// Decide transitions the person's candidacy out of Pending. Lookup and
// validation failures abort before any mutation; persistence is atomic per
// decision; notification runs after commit and its failure is only reported.
func (s *Service) Decide(ctx context.Context, personID string, decision mb.Decision, description string) (*Outcome, error) {
	if decision != mb.DecisionAccepted && decision != mb.DecisionRejected {
		return nil, ErrInvalidDecision
	}

	cand, err := s.repo.GetCandidacyByPersonID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("load candidacy: %w", err)
	}
	if cand == nil {
		return nil, mb.ErrNotFound
	}
	if cand.Decision != mb.DecisionPending {
		return nil, ErrAlreadyDecided
	}
	person, err := s.repo.GetPersonByID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("load person: %w", err)
	}
	if person == nil {
		return nil, mb.ErrNotFound
	}

	if decision == mb.DecisionAccepted {
		return s.accept(ctx, person, description)
	}
	return s.reject(ctx, person, description)
}

func (s *Service) accept(ctx context.Context, person *mb.Person, description string) (*Outcome, error) {
	plain := credentials.DerivePassword(person.ID)
	hash, err := credentials.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	upd := mb.AcceptanceUpdate{
		PersonID:     person.ID,
		PasswordHash: hash,
		Role:         mb.RoleMember,
		Description:  description,
	}

	s.allocMu.Lock()
	for attempt := 1; ; attempt++ {
		existing, err := s.repo.ListNRAs(ctx)
		if err != nil {
			s.allocMu.Unlock()
			return nil, fmt.Errorf("list issued NRAs: %w", err)
		}
		upd.NRA, err = nra.Allocate(existing, s.now().Year())
		if err != nil {
			s.allocMu.Unlock()
			return nil, fmt.Errorf("allocate NRA: %w", err)
		}

		if person.Username == "" {
			taken, err := s.takenHandles(ctx)
			if err != nil {
				s.allocMu.Unlock()
				return nil, err
			}
			upd.Username = credentials.DeriveHandle(person.Name, taken)
		}

		err = s.repo.AcceptCandidate(ctx, upd)
		if err == nil {
			break
		}
		if errors.Is(err, mb.ErrConflict) && attempt < acceptAttempts {
			logger.Warn("acceptance for %s lost a uniqueness race (attempt %d), retrying", person.ID, attempt)
			continue
		}
		s.allocMu.Unlock()
		return nil, fmt.Errorf("persist acceptance: %w", err)
	}
	s.allocMu.Unlock()

	username := person.Username
	if upd.Username != "" {
		username = upd.Username
	}

	out := &Outcome{Decision: mb.DecisionAccepted, NRA: upd.NRA, Username: username}
	subject, body := discloseCredentials(person.Name, upd.NRA, mb.RoleMember, username, plain)
	if err := s.mail.Send(ctx, person.Email, subject, body); err != nil {
		logger.Error("acceptance email to %s: %v", person.Email, err)
		out.NotificationErr = err
	} else {
		out.NotificationSent = true
	}
	return out, nil
}

func (s *Service) reject(ctx context.Context, person *mb.Person, description string) (*Outcome, error) {
	if err := s.repo.RejectCandidate(ctx, person.ID, description); err != nil {
		return nil, fmt.Errorf("persist rejection: %w", err)
	}

	out := &Outcome{Decision: mb.DecisionRejected}
	subject, body := rejectionMessage(person.Name)
	if err := s.mail.Send(ctx, person.Email, subject, body); err != nil {
		logger.Error("rejection email to %s: %v", person.Email, err)
		out.NotificationErr = err
	} else {
		out.NotificationSent = true
	}
	return out, nil
}

func (s *Service) takenHandles(ctx context.Context) (func(string) bool, error) {
	names, err := s.repo.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(h string) bool {
		_, ok := set[h]
		return ok
	}, nil
}
