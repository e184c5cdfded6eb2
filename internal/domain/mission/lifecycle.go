package mission

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTransition     = errors.New("transition de statut non autorisée")
	ErrClosureCommentMissing = errors.New("un commentaire de clôture est requis")
	ErrConfirmationMissing   = errors.New("la confirmation de clôture définitive est requise")
	ErrNotClosedByChef       = errors.New("la mission doit d'abord être clôturée par le chef de mission")
	ErrAlreadyFinal          = errors.New("la mission est déjà clôturée définitivement")
)

// TransitionError précise la transition refusée
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// transition applique un changement de statut validé par la table centrale
func (m *Mission) transition(to Status, now time.Time) error {
	if !CanTransition(m.Statut, to) {
		return &TransitionError{From: m.Statut, To: to}
	}
	m.Statut = to
	m.UpdatedAt = now
	return nil
}

// Plan passe une mission créée en planifiée
func (m *Mission) Plan(now time.Time) error {
	return m.transition(StatusPlanifiee, now)
}

// Start démarre la mission (creee/planifiee -> en_cours)
func (m *Mission) Start(now time.Time) error {
	if err := m.transition(StatusEnCours, now); err != nil {
		return err
	}
	started := now
	m.DateDemarrage = &started
	return nil
}

// CloseByChef clôture côté chef: statut cloturee, édition gelée pour les non-admins
func (m *Mission) CloseByChef(comment string, avancement int, now time.Time) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrClosureCommentMissing
	}
	if m.ClotureeParChef {
		return &TransitionError{From: m.Statut, To: StatusCloturee}
	}
	if err := m.transition(StatusCloturee, now); err != nil {
		return err
	}
	closedAt := now
	m.ClotureeParChef = true
	m.DateClotChef = &closedAt
	m.CommentaireClotChef = comment
	m.Avancement = ClampAdvancement(avancement)
	return nil
}

// ValidateByAdmin clôture définitive, irréversible
func (m *Mission) ValidateByAdmin(adminID, comment string, confirmed bool, now time.Time) error {
	if m.ClotureeDefinitive {
		return ErrAlreadyFinal
	}
	if !m.ClotureeParChef {
		return ErrNotClosedByChef
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrClosureCommentMissing
	}
	if !confirmed {
		return ErrConfirmationMissing
	}
	if err := m.transition(StatusValidee, now); err != nil {
		return err
	}
	validatedAt := now
	m.ClotureeDefinitive = true
	m.DateClotDefinitive = &validatedAt
	m.CommentaireClotAdmin = comment
	m.ValideePar = adminID
	return nil
}

// ClampAdvancement borne l'avancement entre 0 et 100
func ClampAdvancement(v int) int {
	return max(0, min(100, v))
}
