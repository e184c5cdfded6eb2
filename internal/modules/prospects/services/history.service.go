package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/prospects/dto"
	"crm-pharma-core/internal/modules/prospects/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const legacyPrefix = "legacy-"

var errEntryNotFound = response.NewNotFound("HISTORY_ENTRY_NOT_FOUND", "Entrée d'historique introuvable")

// LegacyID identifiant stable d'une entrée du JSON historique (horodatage en ms)
func LegacyID(e prospect.HistoryEntry) string {
	return legacyPrefix + strconv.FormatInt(e.CreatedAt.UnixMilli(), 10)
}

// History fusion table + JSON historique, plus récentes d'abord
func (s *ProspectService) History(ctx context.Context, id string) ([]prospect.HistoryEntry, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := ListHistory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	merged := prospect.Merge(id, table, p.HistoriqueActions)
	for i := range merged {
		if merged[i].Legacy {
			merged[i].ID = LegacyID(merged[i])
		}
	}
	return merged, nil
}

// AddHistory une installation sur un prospect le convertit en client actif
func (s *ProspectService) AddHistory(ctx context.Context, actor permissions.Actor, id string, req dto.HistoryRequest) (*dto.HistoryResponse, error) {
	if !permissions.CanManageProspects(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_PROSPECTS", "Vous n'avez pas la permission de modifier l'historique")
	}

	now := s.now()
	entry := req.Entry(id, actorLabel(actor), now)
	if errs := prospect.ValidateEntry(entry); errs != nil {
		return nil, response.NewValidation(errs)
	}

	var result dto.HistoryResponse
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		outcome, err := RecordHistory(ctx, tx, &entry, now)
		if err != nil {
			return err
		}
		result.Skipped = outcome.Skipped
		result.Converted = outcome.Converted
		if !outcome.Skipped {
			result.Entry = &entry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Converted {
		s.record(ctx, actor, id, "prospect_converted", map[string]interface{}{"source": "installation"})
	}
	return &result, nil
}

// DeleteHistory retire l'entrée de la table et du JSON historique
func (s *ProspectService) DeleteHistory(ctx context.Context, actor permissions.Actor, id, entryID string) error {
	if !permissions.CanManageProspects(actor) {
		return response.NewForbidden("CANNOT_MANAGE_PROSPECTS", "Vous n'avez pas la permission de modifier l'historique")
	}

	return s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		p, err := LoadProspect(ctx, tx, queries.ProspectQueries.GetForUpdate, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		if err != nil {
			return err
		}

		item, fromTable, err := s.findEntry(ctx, tx, p, entryID)
		if err != nil {
			return err
		}
		if fromTable {
			if err := tx.Exec(ctx, queries.ProspectQueries.DeleteHistory, item.ID); err != nil {
				return fmt.Errorf("suppression historique: %w", err)
			}
		}

		kept, removed := prospect.RemoveLegacy(p.HistoriqueActions, item)
		if removed == 0 {
			if !fromTable {
				return errEntryNotFound
			}
			return nil
		}
		if err := tx.Exec(ctx, queries.ProspectQueries.UpdateLegacy, id, kept); err != nil {
			return fmt.Errorf("mise à jour historique JSON: %w", err)
		}
		return nil
	})
}

func (s *ProspectService) findEntry(ctx context.Context, tx *postgres.Transaction, p *prospect.Prospect, entryID string) (prospect.HistoryEntry, bool, error) {
	if !strings.HasPrefix(entryID, legacyPrefix) {
		if _, err := uuid.Parse(entryID); err != nil {
			return prospect.HistoryEntry{}, false, errEntryNotFound
		}
		e, err := scanHistory(tx.QueryRow(ctx, queries.ProspectQueries.GetHistory, entryID, p.ID))
		if errors.Is(err, pgx.ErrNoRows) {
			return prospect.HistoryEntry{}, false, errEntryNotFound
		}
		if err != nil {
			return prospect.HistoryEntry{}, false, err
		}
		return *e, true, nil
	}

	ms, err := strconv.ParseInt(strings.TrimPrefix(entryID, legacyPrefix), 10, 64)
	if err != nil {
		return prospect.HistoryEntry{}, false, errEntryNotFound
	}
	for _, l := range p.HistoriqueActions {
		if l.CreatedAt.UnixMilli() == ms {
			return prospect.HistoryEntry{
				ProspectID: p.ID,
				Action:     prospect.ActionType(l.Action),
				CreatedAt:  l.CreatedAt,
			}, false, nil
		}
	}
	return prospect.HistoryEntry{}, false, errEntryNotFound
}
