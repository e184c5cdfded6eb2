package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/prospects/queries"

	"github.com/jackc/pgx/v5"
)

// InsertHistory ajoute une entrée dans prospect_history ; utilisé aussi par la facturation
func InsertHistory(ctx context.Context, q postgres.Querier, e *prospect.HistoryEntry) error {
	anciens := e.AnciensLogiciels
	if anciens == nil {
		anciens = []string{}
	}
	err := q.QueryRow(ctx, queries.ProspectQueries.InsertHistory,
		e.ProspectID, string(e.Action), e.Description, e.Application, e.ChefMission,
		e.DateDebut, e.DateFin, e.Conversion, anciens, e.CreatedBy, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insertion historique: %w", err)
	}
	return nil
}

// RecordHistory verrouille le prospect, applique prospect.Record puis insère l'entrée.
// Une installation convertit le prospect en client actif dans la même transaction.
func RecordHistory(ctx context.Context, tx postgres.Querier, e *prospect.HistoryEntry, now time.Time) (prospect.Outcome, error) {
	p, err := LoadProspect(ctx, tx, queries.ProspectQueries.GetForUpdate, e.ProspectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return prospect.Outcome{}, errNotFound
	}
	if err != nil {
		return prospect.Outcome{}, err
	}

	outcome := prospect.Record(p, *e, now)
	if outcome.Skipped {
		return outcome, nil
	}
	if err := InsertHistory(ctx, tx, e); err != nil {
		return outcome, err
	}
	if outcome.Converted {
		if err := tx.Exec(ctx, queries.ProspectQueries.UpdateStatus, p.ID, string(p.Statut), string(p.Temperature)); err != nil {
			return outcome, fmt.Errorf("conversion par installation: %w", err)
		}
	}
	return outcome, nil
}

// ListHistory entrées de la table, plus récentes d'abord
func ListHistory(ctx context.Context, q postgres.Querier, prospectID string) ([]prospect.HistoryEntry, error) {
	rows, err := q.Query(ctx, queries.ProspectQueries.ListHistory, prospectID)
	if err != nil {
		return nil, fmt.Errorf("lecture historique: %w", err)
	}
	defer rows.Close()

	var entries []prospect.HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// LoadProspects prospects et clients ; statut vide ou "all" pour tous
func LoadProspects(ctx context.Context, q postgres.Querier, statut string) ([]prospect.Prospect, error) {
	rows, err := q.Query(ctx, queries.ProspectQueries.List, statut)
	if err != nil {
		return nil, fmt.Errorf("liste prospects: %w", err)
	}
	defer rows.Close()

	var list []prospect.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// LoadProspect lit un prospect avec la requête donnée (Get ou GetForUpdate)
func LoadProspect(ctx context.Context, q postgres.Querier, query, id string) (*prospect.Prospect, error) {
	return scanProspect(q.QueryRow(ctx, query, id))
}

func scanProspect(row pgx.Row) (*prospect.Prospect, error) {
	var (
		p                   prospect.Prospect
		statut, temperature string
	)
	err := row.Scan(
		&p.ID, &p.RaisonSociale, &p.Secteur, &p.Contact, &p.Telephone, &p.Email, &p.Wilaya,
		&p.Adresse, &statut, &temperature, &p.CommercialAssigne, &p.Notes, &p.HistoriqueActions,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Statut = prospect.Status(statut)
	p.Temperature = prospect.Temperature(temperature)
	return &p, nil
}

func scanHistory(row pgx.Row) (*prospect.HistoryEntry, error) {
	var (
		e      prospect.HistoryEntry
		action string
	)
	err := row.Scan(
		&e.ID, &e.ProspectID, &action, &e.Description, &e.Application, &e.ChefMission,
		&e.DateDebut, &e.DateFin, &e.Conversion, &e.AnciensLogiciels, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Action = prospect.ActionType(action)
	return &e, nil
}
