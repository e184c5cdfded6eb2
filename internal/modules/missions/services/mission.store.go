package services

import (
	"context"
	"fmt"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/missions/queries"

	"github.com/jackc/pgx/v5"
)

// LoadMissions missions visibles : toutes si all, sinon celles de l'utilisateur
func LoadMissions(ctx context.Context, q postgres.Querier, all bool, userID string) ([]mission.Mission, error) {
	rows, err := q.Query(ctx, queries.MissionQueries.List, all, userID)
	if err != nil {
		return nil, fmt.Errorf("liste missions: %w", err)
	}
	defer rows.Close()

	var list []mission.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// LoadMission mission par identifiant ; pgx.ErrNoRows si absente
func LoadMission(ctx context.Context, q postgres.Querier, id string) (*mission.Mission, error) {
	return loadMission(ctx, q, queries.MissionQueries.Get, id)
}

func loadMission(ctx context.Context, q postgres.Querier, query, id string) (*mission.Mission, error) {
	return scanMission(q.QueryRow(ctx, query, id))
}

func scanMission(row pgx.Row) (*mission.Mission, error) {
	var (
		m                     mission.Mission
		typ, priorite, statut string
	)
	err := row.Scan(
		&m.ID, &m.Titre, &m.Description, &m.ClientID, &m.ClientNom,
		&typ, &m.Wilaya, &m.DateDebut, &m.DateFinPrevue, &priorite,
		&m.BudgetAlloue, &m.BudgetDepense, &m.Avancement, &statut,
		&m.ChefMissionID, &m.AccompagnateursIDs, &m.CreatedBy, &m.DateDemarrage,
		&m.ClotureeParChef, &m.DateClotChef, &m.CommentaireClotChef,
		&m.ClotureeDefinitive, &m.DateClotDefinitive, &m.CommentaireClotAdmin,
		&m.ValideePar,
		&m.Technique.RapportTechnique, &m.Technique.ActionsRealisees, &m.Technique.LogicielsMateriels,
		&m.Technique.ProblemesResolutions, &m.Technique.CommentairesTechniques, &m.CommentairesFinanciers,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = mission.Type(typ)
	m.Priorite = mission.Priority(priorite)
	m.Statut = mission.Status(statut)
	if m.AccompagnateursIDs == nil {
		m.AccompagnateursIDs = []string{}
	}
	return &m, nil
}

func loadExpenses(ctx context.Context, q postgres.Querier, missionID string) ([]mission.Expense, error) {
	rows, err := q.Query(ctx, queries.ExpenseQueries.List, missionID)
	if err != nil {
		return nil, fmt.Errorf("liste dépenses: %w", err)
	}
	defer rows.Close()

	expenses := []mission.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func scanExpense(row pgx.Row) (*mission.Expense, error) {
	var (
		e   mission.Expense
		typ string
	)
	err := row.Scan(&e.ID, &e.MissionID, &typ, &e.Montant, &e.Description, &e.JustificatifURL, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Type = mission.ExpenseType(typ)
	return &e, nil
}

func adminIDs(ctx context.Context, q postgres.Querier) ([]string, error) {
	rows, err := q.Query(ctx, queries.MissionQueries.ListAdminIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
