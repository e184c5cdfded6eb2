package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/missions/dto"
	"crm-pharma-core/internal/modules/missions/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errExpenseNotFound = response.NewNotFound("EXPENSE_NOT_FOUND", "Dépense introuvable")

func (s *MissionService) ListExpenses(ctx context.Context, actor permissions.Actor, id string) (*dto.ExpensesResponse, error) {
	m, err := s.visible(ctx, actor, id, permissions.ActionViewExpenses)
	if err != nil {
		return nil, err
	}

	expenses, err := loadExpenses(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &dto.ExpensesResponse{
		Expenses: expenses,
		Total:    mission.TotalExpenses(expenses),
		Budget:   mission.Budget(m.BudgetAlloue, m.BudgetDepense),
	}, nil
}

// AddExpense budget_depense est recalculé dans la même transaction
func (s *MissionService) AddExpense(ctx context.Context, actor permissions.Actor, id string, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	if errs := mission.ValidateExpense(req.Type, req.Montant); errs != nil {
		return nil, response.NewValidation(errs)
	}

	e := &mission.Expense{
		MissionID:       id,
		Type:            mission.ExpenseType(req.Type),
		Montant:         req.Montant,
		Description:     strings.TrimSpace(req.Description),
		JustificatifURL: strings.TrimSpace(req.JustificatifURL),
		CreatedBy:       actor.UserID,
	}

	prev, cur, err := s.mutate(ctx, actor, id, permissions.ActionAddExpenses, func(tx *postgres.Transaction, m *mission.Mission, _ time.Time) error {
		err := tx.QueryRow(ctx, queries.ExpenseQueries.Insert,
			id, string(e.Type), e.Montant, e.Description, e.JustificatifURL, e.CreatedBy,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("ajout dépense: %w", err)
		}
		return refreshBudget(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, prev, cur)
	s.record(ctx, actor, id, "expense_added", map[string]interface{}{
		"expense_id": e.ID,
		"type":       string(e.Type),
		"montant":    e.Montant.String(),
	})
	return &dto.ExpenseResponse{Expense: e, Budget: mission.Budget(cur.BudgetAlloue, cur.BudgetDepense)}, nil
}

func (s *MissionService) UpdateExpense(ctx context.Context, actor permissions.Actor, id, expenseID string, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	if errs := mission.ValidateExpense(req.Type, req.Montant); errs != nil {
		return nil, response.NewValidation(errs)
	}

	var e *mission.Expense
	prev, cur, err := s.mutate(ctx, actor, id, permissions.ActionEditExpenses, func(tx *postgres.Transaction, m *mission.Mission, _ time.Time) error {
		existing, err := findExpense(ctx, tx, id, expenseID)
		if err != nil {
			return err
		}
		existing.Type = mission.ExpenseType(req.Type)
		existing.Montant = req.Montant
		existing.Description = strings.TrimSpace(req.Description)
		existing.JustificatifURL = strings.TrimSpace(req.JustificatifURL)

		err = tx.Exec(ctx, queries.ExpenseQueries.Update, expenseID, id,
			string(existing.Type), existing.Montant, existing.Description, existing.JustificatifURL)
		if err != nil {
			return fmt.Errorf("modification dépense: %w", err)
		}
		e = existing
		return refreshBudget(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, prev, cur)
	s.record(ctx, actor, id, "expense_updated", map[string]interface{}{"expense_id": expenseID, "montant": e.Montant.String()})
	return &dto.ExpenseResponse{Expense: e, Budget: mission.Budget(cur.BudgetAlloue, cur.BudgetDepense)}, nil
}

func (s *MissionService) DeleteExpense(ctx context.Context, actor permissions.Actor, id, expenseID string) (*dto.ExpenseResponse, error) {
	_, cur, err := s.mutate(ctx, actor, id, permissions.ActionEditExpenses, func(tx *postgres.Transaction, m *mission.Mission, _ time.Time) error {
		if _, err := findExpense(ctx, tx, id, expenseID); err != nil {
			return err
		}
		if err := tx.Exec(ctx, queries.ExpenseQueries.Delete, expenseID, id); err != nil {
			return fmt.Errorf("suppression dépense: %w", err)
		}
		return refreshBudget(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, id, "expense_deleted", map[string]interface{}{"expense_id": expenseID})
	return &dto.ExpenseResponse{Budget: mission.Budget(cur.BudgetAlloue, cur.BudgetDepense)}, nil
}

// Report rapport de clôture ; les dépenses n'apparaissent que si l'acteur peut les voir
func (s *MissionService) Report(ctx context.Context, actor permissions.Actor, id string) (*dto.ClosureReport, error) {
	m, err := s.visible(ctx, actor, id, permissions.ActionView)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &dto.ClosureReport{
		Mission:      dto.NewMissionView(m, now),
		Analyse:      analysis.Report(m, now),
		Technique:    m.Technique,
		TotalDepense: decimal.Zero,
		Cloture: dto.ClosureSection{
			ClotureeParChef:      m.ClotureeParChef,
			DateClotChef:         m.DateClotChef,
			CommentaireClotChef:  m.CommentaireClotChef,
			ClotureeDefinitive:   m.ClotureeDefinitive,
			DateClotDefinitive:   m.DateClotDefinitive,
			CommentaireClotAdmin: m.CommentaireClotAdmin,
			ValideePar:           m.ValideePar,
		},
		GenereLe: now,
	}

	if permissions.CanViewExpenses(actor, m) {
		expenses, err := loadExpenses(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		report.Depenses = expenses
		report.TotalDepense = mission.TotalExpenses(expenses)
	}
	return report, nil
}

func findExpense(ctx context.Context, q postgres.Querier, missionID, expenseID string) (*mission.Expense, error) {
	e, err := scanExpense(q.QueryRow(ctx, queries.ExpenseQueries.Get, expenseID, missionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errExpenseNotFound
	}
	return e, err
}

func refreshBudget(ctx context.Context, tx *postgres.Transaction, m *mission.Mission) error {
	if err := tx.QueryRow(ctx, queries.ExpenseQueries.RefreshBudget, m.ID).Scan(&m.BudgetDepense); err != nil {
		return fmt.Errorf("recalcul budget: %w", err)
	}
	return nil
}
