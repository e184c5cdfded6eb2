package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/applications/dto"
	"crm-pharma-core/internal/modules/applications/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
)

var errDuplicateName = errors.New("une application porte déjà ce nom")

type ApplicationService struct {
	db postgres.Querier
}

func NewApplicationService(db *postgres.Client) *ApplicationService {
	return &ApplicationService{db: db}
}

func (s *ApplicationService) List(ctx context.Context, includeInactive bool) ([]billing.Application, error) {
	rows, err := s.db.Query(ctx, queries.ApplicationQueries.List, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("liste applications: %w", err)
	}
	defer rows.Close()

	apps := []billing.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*billing.Application, error) {
	a, err := scanApplication(s.db.QueryRow(ctx, queries.ApplicationQueries.Get, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, response.NewNotFound("APPLICATION_NOT_FOUND", "Application introuvable")
	}
	return a, err
}

func (s *ApplicationService) Create(ctx context.Context, actor permissions.Actor, req dto.ApplicationRequest) (*billing.Application, error) {
	if !permissions.CanManageApplications(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_APPLICATIONS", "Seul un Administrateur peut gérer le catalogue")
	}

	app := fromRequest(req, true)
	if errs := billing.ValidateApplication(&app); errs != nil {
		return nil, response.NewValidation(errs)
	}

	err := s.db.QueryRow(ctx, queries.ApplicationQueries.Create, app.Nom, app.Description, app.Prix, app.Actif).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, response.NewConflict("DUPLICATE_APPLICATION", errDuplicateName)
		}
		return nil, fmt.Errorf("création application: %w", err)
	}
	return &app, nil
}

func (s *ApplicationService) Update(ctx context.Context, actor permissions.Actor, id string, req dto.ApplicationRequest) (*billing.Application, error) {
	if !permissions.CanManageApplications(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_APPLICATIONS", "Seul un Administrateur peut gérer le catalogue")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	app := fromRequest(req, current.Actif)
	app.ID = id
	if errs := billing.ValidateApplication(&app); errs != nil {
		return nil, response.NewValidation(errs)
	}

	err = s.db.QueryRow(ctx, queries.ApplicationQueries.Update, id, app.Nom, app.Description, app.Prix, app.Actif).
		Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, response.NewConflict("DUPLICATE_APPLICATION", errDuplicateName)
		}
		return nil, fmt.Errorf("modification application: %w", err)
	}
	return &app, nil
}

// Delete les installations existantes gardent le nom saisi (application_id mis à NULL)
func (s *ApplicationService) Delete(ctx context.Context, actor permissions.Actor, id string) error {
	if !permissions.CanManageApplications(actor) {
		return response.NewForbidden("CANNOT_MANAGE_APPLICATIONS", "Seul un Administrateur peut gérer le catalogue")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.db.Exec(ctx, queries.ApplicationQueries.Delete, id); err != nil {
		return fmt.Errorf("suppression application: %w", err)
	}
	return nil
}

func fromRequest(req dto.ApplicationRequest, actif bool) billing.Application {
	if req.Actif != nil {
		actif = *req.Actif
	}
	return billing.Application{
		Nom:         strings.TrimSpace(req.Nom),
		Description: strings.TrimSpace(req.Description),
		Prix:        req.Prix,
		Actif:       actif,
	}
}

func scanApplication(row pgx.Row) (*billing.Application, error) {
	var a billing.Application
	if err := row.Scan(&a.ID, &a.Nom, &a.Description, &a.Prix, &a.Actif, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
