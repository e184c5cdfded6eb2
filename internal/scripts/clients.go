package scripts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/domain/wilaya"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	prospectQueries "crm-pharma-core/internal/modules/prospects/queries"
	prospectServices "crm-pharma-core/internal/modules/prospects/services"

	"go.uber.org/zap"
)

// colonnes attendues : raison_sociale;contact;telephone;wilaya;secteur
const clientColumns = 5

// RowError ligne CSV rejetée
type RowError struct {
	Line   int
	Fields prospect.FieldErrors
	Err    error
}

func (e RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ligne %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("ligne %d: %v", e.Line, map[string]string(e.Fields))
}

// ParseClients lit un CSV séparé par ';' ; la première ligne est un en-tête si elle
// contient "raison_sociale". Les lignes invalides sont retournées à part.
func ParseClients(r io.Reader) ([]prospect.Prospect, []RowError, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		clients []prospect.Prospect
		rejects []RowError
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("lecture CSV: %w", err)
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "raison_sociale") {
			continue
		}
		if len(record) < clientColumns {
			rejects = append(rejects, RowError{Line: line, Err: fmt.Errorf("%d colonnes, %d attendues", len(record), clientColumns)})
			continue
		}

		c := prospect.Prospect{
			RaisonSociale: strings.TrimSpace(record[0]),
			Contact:       strings.TrimSpace(record[1]),
			Telephone:     prospect.NormalizePhone(record[2]),
			Wilaya:        wilaya.Normalize(record[3]),
			Secteur:       prospect.NormalizeSecteur(record[4]),
			Statut:        prospect.StatusActif,
			Temperature:   prospect.TemperatureAcquis,
		}
		errs := prospect.Validate(&c)
		if c.Wilaya != "" && !wilaya.IsValid(c.Wilaya) {
			if errs == nil {
				errs = map[string]string{}
			}
			errs["wilaya"] = "Wilaya inconnue"
		}
		if errs != nil {
			rejects = append(rejects, RowError{Line: line, Fields: errs})
			continue
		}
		clients = append(clients, c)
	}
	return clients, rejects, nil
}

// Batches découpe en lots de taille size (size <= 0 : un seul lot)
func Batches(clients []prospect.Prospect, size int) [][]prospect.Prospect {
	if size <= 0 {
		size = len(clients)
	}
	var out [][]prospect.Prospect
	for start := 0; start < len(clients); start += size {
		end := min(start+size, len(clients))
		out = append(out, clients[start:end])
	}
	return out
}

type ImportReport struct {
	Inserted      int
	FailedBatches []int
}

// ImportClients insère les lots séquentiellement dans une transaction ; un lot en échec
// est annulé via savepoint sans interrompre les suivants.
func ImportClients(ctx context.Context, txManager postgres.TxRunner, clients []prospect.Prospect, batchSize int, log *zap.Logger) (*ImportReport, error) {
	report := &ImportReport{}
	now := time.Now()

	err := txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		for i, batch := range Batches(clients, batchSize) {
			name := fmt.Sprintf("lot_%d", i+1)
			if err := tx.Savepoint(ctx, name); err != nil {
				return err
			}

			if err := insertBatch(ctx, tx, batch, now); err != nil {
				log.Warn("lot ignoré", zap.Int("lot", i+1), zap.Int("taille", len(batch)), zap.Error(err))
				if rbErr := tx.RollbackToSavepoint(ctx, name); rbErr != nil {
					return rbErr
				}
				report.FailedBatches = append(report.FailedBatches, i+1)
				continue
			}

			if err := tx.ReleaseSavepoint(ctx, name); err != nil {
				return err
			}
			report.Inserted += len(batch)
			log.Info("lot importé", zap.Int("lot", i+1), zap.Int("taille", len(batch)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func insertBatch(ctx context.Context, tx postgres.Querier, batch []prospect.Prospect, now time.Time) error {
	for _, c := range batch {
		err := tx.QueryRow(ctx, prospectQueries.ProspectQueries.Create,
			c.RaisonSociale, c.Secteur, c.Contact, c.Telephone, c.Email, c.Wilaya, c.Adresse,
			string(c.Statut), string(c.Temperature), c.CommercialAssigne, c.Notes, "",
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insertion %q: %w", c.RaisonSociale, err)
		}

		entry := prospect.HistoryEntry{
			ProspectID:  c.ID,
			Action:      prospect.ActionCreation,
			Description: "Client importé",
			CreatedBy:   "import",
			CreatedAt:   now,
		}
		if err := prospectServices.InsertHistory(ctx, tx, &entry); err != nil {
			return err
		}
	}
	return nil
}

// RepairCandidate client actif sans installation dans aucune des deux sources d'historique
type RepairCandidate struct {
	ID            string
	RaisonSociale string
}

// RepairClientStatuses repasse en prospect les clients actifs sans installation
func RepairClientStatuses(ctx context.Context, db postgres.Querier, dryRun bool, log *zap.Logger) ([]RepairCandidate, error) {
	clients, err := prospectServices.LoadProspects(ctx, db, string(prospect.StatusActif))
	if err != nil {
		return nil, err
	}

	var out []RepairCandidate
	for _, c := range clients {
		table, err := prospectServices.ListHistory(ctx, db, c.ID)
		if err != nil {
			return nil, err
		}
		if prospect.HasInstallation(table, c.HistoriqueActions) {
			continue
		}

		out = append(out, RepairCandidate{ID: c.ID, RaisonSociale: c.RaisonSociale})
		if dryRun {
			continue
		}

		temperature := c.Temperature
		if temperature == "" || temperature == prospect.TemperatureAcquis {
			temperature = prospect.TemperatureChaud
		}
		if err := db.Exec(ctx, prospectQueries.ProspectQueries.UpdateStatus, c.ID, string(prospect.StatusProspect), string(temperature)); err != nil {
			return nil, fmt.Errorf("mise à jour %s: %w", c.ID, err)
		}
		log.Info("client repassé en prospect", zap.String("id", c.ID), zap.String("raison_sociale", c.RaisonSociale))
	}
	return out, nil
}
