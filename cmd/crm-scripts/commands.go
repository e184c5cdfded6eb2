package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"crm-pharma-core/internal/domain/mission"
	billingServices "crm-pharma-core/internal/modules/billing/services"
	missionServices "crm-pharma-core/internal/modules/missions/services"
	systemServices "crm-pharma-core/internal/modules/system/services"
	"crm-pharma-core/internal/scripts"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkTablesCmd = &cobra.Command{
	Use:   "check-tables",
	Short: "Vérifie l'existence et le volume des tables requises",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := systemServices.CheckTables(cmd.Context(), db)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tEXISTE\tLIGNES")
		missing := 0
		for _, t := range tables {
			if !t.Existe {
				missing++
			}
			fmt.Fprintf(w, "%s\t%t\t%d\n", t.Table, t.Existe, t.Lignes)
		}
		w.Flush()

		if missing > 0 {
			return fmt.Errorf("%d table(s) manquante(s): lancer `crm-scripts migrate`", missing)
		}
		return nil
	},
}

var listStatut string

var listMissionsCmd = &cobra.Command{
	Use:   "list-missions",
	Short: "Liste les missions, filtrées par statut",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listStatut != "" && listStatut != "all" {
			if _, ok := mission.ParseStatus(listStatut); !ok {
				return fmt.Errorf("statut inconnu: %s", listStatut)
			}
		}
		missions, err := missionServices.LoadMissions(cmd.Context(), db, true, "")
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITRE\tSTATUT\tWILAYA\tFIN PRÉVUE\tAVANCEMENT")
		count := 0
		for _, m := range missions {
			if !m.Statut.MatchesFilter(listStatut) {
				continue
			}
			count++
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\n",
				m.ID, m.Titre, m.Statut, m.Wilaya, m.DateFinPrevue.Format("2006-01-02"), m.Avancement)
		}
		w.Flush()

		log.Info("missions listées", zap.Int("total", count), zap.String("statut", listStatut))
		return nil
	},
}

var (
	importFile      string
	importBatchSize int
)

var importClientsCmd = &cobra.Command{
	Use:   "import-clients",
	Short: "Importe des clients actifs depuis un CSV (raison_sociale;contact;telephone;wilaya;secteur)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		clients, rejects, err := scripts.ParseClients(f)
		if err != nil {
			return err
		}
		for _, r := range rejects {
			log.Warn("ligne rejetée", zap.Int("ligne", r.Line), zap.Error(r))
		}

		report, err := scripts.ImportClients(cmd.Context(), txManager, clients, importBatchSize, log)
		if err != nil {
			return err
		}
		log.Info("import terminé",
			zap.Int("inseres", report.Inserted),
			zap.Int("rejetes", len(rejects)),
			zap.Ints("lots_en_echec", report.FailedBatches),
		)
		return nil
	},
}

var repairDryRun bool

var repairStatusesCmd = &cobra.Command{
	Use:   "repair-client-statuses",
	Short: "Repasse en prospect les clients actifs sans installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := scripts.RepairClientStatuses(cmd.Context(), db, repairDryRun, log)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			fmt.Printf("%s\t%s\n", c.ID, c.RaisonSociale)
		}
		log.Info("réparation des statuts", zap.Int("concernes", len(candidates)), zap.Bool("dry_run", repairDryRun))
		return nil
	},
}

var migrateStatusOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applique les migrations embarquées (ou affiche leur statut)",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := newMigrator()
		if err != nil {
			return err
		}

		if !migrateStatusOnly {
			applied, err := migrator.Apply(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("migrations appliquées", zap.Int("total", applied))
		}

		report, err := migrator.Status(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNOM\tAPPLIQUÉE")
		for _, m := range report.Migrations {
			at := "-"
			if m.AppliedAt != nil {
				at = m.AppliedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Version, m.Name, at)
		}
		w.Flush()
		fmt.Printf("version courante %s, %d en attente\n", report.CurrentVersion, report.Pending)
		return nil
	},
}

var renewCmd = &cobra.Command{
	Use:   "renew-subscriptions",
	Short: "Renouvelle les abonnements arrivés à échéance",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := billingServices.NewSubscriptionService(db, txManager, log)
		report, err := svc.Renew(cmd.Context(), "crm-scripts")
		if err != nil {
			return err
		}
		for _, e := range report.Erreurs {
			log.Warn("renouvellement en échec", zap.String("detail", e))
		}
		log.Info("renouvellements",
			zap.Int("examinees", report.Examinees),
			zap.Int("renouvelees", report.Renouvelees),
		)
		return nil
	},
}

func init() {
	listMissionsCmd.Flags().StringVar(&listStatut, "statut", "", "filtre de statut ("+string(mission.StatusEnCours)+", ...)")

	importClientsCmd.Flags().StringVar(&importFile, "file", "", "fichier CSV à importer")
	importClientsCmd.Flags().IntVar(&importBatchSize, "batch-size", 50, "taille des lots")
	_ = importClientsCmd.MarkFlagRequired("file")

	repairStatusesCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "affiche les clients concernés sans les modifier")

	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "affiche le statut sans appliquer")
}
