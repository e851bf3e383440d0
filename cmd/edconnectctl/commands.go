package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"edconnect_backend/internal/config"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/service"
	"edconnect_backend/pkg/database"
	"edconnect_backend/pkg/logger"
	"edconnect_backend/pkg/privacy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(migrate bool) (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLogger(cfg)
	db, err := database.InitDB(&cfg.Database, migrate, false)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := openDB(true)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
		return nil
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load organizations and accounts from a YAML file",
	Long: `Load districts, schools, departments and user accounts from a YAML file.

Existing rows are matched by name (organizations) or username (accounts)
and left untouched, so the command can be re-run safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return err
		}
		f, err := service.ParseSeedFile(data)
		if err != nil {
			return err
		}
		_, db, err := openDB(true)
		if err != nil {
			return err
		}

		seeder := service.NewSeedService(repository.NewUserRepository(db), repository.NewOrganizationRepository(db))
		report, err := seeder.Apply(f)
		if err != nil {
			return err
		}
		logger.Log.Info("Seed applied", zap.Any("report", report))
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", report)
		return nil
	},
}

var redactIdentity privacy.Identity

var redactCmd = &cobra.Command{
	Use:   "redact [text]",
	Short: "Show how a student message is redacted",
	Long: `Redact the given text, or each line of stdin when no text is given,
and print the result together with per-category counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := privacy.DefaultSchoolNames
		if cfg, err := config.LoadConfig(configDir); err == nil && len(cfg.Tutor.SchoolNames) > 0 {
			names = cfg.Tutor.SchoolNames
		}
		r := privacy.NewRedactor(names, nil)
		return runRedact(cmd.InOrStdin(), cmd.OutOrStdout(), r, &redactIdentity, args)
	},
}

func runRedact(in io.Reader, out io.Writer, r *privacy.Redactor, id *privacy.Identity, args []string) error {
	emit := func(text string) {
		res := r.Redact(text, id)
		fmt.Fprintln(out, res.Text)
		if total := res.Total(); total > 0 {
			fmt.Fprintf(out, "  redacted %d: %v\n", total, res.Counts)
		}
	}
	if len(args) > 0 {
		emit(strings.Join(args, " "))
		return nil
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	return scanner.Err()
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/seed.yaml", "seed file")

	redactCmd.Flags().StringVar(&redactIdentity.FullName, "name", "", "student full name")
	redactCmd.Flags().StringVar(&redactIdentity.Email, "email", "", "student email")
	redactCmd.Flags().StringVar(&redactIdentity.StudentID, "student-id", "", "student number")
	redactCmd.Flags().StringVar(&redactIdentity.SchoolName, "school", "", "school name")
}
