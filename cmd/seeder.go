package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/revolv-ledger/internal/auth"
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	seedAdminID int64 = 100
	seedDonorA  int64 = 1
	seedDonorB  int64 = 2
)

// ledgerTables in delete order: derived rows before their owners.
var ledgerTables = []string{
	"repayments",
	"payments",
	"admin_repayments",
	"admin_reinvestments",
	"projects",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long: `Seed two completed projects funded by two donors, repay both, and
reinvest part of the resulting pools into a third, active project.`,
	RunE: runSeed,
}

type seedDonation struct {
	payer  int64
	amount string
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if clearData {
		for _, table := range ledgerTables {
			if err := app.Gorm.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		fmt.Fprintln(out, "cleared ledger tables")
	}

	first, err := seedCompletedProject(ctx, app, "Community Solar Berkeley", "1000.00", []seedDonation{
		{payer: seedDonorA, amount: "10.00"},
		{payer: seedDonorB, amount: "30.00"},
	})
	if err != nil {
		return err
	}
	second, err := seedCompletedProject(ctx, app, "Oakland Library Rooftop", "500.00", []seedDonation{
		{payer: seedDonorA, amount: "30.00"},
		{payer: seedDonorB, amount: "10.00"},
	})
	if err != nil {
		return err
	}

	for _, r := range []struct {
		projectID int64
		amount    string
	}{
		{first.ID, "100.00"},
		{second.ID, "40.00"},
	} {
		result, err := app.Ledger.CreateAdminRepayment(ctx, seedAdminID, r.projectID, decimal.RequireFromString(r.amount))
		if err != nil {
			return fmt.Errorf("failed to repay project %d: %w", r.projectID, err)
		}
		fmt.Fprintf(out, "repaid %s on project %d to %d donors\n", r.amount, r.projectID, len(result.Repayments))
	}

	next, err := seedProject(ctx, app, "Richmond Youth Center", "800.00", project.StatusActive)
	if err != nil {
		return err
	}
	reinvested, err := app.Ledger.CreateAdminReinvestment(ctx, seedAdminID, next.ID, decimal.RequireFromString("70.00"))
	if err != nil {
		return fmt.Errorf("failed to reinvest into project %d: %w", next.ID, err)
	}
	fmt.Fprintf(out, "reinvested 70.00 into project %d from %d pools\n", next.ID, len(reinvested.Payments))

	pools, err := app.Ledger.ReinvestPools(ctx)
	if err != nil {
		return err
	}
	if err := printPools(cmd, pools); err != nil {
		return err
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	token, err := tokens.GenerateAccessToken(seedAdminID, []string{auth.PermissionAdmin})
	if err != nil {
		return fmt.Errorf("failed to issue admin token: %w", err)
	}
	fmt.Fprintf(out, "admin token (user %d): %s\n", seedAdminID, token)
	return nil
}

// seedProject creates a drafted project and walks it to status.
func seedProject(ctx context.Context, app *App, title, goal string, status project.Status) (*project.Project, error) {
	p, err := app.Projects.Create(ctx, project.CreateProjectDTO{
		Title:       title,
		FundingGoal: decimal.RequireFromString(goal),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", title, err)
	}

	steps := []struct {
		to     project.Status
		change func(context.Context, int64) (*project.Project, error)
	}{
		{project.StatusProposed, app.Projects.Propose},
		{project.StatusActive, app.Projects.Approve},
		{project.StatusCompleted, app.Projects.Complete},
	}
	for _, step := range steps {
		if p.Status == status {
			break
		}
		moved, err := step.change(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to move project %d to %s: %w", p.ID, step.to, err)
		}
		p = moved
	}
	fmt.Fprintf(rootCmd.OutOrStdout(), "project %d %q is %s\n", p.ID, p.Title, p.Status)
	return p, nil
}

// seedCompletedProject funds a project while it is active, then completes it.
func seedCompletedProject(ctx context.Context, app *App, title, goal string, donations []seedDonation) (*project.Project, error) {
	p, err := seedProject(ctx, app, title, goal, project.StatusActive)
	if err != nil {
		return nil, err
	}
	for _, d := range donations {
		if _, err := app.Ledger.RecordPayment(ctx, ledger.RecordPaymentDTO{
			PayerID:   d.payer,
			ProjectID: p.ID,
			Amount:    decimal.RequireFromString(d.amount),
			Kind:      string(ledgerDatamodel.KindPaypal),
		}); err != nil {
			return nil, fmt.Errorf("failed to record donation to project %d: %w", p.ID, err)
		}
	}
	completed, err := app.Projects.Complete(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete project %d: %w", p.ID, err)
	}
	return completed, nil
}
