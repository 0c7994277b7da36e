package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/onsite/internal/infrastructure/sse"
	"github.com/felixgeelhaar/onsite/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/onsite/pkg/domain/alerts"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
	"github.com/felixgeelhaar/onsite/pkg/infrastructure/dashboard"
	"github.com/spf13/cobra"
)

var serveAddr string

// dashboardProvider adapts the application services to the dashboard's
// read-only data interface.
type dashboardProvider struct {
	services *wiring.AppServices
}

func (p *dashboardProvider) Summaries() ([]timesheet.ProjectSummary, error) {
	return p.services.Timesheet.Summaries()
}

func (p *dashboardProvider) Rows() ([]timesheet.Row, error) {
	return p.services.Timesheet.Rows()
}

func (p *dashboardProvider) Flags() (map[string]jobflag.FlagResult, error) {
	return p.services.Flags.Flags()
}

func (p *dashboardProvider) Alerts() (alerts.Report, error) {
	report, err := p.services.Alerts.Report()
	if err != nil {
		return alerts.Report{}, err
	}
	return *report, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard with live event streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			if cfg, err := services.Workspace.Repo.LoadConfig(); err == nil && cfg.DashboardAddr != "" {
				addr = cfg.DashboardAddr
			} else {
				addr = ":8460"
			}
		}

		handler := sse.NewSSEHandler(services.Workspace.Publisher)
		server, err := dashboard.NewServer(addr, &dashboardProvider{services: services}, services.Workspace.Publisher, handler)
		if err != nil {
			return fmt.Errorf("create dashboard server: %w", err)
		}

		// Keep flags fresh while the dashboard is up.
		sweepCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			_ = services.Sweep.Run(sweepCtx)
		}()

		go func() {
			<-cmd.Context().Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Dashboard listening on %s\n", addr)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to config or :8460)")
	RootCmd.AddCommand(serveCmd)
}
