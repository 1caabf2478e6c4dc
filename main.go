package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/username/jamtax/src/config"
	"github.com/username/jamtax/src/database"
	"github.com/username/jamtax/src/handlers"
	"github.com/username/jamtax/src/logger"
	"github.com/username/jamtax/src/models"
	"github.com/username/jamtax/src/processors"
	"github.com/username/jamtax/src/services"
	"github.com/username/jamtax/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "jamtax",
	Short: "Compare after-tax income across Jamaican business structures for a US taxpayer",
	PersistentPreRun: func(cmd *cobra.Command, argv []string) {
		config.LoadConfig()
		if cmd.Name() == "serve" {
			logger.InitLogger(config.Cfg.LogLevel)
		} else {
			logger.InitLoggerWithWriter(config.Cfg.LogLevel, os.Stderr)
		}
	},
	SilenceUsage: true,
}

var cliArgs struct {
	scenario string
	jsonOut  bool
	param    string
	from     string
	to       string
	step     string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one scenario and print the comparison",
	RunE:  runEvaluate,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate a scenario across a range of one parameter",
	RunE:  runSweep,
}

func init() {
	for _, c := range []*cobra.Command{evaluateCmd, sweepCmd} {
		c.Flags().StringVar(&cliArgs.scenario, "scenario", "", "YAML scenario file (defaults to SCENARIO_PATH, then built-in defaults)")
		c.Flags().BoolVar(&cliArgs.jsonOut, "json", false, "print JSON instead of text")
	}
	sweepCmd.Flags().StringVar(&cliArgs.param, "param", services.ParamUSDToJMD, "parameter to sweep: usd_to_jmd, salary_amount or gross_income")
	sweepCmd.Flags().StringVar(&cliArgs.from, "from", "", "first value")
	sweepCmd.Flags().StringVar(&cliArgs.to, "to", "", "last value")
	sweepCmd.Flags().StringVar(&cliArgs.step, "step", "", "increment")
	sweepCmd.MarkFlagRequired("from")
	sweepCmd.MarkFlagRequired("to")
	sweepCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(serveCmd, evaluateCmd, sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService(withHistory bool) (services.EvaluationService, func(), error) {
	processor := processors.NewComparisonProcessor(processors.EvaluateOptions{StrictRates: config.Cfg.StrictRateValidation})
	reportCache := cache.New(config.Cfg.CacheTTL, services.CacheCleanupInterval)

	cleanup := func() {}
	if withHistory {
		logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
		if err := database.InitDB(config.Cfg.DatabasePath); err != nil {
			return nil, nil, err
		}
		cleanup = func() { database.DB.Close() }
	}

	svc := services.NewEvaluationService(processor, reportCache, database.DB, services.SweepLimits{
		MaxPoints:   config.Cfg.MaxSweepPoints,
		Concurrency: config.Cfg.SweepConcurrency,
	}, config.DefaultInput)
	return svc, cleanup, nil
}

func runServe(cmd *cobra.Command, argv []string) error {
	logger.L.Info("jamtax backend server starting...")

	if _, err := config.DefaultInput(); err != nil {
		return fmt.Errorf("default scenario unusable: %w", err)
	}

	svc, cleanup, err := newService(config.Cfg.HistoryEnabled)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := handlers.NewRouter(handlers.NewEvaluationHandler(svc, config.Cfg.MaxRequestBytes), handlers.RouterOptions{
		AllowedOrigins:     config.Cfg.AllowedOrigins,
		RateLimitPerSecond: config.Cfg.RateLimitPerSecond,
		RateLimitBurst:     config.Cfg.RateLimitBurst,
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Graceful shutdown failed", "error", err)
			return err
		}
	}
	logger.L.Info("Server stopped gracefully.")
	return nil
}

func loadCLIInput() (models.EvaluationInput, error) {
	if cliArgs.scenario != "" {
		return config.LoadScenario(cliArgs.scenario)
	}
	return config.DefaultInput()
}

func runEvaluate(cmd *cobra.Command, argv []string) error {
	input, err := loadCLIInput()
	if err != nil {
		return err
	}
	svc, _, err := newService(false)
	if err != nil {
		return err
	}
	result, err := svc.Evaluate(cmd.Context(), input)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), result.Report)
}

func printReport(w io.Writer, report models.ComparisonReport) error {
	if cliArgs.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err := io.WriteString(w, utils.FormatReport(report))
	return err
}

func runSweep(cmd *cobra.Command, argv []string) error {
	input, err := loadCLIInput()
	if err != nil {
		return err
	}
	from, err := decimal.NewFromString(cliArgs.from)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := decimal.NewFromString(cliArgs.to)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	step, err := decimal.NewFromString(cliArgs.step)
	if err != nil {
		return fmt.Errorf("invalid --step: %w", err)
	}

	svc, _, err := newService(false)
	if err != nil {
		return err
	}
	points, err := svc.Sweep(cmd.Context(), services.SweepRequest{
		Input:     input,
		Parameter: cliArgs.param,
		From:      from,
		To:        to,
		Step:      step,
	})
	if err != nil {
		return err
	}

	if cliArgs.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := []string{cliArgs.param}
	if len(points) > 0 {
		for _, r := range points[0].Report.Results {
			header = append(header, r.StructureName)
		}
	}
	header = append(header, "Recommended")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, p := range points {
		row := []string{p.Value.String()}
		for _, r := range p.Report.Results {
			row = append(row, utils.HumanizeAmount(r.USDNetAfterUSTax))
		}
		row = append(row, p.Report.RecommendedStructure)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
