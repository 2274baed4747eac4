package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/benefitsqa/dashboard-e2e/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "benefits-sim",
	Short: "Local Benefits Dashboard for running the UI suite offline",
	Long: `benefits-sim serves a Benefits Dashboard with the login screen, employee
table and add/edit/delete modals the UI suite drives, backed by an in-memory store.

Point the suite at it with LOGIN_URL=http://<addr>/Prod/Account/Login.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulator",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfig,
}

var (
	addrFlag     string
	basePathFlag string
	usernameFlag string
	passwordFlag string
	showSecrets  bool
)

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (overrides sim.addr)")
	serveCmd.Flags().StringVar(&basePathFlag, "base-path", "", "Path prefix of every page (overrides sim.base_path)")
	serveCmd.Flags().StringVar(&usernameFlag, "username", "", "Employer username (overrides sim.username)")
	serveCmd.Flags().StringVar(&passwordFlag, "password", "", "Employer password (overrides sim.password)")

	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print passwords and secrets instead of masking them")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	simCfg := cfg.Sim
	if addrFlag != "" {
		simCfg.Addr = addrFlag
	}
	if basePathFlag != "" {
		simCfg.BasePath = basePathFlag
	}
	if usernameFlag != "" {
		simCfg.Username = usernameFlag
	}
	if passwordFlag != "" {
		simCfg.Password = passwordFlag
	}

	log := logging.New(cfg.Logging)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := sim.New(simCfg, log)
	if err != nil {
		return fmt.Errorf("failed to build simulator: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("login_url", server.LoginURL("http://"+simCfg.Addr)).Info("starting benefits dashboard simulator")
	return server.Run(ctx)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), cfg, showSecrets)
}

func writeConfig(w io.Writer, cfg *config.Config, secrets bool) error {
	out := *cfg
	if !secrets {
		out.Target.Password = mask(out.Target.Password)
		out.Sim.Password = mask(out.Sim.Password)
		out.Sim.JWTSecret = mask(out.Sim.JWTSecret)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
