package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-fitness-planner/internal/app"
	"ai-fitness-planner/internal/config"
	"ai-fitness-planner/internal/logger"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/report"
	"ai-fitness-planner/internal/server"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var commands = map[string]bool{
	"plan":            true,
	"serve":           true,
	"cache-cleanup":   true,
	"metrics-cleanup": true,
}

func main() {
	if len(os.Args) < 2 || !commands[os.Args[1]] {
		printUsage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// run executes command. Deferred cleanup always runs before main exits.
func run(command string, args []string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close application")
		}
	}()

	switch command {
	case "plan":
		return runPlan(ctx, application, args)
	case "serve":
		return runServe(ctx, application, log)
	case "cache-cleanup":
		removed, err := application.PruneCache(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d expired cache entries.\n", removed)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	}
	return nil
}

func runPlan(ctx context.Context, application *app.App, args []string) error {
	planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
	age := planCmd.String("age", "", "Age in years (18-80)")
	gender := planCmd.String("gender", "", "Male, Female or Other")
	weight := planCmd.String("weight", "", "Weight in kg")
	height := planCmd.String("height", "", "Height in cm")
	goal := planCmd.String("goal", "", "Lose Weight, Gain Muscle or Maintain Weight")
	restrictions := planCmd.String("restrictions", "", "Dietary restrictions, e.g. vegetarian")
	format := planCmd.String("format", "text", "Output format: text, json, html or markdown")
	out := planCmd.String("out", "", "Write the plan to this file instead of stdout")
	planCmd.Parse(args)

	prof, err := profile.Parse(*age, *gender, *weight, *height, *goal, *restrictions)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generating fitness plan for: %s...\n", prof)
	p, err := application.GeneratePlan(ctx, prof)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writePlan(w, *format, prof, p)
}

func writePlan(w io.Writer, format string, prof profile.Profile, p *plan.Plan) error {
	switch format {
	case "text":
		_, err := io.WriteString(w, report.Text(prof, p))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "html":
		return report.HTML(w, prof, p)
	case "markdown":
		diet, exercise, supplements := report.MarkdownParts(p)
		_, err := fmt.Fprintf(w, "%s\n%s\n%s", diet, exercise, supplements)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func runServe(ctx context.Context, application *app.App, log zerolog.Logger) error {
	cfg := application.Config()
	srv := server.New(application, application.Gate(), application.DataDir(), log.With().Str("component", "http").Logger())
	httpServer := srv.HTTPServer(cfg.Port, cfg.LLMTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info().Msg("server exiting")
		return nil
	})
	return g.Wait()
}

func printUsage() {
	fmt.Println("Usage: fitness-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate a 7-day fitness plan (see plan -h)")
	fmt.Println("  serve              Run the HTTP API")
	fmt.Println("  cache-cleanup      Remove expired cached plans")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
