package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulan/newsdigest/internal/config"
	"github.com/jwulan/newsdigest/internal/digest"
	"github.com/jwulan/newsdigest/internal/mailer"
	"github.com/jwulan/newsdigest/internal/pipeline"
	"github.com/jwulan/newsdigest/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newsdigest",
	Short:   "Aggregated news feed and daily email digest",
	Long:    "newsdigest fetches a fixed set of RSS feeds, clusters near-duplicate stories, and serves the result as a web API and an email digest.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newsdigest", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newsdigest/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, keywords, and email dispatch.")
		return nil
	},
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one aggregation pass and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := pipeline.New(cfg)
		items, stats := agg.Aggregate(context.Background())

		fmt.Println("Aggregation complete:")
		fmt.Printf("  Items: %d\n", stats.Total)
		fmt.Printf("  Feeds failed: %d/%d\n", stats.FailedFeeds, len(cfg.Feeds))
		fmt.Printf("  Clusters: %d (%d items)\n", stats.Clusters, stats.Clustered)

		if len(stats.Sources) > 0 {
			fmt.Println("\nItems by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range stats.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}

		fmt.Println("\nLatest items:")
		for i, item := range items {
			if i == 10 {
				break
			}
			when := "          "
			if item.PublishedAt != nil {
				when = item.PublishedAt.Format("2006-01-02")
			}
			fmt.Printf("  %s  [%s] %s\n", when, item.Source, item.Title)
		}
		return nil
	},
}

// --- digest command ---

var sendDigest bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Render the daily digest; --send dispatches it by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := pipeline.New(cfg)
		items, stats := agg.Aggregate(context.Background())
		if stats.Total == 0 {
			fmt.Println("No items aggregated; nothing to send.")
			return nil
		}

		d := digest.Render(items, cfg.Digest.TopN, time.Now())

		if !sendDigest {
			fmt.Print(d.Text)
			return nil
		}

		m, err := mailer.New(
			os.Getenv(cfg.Email.APIKeyEnv),
			os.Getenv(cfg.Email.AudienceIDEnv),
			cfg.Digest.From,
		)
		if err != nil {
			return fmt.Errorf("configuring mailer: %w", err)
		}

		subject := fmt.Sprintf("%s %s", cfg.Digest.Subject, time.Now().Format("January 2, 2006"))
		if err := m.SendDigest(context.Background(), subject, d); err != nil {
			return err
		}
		fmt.Println("Digest sent.")
		return nil
	},
}

func init() {
	digestCmd.Flags().BoolVar(&sendDigest, "send", false, "Dispatch the digest to the configured audience")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := pipeline.New(cfg)

		// Subscriptions are optional: without an API key the endpoint
		// degrades to 503 instead of failing startup.
		var subscriber server.Subscriber
		if m, err := mailer.New(
			os.Getenv(cfg.Email.APIKeyEnv),
			os.Getenv(cfg.Email.AudienceIDEnv),
			cfg.Digest.From,
		); err == nil {
			subscriber = m
		} else {
			log.Printf("Subscriptions disabled: %v", err)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(agg, subscriber, cfg.Server.PageSize, cfg.Digest.TopN)
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(srv, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}
