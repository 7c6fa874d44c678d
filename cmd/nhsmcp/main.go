// nhsmcp is an MCP server exposing NHS service-search tools.
//
// Usage:
//
//	nhsmcp serve                 # stdio transport
//	nhsmcp serve --http :8080    # HTTP/SSE transport
//	nhsmcp tools                 # print the tool definitions
//	nhsmcp version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakmere/nhsmcp/internal/audit"
	"github.com/oakmere/nhsmcp/internal/config"
	"github.com/oakmere/nhsmcp/internal/metrics"
	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/internal/tools"
	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "nhsmcp",
		Short: "MCP server for NHS organization search and health topics",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, httpAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve over HTTP on this address instead of stdio")
	return cmd
}

func toolsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions for the configured profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Definitions only; no client is needed to describe the tools.
			toolSet, err := tools.ForProfile(nil, cfg.Profile)
			if err != nil {
				return err
			}

			infos := make([]mcpserver.ToolInfo, 0, len(toolSet))
			for _, t := range toolSet {
				infos = append(infos, mcpserver.ToolInfo{
					Name:        t.Name(),
					Description: t.Description(),
					InputSchema: t.InputSchema(),
				})
			}
			out, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nhsmcp %s\n", version)
		},
	}
}

func runServe(configPath, httpAddr string) error {
	// Stdout carries protocol frames on the stdio transport, so all logs
	// go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}

	client, err := nhs.NewClient(cfg.NHS, nil)
	if err != nil {
		return err
	}

	toolSet, err := tools.ForProfile(client, cfg.Profile)
	if err != nil {
		return err
	}

	srv := mcpserver.New(cfg.Server.Name, cfg.Server.Version)
	srv.SetLogger(logger)
	srv.Use(mcpserver.Recovery(logger))
	srv.Use(mcpserver.Logging(logger))

	var collectors *metrics.Collectors
	if cfg.Metrics.Enabled {
		collectors = metrics.New()
		srv.Use(collectors.Middleware())
	}

	if cfg.Audit.Enabled {
		store, err := audit.Open(cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		defer store.Close()
		srv.Use(audit.Middleware(store))
	}

	srv.RegisterAll(toolSet...)

	if cfg.HTTP.Addr != "" {
		opts := mcpserver.HTTPOptions{
			Addr:      cfg.HTTP.Addr,
			AuthToken: cfg.HTTP.AuthToken,
		}
		if cfg.HTTP.JWTSecret != "" {
			opts.JWTSecret = []byte(cfg.HTTP.JWTSecret)
		}
		if collectors != nil {
			opts.Extra = map[string]http.Handler{"/metrics": collectors.Handler()}
		}
		return srv.RunHTTP(opts)
	}

	return srv.RunStdio(context.Background())
}
