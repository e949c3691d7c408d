package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/stateboard/stateboard-backend/config"
	"github.com/stateboard/stateboard-backend/internal/authoring_suggestions/analyzer"
	discoverydomain "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/scanner"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/export"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/scene"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/theme"
)

// RunAnalyze is the one-shot pipeline: scan a project, build the
// graph, run the authoring analyzers, and export the HTML dashboard
// plus DOT and JSON snapshots. No Redis or Postgres needed.
func RunAnalyze(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: worker analyze <projectPath> [outDir] [title]")
	}
	projectPath := args[0]
	outDir := "out"
	if len(args) > 1 {
		outDir = args[1]
	}
	title := "Stateboard"
	if len(args) > 2 {
		title = args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	th, err := theme.Load(cfg.Discovery.ThemePath)
	if err != nil {
		log.Fatalf("theme: %v", err)
	}

	sc, err := scanner.New(cfg.Discovery.ParseCacheSize, cfg.Discovery.MaxFileSizeKB)
	if err != nil {
		log.Fatalf("scanner: %v", err)
	}

	files, transitions, warnings, err := sc.Scan(projectPath)
	if err != nil {
		log.Fatalf("scan %s: %v", projectPath, err)
	}
	token, err := nanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		log.Fatalf("scan token: %v", err)
	}
	result := &discoverydomain.DiscoveryResult{
		ProjectPath: projectPath,
		ScanID:      "scan-" + token,
		ScannedAt:   time.Now().UTC(),
		Files:       discoverydomain.DiscoveredFiles{Implications: files},
		Transitions: transitions,
		Warnings:    warnings,
	}

	g := build.FromDiscovery(result)
	sceneOut := scene.Compute(g, scene.Options{Theme: th})
	analysis := analyzer.Run(result)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("out dir: %v", err)
	}
	if err := export.WriteHTML(filepath.Join(outDir, "board.html"), &sceneOut, th, title); err != nil {
		log.Fatalf("write html: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "graph.dot"), []byte(export.ToDOT(g, th, title)), 0o644); err != nil {
		log.Fatalf("write dot: %v", err)
	}
	if err := export.WriteJSON(filepath.Join(outDir, "graph.json"), g); err != nil {
		log.Fatalf("write graph json: %v", err)
	}
	if err := export.WriteJSON(filepath.Join(outDir, "analysis.json"), analysis); err != nil {
		log.Fatalf("write analysis json: %v", err)
	}

	log.Printf("[worker] %s: %d nodes, %d edges, %d suggestions -> %s (%s)",
		projectPath, len(g.Nodes), len(g.Edges), len(analysis.Suggestions), outDir, result.ScanID)
	for _, w := range warnings {
		log.Printf("[worker] warning: %s", w)
	}
}
