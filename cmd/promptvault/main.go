package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"

	"github.com/ChamsBouzaiene/promptvault/internal/dataio"
	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
	"github.com/ChamsBouzaiene/promptvault/internal/storage"
	"github.com/ChamsBouzaiene/promptvault/internal/vault"
)

const usage = `promptvault - versioned storage for generative image prompts

Usage: promptvault [-store PATH] [-backend json|sqlite] <command> [args]

Commands:
  list                          List all projects
  show <project-id>             Show a project and its built prompt strings
  snapshot <project-id>         Freeze the project's current content as a new version
  history <project-id>          List a project's snapshots, newest first
  diff <snapshot-a> <snapshot-b>  Compare two snapshots
  restore <project-id> <snapshot-id>  Restore a project from a snapshot
  rate <snapshot-id> <1-5>      Rate a snapshot
  attach <snapshot-id> <url>    Attach a generated image to a snapshot
  delete-snapshot <snapshot-id>
  delete-project <project-id>
  export [-format json|csv] [-out FILE]
  import [-merge] <file>
  search <query>                Full-text search across projects
  watch                         Rebuild the search index when the store changes
  settings [key value]          Show or change stored settings
`

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx := context.Background()

	fs := flag.NewFlagSet("promptvault", flag.ExitOnError)
	storeFlag := fs.String("store", "", "Path to the state file or database (default: user config dir)")
	backendFlag := fs.String("backend", "", "Storage backend: json or sqlite (default: json)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	env, err := prepareRuntimeEnv(ctx, *storeFlag, *backendFlag)
	if err != nil {
		log.Fatalf("failed to prepare environment: %v", err)
	}
	defer env.Close()

	if err := dispatch(ctx, env, args[0], args[1:]); err != nil {
		if vault.IsNotFound(err) || vault.IsValidation(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		log.Fatalf("command %s failed: %v", args[0], err)
	}
}

func dispatch(ctx context.Context, env *runtimeEnv, command string, args []string) error {
	switch command {
	case "list":
		return runList(ctx, env)
	case "show":
		return runShow(ctx, env, args)
	case "snapshot":
		return runSnapshot(ctx, env, args)
	case "history":
		return runHistory(ctx, env, args)
	case "diff":
		return runDiff(ctx, env, args)
	case "restore":
		return runRestore(ctx, env, args)
	case "rate":
		return runRate(ctx, env, args)
	case "attach":
		return runAttach(ctx, env, args)
	case "delete-snapshot":
		return runDeleteSnapshot(ctx, env, args)
	case "delete-project":
		return runDeleteProject(ctx, env, args)
	case "export":
		return runExport(ctx, env, args)
	case "import":
		return runImport(ctx, env, args)
	case "search":
		return runSearch(ctx, env, args)
	case "watch":
		return runWatch(ctx, env)
	case "settings":
		return runSettings(ctx, env, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runList(ctx context.Context, env *runtimeEnv) error {
	projects, err := env.Manager.GetProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("no projects")
		return nil
	}
	for _, p := range projects {
		star := " "
		if p.Starred {
			star = "*"
		}
		fmt.Printf("%s %-36s  %-30s  %s\n", star, p.ID, p.Title, formatTime(p.UpdatedAt))
	}
	return nil
}

func runShow(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <project-id>")
	}
	p, err := env.Manager.GetProject(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title:    %s\n", p.Title)
	if p.Description != nil {
		fmt.Printf("About:    %s\n", *p.Description)
	}
	if len(p.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Printf("Updated:  %s\n", formatTime(p.UpdatedAt))

	built := prompt.BuildAll(p)
	fmt.Printf("\nMidjourney:\n  %s\n", built.Midjourney)
	fmt.Printf("\nStable Diffusion:\n%s\n", indent(built.StableDiffusion, "  "))
	return nil
}

func runSnapshot(ctx context.Context, env *runtimeEnv, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	rating := fs.Int("rating", 0, "Rating 1-5")
	notes := fs.String("notes", "", "Notes for this snapshot")
	model := fs.String("model", "", "Model name (default from settings)")
	image := fs.String("image", "", "URL of a generated image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: snapshot [-rating N] [-notes TEXT] [-model NAME] [-image URL] <project-id>")
	}

	project, err := env.Manager.GetProject(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := env.Manager.CreateSnapshot(ctx, project, vault.SnapshotOptions{
		ImageURL:  *image,
		Rating:    *rating,
		Notes:     *notes,
		ModelName: *model,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created snapshot %s (version %d)\n", s.ID, s.Version)
	return nil
}

func runHistory(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: history <project-id>")
	}
	if _, err := env.Manager.GetProject(ctx, args[0]); err != nil {
		return err
	}
	snapshots, err := env.Manager.GetProjectSnapshots(ctx, args[0])
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("no snapshots")
		return nil
	}
	for _, s := range snapshots {
		rating := "-"
		notes := ""
		if s.Metrics != nil {
			if s.Metrics.Rating != 0 {
				rating = strings.Repeat("★", s.Metrics.Rating)
			}
			notes = s.Metrics.Notes
		}
		fmt.Printf("v%-3d %-36s  %s  %-5s  %s\n", s.Version, s.ID, formatTime(s.CreatedAt), rating, notes)
	}
	return nil
}

func runDiff(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: diff <snapshot-a> <snapshot-b>")
	}
	a, err := env.Manager.GetSnapshot(ctx, args[0])
	if err != nil {
		return err
	}
	b, err := env.Manager.GetSnapshot(ctx, args[1])
	if err != nil {
		return err
	}

	diff := env.Manager.CompareSnapshots(a, b)
	if diff.Empty() {
		fmt.Printf("v%d and v%d are identical\n", a.Version, b.Version)
		return nil
	}

	fmt.Printf("v%d -> v%d\n", a.Version, b.Version)
	if diff.TitleChanged {
		fmt.Printf("  title: %q -> %q\n", a.Payload.Title, b.Payload.Title)
	}
	if diff.DescriptionChanged {
		fmt.Println("  description changed")
	}
	printDiffList("positive added", diff.PositiveAdded)
	printDiffList("positive removed", diff.PositiveRemoved)
	printDiffList("positive modified", diff.PositiveModified)
	printDiffList("negative added", diff.NegativeAdded)
	printDiffList("negative removed", diff.NegativeRemoved)
	printDiffList("tags added", diff.TagsAdded)
	printDiffList("tags removed", diff.TagsRemoved)
	return nil
}

func printDiffList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("  %s:\n", label)
	for _, item := range items {
		fmt.Printf("    %s\n", item)
	}
}

func runRestore(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: restore <project-id> <snapshot-id>")
	}
	if err := env.Manager.RestoreFromSnapshot(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("restored; the previous content was saved as an automatic backup snapshot")
	return nil
}

func runRate(ctx context.Context, env *runtimeEnv, args []string) error {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	notes := fs.String("notes", "", "Notes to attach alongside the rating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: rate [-notes TEXT] <snapshot-id> <1-5>")
	}
	var rating int
	if _, err := fmt.Sscanf(fs.Arg(1), "%d", &rating); err != nil || rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be an integer from 1 to 5")
	}
	if err := env.Manager.UpdateSnapshotRating(ctx, fs.Arg(0), rating, *notes); err != nil {
		return err
	}
	fmt.Printf("rated %s: %s\n", fs.Arg(0), strings.Repeat("★", rating))
	return nil
}

func runAttach(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: attach <snapshot-id> <image-url>")
	}
	if err := env.Manager.AttachImageToSnapshot(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("image attached")
	return nil
}

func runDeleteSnapshot(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-snapshot <snapshot-id>")
	}
	if err := env.Manager.DeleteSnapshot(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("snapshot deleted")
	return nil
}

func runDeleteProject(ctx context.Context, env *runtimeEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-project <project-id>")
	}
	if err := env.Manager.DeleteProject(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("project and its snapshots deleted")
	return nil
}

func runExport(ctx context.Context, env *runtimeEnv, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "json", "Export format: json, projects-csv or snapshots-csv")
	out := fs.String("out", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := env.Manager.ExportState(ctx)
	if err != nil {
		return err
	}

	var data []byte
	switch *format {
	case "json":
		data, err = dataio.ExportJSON(state)
	case "projects-csv":
		var csvOut string
		csvOut, err = dataio.ProjectsCSV(state.Projects)
		data = []byte(csvOut)
	case "snapshots-csv":
		var csvOut string
		csvOut, err = dataio.SnapshotsCSV(state.Snapshots)
		data = []byte(csvOut)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	log.Printf("exported %d projects, %d snapshots (%s) to %s",
		len(state.Projects), len(state.Snapshots), units.HumanSize(float64(len(data))), *out)
	return nil
}

func runImport(ctx context.Context, env *runtimeEnv, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	merge := fs.Bool("merge", false, "Merge into the existing data instead of replacing it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: import [-merge] <file>")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	log.Printf("importing %s from %s", units.HumanSize(float64(len(raw))), fs.Arg(0))

	if *merge {
		stats, err := dataio.MergeImport(ctx, env.Manager, raw)
		if err != nil {
			return err
		}
		fmt.Printf("merged: %d projects added (%d skipped), %d snapshots added (%d skipped)\n",
			stats.ProjectsAdded, stats.ProjectsSkipped, stats.SnapshotsAdded, stats.SnapshotsSkipped)
		return nil
	}

	stats, err := dataio.ImportJSON(ctx, env.Manager, raw)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d projects, %d snapshots\n", stats.Projects, stats.Snapshots)
	return nil
}

func runSearch(ctx context.Context, env *runtimeEnv, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: search [-limit N] <query>")
	}
	query := strings.Join(fs.Args(), " ")

	ix, err := env.OpenIndex(ctx)
	if err != nil {
		return err
	}
	defer ix.Close()

	hits, err := ix.Search(query, *limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%-36s  %-30s  %.3f\n", h.ProjectID, h.Title, h.Score)
	}
	return nil
}

// runWatch keeps the search index in sync with a store that other processes
// write to, until interrupted.
func runWatch(ctx context.Context, env *runtimeEnv) error {
	if env.Backend != "json" {
		return fmt.Errorf("watch requires the json backend (a state file to watch)")
	}

	ix, err := env.OpenIndex(ctx)
	if err != nil {
		return err
	}
	defer ix.Close()

	// OpenIndex skips the refresh when watch mode is configured; the
	// watcher itself always starts from a fresh index.
	if err := env.refreshIndex(ctx, ix); err != nil {
		return err
	}

	watcher, err := storage.NewWatcher(env.StorePath, func() {
		if err := env.refreshIndex(ctx, ix); err != nil {
			log.Printf("failed to rebuild search index: %v", err)
			return
		}
		log.Println("search index rebuilt")
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	log.Printf("watching %s (ctrl-c to stop)", env.StorePath)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	printRecorderStats(env)
	if export := env.Errors.Export(); export != "" {
		log.Printf("errors during this run:\n%s", export)
	}
	return nil
}

func runSettings(ctx context.Context, env *runtimeEnv, args []string) error {
	settings, err := env.Manager.Settings(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Printf("default-model  %s\n", settings.DefaultModel)
		fmt.Printf("theme          %s\n", settings.Theme)
		fmt.Printf("auto-save      %t\n", settings.AutoSave)
		fmt.Printf("show-tutorial  %t\n", settings.ShowTutorial)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: settings [key value]")
	}

	key, value := args[0], args[1]
	switch key {
	case "default-model":
		settings.DefaultModel = value
	case "theme":
		settings.Theme = value
	case "auto-save":
		settings.AutoSave = value == "true"
	case "show-tutorial":
		settings.ShowTutorial = value == "true"
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := env.Manager.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func printRecorderStats(env *runtimeEnv) {
	all := env.Recorder.AllStats()
	if len(all) == 0 {
		return
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	log.Println("operation latencies:")
	for _, k := range keys {
		s := all[k]
		log.Printf("  %-30s count=%d avg=%s max=%s", k, s.Count, s.Avg, s.Max)
	}
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
