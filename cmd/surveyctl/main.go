// surveyctl inspects and exports the locally stored questionnaire response.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/export"
	"github.com/fusion5-labs/discovery-survey/internal/store/local"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

var (
	storeDSN string
	outDir   string
	format   string
)

func main() {
	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Inspect and export ERP discovery questionnaire responses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&storeDSN, "store", "", "local store DSN (sqlite)")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored response as an HTML or JSON artifact",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&format, "format", "html", "artifact format: html or json")
	exportCmd.Flags().StringVar(&outDir, "out", ".", "output directory")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate an exported JSON response file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a progress summary of the stored response",
		RunE:  runShow,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the stored response",
		RunE:  runReset,
	}

	root.AddCommand(exportCmd, importCmd, showCmd, resetCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*local.Store, error) {
	return local.Open(ctx, storeDSN, zap.NewNop())
}

func loadStored(ctx context.Context) (*survey.Response, *local.Store, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := store.Load(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if r == nil {
		store.Close()
		return nil, nil, fmt.Errorf("no stored response")
	}
	return r, store, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, store, err := loadStored(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	var name string
	var data []byte
	switch format {
	case "html":
		doc, err := export.RenderHTML(r, catalog.Default())
		if err != nil {
			return err
		}
		name, data = export.HTMLFileName(r, now), []byte(doc)
	case "json":
		out, err := export.RenderJSON(r)
		if err != nil {
			return err
		}
		name, data = export.JSONFileName(r, now), out
	default:
		return fmt.Errorf("unknown format %q (want html or json)", format)
	}
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	r, err := export.ParseResponse(data)
	if err != nil {
		return err
	}
	fmt.Printf("valid response %s: %d%% complete (%d of %d sections)\n",
		r.ID, r.Progress.PercentComplete, r.Progress.CompletedSections, r.Progress.TotalSections)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	r, store, err := loadStored(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("response %s\n", r.ID)
	if r.Metadata.UserName != "" || r.Metadata.UserEmail != "" {
		fmt.Printf("respondent: %s %s\n", r.Metadata.UserName, r.Metadata.UserEmail)
	}
	fmt.Printf("started: %s\n", r.StartedAt.Local().Format(time.RFC1123))
	if r.CompletedAt != nil {
		fmt.Printf("completed: %s\n", r.CompletedAt.Local().Format(time.RFC1123))
	}
	fmt.Printf("progress: %d%% (%d of %d sections), current section %d\n",
		r.Progress.PercentComplete, r.Progress.CompletedSections,
		r.Progress.TotalSections, r.Progress.CurrentSection)
	for _, sec := range catalog.Default().Sections {
		state := r.Sections[sec.ID]
		mark := " "
		answered := 0
		if state != nil {
			if state.Completed {
				mark = "x"
			}
			answered = len(state.Answers)
		}
		fmt.Printf("  [%s] %-32s %d answer(s)\n", mark, sec.Name, answered)
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear(cmd.Context())
}
