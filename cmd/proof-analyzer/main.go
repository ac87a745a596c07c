package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Lllllllleong/dealerproofflow/internal/config"
	"github.com/Lllllllleong/dealerproofflow/internal/crawler"
	"github.com/Lllllllleong/dealerproofflow/internal/gcp"
	"github.com/Lllllllleong/dealerproofflow/internal/retry"
	"github.com/Lllllllleong/dealerproofflow/internal/services"
	"github.com/spf13/cobra"
)

var (
	envFile      string
	downloadPDFs bool
)

var rootCmd = &cobra.Command{
	Use:   "proof-analyzer",
	Short: "Analyze Direct Mail PDF proofs from Google Drive",
	Long: `proof-analyzer crawls a Google Drive folder tree for Direct Mail PDF
proofs, extracts structured metadata from filenames, asks Vertex AI
(Gemini) for the coupon offers in each document, and logs the results
to a Google Sheet.

By default only filename metadata is sent to the model. With
--download-pdfs the document bytes are fetched and attached to each
request (slower but more accurate).`,
	SilenceUsage: true,
	RunE:         runAnalyzer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to the environment file")
	rootCmd.Flags().BoolVar(&downloadPDFs, "download-pdfs", false, "download PDF content for full analysis (slower but more accurate)")
}

func runAnalyzer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := cmd.Context()
	policy := retry.Default()

	driveStore, err := gcp.NewDriveStore(ctx, cfg.CredentialsFile, policy)
	if err != nil {
		return err
	}
	sheetsWriter, err := gcp.NewSheetsWriter(ctx, cfg.CredentialsFile, cfg.SpreadsheetID, cfg.SheetsRange, policy)
	if err != nil {
		return err
	}
	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.Location, cfg.VertexModel, cfg.Temperature, cfg.MaxOutputTokens, policy)
	if err != nil {
		return err
	}
	defer vertexClient.Close()

	slog.Info("All services initialized.", "project", cfg.ProjectID, "model", cfg.VertexModel, "fullContentMode", downloadPDFs)

	analyzer := services.NewAnalyzer(
		crawler.New(driveStore, nil),
		driveStore,
		vertexClient,
		sheetsWriter,
		services.AnalyzerConfig{
			RootFolderID: cfg.DriveFolderID,
			BatchSize:    cfg.BatchSize,
			DownloadPDFs: downloadPDFs,
		},
	)
	return analyzer.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
