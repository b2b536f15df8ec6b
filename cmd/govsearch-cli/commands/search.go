package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"govsearch-backend/lib/configutil"
	"govsearch-backend/lib/fedsearch"
	"govsearch-backend/lib/scrapers/firstgov"
	"govsearch-backend/lib/sqliteutil"
	"govsearch-backend/lib/telemetry"
)

type Config struct {
	BaseUrl          string `json:"base_url"`
	UserAgent        string `json:"user_agent"`
	PageDelayMs      int    `json:"page_delay_ms"`
	BypassBotFilters bool   `json:"bypass_bot_filters"`
}

var (
	searchBackend *string
	searchMax     *int
	searchDb      *string
	searchPerPage *int
	searchBeginAt *int
	searchBrief   *bool
)

func init() {
	searchBackend = searchCmd.Flags().String("backend", "firstgov", "The backend to query.")
	searchMax = searchCmd.Flags().Int("max", 0, "Stop after this many records (0 drains the source).")
	searchDb = searchCmd.Flags().String("db", "", "Also write records to this sqlite database.")
	searchPerPage = searchCmd.Flags().Int("per-page", 0, "Results per page (1-100, 0 keeps the backend default).")
	searchBeginAt = searchCmd.Flags().Int("begin-at", 0, "1-based result index to start retrieval at.")
	searchBrief = searchCmd.Flags().Bool("brief", false, "Request the brief result format.")
	rootCmd.AddCommand(searchCmd)
}

const recordsSchema = `
CREATE TABLE records (
	query TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	score INTEGER,
	size INTEGER,
	date TEXT
);`

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Runs a query and prints the extracted records.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(false)

		// export to a collector when a telemetry.json5 exists up the
		// tree; otherwise stay on the no-op providers
		tel, err := telemetry.SetupFromEnv(cmd.Context(), "govsearch-cli")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to setup telemetry: %w", err)
		}
		if err == nil {
			defer tel.Shutdown(context.Background())
			telemetry.InstrumentPerfStats(cmd.Context())
		}

		cfg, err := configutil.ReadConfig[Config]("govsearch.json5")
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}

		client, err := firstgov.NewClient(firstgov.ClientOptions{
			BaseUrl:          cfg.BaseUrl,
			UserAgent:        cfg.UserAgent,
			PageDelay:        time.Duration(cfg.PageDelayMs) * time.Millisecond,
			BypassBotFilters: cfg.BypassBotFilters,
		})
		if err != nil {
			return err
		}
		fedsearch.Register(client)

		backend, err := fedsearch.Open(*searchBackend)
		if err != nil {
			return err
		}

		opts := fedsearch.Options{}
		if *searchPerPage > 0 {
			opts["nr"] = strconv.Itoa(*searchPerPage)
		}
		if *searchBeginAt > 0 {
			opts[firstgov.OptionBeginAt] = strconv.Itoa(*searchBeginAt)
		}
		if *searchBrief {
			opts["de"] = "brief"
		}

		query := args[0]
		slog.Info("searching", "backend", backend.Name(), "query", query)

		cursor, err := backend.Search(cmd.Context(), query, opts)
		if err != nil {
			return err
		}

		var records []fedsearch.Record
		for {
			rec, ok := cursor.Next(cmd.Context())
			if !ok {
				break
			}
			records = append(records, rec)
			if *searchMax > 0 && len(records) >= *searchMax {
				break
			}
		}

		renderRecords(records)
		if total := cursor.ApproximateResultCount(); total != fedsearch.CountUnknown {
			slog.Info("source-reported total", "approximate_count", total)
		}

		if *searchDb != "" {
			if err := exportRecords(*searchDb, query, records); err != nil {
				return fmt.Errorf("failed to export records: %w", err)
			}
			slog.Info("wrote records", "db", *searchDb, "count", len(records))
		}
		return nil
	},
}

func renderRecords(records []fedsearch.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "URL", "Score", "Size", "Date"})
	for i, rec := range records {
		score := ""
		if rec.Score != fedsearch.ScoreUnknown {
			score = fmt.Sprintf("%d%%", rec.Score)
		}
		size := ""
		if rec.Size != fedsearch.SizeUnknown {
			size = strconv.FormatInt(rec.Size, 10)
		}
		t.AppendRow(table.Row{i + 1, rec.Title, rec.URL, score, size, rec.Date})
	}
	t.Render()
}

func exportRecords(path, query string, records []fedsearch.Record) error {
	db, err := sqliteutil.OpenDB(recordsSchema, path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, rec := range records {
		var score, size sql.NullInt64
		if rec.Score != fedsearch.ScoreUnknown {
			score = sql.NullInt64{Int64: int64(rec.Score), Valid: true}
		}
		if rec.Size != fedsearch.SizeUnknown {
			size = sql.NullInt64{Int64: rec.Size, Valid: true}
		}
		_, err := db.Exec(
			`INSERT INTO records (query, url, title, description, score, size, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			query, rec.URL, rec.Title, rec.Description, score, size, rec.Date,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
