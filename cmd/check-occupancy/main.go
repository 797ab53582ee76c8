package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"hostel-portal/common/database"
	"hostel-portal/common/logger"
	"hostel-portal/internal/config"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

// exitDrift is returned when at least one room's stored occupancy is wrong.
const exitDrift = 3

type occupancyAuditor interface {
	AuditOccupancy(ctx context.Context) ([]repository.OccupancyRow, error)
}

func main() {
	os.Exit(run())
}

func run() int {
	asJSON := flag.Bool("json", false, "print the audit as JSON")
	onlyDrift := flag.Bool("drift", false, "only list rooms whose stored occupancy is wrong")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "check-occupancy")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Error("Cannot connect to database", zap.String("dsn", cfg.Database.Redacted()), zap.Error(err))
		return 1
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return report(ctx, repository.NewPostgresAllotmentRepository(db, log), os.Stdout, *asJSON, *onlyDrift, log)
}

// report prints the audit and returns the process exit code.
func report(ctx context.Context, auditor occupancyAuditor, w io.Writer, asJSON, onlyDrift bool, log *zap.Logger) int {
	rows, err := auditor.AuditOccupancy(ctx)
	if err != nil {
		log.Error("Audit failed", zap.Error(err))
		return 1
	}
	drift := driftOnly(rows)

	shown := rows
	if onlyDrift {
		shown = drift
	}
	if asJSON {
		err = writeJSON(w, shown)
	} else {
		err = writeTable(w, shown)
	}
	if err != nil {
		log.Error("Failed to write report", zap.Error(err))
		return 1
	}

	if len(drift) > 0 {
		log.Warn("Occupancy drift detected", zap.Int("rooms", len(drift)))
		return exitDrift
	}
	return 0
}

func driftOnly(rows []repository.OccupancyRow) []repository.OccupancyRow {
	out := make([]repository.OccupancyRow, 0, len(rows))
	for _, r := range rows {
		if !r.Consistent() {
			out = append(out, r)
		}
	}
	return out
}

func writeTable(w io.Writer, rows []repository.OccupancyRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tCAPACITY\tSTORED\tALLOTTED\tOK")
	for _, r := range rows {
		ok := "yes"
		if !r.Consistent() {
			ok = "NO"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", r.RoomNumber, r.Capacity, r.OccupiedCount, r.Allotted, ok)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, rows []repository.OccupancyRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
