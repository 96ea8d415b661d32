// Command import loads a legacy appointment export into the database.
//
//	import -file export.json
//
// Rows keep their exported status; normalization only fills defaults for
// fields the old system left out or renamed.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/medconnect/clinic-platform/internal/legacy"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

func main() {
	file := flag.String("file", "", "path to the legacy JSON export")
	flag.Parse()

	_ = godotenv.Load()
	logger := logging.Default()

	if *file == "" {
		logger.Error("-file is required")
		os.Exit(1)
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read export", "error", err, "file", *file)
		os.Exit(1)
	}
	list, err := legacy.Decode(data)
	if err != nil {
		logger.Error("failed to parse export", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	query := `
		INSERT INTO appointments (id, patient_id, patient_name, email, phone, date, time, duration_minutes, specialty, reason, notes, status, type, doctor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`
	imported := 0
	for _, apt := range list {
		if apt.ID == "" {
			apt.ID = uuid.New().String()
		}
		ct, err := pool.Exec(ctx, query,
			apt.ID,
			apt.PatientID,
			apt.PatientName,
			apt.Email,
			apt.Phone,
			apt.Date,
			apt.Time,
			apt.DurationMinutes,
			apt.Specialty,
			apt.Reason,
			apt.Notes,
			string(apt.Status),
			string(apt.Type),
			apt.DoctorID,
		)
		if err != nil {
			logger.Error("insert failed", "error", err, "id", apt.ID)
			os.Exit(1)
		}
		if ct.RowsAffected() == 1 {
			imported++
		}
	}

	logger.Info("import finished", "total", len(list), "imported", imported, "skipped", len(list)-imported)
}
