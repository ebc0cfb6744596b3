// Command import loads an applicant roster CSV into the membership
// database, creating a person and a pending candidacy per row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/utdi/ukmik/be/internal/importer"
	membershipSqlite "github.com/utdi/ukmik/be/internal/repositories/membership/sqlite"
	"github.com/utdi/ukmik/be/pkg/common/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		file   = flag.String("file", "", "path to the applicant CSV file")
		dryRun = flag.Bool("dry-run", false, "validate rows without writing")
	)
	flag.Parse()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger.Initialize(level)

	if *file == "" {
		color.Red("usage: import -file applicants.csv [-dry-run]")
		os.Exit(2)
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "./membership.db"
	}
	repo, err := membershipSqlite.NewSQLiteRepo(dbPath)
	if err != nil {
		logger.Fatal("init membership repo: %v", err)
	}
	defer repo.Disconnect()

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("open %s: %v", *file, err)
	}
	defer f.Close()

	color.Cyan("=== UKM IK Applicant Import ===")
	if *dryRun {
		color.Yellow("dry run: no rows will be written")
	}

	report, err := importer.New(repo, *dryRun).ImportCSV(context.Background(), f)
	if err != nil {
		logger.Fatal("import %s: %v", *file, err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Line", "NIM", "Name", "Result"})
	for _, row := range report.Rows {
		result := "created"
		if row.Err != nil {
			result = "skipped: " + row.Err.Error()
		}
		table.Append([]string{strconv.Itoa(row.Line), row.NIM, row.Name, result})
	}
	table.Render()

	fmt.Println()
	color.Green("%d created", report.Created)
	if report.Skipped > 0 {
		color.Red("%d skipped", report.Skipped)
	}
}
