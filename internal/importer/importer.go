// Package importer ingests applicant rosters from CSV, creating one
// Person and one pending Candidacy per row.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/utdi/ukmik/be/pkg/common/logger"
	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

// Columns every import file must carry. Header names are matched
// case-insensitively after trimming.
var requiredColumns = []string{"nim", "nama", "email", "lk1", "lk2", "sc", "keaktifan"}

// RowResult records the fate of one data row. Err is nil when the row was
// imported.
type RowResult struct {
	Line int
	NIM  string
	Name string
	Err  error
}

// Report summarizes one import run.
type Report struct {
	Created int
	Skipped int
	Rows    []RowResult
}

// Importer maps CSV rows into membership records. Per-row failures are
// logged and skipped; only unreadable input or a missing required column
// aborts the batch.
type Importer struct {
	repo   mb.Repository
	dryRun bool
}

func New(repo mb.Repository, dryRun bool) *Importer {
	return &Importer{repo: repo, dryRun: dryRun}
}

func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Report, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("importer: read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("importer: missing required column %q", c)
		}
	}

	report := &Report{}
	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Warn("import: skipped line %d: %v", line, err)
				report.Skipped++
				report.Rows = append(report.Rows, RowResult{Line: line, Err: err})
				continue
			}
			return nil, fmt.Errorf("importer: read line %d: %w", line, err)
		}

		res := RowResult{Line: line}
		res.Err = im.importRow(ctx, cols, record, &res)
		if res.Err != nil {
			logger.Warn("import: skipped line %d (nim=%s): %v", line, res.NIM, res.Err)
			report.Skipped++
		} else {
			report.Created++
		}
		report.Rows = append(report.Rows, res)
	}
	logger.Info("import: %d created, %d skipped", report.Created, report.Skipped)
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, cols map[string]int, record []string, res *RowResult) error {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	res.NIM = field("nim")
	res.Name = field("nama")
	if res.NIM == "" || res.Name == "" || field("email") == "" {
		return fmt.Errorf("nim, nama and email are required")
	}

	scores := make(map[string]float64, 4)
	for _, name := range []string{"lk1", "lk2", "sc", "keaktifan"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		scores[name] = v
	}

	conflict, err := im.repo.FindPersonConflict(ctx, "", field("email"), res.NIM, "")
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if conflict != nil {
		return fmt.Errorf("email or nim already registered")
	}
	if im.dryRun {
		return nil
	}

	person := &mb.Person{
		ID:           uuid.NewString(),
		NIM:          res.NIM,
		Name:         res.Name,
		Email:        field("email"),
		Phone:        field("no_telp"),
		Gender:       field("jenis_kelamin"),
		Religion:     field("agama"),
		Faculty:      field("fakultas"),
		StudyProgram: field("program_studi"),
		Role:         mb.RoleCandidate,
		Status:       mb.StatusActive,
	}
	if err := im.repo.CreatePerson(ctx, person); err != nil {
		return fmt.Errorf("create person: %w", err)
	}

	cand := &mb.Candidacy{
		PersonID:   person.ID,
		LK1:        scores["lk1"],
		LK2:        scores["lk2"],
		SC:         scores["sc"],
		Activeness: scores["keaktifan"],
		Average:    (scores["lk1"] + scores["lk2"] + scores["sc"] + scores["keaktifan"]) / 4,
	}
	if err := im.repo.UpsertCandidacy(ctx, cand); err != nil {
		return fmt.Errorf("create candidacy: %w", err)
	}
	return nil
}
