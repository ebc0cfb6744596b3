package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

// SQLiteRepo implements membership.Repository over a single database file so
// that one decision can update the person and candidacy rows in one
// transaction.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Decision transactions span two tables; a single connection keeps
	// sqlite's writer locking out of the way.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Disconnect() {
	_ = r.db.Close()
}

func (r *SQLiteRepo) Health() error {
	return r.db.Ping()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			nim TEXT NOT NULL UNIQUE,
			nama TEXT NOT NULL,
			username TEXT UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password TEXT,
			no_telp TEXT,
			jenis_kelamin TEXT,
			agama TEXT,
			fakultas TEXT,
			program_studi TEXT,
			image TEXT,
			nra TEXT UNIQUE,
			role_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS candidates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
			lk1 REAL NOT NULL,
			lk2 REAL NOT NULL,
			sc REAL NOT NULL,
			keaktifan REAL NOT NULL,
			rerata REAL NOT NULL,
			approval TEXT NOT NULL DEFAULT 'Pending',
			description TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// Role codes as stored in the users table. The rest of the system only sees
// the named membership.Role values.
const (
	roleCodeMember    = 6
	roleCodeCandidate = 7
)

func roleCode(role mb.Role) int {
	if role == mb.RoleMember {
		return roleCodeMember
	}
	return roleCodeCandidate
}

func roleFromCode(code int) mb.Role {
	if code == roleCodeMember {
		return mb.RoleMember
	}
	return mb.RoleCandidate
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *SQLiteRepo) CreatePerson(ctx context.Context, p *mb.Person) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, nim, nama, username, email, password, no_telp, jenis_kelamin, agama, fakultas, program_studi, image, nra, role_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.NIM, p.Name, nullableString(p.Username), p.Email, nullableString(p.PasswordHash),
		p.Phone, p.Gender, p.Religion, p.Faculty, p.StudyProgram, nullableString(p.ImageURL),
		nullableString(p.NRA), roleCode(p.Role), string(p.Status), now, now)
	if isUniqueViolation(err) {
		return mb.ErrConflict
	}
	if err == nil {
		p.CreatedAt = now
		p.UpdatedAt = now
	}
	return err
}

const personColumns = `id, nim, nama, username, email, password, no_telp, jenis_kelamin, agama, fakultas, program_studi, image, nra, role_id, status, created_at, updated_at`

func scanPerson(scan func(dest ...any) error) (*mb.Person, error) {
	var p mb.Person
	var username, password, image, nra sql.NullString
	var role int
	var status string
	var created, updated sql.NullTime
	err := scan(&p.ID, &p.NIM, &p.Name, &username, &p.Email, &password, &p.Phone,
		&p.Gender, &p.Religion, &p.Faculty, &p.StudyProgram, &image, &nra, &role,
		&status, &created, &updated)
	if err != nil {
		return nil, err
	}
	p.Username = username.String
	p.PasswordHash = password.String
	p.ImageURL = image.String
	p.NRA = nra.String
	p.Role = roleFromCode(role)
	p.Status = mb.Status(status)
	if created.Valid {
		p.CreatedAt = created.Time
	}
	if updated.Valid {
		p.UpdatedAt = updated.Time
	}
	return &p, nil
}

func (r *SQLiteRepo) GetPersonByID(ctx context.Context, id string) (*mb.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM users WHERE id = ?`, id)
	p, err := scanPerson(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindPersonConflict returns any person holding one of the given registration
// attributes. Empty arguments are ignored; (nil, nil) means no conflict.
func (r *SQLiteRepo) FindPersonConflict(ctx context.Context, username, email, nim, nra string) (*mb.Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+personColumns+` FROM users
		WHERE (? <> '' AND username = ?)
		   OR (? <> '' AND email = ?)
		   OR (? <> '' AND nim = ?)
		   OR (? <> '' AND nra = ?)
		LIMIT 1
	`, username, username, email, email, nim, nim, nra, nra)
	p, err := scanPerson(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *SQLiteRepo) ListApplicants(ctx context.Context) ([]*mb.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+personColumns+` FROM users WHERE role_id = ? ORDER BY created_at ASC, id ASC
	`, roleCodeCandidate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*mb.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePersonProfile(ctx context.Context, id string, upd mb.ProfileUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("nama", upd.Name)
	add("no_telp", upd.Phone)
	add("jenis_kelamin", upd.Gender)
	add("agama", upd.Religion)
	add("fakultas", upd.Faculty)
	add("program_studi", upd.StudyProgram)
	add("image", upd.ImageURL)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mb.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeletePerson(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE user_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mb.ErrNotFound
	}
	return tx.Commit()
}

func (r *SQLiteRepo) ListNRAs(ctx context.Context) ([]string, error) {
	return r.listColumn(ctx, `SELECT nra FROM users WHERE nra IS NOT NULL`)
}

func (r *SQLiteRepo) ListUsernames(ctx context.Context) ([]string, error) {
	return r.listColumn(ctx, `SELECT username FROM users WHERE username IS NOT NULL`)
}

func (r *SQLiteRepo) listColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertCandidacy creates the person's candidacy or overwrites its scores in
// place. The stored decision and description are not touched on resubmission.
func (r *SQLiteRepo) UpsertCandidacy(ctx context.Context, c *mb.Candidacy) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO candidates (user_id, lk1, lk2, sc, keaktifan, rerata, approval, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id)
		DO UPDATE SET lk1 = excluded.lk1, lk2 = excluded.lk2, sc = excluded.sc, keaktifan = excluded.keaktifan, rerata = excluded.rerata, updated_at = excluded.updated_at
	`, c.PersonID, c.LK1, c.LK2, c.SC, c.Activeness, c.Average, string(mb.DecisionPending), nullableString(c.Description), now, now)
	if err != nil {
		return err
	}
	stored, err := r.GetCandidacyByPersonID(ctx, c.PersonID)
	if err != nil {
		return err
	}
	if stored != nil {
		*c = *stored
	}
	return nil
}

const candidacyColumns = `id, user_id, lk1, lk2, sc, keaktifan, rerata, approval, description, created_at, updated_at`

func scanCandidacy(scan func(dest ...any) error) (*mb.Candidacy, error) {
	var c mb.Candidacy
	var approval string
	var desc sql.NullString
	var created, updated sql.NullTime
	err := scan(&c.ID, &c.PersonID, &c.LK1, &c.LK2, &c.SC, &c.Activeness, &c.Average,
		&approval, &desc, &created, &updated)
	if err != nil {
		return nil, err
	}
	c.Decision = mb.Decision(approval)
	c.Description = desc.String
	if created.Valid {
		c.CreatedAt = created.Time
	}
	if updated.Valid {
		c.UpdatedAt = updated.Time
	}
	return &c, nil
}

func (r *SQLiteRepo) GetCandidacyByPersonID(ctx context.Context, personID string) (*mb.Candidacy, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+candidacyColumns+` FROM candidates WHERE user_id = ?`, personID)
	c, err := scanCandidacy(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *SQLiteRepo) ListCandidacies(ctx context.Context) ([]*mb.Candidacy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+candidacyColumns+` FROM candidates ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*mb.Candidacy
	for rows.Next() {
		c, err := scanCandidacy(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AcceptCandidate applies every field of an acceptance decision in one
// transaction: credentials, NRA and role on the person, decision and
// description on the candidacy. A uniqueness violation on username or nra
// surfaces as ErrConflict with nothing written.
func (r *SQLiteRepo) AcceptCandidate(ctx context.Context, upd mb.AcceptanceUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().UTC()

	var res sql.Result
	if upd.Username != "" {
		res, err = tx.ExecContext(ctx, `
			UPDATE users SET username = ?, password = ?, nra = ?, role_id = ?, updated_at = ? WHERE id = ?
		`, upd.Username, upd.PasswordHash, upd.NRA, roleCode(upd.Role), now, upd.PersonID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE users SET password = ?, nra = ?, role_id = ?, updated_at = ? WHERE id = ?
		`, upd.PasswordHash, upd.NRA, roleCode(upd.Role), now, upd.PersonID)
	}
	if isUniqueViolation(err) {
		return mb.ErrConflict
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return mb.ErrNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE candidates SET approval = ?, description = ?, updated_at = ? WHERE user_id = ?
	`, string(mb.DecisionAccepted), nullableString(upd.Description), now, upd.PersonID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return mb.ErrNotFound
	}
	return tx.Commit()
}

// RejectCandidate marks the candidacy rejected and the person inactive in one
// transaction.
func (r *SQLiteRepo) RejectCandidate(ctx context.Context, personID, description string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE candidates SET approval = ?, description = ?, updated_at = ? WHERE user_id = ?
	`, string(mb.DecisionRejected), nullableString(description), now, personID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return mb.ErrNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE users SET status = ?, updated_at = ? WHERE id = ?
	`, string(mb.StatusInactive), now, personID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return mb.ErrNotFound
	}
	return tx.Commit()
}
