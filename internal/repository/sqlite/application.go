package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

const applicationColumns = `id, user_id, company, application_date, cover_letter, cv_filename, status, accepted_date, rejected_date, interview_date, created_at`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO applications (user_id, company, application_date, cover_letter, cv_filename, status, accepted_date, rejected_date, interview_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Company, a.ApplicationDate, a.CoverLetter, a.CVFilename, a.Status, a.AcceptedDate, a.RejectedDate, a.InterviewDate)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListByUser(ctx context.Context, userID int64) ([]models.Application, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+applicationColumns+` FROM applications WHERE user_id = ? ORDER BY application_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, userID, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanApplication(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return a, nil
}

// UpdateApplication is a full-record overwrite. Ownership is enforced by the
// WHERE clause in the same statement, not by a prior existence check.
func (r *SQLiteRepo) UpdateApplication(ctx context.Context, a *models.Application, replaceCV bool) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}

	var (
		res sql.Result
		err error
	)
	if replaceCV {
		res, err = r.conn.Exec(ctx, `UPDATE applications
			SET company = ?, application_date = ?, cover_letter = ?, status = ?, accepted_date = ?, rejected_date = ?, interview_date = ?, cv_filename = ?
			WHERE id = ? AND user_id = ?`,
			a.Company, a.ApplicationDate, a.CoverLetter, a.Status, a.AcceptedDate, a.RejectedDate, a.InterviewDate, a.CVFilename, a.ID, a.UserID)
	} else {
		res, err = r.conn.Exec(ctx, `UPDATE applications
			SET company = ?, application_date = ?, cover_letter = ?, status = ?, accepted_date = ?, rejected_date = ?, interview_date = ?
			WHERE id = ? AND user_id = ?`,
			a.Company, a.ApplicationDate, a.CoverLetter, a.Status, a.AcceptedDate, a.RejectedDate, a.InterviewDate, a.ID, a.UserID)
	}
	if err != nil {
		return err
	}

	return checkAffected(res)
}

func (r *SQLiteRepo) SetStatus(ctx context.Context, userID, id int64, status string) error {
	res, err := r.conn.Exec(ctx, `UPDATE applications SET status = ? WHERE id = ? AND user_id = ?`, status, id, userID)
	if err != nil {
		return err
	}

	return checkAffected(res)
}

func (r *SQLiteRepo) DeleteApplication(ctx context.Context, userID, id int64) (*string, error) {
	cv, err := r.GetCVFilename(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	res, err := r.conn.Exec(ctx, `DELETE FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkAffected(res); err != nil {
		return nil, err
	}

	return cv, nil
}

func (r *SQLiteRepo) GetCVFilename(ctx context.Context, userID, id int64) (*string, error) {
	row := r.conn.QueryRow(ctx, `SELECT cv_filename FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	var cv sql.NullString
	if err := row.Scan(&cv); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	if !cv.Valid {
		return nil, nil
	}
	return &cv.String, nil
}

func (r *SQLiteRepo) OwnsCV(ctx context.Context, userID int64, filename string) (bool, error) {
	row := r.conn.QueryRow(ctx, `SELECT id FROM applications WHERE user_id = ? AND cv_filename = ?`, userID, filename)
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *SQLiteRepo) Stats(ctx context.Context, userID int64) (*models.Stats, error) {
	var s models.Stats

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = ?`, userID)
	if err := row.Scan(&s.Total); err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT status, COUNT(*) FROM applications WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case models.StatusPending:
			s.Pending = count
		case models.StatusAccepted:
			s.Accepted = count
		case models.StatusRejected:
			s.Rejected = count
		case models.StatusInterview:
			s.Interview = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// current calendar month at query time, server clock
	row = r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = ? AND strftime('%Y-%m', application_date) = strftime('%Y-%m', 'now')`, userID)
	if err := row.Scan(&s.ThisMonth); err != nil {
		return nil, err
	}

	return &s, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanApplication(scan func(dest ...any) error) (*models.Application, error) {
	var a models.Application
	var coverLetter, cv, accepted, rejected, interview sql.NullString
	if err := scan(&a.ID, &a.UserID, &a.Company, &a.ApplicationDate, &coverLetter, &cv, &a.Status, &accepted, &rejected, &interview, &a.CreatedAt); err != nil {
		return nil, err
	}

	a.CoverLetter = coverLetter.String
	a.CVFilename = nullable(cv)
	a.AcceptedDate = nullable(accepted)
	a.RejectedDate = nullable(rejected)
	a.InterviewDate = nullable(interview)

	return &a, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
