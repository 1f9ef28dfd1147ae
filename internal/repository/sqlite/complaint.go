package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ncps/internal/apperror"
	"github.com/sakif/ncps/internal/model"
	"github.com/sakif/ncps/internal/repository"
)

var _ repository.ComplaintRepository = (*DB)(nil)

const complaintColumns = `c.id, c.user_id, c.service, c.category, c.title, c.description,
	c.file_path, c.lat, c.lng, c.child_name, c.child_age, c.last_location, c.more_info,
	c.amber_sms, c.status, c.result, c.created_at`

// CreateComplaint inserts c, filling in ID and, when unset, CreatedAt and
// Status. The owner must exist: the foreign key rejects unknown user ids.
func (db *DB) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	c.ID = xid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = model.StatusSubmitted
	}

	var lat, lng sql.NullFloat64
	if c.Location != nil {
		lat = sql.NullFloat64{Float64: c.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: c.Location.Lng, Valid: true}
	}

	var childName, childAge, lastLocation, moreInfo sql.NullString
	if c.Amber != nil {
		childName = sql.NullString{String: c.Amber.ChildName, Valid: true}
		childAge = sql.NullString{String: c.Amber.ChildAge, Valid: true}
		lastLocation = sql.NullString{String: c.Amber.LastLocation, Valid: true}
		moreInfo = sql.NullString{String: c.Amber.MoreInfo, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO complaints (id, user_id, service, category, title, description,
			file_path, lat, lng, child_name, child_age, last_location, more_info,
			amber_sms, status, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.ServiceName,
		c.CategoryLabel,
		c.Title,
		c.Description,
		c.FilePath,
		lat,
		lng,
		childName,
		childAge,
		lastLocation,
		moreInfo,
		c.AmberSMS,
		c.Status,
		c.Result,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting complaint: %w", err)
	}
	return nil
}

// ListComplaintsByUser orders by created_at and then rowid, both descending,
// so complaints inserted within the same clock tick still list newest first.
func (db *DB) ListComplaintsByUser(ctx context.Context, userID string) ([]model.Complaint, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+complaintColumns+`
		 FROM complaints c
		 WHERE c.user_id = ?
		 ORDER BY c.created_at DESC, c.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing complaints of %s: %w", userID, err)
	}
	defer rows.Close()

	complaints := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating complaints: %w", err)
	}
	return complaints, nil
}

func (db *DB) ListAllComplaints(ctx context.Context) ([]model.AdminComplaint, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+complaintColumns+`, u.name, u.email
		 FROM complaints c
		 JOIN users u ON u.id = c.user_id
		 ORDER BY c.created_at DESC, c.rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all complaints: %w", err)
	}
	defer rows.Close()

	complaints := []model.AdminComplaint{}
	for rows.Next() {
		var ac model.AdminComplaint
		c, err := scanComplaint(rows, &ac.UserName, &ac.UserEmail)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning complaint: %w", err)
		}
		ac.Complaint = *c
		complaints = append(complaints, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating complaints: %w", err)
	}
	return complaints, nil
}

// UpdateComplaintStatus overwrites status and result. Writing the values a
// complaint already has is still a match, so repeating an update succeeds.
func (db *DB) UpdateComplaintStatus(ctx context.Context, id, status, result string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE complaints SET status = ?, result = ? WHERE id = ?`,
		status, result, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating complaint %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of complaint %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("complaint", id)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanComplaint reads the complaintColumns followed by any extra columns.
func scanComplaint(s scanner, extra ...any) (*model.Complaint, error) {
	var c model.Complaint
	var lat, lng sql.NullFloat64
	var childName, childAge, lastLocation, moreInfo sql.NullString

	dest := []any{
		&c.ID,
		&c.UserID,
		&c.ServiceName,
		&c.CategoryLabel,
		&c.Title,
		&c.Description,
		&c.FilePath,
		&lat,
		&lng,
		&childName,
		&childAge,
		&lastLocation,
		&moreInfo,
		&c.AmberSMS,
		&c.Status,
		&c.Result,
		&c.CreatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		c.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	if childName.Valid {
		c.Amber = &model.AmberDetails{
			ChildName:    childName.String,
			ChildAge:     childAge.String,
			LastLocation: lastLocation.String,
			MoreInfo:     moreInfo.String,
		}
	}
	return &c, nil
}
