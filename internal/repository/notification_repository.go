package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// NotificationRepo provides data access to the `notifications` table and
// implements the claim protocol for the delivery worker. A claim is one
// conditional UPDATE that selects the oldest eligible PENDING row and
// marks it PROCESSING, tagged with a random claim token so the claimed
// row can be read back afterwards. Because the selection and the mark
// happen in a single statement, at most one worker ever claims a given
// notification. All timestamps are stored in UTC.
type NotificationRepo struct {
	DB *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notificationColumns = `id, user_id, title, message, channel, status, attempts, last_error,
	scheduled_at, next_attempt_at, sent_at, read_at, created_at, updated_at`

func scanNotification(sc interface {
	Scan(dest ...interface{}) error
}) (model.Notification, error) {
	var n model.Notification
	var title, lastErr sql.NullString
	var scheduledAt, nextAttemptAt, sentAt, readAt sql.NullTime
	err := sc.Scan(&n.ID, &n.UserID, &title, &n.Message, &n.Channel, &n.Status, &n.Attempts,
		&lastErr, &scheduledAt, &nextAttemptAt, &sentAt, &readAt, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Notification{}, ErrNotFound
	}
	if err != nil {
		return model.Notification{}, err
	}
	if title.Valid {
		n.Title = &title.String
	}
	if lastErr.Valid {
		n.LastError = &lastErr.String
	}
	if scheduledAt.Valid {
		n.ScheduledAt = &scheduledAt.Time
	}
	if nextAttemptAt.Valid {
		n.NextAttemptAt = &nextAttemptAt.Time
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return n, nil
}

// Insert stores a new PENDING notification and returns the created row.
func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) (model.Notification, error) {
	var scheduled interface{}
	if n.ScheduledAt != nil {
		scheduled = n.ScheduledAt.UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, message, channel, status, attempts, scheduled_at)
		 VALUES (?,?,?,?,?,0,?)`,
		n.UserID, n.Title, n.Message, n.Channel, model.NotificationPending, scheduled)
	if err != nil {
		return model.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Notification{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single notification or ErrNotFound.
func (r *NotificationRepo) GetByID(ctx context.Context, id uint64) (model.Notification, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// NotificationFilter narrows List results. Zero values mean "no filter".
type NotificationFilter struct {
	UserID uint64
	Status model.NotificationStatus
	Limit  int
	Offset int
}

// List returns notifications matching the filter, newest first.
func (r *NotificationRepo) List(ctx context.Context, f NotificationFilter) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE 1=1`
	args := []interface{}{}
	if f.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ClaimNext atomically claims the oldest eligible PENDING notification
// and returns it in PROCESSING state. Eligible means scheduled_at is
// unset or due and next_attempt_at is unset or due, ordered FIFO by
// created_at. The second return value is false when no eligible item
// exists.
func (r *NotificationRepo) ClaimNext(ctx context.Context, now time.Time) (model.Notification, bool, error) {
	token, err := claimToken()
	if err != nil {
		return model.Notification{}, false, err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications
		 SET status=?, claim_token=?, updated_at=UTC_TIMESTAMP()
		 WHERE status=?
		   AND (scheduled_at IS NULL OR scheduled_at <= ?)
		   AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		 ORDER BY created_at ASC
		 LIMIT 1`,
		model.NotificationProcessing, token, model.NotificationPending, now.UTC(), now.UTC())
	if err != nil {
		return model.Notification{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Notification{}, false, err
	}
	if n == 0 {
		return model.Notification{}, false, nil
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE claim_token = ?`, token)
	claimed, err := scanNotification(row)
	if err != nil {
		return model.Notification{}, false, err
	}
	return claimed, true, nil
}

// MarkSent finalizes a claimed notification as delivered. The update is
// gated on PROCESSING so a stray call can never resurrect a terminal row.
func (r *NotificationRepo) MarkSent(ctx context.Context, id uint64, sentAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications
		 SET status=?, sent_at=?, next_attempt_at=NULL, claim_token=NULL, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND status=?`,
		model.NotificationSent, sentAt.UTC(), id, model.NotificationProcessing)
	return err
}

// MarkRetry returns a claimed notification to PENDING with an incremented
// attempt count and a backoff deadline before it becomes eligible again.
func (r *NotificationRepo) MarkRetry(ctx context.Context, id uint64, attempts int, nextAttempt time.Time, lastError string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications
		 SET status=?, attempts=?, next_attempt_at=?, last_error=?, claim_token=NULL, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND status=?`,
		model.NotificationPending, attempts, nextAttempt.UTC(), lastError, id, model.NotificationProcessing)
	return err
}

// MarkFailed finalizes a claimed notification as permanently failed with
// next_attempt_at cleared; the worker will never pick it up again.
func (r *NotificationRepo) MarkFailed(ctx context.Context, id uint64, attempts int, lastError string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications
		 SET status=?, attempts=?, next_attempt_at=NULL, last_error=?, claim_token=NULL, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND status=?`,
		model.NotificationFailed, attempts, lastError, id, model.NotificationProcessing)
	return err
}

// MarkRead records that the recipient has seen the notification. This is
// an API-surface concern and does not touch the delivery state machine
// beyond requiring a delivered item.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uint64, readAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET read_at=?, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		readAt.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateContent updates title, message and channel of a notification.
func (r *NotificationRepo) UpdateContent(ctx context.Context, id uint64, title *string, message string, channel model.NotificationChannel) (model.Notification, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET title=?, message=?, channel=?, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		title, message, channel, id)
	if err != nil {
		return model.Notification{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a notification. This is an administrative operation;
// the delivery core itself never deletes rows. Returns ErrNotFound when
// no row matched.
func (r *NotificationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// claimToken generates a random hexadecimal token used to tag a claimed
// row so it can be read back after the conditional UPDATE. crypto/rand
// keeps collisions out of the picture.
func claimToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
