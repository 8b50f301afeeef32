package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type AuditRepository struct {
	DB intdb.Querier
}

func (r AuditRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AuditRepository) Insert(ctx context.Context, id string, e models.AuditEntry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}
	_, err = r.db().ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, target_type, target_id, metadata, ip_address, user_agent, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, intdb.NullIfEmpty(e.ActorID), string(e.Action), e.TargetType, intdb.NullIfEmpty(e.TargetID), raw,
		intdb.NullIfEmpty(e.IPAddress), intdb.NullIfEmpty(e.UserAgent), e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r AuditRepository) List(ctx context.Context, f models.AuditFilter, page domain.PageParams) ([]models.AuditLog, int, error) {
	args := &queryArgs{}
	where := []string{"1=1"}
	if f.ActorID != "" {
		where = append(where, "a.actor_id = "+args.add(f.ActorID))
	}
	if f.Action != "" {
		where = append(where, "a.action = "+args.add(string(f.Action)))
	}
	if f.TargetType != "" {
		where = append(where, "a.target_type = "+args.add(f.TargetType))
	}
	if f.StartDate != nil {
		where = append(where, "a.timestamp >= "+args.add(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "a.timestamp <= "+args.add(*f.EndDate))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs a WHERE `+cond, args.vals...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.actor_id, a.action, a.target_type, a.target_id, a.metadata, a.ip_address, a.user_agent, a.timestamp,
			u.id, u.name, u.email
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE %s
		ORDER BY a.timestamp DESC
		LIMIT %s OFFSET %s`, cond, args.add(page.Limit), args.add(page.Offset()))
	rows, err := r.db().QueryContext(ctx, query, args.vals...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		var (
			l                          models.AuditLog
			actorID, targetID, ip, ua  sql.NullString
			action                     string
			meta                       []byte
			userID, userName, userMail sql.NullString
		)
		if err := rows.Scan(&l.ID, &actorID, &action, &l.TargetType, &targetID, &meta, &ip, &ua, &l.Timestamp,
			&userID, &userName, &userMail); err != nil {
			return out, total, fmt.Errorf("failed to scan audit log: %w", err)
		}
		l.Action = models.AuditAction(action)
		l.ActorID = nullStringPtr(actorID)
		l.TargetID = nullStringPtr(targetID)
		l.IPAddress = nullStringPtr(ip)
		l.UserAgent = nullStringPtr(ua)
		l.Metadata = map[string]any{}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &l.Metadata)
		}
		if userID.Valid {
			l.Actor = &models.UserSummary{ID: userID.String, Name: userName.String, Email: userMail.String}
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
