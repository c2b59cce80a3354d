package sqlite

import (
	"context"

	"github.com/hazelworks/personachat/internal/auth/domain"
)

type preferencesRepo struct {
	db dbtx
}

func (r *preferencesRepo) CreatePreferences(ctx context.Context, p domain.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, notifications, language, save_chat_history)
		VALUES (?, ?, ?, ?)`,
		p.UserID, p.Notifications, p.Language, p.SaveChatHistory,
	)
	return mapConstraint(err)
}

func (r *preferencesRepo) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	var p domain.Preferences
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, notifications, language, save_chat_history, created_at
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Notifications, &p.Language, &p.SaveChatHistory, &p.CreatedAt)
	if err != nil {
		return domain.Preferences{}, mapNotFound(err)
	}
	return p, nil
}
