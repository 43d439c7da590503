package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sreevasthav1710/study10/model"
)

// FinalizeExpiredAttempts sweeps in-progress test attempts whose countdown
// has run out and grades them with whatever answers were saved. Keeps an
// abandoned tab from leaving an attempt open forever.
func (m *CronManager) FinalizeExpiredAttempts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "finalize_expired_attempts"

	finalized, err := m.tests.FinalizeExpired(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to finalize expired attempts: %w", err))
		return
	}

	if finalized == 0 {
		m.logJobComplete(jobName, "No expired attempts")
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("Finalized %d expired attempts", finalized))
}

// CleanupExpiredTokens removes blacklist entries whose tokens have expired
// anyway and can no longer be presented.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired tokens", removed))
}

// CleanupOldLogs trims cron job logs older than 30 days.
func (m *CronManager) CleanupOldLogs() {
	jobName := "cleanup_old_logs"
	cutoff := time.Now().AddDate(0, 0, -30)

	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to trim logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old log rows", result.RowsAffected))
}
