package query

import (
	"context"

	"gorm.io/gorm"
)

type PingResult struct {
	Success        bool   `json:"success"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          *Error `json:"error"`
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) PingResult {
	res := Run(ctx, "ping", func(ctx context.Context) (bool, error) {
		sqlDB, err := db.DB()
		if err != nil {
			return false, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
	return PingResult{
		Success:        res.OK(),
		ResponseTimeMs: res.Debug.Duration.Milliseconds(),
		Error:          res.Err,
	}
}
