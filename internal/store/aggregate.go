package store

import "fmt"

// TimeSpentByMonth returns the total seconds logged by the user in the
// given month ("YYYY-MM"). Months without entries yield zero.
func (db *DB) TimeSpentByMonth(userEmail, month string) (int64, error) {
	var total int64
	err := db.conn.QueryRow(`
		SELECT COALESCE(SUM(time_spent), 0)
		FROM time_entries
		WHERE user_email = ? AND strftime('%Y-%m', spent_at) = ?
	`, userEmail, month).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate month %s: %w", month, err)
	}
	return total, nil
}

// TimeSpentByYear returns the total seconds logged by the user in the
// given year ("YYYY"). Years without entries yield zero.
func (db *DB) TimeSpentByYear(userEmail, year string) (int64, error) {
	var total int64
	err := db.conn.QueryRow(`
		SELECT COALESCE(SUM(time_spent), 0)
		FROM time_entries
		WHERE user_email = ? AND strftime('%Y', spent_at) = ?
	`, userEmail, year).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate year %s: %w", year, err)
	}
	return total, nil
}
