package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ErrProfileNotFound is returned when no profile exists for a user id.
var ErrProfileNotFound = fmt.Errorf("profile not found")

// GetProfileSnapshot reads the user's full profile in one shot. The
// snapshot is the pipeline's read-only input; order indexes reflect the
// user-declared ordering.
func (db *DB) GetProfileSnapshot(ctx context.Context, userID string) (*types.ProfileSnapshot, error) {
	snapshot := &types.ProfileSnapshot{
		UserID:          userID,
		WorkExperiences: []types.Experience{},
		Skills:          []types.Skill{},
		Education:       []types.Education{},
		Languages:       []types.Language{},
	}

	err := db.pool.QueryRow(ctx,
		`SELECT full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(location, ''),
		        COALESCE(headline, ''), COALESCE(summary, '')
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&snapshot.FullName, &snapshot.Email, &snapshot.Phone, &snapshot.Location,
		&snapshot.Headline, &snapshot.Summary)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, order_index, company, position, COALESCE(description, ''),
		        COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
		        COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''), current
		 FROM work_experiences WHERE user_id = $1 ORDER BY order_index ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list work experiences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var exp types.Experience
		if err := rows.Scan(&exp.ID, &exp.OrderIndex, &exp.Company, &exp.Position,
			&exp.Description, &exp.StartDate, &exp.EndDate, &exp.Current); err != nil {
			return nil, fmt.Errorf("failed to scan work experience: %w", err)
		}
		snapshot.WorkExperiences = append(snapshot.WorkExperiences, exp)
	}
	rows.Close()

	rows, err = db.pool.Query(ctx,
		`SELECT id, order_index, name, COALESCE(proficiency, '')
		 FROM skills WHERE user_id = $1 ORDER BY order_index ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var skill types.Skill
		if err := rows.Scan(&skill.ID, &skill.OrderIndex, &skill.Name, &skill.Proficiency); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		snapshot.Skills = append(snapshot.Skills, skill)
	}
	rows.Close()

	rows, err = db.pool.Query(ctx,
		`SELECT id, order_index, institution, COALESCE(degree, ''), COALESCE(field, ''),
		        COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
		        COALESCE(to_char(end_date, 'YYYY-MM-DD'), '')
		 FROM education WHERE user_id = $1 ORDER BY order_index ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list education: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var edu types.Education
		if err := rows.Scan(&edu.ID, &edu.OrderIndex, &edu.Institution, &edu.Degree,
			&edu.Field, &edu.StartDate, &edu.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		snapshot.Education = append(snapshot.Education, edu)
	}
	rows.Close()

	rows, err = db.pool.Query(ctx,
		`SELECT id, name, COALESCE(level, '') FROM languages WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang types.Language
		if err := rows.Scan(&lang.ID, &lang.Name, &lang.Level); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		snapshot.Languages = append(snapshot.Languages, lang)
	}

	return snapshot, nil
}

// ReplaceProfile performs the destructive profile import: inside a single
// transaction it deletes every profile collection for the user and bulk
// inserts the imported data. The replace is all-or-nothing, never partial.
func (db *DB) ReplaceProfile(ctx context.Context, profile *types.ProfileSnapshot) error {
	userID := profile.UserID
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO user_profiles (user_id, full_name, email, phone, location, headline, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   full_name = $2, email = $3, phone = $4, location = $5, headline = $6, summary = $7,
		   updated_at = NOW()`,
		userID, profile.FullName, profile.Email, profile.Phone, profile.Location,
		profile.Headline, profile.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	for _, table := range []string{"work_experiences", "skills", "education", "languages"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, exp := range profile.WorkExperiences {
		_, err := tx.Exec(ctx,
			`INSERT INTO work_experiences (id, user_id, order_index, company, position, description, start_date, end_date, current)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, NULLIF($8, '')::date, $9)`,
			exp.ID, userID, i, exp.Company, exp.Position, exp.Description, exp.StartDate, exp.EndDate, exp.Current,
		)
		if err != nil {
			return fmt.Errorf("failed to insert work experience: %w", err)
		}
	}

	for i, skill := range profile.Skills {
		_, err := tx.Exec(ctx,
			`INSERT INTO skills (id, user_id, order_index, name, proficiency)
			 VALUES ($1, $2, $3, $4, $5)`,
			skill.ID, userID, i, skill.Name, skill.Proficiency,
		)
		if err != nil {
			return fmt.Errorf("failed to insert skill: %w", err)
		}
	}

	for i, edu := range profile.Education {
		_, err := tx.Exec(ctx,
			`INSERT INTO education (id, user_id, order_index, institution, degree, field, start_date, end_date)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::date, NULLIF($8, '')::date)`,
			edu.ID, userID, i, edu.Institution, edu.Degree, edu.Field, edu.StartDate, edu.EndDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert education: %w", err)
		}
	}

	for _, lang := range profile.Languages {
		_, err := tx.Exec(ctx,
			`INSERT INTO languages (id, user_id, name, level) VALUES ($1, $2, $3, $4)`,
			lang.ID, userID, lang.Name, lang.Level,
		)
		if err != nil {
			return fmt.Errorf("failed to insert language: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit profile replace: %w", err)
	}
	return nil
}
