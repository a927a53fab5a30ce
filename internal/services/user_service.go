package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/heartlink/heartlink/internal/database"
	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/telemetry"
)

type UserProfile = database.UserProfile

// userColumns is the select list shared by every profile query.
const userColumns = `
	id, email, first_name, last_name, date_of_birth, gender, looking_for,
	bio, location, profile_pic, interests, preferred_age_range,
	relationship, orientation, smoking, alcohol, education, religion,
	politics, occupation, height, role, created_at, updated_at`

// UserService is the user directory. The swipe/match core reads profiles
// through it; profile writes live here too so the boundary has one owner.
type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*UserProfile, error) {
	user := &UserProfile{}
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.DateOfBirth, &user.Gender, &user.LookingFor,
		&user.Bio, &user.Location, &user.ProfilePic,
		&user.Interests, &user.PreferredAgeRange,
		&user.Relationship, &user.Orientation, &user.Smoking, &user.Alcohol,
		&user.Education, &user.Religion, &user.Politics,
		&user.Occupation, &user.Height, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*UserProfile, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   id,
		"operation": "get_user_by_id",
	})

	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Warn("User not found")
			return nil, apperrors.NewNotFoundError("user")
		}
		logger.WithError(err).Error("Failed to get user from database")
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	return user, nil
}

// CreateProfile inserts a new user profile. Email and first name are the
// only hard requirements; everything else fills in over time.
func (s *UserService) CreateProfile(ctx context.Context, user *UserProfile) (*UserProfile, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"email":     user.Email,
		"operation": "create_profile",
	})

	if strings.TrimSpace(user.Email) == "" {
		return nil, apperrors.NewValidationError("email", "email is required")
	}
	if strings.TrimSpace(user.FirstName) == "" {
		return nil, apperrors.NewValidationError("first_name", "first name is required")
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = database.RoleCustomer
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	logger.WithField("user_id", user.ID).Info("Creating user profile")

	query := `
		INSERT INTO users (
			id, email, first_name, last_name, date_of_birth, gender, looking_for,
			bio, location, profile_pic, interests, preferred_age_range,
			relationship, orientation, smoking, alcohol, education, religion,
			politics, occupation, height, role, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName,
		user.DateOfBirth, user.Gender, user.LookingFor,
		user.Bio, user.Location, user.ProfilePic,
		user.Interests, user.PreferredAgeRange,
		user.Relationship, user.Orientation, user.Smoking, user.Alcohol,
		user.Education, user.Religion, user.Politics,
		user.Occupation, user.Height, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.NewConflictError("A profile with this email already exists")
		}
		logger.WithError(err).Error("Failed to create user profile")
		return nil, apperrors.NewDatabaseError("create profile", err)
	}

	logger.WithField("user_id", user.ID).Info("User profile created")
	return user, nil
}

// UpdateProfile rewrites the mutable profile fields. Identity fields
// (id, email, role, created_at) do not change here.
func (s *UserService) UpdateProfile(ctx context.Context, user *UserProfile) (*UserProfile, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"operation": "update_profile",
	})

	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, date_of_birth = $4, gender = $5,
			looking_for = $6, bio = $7, location = $8, profile_pic = $9,
			interests = $10, preferred_age_range = $11, relationship = $12,
			orientation = $13, smoking = $14, alcohol = $15, education = $16,
			religion = $17, politics = $18, occupation = $19, height = $20,
			updated_at = $21
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.DateOfBirth, user.Gender,
		user.LookingFor, user.Bio, user.Location, user.ProfilePic,
		user.Interests, user.PreferredAgeRange, user.Relationship,
		user.Orientation, user.Smoking, user.Alcohol, user.Education,
		user.Religion, user.Politics, user.Occupation, user.Height,
		user.UpdatedAt,
	)
	if err != nil {
		logger.WithError(err).Error("Failed to update user profile")
		return nil, apperrors.NewDatabaseError("update profile", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, apperrors.NewNotFoundError("user")
	}

	logger.Info("User profile updated")
	return s.GetByID(ctx, user.ID)
}

// QueryExcluding pages through customer profiles not in the excluded id
// set, ordered by (created_at, id) so pagination is stable under inserts.
func (s *UserService) QueryExcluding(ctx context.Context, excluded []string, offset, limit int) ([]*UserProfile, error) {
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"excluded":  len(excluded),
		"offset":    offset,
		"limit":     limit,
		"operation": "query_excluding",
	})

	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE role <> $1 AND NOT (id = ANY($2::uuid[]))
		ORDER BY created_at, id
		OFFSET $3 LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, database.RoleAdmin, pq.Array(excluded), offset, limit)
	if err != nil {
		logger.WithError(err).Error("Failed to query candidate profiles")
		return nil, apperrors.NewDatabaseError("query candidates", err)
	}
	defer rows.Close()

	profiles := []*UserProfile{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan candidate", err)
		}
		profiles = append(profiles, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate candidates", err)
	}

	return profiles, nil
}

// CountExcluding counts the full candidate population behind QueryExcluding.
func (s *UserService) CountExcluding(ctx context.Context, excluded []string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM users
		WHERE role <> $1 AND NOT (id = ANY($2::uuid[]))
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, database.RoleAdmin, pq.Array(excluded)).Scan(&count); err != nil {
		return 0, apperrors.NewDatabaseError("count candidates", err)
	}
	return count, nil
}

// AllProfilesExcept returns every customer profile other than userID.
// The ranked-match pool filters this further in memory.
func (s *UserService) AllProfilesExcept(ctx context.Context, userID string) ([]*UserProfile, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE role <> $1 AND id <> $2
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, database.RoleAdmin, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query profiles", err)
	}
	defer rows.Close()

	profiles := []*UserProfile{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan profile", err)
		}
		profiles = append(profiles, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate profiles", err)
	}

	return profiles, nil
}

// ProfilesByIDs loads the given profiles, preserving input order.
// Unknown ids are skipped.
func (s *UserService) ProfilesByIDs(ctx context.Context, ids []string) ([]*UserProfile, error) {
	if len(ids) == 0 {
		return []*UserProfile{}, nil
	}

	query := `SELECT` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewDatabaseError("query profiles by id", err)
	}
	defer rows.Close()

	byID := make(map[string]*UserProfile, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan profile", err)
		}
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate profiles", err)
	}

	ordered := make([]*UserProfile, 0, len(byID))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			ordered = append(ordered, user)
		}
	}
	return ordered, nil
}
