package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// userColumns selects a user with its roles folded into one comma-separated column.
const userColumns = `
	SELECT u.id, u.email, u.password_hash, u.active, u.created_at, u.updated_at,
	       COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id
`

// PostgresUserStore implements store.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a PostgresUserStore. If logger is nil,
// slog.Default() is used.
func NewPostgresUserStore(db *sql.DB, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Create implements store.UserStore.Create. The user row and its roles are
// written in one statement.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password must be hashed before storage", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		WITH new_user AS (
			INSERT INTO users (id, email, password_hash, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		)
		INSERT INTO user_roles (user_id, role)
		SELECT new_user.id, role
		FROM new_user, unnest(string_to_array($7, ',')) AS role
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
		strings.Join(user.Roles.Strings(), ","),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, userColumns+` WHERE u.id = $1 GROUP BY u.id`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, userColumns+` WHERE u.email = $1 GROUP BY u.id`, strings.ToLower(email))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.scanUser(ctx, s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// List implements store.UserStore.List.
func (s *PostgresUserStore) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		userColumns+` GROUP BY u.id ORDER BY u.created_at, u.id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		user, err := s.scanUser(ctx, rows)
		if err != nil {
			return nil, MapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return users, nil
}

// SetActive implements store.UserStore.SetActive.
func (s *PostgresUserStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update user active flag",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user active flag changed",
		slog.String("user_id", id.String()),
		slog.Bool("active", active))
	return nil
}

// SetRoles implements store.UserStore.SetRoles.
func (s *PostgresUserStore) SetRoles(ctx context.Context, id uuid.UUID, roles domain.RoleSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	joined := strings.Join(roles.Strings(), ",")

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrUserNotFound
		}
		if err != nil {
			return MapError(err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_roles WHERE user_id = $1 AND NOT (role = ANY (string_to_array($2, ',')))`,
			id, joined); err != nil {
			return MapError(err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role)
			SELECT $1, role FROM unnest(string_to_array($2, ',')) AS role
			ON CONFLICT DO NOTHING`,
			id, joined); err != nil {
			return MapError(err)
		}

		_, err = tx.ExecContext(ctx, `UPDATE users SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
		return MapError(err)
	})
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to set user roles",
				slog.String("error", err.Error()),
				slog.String("user_id", id.String()))
		}
		return err
	}

	log.Info("user roles changed",
		slog.String("user_id", id.String()),
		slog.String("roles", roles.String()))
	return nil
}

// LoadIdentity implements store.UserStore.LoadIdentity.
func (s *PostgresUserStore) LoadIdentity(ctx context.Context, id uuid.UUID) (*store.Identity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT u.id, u.email, u.active, COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
		FROM users u
		LEFT JOIN user_roles r ON r.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id
	`

	var identity store.Identity
	var roles string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&identity.UserID,
		&identity.Email,
		&identity.Active,
		&roles,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to load identity",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, MapError(err)
	}

	identity.Roles = s.parseRoles(ctx, roles)
	return &identity, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(ctx context.Context, row rowScanner) (*domain.User, error) {
	var user domain.User
	var roles string
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
		&roles,
	); err != nil {
		return nil, err
	}
	user.Roles = s.parseRoles(ctx, roles)
	return &user, nil
}

// parseRoles reads the aggregated role column. Unknown names grant nothing
// and are logged.
func (s *PostgresUserStore) parseRoles(ctx context.Context, joined string) domain.RoleSet {
	if joined == "" {
		return domain.NewRoleSet()
	}

	var roles []domain.Role
	for _, name := range strings.Split(joined, ",") {
		r, err := domain.ParseRole(name)
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Warn("ignoring unknown stored role",
				slog.String("role", name))
			continue
		}
		roles = append(roles, r)
	}
	return domain.NewRoleSet(roles...)
}
