package migrations

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) Info(msg string, _ ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(string, ...any)       {}
func (l *recordingLogger) Error(string, ...any)      {}

type fakeMigrator struct {
	upErr, downErr     error
	upCalls, downCalls int
}

func (m *fakeMigrator) Up() error {
	m.upCalls++
	return m.upErr
}

func (m *fakeMigrator) Down() error {
	m.downCalls++
	return m.downErr
}

func (m *fakeMigrator) Close() (error, error) { return nil, nil }

// blockingMigrator never finishes a step until it is closed.
type blockingMigrator struct {
	once   sync.Once
	done   chan struct{}
	closed atomic.Bool
}

func (m *blockingMigrator) Up() error   { <-m.done; return nil }
func (m *blockingMigrator) Down() error { <-m.done; return nil }

func (m *blockingMigrator) Close() (error, error) {
	m.once.Do(func() {
		m.closed.Store(true)
		close(m.done)
	})
	return nil, nil
}

type factoryCall struct {
	sourceURL string
	table     string
}

// stubFactories swaps the postgres driver and migrator constructors for the
// duration of the test and records what they were called with.
func stubFactories(t *testing.T, m migrator, initErr error) *factoryCall {
	t.Helper()

	origDriver, origMigrator := driverFactory, migratorFactory
	t.Cleanup(func() {
		driverFactory, migratorFactory = origDriver, origMigrator
	})

	call := &factoryCall{}
	driverFactory = func(_ *sql.DB, cfg Config) (database.Driver, error) {
		call.table = cfg.MigrationsTable
		return nil, nil
	}
	migratorFactory = func(sourceURL string, _ database.Driver) (migrator, error) {
		call.sourceURL = sourceURL
		if initErr != nil {
			return nil, initErr
		}
		return m, nil
	}
	return call
}

func TestRun_Directions(t *testing.T) {
	cases := []struct {
		name      string
		direction Direction
		migrator  *fakeMigrator
		wantErr   string
		wantUp    int
		wantDown  int
		wantLog   string
	}{
		{name: "up applies", direction: DirectionUp, migrator: &fakeMigrator{}, wantUp: 1, wantLog: "Migrations applied successfully"},
		{name: "down reverts", direction: DirectionDown, migrator: &fakeMigrator{}, wantDown: 1, wantLog: "Migrations applied successfully"},
		{name: "no change is success", direction: DirectionUp, migrator: &fakeMigrator{upErr: migrate.ErrNoChange}, wantUp: 1, wantLog: "No migrations to apply"},
		{name: "up failure wrapped", direction: DirectionUp, migrator: &fakeMigrator{upErr: errors.New("dirty")}, wantUp: 1, wantErr: "migrations: up: dirty"},
		{name: "down failure wrapped", direction: DirectionDown, migrator: &fakeMigrator{downErr: errors.New("dirty")}, wantDown: 1, wantErr: "migrations: down: dirty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubFactories(t, tc.migrator, nil)
			logger := &recordingLogger{}

			err := Run(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Logger: logger}, tc.direction)

			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Contains(t, logger.infos, tc.wantLog)
			}
			assert.Equal(t, tc.wantUp, tc.migrator.upCalls)
			assert.Equal(t, tc.wantDown, tc.migrator.downCalls)
		})
	}
}

func TestRun_RejectsBadInput(t *testing.T) {
	assert.Error(t, Up(context.Background(), nil, Config{}))
	assert.Error(t, Run(context.Background(), &sql.DB{}, Config{}, Direction("sideways")))
}

func TestRun_CancelledContextSkipsMigrator(t *testing.T) {
	call := stubFactories(t, &fakeMigrator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Up(ctx, &sql.DB{}, Config{Dir: t.TempDir()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, call.sourceURL)
}

func TestRun_DeadlineClosesMigrator(t *testing.T) {
	block := &blockingMigrator{done: make(chan struct{})}
	stubFactories(t, block, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Down(ctx, &sql.DB{}, Config{Dir: t.TempDir()})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, block.closed.Load())
}

func TestRun_InitErrorWrapped(t *testing.T) {
	stubFactories(t, nil, errors.New("boom"))

	err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})

	assert.ErrorContains(t, err, "migrations: init")
}

func TestRun_DefaultsAndSourceURL(t *testing.T) {
	call := stubFactories(t, &fakeMigrator{upErr: migrate.ErrNoChange}, nil)
	dir := filepath.Join(t.TempDir(), "waitlist migrations")

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: dir}))

	assert.Equal(t, "schema_migrations", call.table)

	parsed, err := url.Parse(call.sourceURL)
	require.NoError(t, err)
	abs, _ := filepath.Abs(dir)
	assert.Equal(t, "file", parsed.Scheme)
	assert.Equal(t, filepath.ToSlash(abs), parsed.Path)
}

func TestParseDirection(t *testing.T) {
	for raw, want := range map[string]Direction{
		"":     DirectionUp,
		"up":   DirectionUp,
		" UP ": DirectionUp,
		"down": DirectionDown,
		"Down": DirectionDown,
	} {
		got, err := ParseDirection(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseDirection("redo")
	assert.Error(t, err)
}
