package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/harumaki2000/medication-app/entities"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// migrate is swapped in tests.
var migrate = Migrate

// Connect opens the store named by databaseURL, configures the pool and
// creates missing tables. Supported schemes are sqlite:// (file path) and
// postgres:// / postgresql://.
func Connect(databaseURL string, log *logrus.Logger) (Database, error) {
	dialector, isSQLite, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt:    !isSQLite,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if isSQLite {
		// one writer at a time; busy_timeout covers the rest
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.WithField("driver", dialector.Name()).Info("database connection established")

	if err := migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("database tables ready")

	return &GormDatabase{DB: db}, nil
}

// Migrate creates or updates the four tables. Foreign keys are created
// without ON DELETE CASCADE.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(entities.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		// sqlite:///./file.db and sqlite:///abs/file.db
		if strings.HasPrefix(path, "/./") {
			path = path[1:]
		}
		if path == "" {
			return nil, false, fmt.Errorf("sqlite database url %q has no path", databaseURL)
		}
		return sqlite.Open(SQLiteDSN(path)), true, nil

	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dsn := databaseURL
		if !strings.Contains(dsn, "sslmode=") {
			sslMode := "require"
			if strings.Contains(dsn, "@localhost") || strings.Contains(dsn, "@127.0.0.1") {
				sslMode = "disable"
			}
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=" + sslMode
			} else {
				dsn += "?sslmode=" + sslMode
			}
		}
		return postgres.Open(dsn), false, nil
	}
	return nil, false, fmt.Errorf("unsupported database url %q: expected sqlite:// or postgres://", databaseURL)
}

// SQLiteDSN appends the pragmas every sqlite connection needs.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}

func gormLogLevel(l logrus.Level) logger.LogLevel {
	switch {
	case l >= logrus.DebugLevel:
		return logger.Info
	case l >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
