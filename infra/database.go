package infra

import (
	"errors"
	"strings"
	"time"

	"github.com/fammee/finance/infra/migrations"
	"github.com/fammee/finance/infra/repository"
	"github.com/fammee/finance/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// IsSQLite reports whether url names a local sqlite database.
func IsSQLite(url string) bool {
	return strings.HasPrefix(url, sqlitePrefix)
}

// NewDBConnection opens postgres, or sqlite for a sqlite:// url.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	databaseUrl := cnf.Url

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	if IsSQLite(databaseUrl) {
		dialector = sqlite.Open(strings.TrimPrefix(databaseUrl, sqlitePrefix) + "?_foreign_keys=on&_busy_timeout=5000")
	} else {
		dialector = postgres.Open(databaseUrl)
	}

	connection, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if IsSQLite(databaseUrl) {
		// one writer at a time; sqlite has no row locks
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	return connection, nil
}

// Migrate brings the schema up to date: golang-migrate for postgres,
// AutoMigrate for sqlite.
func Migrate(db *gorm.DB, cnf *config.DB) error {
	if IsSQLite(cnf.Url) {
		return db.AutoMigrate(repository.Models()...)
	}
	return migrations.Up(cnf.Url)
}
