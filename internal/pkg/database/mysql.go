package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// MySQLSettings are the DB_* connection settings shared by the server and
// the migration tool
type MySQLSettings struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// LoadMySQLSettings reads DB_USER, DB_PASSWORD, DB_HOST, DB_PORT and DB_NAME
func LoadMySQLSettings() MySQLSettings {
	return MySQLSettings{
		User:     env.GetEnv("DB_USER", "newsdesk"),
		Password: env.GetEnv("DB_PASSWORD", ""),
		Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:     env.GetEnv("DB_PORT", "3306"),
		Name:     env.GetEnv("DB_NAME", "newsdesk"),
	}
}

// DSN renders the go-sql-driver data source name with the given query
func (s MySQLSettings) DSN(query string) string {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", s.User, s.Password, s.Host, s.Port, s.Name, query)
}

// String is the DSN without the password, for logs
func (s MySQLSettings) String() string {
	return fmt.Sprintf("%s@%s:%s/%s", s.User, s.Host, s.Port, s.Name)
}

// MySQLDSN is the DSN gorm connects with
func MySQLDSN() string {
	return LoadMySQLSettings().DSN("charset=utf8mb4&parseTime=True&loc=UTC")
}

// MigrateURL is the golang-migrate database URL for the same server
func MigrateURL() string {
	return "mysql://" + LoadMySQLSettings().DSN("multiStatements=true")
}

// SetupDatabase connects to MySQL, retrying while the server comes up, and
// migrates the schema.
func SetupDatabase(ctx context.Context) (*gorm.DB, error) {
	dsn := MySQLDSN()

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), &gorm.Config{
			TranslateError: true,
		})
		if err == nil {
			if err = Migrate(db.WithContext(ctx)); err != nil {
				return nil, err
			}
			return db, nil
		}

		log.Warnf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			if err := sleep(ctx, retryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("connect to mysql: %w", err)
}

// Migrate creates or updates the tables of all stored kinds
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.News{},
		&models.Comment{},
		&models.Question{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
