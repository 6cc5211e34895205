package database

import (
	"context"
	"fmt"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Handle is the process-wide store handle. The connection is opened on first use and
// cached; a failed open is retried on the next use.
type Handle struct {
	mu   sync.Mutex
	open func() (*gorm.DB, error)
	db   *gorm.DB
}

func NewHandle(cfg *config.DatabaseConfig, mode string) *Handle {
	return &Handle{
		open: func() (*gorm.DB, error) {
			return Open(cfg, mode)
		},
	}
}

// NewHandleFromDB wraps an already opened connection.
func NewHandleFromDB(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// DB returns the cached connection, opening it if needed. Errors wrap util.ErrStoreUnavailable.
func (h *Handle) DB(ctx context.Context) (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db.WithContext(ctx), nil
	}
	if h.open == nil {
		return nil, util.ErrStoreUnavailable
	}

	db, err := h.open()
	if err != nil {
		logger.Log.Error("Failed to open document store", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrStoreUnavailable, err)
	}

	h.db = db
	logger.Log.Info("Document store connection established")
	return h.db.WithContext(ctx), nil
}

// Ping reports whether the store is reachable, opening the connection if needed.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	h.db = nil
	return sqlDB.Close()
}

func Open(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		dialector = mysql.Open(dsn)
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens a named in-memory SQLite store for tests.
func OpenInMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.Quiz{},
		&model.Attempt{},
	)
}
