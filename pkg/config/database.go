package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds whichever store connections the running app opened.
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
	log   *logger.Logger
}

func NewDB(log *logger.Logger) *DB {
	return &DB{log: log}
}

// InitMongo connects and pings MongoDB.
func (db *DB) InitMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db.Mongo = client
	db.log.Info("Successfully connected to MongoDB")
	return client, nil
}

// InitSQL opens the relational store. postgres:// and host= DSNs use the
// postgres driver; everything else is treated as a sqlite path.
func (db *DB) InitSQL(dsn string) (*gorm.DB, error) {
	dialector := Dialector(dsn)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialector.Name(), err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", dialector.Name(), err)
	}

	db.SQL = gdb
	db.log.Info("Successfully connected to SQL database", "driver", dialector.Name())
	return gdb, nil
}

// Dialector picks the gorm driver for a DSN.
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			db.log.Error("Error getting SQL DB from GORM", "error", err)
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("Error closing SQL connection", "error", err)
		} else {
			db.log.Info("SQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error("Error closing MongoDB connection", "error", err)
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}
}
