// Copyright 2026 The AccessHub Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"accesshub/internal/config"
	"accesshub/portal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	once sync.Once
	lock sync.Mutex
)

// GetDB returns the process-wide gorm handle, opening it on first use.
func GetDB(cfg *config.DatabaseConfig) *gorm.DB {
	lock.Lock()
	defer lock.Unlock()
	if db != nil {
		return db
	}
	once.Do(func() {
		var err error
		db, err = Connect(cfg)
		if err != nil {
			panic(err)
		}
	})
	return db
}

// Connect opens the configured store. MySQL backs deployments; the
// pure-Go sqlite driver backs local runs and tests. TranslateError is on
// so unique-index violations surface as gorm.ErrDuplicatedKey and the
// repositories can map them to the duplicate sentinels.
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold: time.Second,
		LogLevel:      logger.Warn,
	})

	gormCfg := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = "accesshub.db"
		}
		return gorm.Open(sqlite.Open(path), gormCfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates the portal schema.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Service{},
		&model.Role{},
		&model.Department{},
		&model.UserPermission{},
		&model.PermissionRequest{},
		&model.RegistrationRequest{},
	)
}
