package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// CreateDatabase 目标库不存在时创建它；sqlite 打开时自动建文件，无需处理
func CreateDatabase(ctx context.Context, driver, dsn string, log *slog.Logger) error {
	switch driver {
	case "postgres":
		return createPostgresDatabase(ctx, dsn, log)
	case "mysql":
		return createMySQLDatabase(ctx, dsn, log)
	case "sqlite":
		return nil
	default:
		return errors.Errorf("unsupported database driver %q", driver)
	}
}

func createPostgresDatabase(ctx context.Context, dsn string, log *slog.Logger) error {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return errors.Wrap(err, "parsing postgres dsn")
	}
	dbName := cfg.Database
	if dbName == "" {
		return errors.New("postgres dsn has no database name")
	}

	// 连到默认的 postgres 库去建目标库
	cfg.Database = "postgres"
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connecting to postgres")
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Warn("closing postgres connection failed", "err", err)
		}
	}()

	exists := false
	row := conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT datname
			FROM pg_catalog.pg_database
			WHERE datname = $1
		);
	`, dbName)
	if err := row.Scan(&exists); err != nil {
		return errors.Wrap(err, "checking if database exists")
	}
	if exists {
		log.Info("database already exists", "driver", "postgres", "database", dbName)
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return errors.Wrapf(err, "creating database %q", dbName)
	}
	log.Info("database created", "driver", "postgres", "database", dbName)
	return nil
}

func createMySQLDatabase(ctx context.Context, dsn string, log *slog.Logger) error {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return errors.Wrap(err, "parsing mysql dsn")
	}
	dbName := cfg.DBName
	if dbName == "" {
		return errors.New("mysql dsn has no database name")
	}

	cfg.DBName = ""
	conn, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return errors.Wrap(err, "opening mysql connection")
	}
	defer conn.Close()

	quoted := "`" + strings.ReplaceAll(dbName, "`", "``") + "`"
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", quoted)
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "creating database %q", dbName)
	}
	log.Info("database ensured", "driver", "mysql", "database", dbName)
	return nil
}
