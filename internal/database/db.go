package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
)

// Open connects to the configured store and verifies the connection.
// SQLite is a single file next to the server, MySQL a shared server for
// deployments with more than one API instance.
func Open(c config.DBConfig) (*sql.DB, error) {
	driver, dsn, err := dataSource(c)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Driver, err)
	}
	return db, nil
}

func dataSource(c config.DBConfig) (driver, dsn string, err error) {
	switch c.Driver {
	case config.DriverSQLite:
		// foreign keys are off by default in SQLite; busy_timeout lets
		// concurrent writers wait instead of failing with SQLITE_BUSY.
		// _time_format=sqlite stores sortable timestamps.
		return "sqlite", c.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", nil
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Pass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, c.Port)
		mc.DBName = c.Name
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return "mysql", mc.FormatDSN(), nil
	}
	return "", "", fmt.Errorf("unsupported driver %q", c.Driver)
}
