// Package database opens the MySQL pool backing the booking ledger and
// the seat status store.
package database

import (
    "context"
    "database/sql"
    "net"
    "time"

    "github.com/go-sql-driver/mysql"
)

// Pool sizing: the service is a single-operator tool, but booking
// saves hold row locks across several statements, so the pool keeps
// enough headroom for batch saves running alongside status reads.
const (
    maxOpenConns    = 25
    maxIdleConns    = 25
    connMaxLifetime = 30 * time.Minute
)

// Open connects to MySQL and verifies the connection.  Voyage dates
// are DATE columns keyed at UTC midnight, so the DSN forces ParseTime
// with a UTC location; without it every date scan would land in the
// server's local zone and leg keys would drift across DST boundaries.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    cfg := mysql.NewConfig()
    cfg.User = user
    cfg.Passwd = pass
    cfg.Net = "tcp"
    cfg.Addr = net.JoinHostPort(host, port)
    cfg.DBName = name
    cfg.ParseTime = true
    cfg.Loc = time.UTC
    cfg.Params = map[string]string{"charset": "utf8mb4"}

    db, err := sql.Open("mysql", cfg.FormatDSN())
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(maxOpenConns)
    db.SetMaxIdleConns(maxIdleConns)
    db.SetConnMaxLifetime(connMaxLifetime)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    return db, nil
}
