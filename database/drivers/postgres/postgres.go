package postgres

import (
	"database/sql"
	"fmt"
	"net/url"

	// import postgres driver
	_ "github.com/lib/pq"
	"github.com/thrasher-corp/forecaster/database"
)

const defaultSSLMode = "disable"

// Connect opens a connection to the postgres database configured on i
func Connect(i *database.Instance) (*database.Instance, error) {
	if i == nil {
		return nil, database.ErrNoDatabaseProvided
	}
	cfg := i.GetConfig()
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	db, err := sql.Open(database.DBPostgreSQL, dsn(cfg))
	if err != nil {
		return nil, err
	}
	if err = i.SetPostgresConnection(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	i.SetConnected(true)
	return i, nil
}

func dsn(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}
