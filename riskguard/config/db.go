package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
)

const (
	defaultDBName            = "rgd.db"
	defaultDBTimeout         = time.Second * 10
	defaultAutoCompactMinAge = time.Hour * 24 * 7
)

// DBConfig holds the bbolt database configuration.
type DBConfig struct {
	// DBPath is the directory path in which the database file is stored.
	DBPath string `long:"dbpath" description:"The directory path in which the database file should be stored."`

	// DBFileName is the name of the database file.
	DBFileName string `long:"dbfilename" description:"The name of the database file."`

	// NoFreelistSync, if true, prevents the database from syncing its
	// freelist to disk, minimizing write performance impact.
	NoFreelistSync bool `long:"nofreelistsync" description:"Whether the databases used within the daemon should automatically be compacted on startup."`

	// AutoCompact specifies if a Bolt based database backend should be
	// automatically compacted on startup.
	AutoCompact bool `long:"autocompact" description:"Whether the databases used within the daemon should automatically be compacted on startup."`

	// AutoCompactMinAge specifies the minimum time that must have passed
	// since a bolt database file was last compacted for the compaction to
	// be considered again.
	AutoCompactMinAge time.Duration `long:"autocompactminage" description:"How long ago (in hours) the database file must be last compacted for compaction to run again."`

	// DBTimeout specifies the timeout value to use when opening the bolt
	// database.
	DBTimeout time.Duration `long:"dbtimeout" description:"Specify the timeout value used when opening the database."`
}

// DefaultDBConfig returns the default db config pointed at the default
// data directory.
func DefaultDBConfig() DBConfig {
	return DefaultDBConfigWithHomePath(DefaultRgdDir)
}

// DefaultDBConfigWithHomePath returns the default db config under the
// given home directory.
func DefaultDBConfigWithHomePath(homePath string) DBConfig {
	return DBConfig{
		DBPath:            DataDir(homePath),
		DBFileName:        defaultDBName,
		NoFreelistSync:    true,
		AutoCompact:       false,
		AutoCompactMinAge: defaultAutoCompactMinAge,
		DBTimeout:         defaultDBTimeout,
	}
}

// GetDBBackend opens (creating if necessary) the bolt backend described
// by the config.
func (cfg *DBConfig) GetDBBackend() (kvdb.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            cfg.DBPath,
		DBFileName:        cfg.DBFileName,
		NoFreelistSync:    cfg.NoFreelistSync,
		AutoCompact:       cfg.AutoCompact,
		AutoCompactMinAge: cfg.AutoCompactMinAge,
		DBTimeout:         cfg.DBTimeout,
	})
}

// Validate checks the db config for illegal values.
func (cfg *DBConfig) Validate() error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db path cannot be empty")
	}
	if cfg.DBFileName == "" {
		return fmt.Errorf("db file name cannot be empty")
	}
	if cfg.DBTimeout <= 0 {
		return fmt.Errorf("db timeout must be positive")
	}
	if !filepath.IsAbs(cfg.DBPath) {
		return fmt.Errorf("db path must be absolute")
	}

	return nil
}
