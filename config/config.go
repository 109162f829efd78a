/*
Package config implements TOML config file handling for the TMX editor.

Normally it will be used by simply passing a config file name to the Load function to obtain a
Config struct. Values from a .env file or the environment override the file:

	TMXEDIT_DB_DRIVER, TMXEDIT_DB_FILE, TMXEDIT_DB_PASSWORD, TMXEDIT_SERVER_PORT,
	TMXEDIT_STRIP_ATTRIBUTES
*/
package config

import (
	"errors"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DbDriverSqlite3    = "sqlite3"
	DbDriverPostgresql = "postgres"
)

// Config represents the parsed configuration for the TMX editor.
type Config struct {
	DB     DbConfig     `toml:"database"`
	Server ServerConfig `toml:"server"`
	TMX    TmxConfig    `toml:"tmx"`
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	if c.DB.Driver != DbDriverSqlite3 && c.DB.Driver != DbDriverPostgresql {
		drivers := []string{DbDriverPostgresql, DbDriverSqlite3}
		return fmt.Errorf("config: invalid database.driver value. (Must be one of: '%v')", strings.Join(drivers, ", "))
	}
	if c.DB.Driver == DbDriverSqlite3 && len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if c.DB.Driver == DbDriverPostgresql {
		if len(c.DB.Host) == 0 {
			return errors.New("config: missing database.host value")
		}
		if len(c.DB.Name) == 0 {
			return errors.New("config: missing database.name value")
		}
		if len(c.DB.User) == 0 {
			return errors.New("config: missing database.user value")
		}
		if c.DB.Port < 0 {
			return errors.New("config: invalid database.port value")
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("config: server.port is invalid")
	}
	if len(c.TMX.ImportPath) == 0 {
		return errors.New("config: missing tmx.import_path value")
	}
	if len(c.TMX.ExportPath) == 0 {
		return errors.New("config: missing tmx.export_path value")
	}
	return nil
}

// DbConfig contains Database connection configuration.
type DbConfig struct {
	// Either 'sqlite3' or 'postgres'
	Driver string
	// When driver is sqlite3, this is the path to the database file
	File     string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port that the server should run on.
	Port int
}

// TmxConfig contains TMX import/export configuration.
type TmxConfig struct {
	// Path to import TMX files from
	ImportPath string `toml:"import_path"`
	// Path to export TMX files to
	ExportPath string `toml:"export_path"`
	// Whether exports remove all attributes unless a request says otherwise
	StripAttributes bool `toml:"strip_attributes"`
}

// Gets a connection string for this config.
func (d *DbConfig) ConnectionString() string {
	cStr := ""
	switch d.Driver {
	case DbDriverPostgresql:
		cStr = fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
	case DbDriverSqlite3:
		cStr = d.File
	}
	return cStr
}

// Creates a new Config with some default values.
func new() Config {
	c := Config{
		DB: DbConfig{
			Driver: DbDriverSqlite3,
			File:   filepath.FromSlash("./tmx-editor.db"),
			Port:   5432, // Postgres default port
		},
		Server: ServerConfig{
			Port: 8181,
		},
		TMX: TmxConfig{
			ImportPath: filepath.FromSlash("./tmx-in"),
			ExportPath: filepath.FromSlash("./tmx-out"),
		},
	}
	return c
}

// applyEnv overrides config values with any TMXEDIT_* environment variables that are set.
func (c *Config) applyEnv() error {
	if v := os.Getenv("TMXEDIT_DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("TMXEDIT_DB_FILE"); v != "" {
		c.DB.File = v
	}
	if v := os.Getenv("TMXEDIT_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("TMXEDIT_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid TMXEDIT_SERVER_PORT value %q", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("TMXEDIT_STRIP_ATTRIBUTES"); v != "" {
		strip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid TMXEDIT_STRIP_ATTRIBUTES value %q", v)
		}
		c.TMX.StripAttributes = strip
	}
	return nil
}

// Loads config from a TOML file, applies environment overrides and checks its validity.
// A .env file in the working directory is read first, if there is one.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return new(), fmt.Errorf("config: .env: %w", err)
	}

	conf := new()
	_, err := toml.DecodeFile(file, &conf)
	if err != nil {
		return conf, err
	}

	if err = conf.applyEnv(); err != nil {
		return conf, err
	}

	if err = conf.valid(); err != nil {
		return conf, err
	}

	return conf, nil
}
