package main

import (
	"flag"
	"fmt"
	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/datastore"
	"github.com/sirupsen/logrus"
	"os"
	"strings"
)

type Command interface {
	Run(config.Config)
}

type CommandFunc func(config.Config)

func (f CommandFunc) Run(c config.Config) {
	f(c)
}

const (
	cmdMissing      = "missing"
	cmdUnrecognised = "unrecognised"
	cmdHelp         = "help"
	cmdImport       = "import"
	cmdExport       = "export"
	cmdInitDb       = "init-db"
	cmdServe        = "serve"
)

// Gets list of available commands
func availableCommands() []string {
	return []string{cmdHelp, cmdImport, cmdExport, cmdInitDb, cmdServe}
}

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// initDb initializes the database with all necessary tables.
func initDb(c config.Config) {
	ds, err := datastore.Connect(c.DB)
	checkFatal(err)
	defer ds.Close()

	dbVersion, err := ds.MigrateUp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		checkFatal(fmt.Errorf("could not complete database migration, last applied version was %v", dbVersion))
	}

	fmt.Println("Successfully migrated the database to version", dbVersion)
}

// Prints a normal usage message.
func printUsage(c config.Config) {
	fmt.Fprintf(os.Stderr, "Usage: %v [flags] <%v>\n\n", os.Args[0], strings.Join(availableCommands(), "|"))
	flag.PrintDefaults()
}

// Prints a usage message indicating that a command must be given.
func printMissingCommandUsage(c config.Config) {
	fmt.Fprintf(os.Stderr, "No command given. Command can be one of: %v\n\n", strings.Join(availableCommands(), ", "))
	printUsage(c)
}

// Prints a usage message indicating that the given command was not recognised.
func printUnrecognisedCommandUsage(cmd string) CommandFunc {
	return func(c config.Config) {
		fmt.Fprintf(os.Stderr, "Command '%v' not recognised. Command must be one of: %v\n\n", cmd, strings.Join(availableCommands(), ", "))
		printUsage(c)
	}
}
