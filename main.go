/*
An editor for TMX (Translation Memory eXchange) files. It loads a translation memory, lets the
target text of each translation unit be edited over a JSON API and exports the result, optionally
with every attribute stripped. Edited documents are kept in a database so they survive restarts.

Various program settings are controlled by a TOML config file. By default, the program will look
for a file called 'tmx-editor.toml' in the current directory.

The program must be run with a 'command' argument to indicate what you would like it to do.
Available commands are:

  - import: Stores every TMX file in the tmx 'import_path' given in the config file.
  - export: Writes every stored document to the tmx 'export_path' given in the config file.
  - init-db: Creates or migrates the database tables.
  - serve: Starts an HTTP server providing a JSON API for editing a TMX document.
  - help: Prints usage instructions
*/
package main

import (
	"flag"
	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/exporter"
	"github.com/e-imamura/TMX-Editor/importer"
	"github.com/e-imamura/TMX-Editor/server"
	"os"
	"path/filepath"
)

var (
	configPath string
	verbose    bool
)

func init() {
	defaultConfigPath := filepath.FromSlash("./tmx-editor.toml")
	flag.StringVar(&configPath, "config", defaultConfigPath, "Full `path` and file name to the config file")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging")
}

// Converts os.Args to one of the cmd* constants.
func parseArgs(args []string) (command string) {
	if len(args) < 1 {
		return cmdMissing
	}

	for _, c := range availableCommands() {
		if args[0] == c {
			return c
		}
	}

	return cmdUnrecognised
}

func main() {
	flag.Parse()
	setupLogging(verbose)
	config, cfgErr := config.Load(configPath)
	var command = parseArgs(flag.Args())

	var commandFunc = CommandFunc(printMissingCommandUsage)
	switch command {
	case cmdUnrecognised:
		commandFunc = printUnrecognisedCommandUsage(flag.Arg(0))
	case cmdHelp:
		commandFunc = CommandFunc(printUsage)
	case cmdImport:
		commandFunc = CommandFunc(importer.Import)
	case cmdExport:
		commandFunc = CommandFunc(exporter.Export)
	case cmdInitDb:
		commandFunc = CommandFunc(initDb)
	case cmdServe:
		commandFunc = CommandFunc(server.Serve)
	}

	// Invalid config only matters for commands that do real work
	if command != cmdUnrecognised && command != cmdMissing && command != cmdHelp {
		checkFatal(cfgErr)
	}

	commandFunc.Run(config)

	if command == cmdUnrecognised || command == cmdMissing {
		os.Exit(2)
	}
}
