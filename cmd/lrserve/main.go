/*
Lrserve starts the grammarlab HTTP API server.

It reads a TOML configuration file, opens (creating if necessary) its SQLite
datastore, and serves the API under /api/v1 until terminated.

Usage:

	lrserve [flags]

The flags are:

	-v, --version
		Give the current version of grammarlab and then exit.

	-c, --config FILE
		Use the provided TOML config file. Defaults to "grammarlab.toml" in
		the current working directory; if that file does not exist, built-in
		defaults are used.
*/
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dekarrin/grammarlab/internal/config"
	"github.com/dekarrin/grammarlab/internal/version"
	"github.com/dekarrin/grammarlab/server/api"
	"github.com/dekarrin/grammarlab/server/dao/sqlite"
	"github.com/dekarrin/grammarlab/server/service"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConfigError indicates an unsuccessful program execution due to a
	// problem loading the config file.
	ExitConfigError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing persistence or the server.
	ExitInitError

	// ExitServeError indicates the server exited due to an error while
	// serving requests.
	ExitServeError
)

var (
	returnCode int     = ExitSuccess
	flagVersion *bool  = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile  *string = pflag.StringP("config", "c", "grammarlab.toml", "The TOML config file to load")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	path := *configFile
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConfigError
		return
	}

	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not create storage directory: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	store, err := sqlite.NewDatastore(cfg.StorageDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not open datastore: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer store.Close()

	a := api.API{
		Backend:     service.Service{DB: store},
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      []byte(cfg.JWTSecret),
	}

	router := http.NewServeMux()
	router.Handle(api.PathPrefix+"/", http.StripPrefix(api.PathPrefix, a.Router()))

	fmt.Printf("grammarlab %s listening on %s\n", version.Current, cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, router); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitServeError
		return
	}
}
