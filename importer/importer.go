/*
Package importer loads every TMX file in the configured import directory into the document
library.
*/
package importer

import (
	"fmt"
	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/datastore"
	"github.com/sirupsen/logrus"
	"os"
	"time"
)

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Run imports the TMX files in dir into ds, logging each document as it is stored.
func Run(ds *datastore.DataStore, dir string) (count int, err error) {
	results := make(chan string, 100)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for name := range results {
			logrus.WithField("document", name).Info("imported")
		}
	}()

	count, err = ds.ImportDir(dir, results)
	close(results)
	<-done

	return count, err
}

func Import(c config.Config) {
	start := time.Now()

	ds, err := datastore.Connect(c.DB)
	checkFatal(err)
	defer ds.Close()

	count, err := Run(ds, c.TMX.ImportPath)
	checkFatal(err)

	elapsed := time.Since(start).Seconds()
	fmt.Printf("Imported %v files in %fs\n\n", count, elapsed)

	fmt.Fprintln(os.Stderr, ds.Stats)
}
