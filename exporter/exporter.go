/*
Package exporter writes every document in the library to the configured export directory.
*/
package exporter

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

// Run exports every stored document into dir, logging each file as it is written.
func Run(ds *datastore.DataStore, dir string, strip bool) (count int, err error) {
	results := make(chan string, 100)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for path := range results {
			logrus.WithField("file", path).WithField("strip", strip).Info("exported")
		}
	}()

	count, err = ds.ExportAll(dir, strip, results)
	close(results)
	<-done

	return count, err
}

func Export(c config.Config) {
	start := time.Now()

	ds, err := datastore.Connect(c.DB)
	checkFatal(err)
	defer ds.Close()

	count, err := Run(ds, c.TMX.ExportPath, c.TMX.StripAttributes)
	checkFatal(err)

	elapsed := time.Since(start).Seconds()
	fmt.Printf("Exported %v files in %fs\n\n", count, elapsed)

	fmt.Fprintln(os.Stderr, ds.Stats)
}
