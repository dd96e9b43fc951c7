//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/wxdata --repository.default-branch master --repository.path /

// Package wxdata catalogs satellite and climate data files by product and
// time coverage.
//
// The Client type wraps an index.Index with the lifecycle a long running
// program needs: one shared scratch area for archive extraction, catalog
// loading at start, periodic rescans of the scanned trees, and event hooks
// for products that appear or disappear between scans.
//
// Example usage:
//
//	// Open the catalog stored next to the data
//	c, err := wxdata.New(wxdata.WithCatalog("/data/cloudsat/wxdata.index.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	// List the 2B-GEOPROF granules of one day
//	day := time.Date(2008, 2, 1, 0, 0, 0, 0, time.UTC)
//	files, err := c.Index().Files(builtin.CloudSat2bGeoProf, index.Between(day, day.Add(24*time.Hour)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range files {
//	    fmt.Println(f.Path, f.StartTime, f.EndTime)
//	}
//
//	// Scan another tree and keep the result
//	if _, err := c.Generate(ctx, "/data/dardar"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := c.Store(ctx, "/data/wxdata.index.yaml"); err != nil {
//	    log.Fatal(err)
//	}
package wxdata
