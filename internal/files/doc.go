// Package files finds workbooks on disk and writes JSON reports.
//
// Discovery lists the Excel workbooks of a directory and pairs the workbooks
// of a source and a destination directory by name, which is how compare-dir
// decides what to reconcile. Writer stores reports atomically after checking
// that the target directory is writable.
//
// Example usage:
//
//	discovery := files.NewDiscovery(logger)
//	pairing, err := discovery.PairWorkbooks("exports/source", "exports/dest")
//	if err != nil {
//	    return err
//	}
//	for _, pair := range pairing.Pairs {
//	    report, err := svc.Validate(ctx, services.ValidationRequest{
//	        ReportName: pair.Name,
//	        SourcePath: pair.Source.Path,
//	        DestPath:   pair.Dest.Path,
//	    })
//	    ...
//	    err = files.NewWriter(nil, logger).WriteJSON(filepath.Join(out, pair.Name+".json"), report)
//	}
package files
