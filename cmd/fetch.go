package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/dataset"
	"github.com/findmydaycare/daycare-server/pkg/ckan"
)

var fetchResourceID string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the latest licensed child-care dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		client := ckan.NewClient(cfg.CKAN.BaseURL)
		path, err := fetchSnapshot(ctx, client, cfg.CKAN.PackageID, fetchResourceID, cfg.Data.Dir, time.Now())
		if err != nil {
			return err
		}

		zap.L().Info("snapshot fetched", zap.String("path", path))
		return nil
	},
}

// fetchSnapshot downloads one datastore dump into the data dir, named with
// the fetch date. The file is written to a temp name first so a failed
// download never shadows an older good snapshot.
func fetchSnapshot(ctx context.Context, client *ckan.Client, packageID, resourceID, dataDir string, now time.Time) (string, error) {
	if resourceID == "" {
		pkg, err := client.ShowPackage(ctx, packageID)
		if err != nil {
			return "", err
		}
		resourceID = pickResource(pkg)
		if resourceID == "" {
			return "", eris.Errorf("fetch: package %q has no datastore-active resource", packageID)
		}
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetch: create data dir")
	}

	final := filepath.Join(dataDir, dataset.SnapshotPrefix+now.Format("20060102")+".csv")
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create snapshot file")
	}

	if err := client.DatastoreDump(ctx, resourceID, f); err != nil {
		f.Close()          //nolint:errcheck
		_ = os.Remove(tmp) //nolint:errcheck
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", eris.Wrap(err, "fetch: close snapshot file")
	}

	if err := os.Rename(tmp, final); err != nil {
		return "", eris.Wrap(err, "fetch: finalize snapshot file")
	}
	return final, nil
}

// pickResource selects the first datastore-active CSV resource, falling back
// to any datastore-active one.
func pickResource(pkg *ckan.Package) string {
	for _, r := range pkg.Resources {
		if r.DatastoreActive && strings.EqualFold(r.Format, "CSV") {
			return r.ID
		}
	}
	for _, r := range pkg.Resources {
		if r.DatastoreActive {
			return r.ID
		}
	}
	return ""
}

func init() {
	fetchCmd.Flags().StringVar(&fetchResourceID, "resource", "", "CKAN resource ID (default: first datastore-active resource)")
	rootCmd.AddCommand(fetchCmd)
}
