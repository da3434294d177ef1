package config

import (
	"context"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/infra/ledger"
	"github.com/digione/xnatsync/pkg/usecase"
)

// Storage holds where staging folders and the ledger live
type Storage struct {
	DataDir    string
	LedgerFile string

	FirestoreProjectID  string
	FirestoreDatabaseID string
	FirestoreCollection string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Root directory of staging folders",
			Value:       usecase.DefaultDataDir,
			Destination: &c.DataDir,
			Sources:     cli.EnvVars("XNATSYNC_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:        "ledger-file",
			Usage:       "Path of the ledger file, used unless Firestore is configured",
			Value:       filepath.Join(usecase.DefaultDataDir, "processed_ids.txt"),
			Destination: &c.LedgerFile,
			Sources:     cli.EnvVars("XNATSYNC_LEDGER_FILE"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID of the Firestore ledger",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("XNATSYNC_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("XNATSYNC_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of processed labels",
			Value:       "processed_labels",
			Destination: &c.FirestoreCollection,
			Sources:     cli.EnvVars("XNATSYNC_FIRESTORE_COLLECTION"),
		},
	}
}

// NewLedger creates the Firestore ledger when a project is configured and the file ledger
// otherwise. The returned function releases the store.
func (c *Storage) NewLedger(ctx context.Context, fs afero.Fs, gcp *GoogleCloud) (interfaces.LedgerStore, func(), error) {
	if c.FirestoreProjectID == "" {
		return ledger.NewFile(fs, c.LedgerFile), func() {}, nil
	}

	store, err := ledger.NewFirestore(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID, c.FirestoreCollection, gcp.ClientOptions()...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create Firestore ledger")
	}
	return store, func() { _ = store.Close() }, nil
}
