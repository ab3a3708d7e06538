package bolt

import (
	"context"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
)

// indexesBucket is the root bucket; each tenant's batch index is a nested
// bucket keyed by tenant id.
var indexesBucket = []byte("indexesv1")

// Client is a boltDB-backed implementation of hri.BatchStore.
type Client struct {
	Path string

	db  *bolt.DB
	log *zap.Logger
}

// NewClient returns a client for the bolt data store at path.
func NewClient(path string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{Path: path, log: log}
}

// DB returns the client's DB.
func (c *Client) DB() *bolt.DB {
	return c.db
}

// Open opens or creates the boltDB file and the root bucket.
func (c *Client) Open(ctx context.Context) error {
	if _, err := os.Stat(c.Path); err != nil && !os.IsNotExist(err) {
		return err
	}

	db, err := bolt.Open(c.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("unable to open boltdb at %q; is another instance running? %v", c.Path, err)
	}
	c.db = db

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexesBucket)
		return err
	}); err != nil {
		return fmt.Errorf("unable to initialize boltdb: %v", err)
	}

	c.log.Info("resources opened", zap.String("path", c.Path))
	return nil
}

// Close closes the underlying database.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Ping verifies the store is open and readable.
func (c *Client) Ping(ctx context.Context) error {
	if c.db == nil {
		return &errors.Error{
			Code: errors.EUnavailable,
			Msg:  "document store is not open",
		}
	}
	err := c.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(indexesBucket) == nil {
			return fmt.Errorf("root bucket %q missing", indexesBucket)
		}
		return nil
	})
	if err != nil {
		return &errors.Error{
			Code: errors.EUnavailable,
			Msg:  "document store is unreachable",
			Err:  err,
		}
	}
	return nil
}
