package storage

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
)

// The store holds exactly two logical entries, written and cleared together:
// the file map under keyContent and the options under keyOptions. keyMeta
// records the writing format so an incompatible store is discarded instead
// of half-read.
var (
	bucketName = []byte("carrel")
	keyContent = []byte("content")
	keyOptions = []byte("options")
	keyMeta    = []byte("meta")
)

// storeFormat is bumped when the serialized layout changes incompatibly.
const storeFormat = 1

// quotaWarnRatio is the fraction of the quota above which a save logs a
// proactive warning while still being attempted.
const quotaWarnRatio = 0.8

type storeMeta struct {
	Format  int    `json:"format"`
	Version string `json:"version"`
}

// fileRecord is the persisted form of one package file. A slice of records
// (rather than a map) keeps the archive entry order, which the lookup
// fallback depends on.
type fileRecord struct {
	Path string
	Data []byte
}

// Client is the bbolt-backed durable persistence layer for the content
// store. The file map is gob-encoded and zstd-compressed before writing.
type Client struct {
	db    *bolt.DB
	quota int64 // max serialized (uncompressed) size in bytes; 0 = unlimited
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// Option configures a Client.
type Option func(*Client)

// WithQuota caps the serialized size of a saved package. A save above the
// cap fails with types.ErrTagQuotaExceeded without touching the store.
func WithQuota(quota int64) Option {
	return func(c *Client) {
		c.quota = quota
	}
}

// New opens (or creates) the database at path.
func New(path string, opts ...Option) (*Client, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open content database",
			goerr.V("path", path),
		)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create zstd decoder")
	}

	c := &Client{db: db, enc: enc, dec: dec}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the database and codec resources.
func (c *Client) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.db.Close()
}

// Save replaces the persisted package in a single transaction. The size
// check runs against the serialized-but-uncompressed payload before any
// write: above the quota the save is rejected with the quota tag, above 80%
// of the quota a warning is logged and the save proceeds.
func (c *Client) Save(ctx context.Context, files *model.FileMap, opts model.ContentOptions) error {
	logger := ctxlog.From(ctx)

	raw, err := encodeFiles(files)
	if err != nil {
		return goerr.Wrap(err, "failed to serialize file map")
	}

	if c.quota > 0 {
		size := int64(len(raw))
		if size > c.quota {
			return goerr.New("package exceeds storage quota",
				goerr.T(types.ErrTagQuotaExceeded),
				goerr.V("size_bytes", size),
				goerr.V("quota_bytes", c.quota),
			)
		}
		if float64(size) > float64(c.quota)*quotaWarnRatio {
			logger.Warn("package is close to the storage quota",
				"size_bytes", size,
				"quota_bytes", c.quota,
			)
		}
	}

	content := c.enc.EncodeAll(raw, nil)

	optData, err := json.Marshal(opts)
	if err != nil {
		return goerr.Wrap(err, "failed to serialize options")
	}
	metaData, err := json.Marshal(storeMeta{Format: storeFormat, Version: types.Version})
	if err != nil {
		return goerr.Wrap(err, "failed to serialize store metadata")
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(bucketName)
		if err != nil {
			return err
		}
		if err := b.Put(keyContent, content); err != nil {
			return err
		}
		if err := b.Put(keyOptions, optData); err != nil {
			return err
		}
		return b.Put(keyMeta, metaData)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to write content database")
	}

	logger.Debug("package persisted",
		"file_count", files.Len(),
		"raw_bytes", len(raw),
		"stored_bytes", len(content),
	)
	return nil
}

// Load returns the persisted package, or (nil, nil) when there is none.
// Every failure path degrades to "nothing restored" with a log entry; Load
// never blocks startup on a broken store.
func (c *Client) Load(ctx context.Context) (*model.FileMap, *model.ContentOptions) {
	logger := ctxlog.From(ctx)

	var content, optData, metaData []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		content = bytes.Clone(b.Get(keyContent))
		optData = bytes.Clone(b.Get(keyOptions))
		metaData = bytes.Clone(b.Get(keyMeta))
		return nil
	})
	if err != nil {
		logger.Warn("failed to read content database; starting empty", "error", err)
		return nil, nil
	}
	if content == nil {
		return nil, nil
	}

	var meta storeMeta
	if err := json.Unmarshal(metaData, &meta); err != nil || meta.Format != storeFormat {
		logger.Info("discarding persisted package from an incompatible store format",
			"found_format", meta.Format,
			"want_format", storeFormat,
		)
		return nil, nil
	}

	raw, err := c.dec.DecodeAll(content, nil)
	if err != nil {
		logger.Warn("failed to decompress persisted package; starting empty", "error", err)
		return nil, nil
	}

	files, err := decodeFiles(raw)
	if err != nil {
		logger.Warn("failed to decode persisted package; starting empty", "error", err)
		return nil, nil
	}

	options := model.DefaultContentOptions()
	if optData != nil {
		if err := json.Unmarshal(optData, &options); err != nil {
			logger.Warn("failed to decode persisted options; using defaults", "error", err)
			options = model.DefaultContentOptions()
		}
	}

	return files, &options
}

// Clear empties the store. Best-effort: callers log failures and move on.
func (c *Client) Clear(ctx context.Context) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clear content database")
	}
	return nil
}

func encodeFiles(files *model.FileMap) ([]byte, error) {
	records := make([]fileRecord, 0, files.Len())
	for _, p := range files.Paths() {
		data, _ := files.Get(p)
		records = append(records, fileRecord{Path: p, Data: data})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFiles(raw []byte) (*model.FileMap, error) {
	var records []fileRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&records); err != nil {
		return nil, err
	}

	files := model.NewFileMap()
	for _, rec := range records {
		files.Set(rec.Path, rec.Data)
	}
	return files, nil
}
