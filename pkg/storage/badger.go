package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
)

const (
	dataPrefix = "b/"
	metaPrefix = "m/"
)

type badgerStore struct {
	db           *badger.DB
	publicBase   string
	cacheControl string
	logger       *slog.Logger
}

type badgerMeta struct {
	ContentType  string    `json:"content_type"`
	CacheControl string    `json:"cache_control"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// newBadger opens the embedded database. The database is closed by the
// shutdown hook registered in Start.
func newBadger(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", ProviderBadger)

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(badgerLogger{logger})
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	return &badgerStore{
		db:           db,
		publicBase:   cfg.PublicBaseURL,
		cacheControl: cfg.CacheControl,
		logger:       logger,
	}, nil
}

func (s *badgerStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("closing storage system")
		if err := s.db.Close(); err != nil {
			s.logger.Error("storage close failed", "error", err)
		}
	})

	return nil
}

func (s *badgerStore) Upload(ctx context.Context, key string, reader io.Reader, opts UploadOptions) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := json.Marshal(badgerMeta{
		ContentType:  opts.ContentType,
		CacheControl: cacheControl(opts, s.cacheControl),
		Size:         int64(len(data)),
		LastModified: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode blob metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if !opts.Overwrite {
			_, err := txn.Get([]byte(metaPrefix + key))
			if err == nil {
				return ErrExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		if err := txn.Set([]byte(dataPrefix+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(metaPrefix+key), meta)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrExists):
		return ErrExists
	default:
		return fmt.Errorf("upload blob %s: %w", key, s.classify(err))
	}
}

func (s *badgerStore) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		meta badgerMeta
		data []byte
	)

	err := s.db.View(func(txn *badger.Txn) error {
		if err := readMeta(txn, key, &meta); err != nil {
			return err
		}
		item, err := txn.Get([]byte(dataPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, s.classify(err))
	}

	return &Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   meta.ContentType,
		ContentLength: int64(len(data)),
		CacheControl:  meta.CacheControl,
	}, nil
}

func (s *badgerStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + key)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(dataPrefix + key)); err != nil {
			return err
		}
		return txn.Delete([]byte(metaPrefix + key))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, s.classify(err))
	}

	return nil
}

func (s *badgerStore) List(ctx context.Context, prefix, marker string, maxResults int32) (*ListResult, error) {
	if maxResults < 1 {
		return nil, ErrInvalidMaxResults
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Blobs: []BlobMeta{}}
	scan := []byte(metaPrefix + prefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scan
		it := txn.NewIterator(opts)
		defer it.Close()

		start := scan
		if marker != "" {
			start = []byte(metaPrefix + marker)
		}

		for it.Seek(start); it.ValidForPrefix(scan); it.Next() {
			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), metaPrefix)
			if key == marker {
				continue
			}

			if int32(len(result.Blobs)) == maxResults {
				result.NextMarker = result.Blobs[len(result.Blobs)-1].Key
				return nil
			}

			var meta badgerMeta
			if err := item.Value(func(v []byte) error {
				return json.Unmarshal(v, &meta)
			}); err != nil {
				return err
			}

			result.Blobs = append(result.Blobs, BlobMeta{
				Key:          key,
				ContentType:  meta.ContentType,
				Size:         meta.Size,
				LastModified: meta.LastModified,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", s.classify(err))
	}

	return result, nil
}

func (s *badgerStore) URL(key string) string {
	return publicURL(s.publicBase, key)
}

// classify maps badger failures onto storage sentinels. In-memory stores
// hold values in the memtable, so a blob above roughly 15% of
// MemTableSize fails the transaction with ErrTxnTooBig.
func (s *badgerStore) classify(err error) error {
	switch {
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, badger.ErrTxnTooBig):
		return fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	return err
}

func readMeta(txn *badger.Txn, key string, meta *badgerMeta) error {
	item, err := txn.Get([]byte(metaPrefix + key))
	if err != nil {
		return err
	}
	return item.Value(func(v []byte) error {
		return json.Unmarshal(v, meta)
	})
}

// badgerLogger routes badger's internal logging through slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
