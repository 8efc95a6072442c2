// Package backup takes encrypted snapshots of the restock database and
// uploads them to S3-compatible storage. Snapshots are optional and disabled
// unless a bucket is configured.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds snapshot configuration.
type Config struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
	DBPath     string
	Interval   time.Duration
}

// Snapshotter periodically uploads an encrypted copy of the database.
type Snapshotter struct {
	mu     sync.RWMutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSnapshotter creates a snapshotter. It is disabled (Enabled returns
// false) when no bucket or passphrase is configured.
func NewSnapshotter(cfg Config, db *sql.DB, logger *slog.Logger) *Snapshotter {
	s := &Snapshotter{cfg: cfg, db: db, logger: logger}
	if s.configured() {
		s.client = newS3Client(cfg)
	}
	return s
}

func (s *Snapshotter) configured() bool {
	return s.cfg.Bucket != "" && s.cfg.Passphrase != "" && s.cfg.AccessKey != "" && s.cfg.SecretKey != ""
}

// Enabled reports whether snapshots will run.
func (s *Snapshotter) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the periodic snapshot loop.
func (s *Snapshotter) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	interval := s.cfg.Interval
	s.mu.Unlock()

	if interval <= 0 {
		interval = 24 * time.Hour
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RunNow(ctx); err != nil {
					s.logger.Error("scheduled snapshot failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the snapshot loop.
func (s *Snapshotter) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunNow takes one snapshot: checkpoint the WAL, copy the database file,
// encrypt the copy, and upload it. Transient upload failures are retried
// with exponential backoff.
func (s *Snapshotter) RunNow(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	cfg := s.cfg
	s.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("snapshots not configured")
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}

	plaintext, err := os.ReadFile(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("read database: %w", err)
	}

	sealed, err := Encrypt(plaintext, cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := filepath.ToSlash(filepath.Join("snapshots", fmt.Sprintf("restock-%s.db.enc", time.Now().UTC().Format("2006-01-02T150405Z"))))

	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(cfg.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(sealed),
			ContentLength: aws.Int64(int64(len(sealed))),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	s.logger.Info("snapshot uploaded", "key", key, "bytes", len(sealed))
	return nil
}
