package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration. A missing bucket, access key,
// or passphrase disables backups.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	Prefix        string
	Interval      time.Duration
	RetentionDays int
}

const (
	defaultInterval      = 24 * time.Hour
	defaultRetentionDays = 30
	keyTimeFormat        = "2006-01-02T150405Z"
)

// Manager periodically snapshots the SQLite database, encrypts the copy,
// and uploads it to S3-compatible storage.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger

	lastBackup time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It is disabled (Enabled returns
// false) unless the S3 credentials and passphrase are all set.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = defaultRetentionDays
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "backups"
	}

	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
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

// Enabled reports whether the manager has everything it needs to run.
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// LastBackup returns the completion time of the most recent successful
// backup, or the zero time if none has run yet.
func (m *Manager) LastBackup() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBackup
}

// Start begins the scheduled backup loop. No-op when disabled.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("backups disabled")
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
					continue
				}
				if err := m.Cleanup(ctx); err != nil {
					m.logger.Error("backup cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for it to drain.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}
}

// RunNow snapshots, encrypts, and uploads the database immediately,
// returning the S3 key of the uploaded object.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	if !m.Enabled() {
		return "", fmt.Errorf("backup not configured")
	}

	// Checkpoint WAL so the main file is complete before copying.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("wal checkpoint: %w", err)
	}

	plaintext, err := os.ReadFile(m.cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("read database: %w", err)
	}

	encrypted, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	key := path.Join(m.cfg.Prefix, fmt.Sprintf("carshare-%s.db.enc", time.Now().UTC().Format(keyTimeFormat)))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(encrypted),
		ContentLength: aws.Int64(int64(len(encrypted))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	m.mu.Lock()
	m.lastBackup = time.Now().UTC()
	m.mu.Unlock()

	m.logger.Info("backup uploaded", "key", key, "size", len(encrypted))
	return key, nil
}

// Fetch downloads and decrypts a backup object.
func (m *Manager) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("backup not configured")
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	encrypted, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read backup object: %w", err)
	}

	plaintext, err := Decrypt(encrypted, m.cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt backup: %w", err)
	}
	return plaintext, nil
}

// Cleanup deletes backup objects whose embedded timestamps fall outside the
// retention window. Objects that do not match the key format are left alone.
func (m *Manager) Cleanup(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -m.cfg.RetentionDays)

	var continuation *string
	for {
		page, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(m.cfg.S3.Bucket),
			Prefix:            aws.String(m.cfg.Prefix + "/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return fmt.Errorf("list backups: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			ts, ok := parseBackupKey(key)
			if !ok || !ts.Before(cutoff) {
				continue
			}
			if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(m.cfg.S3.Bucket),
				Key:    aws.String(key),
			}); err != nil {
				m.logger.Error("delete expired backup", "key", key, "error", err)
			}
		}

		if page.NextContinuationToken == nil {
			break
		}
		continuation = page.NextContinuationToken
	}
	return nil
}

// parseBackupKey extracts the timestamp from a key produced by RunNow.
func parseBackupKey(key string) (time.Time, bool) {
	base := path.Base(key)
	const prefix, suffix = "carshare-", ".db.enc"
	if len(base) <= len(prefix)+len(suffix) || base[:len(prefix)] != prefix || base[len(base)-len(suffix):] != suffix {
		return time.Time{}, false
	}
	ts, err := time.Parse(keyTimeFormat, base[len(prefix):len(base)-len(suffix)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
