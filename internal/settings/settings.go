package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "settings"

const (
	KeyCredential       = "credential"
	KeyShowLyrics       = "show_lyrics"
	KeyLaunchOnLogin    = "launch_on_login"
	KeyTruncationLength = "truncation_length"
	KeyHasOnboarded     = "has_onboarded"
)

const DefaultTruncationLength = 50

// lockTimeout bounds the wait for the file lock held by another process.
var lockTimeout = time.Second

var (
	ErrUnknownKey = errors.New("unknown setting")
	ErrLocked     = errors.New("settings are locked by a running lyricbar")
)

// Store persists the handful of user preferences in a bbolt file.
type Store struct {
	db   *bolt.DB
	path string
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: lockTimeout})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings bucket: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string, v any) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if data := b.Get([]byte(key)); data != nil {
			raw = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

func (s *Store) getBool(key string, fallback bool) bool {
	var v bool
	ok, err := s.get(key, &v)
	if err != nil || !ok {
		return fallback
	}
	return v
}

func (s *Store) Credential() string {
	var v string
	if ok, err := s.get(KeyCredential, &v); err != nil || !ok {
		return ""
	}
	return v
}

func (s *Store) SetCredential(value string) error {
	return s.put(KeyCredential, value)
}

func (s *Store) ShowLyrics() bool { return s.getBool(KeyShowLyrics, true) }

func (s *Store) SetShowLyrics(v bool) error { return s.put(KeyShowLyrics, v) }

func (s *Store) LaunchOnLogin() bool { return s.getBool(KeyLaunchOnLogin, false) }

func (s *Store) SetLaunchOnLogin(v bool) error { return s.put(KeyLaunchOnLogin, v) }

func (s *Store) HasOnboarded() bool { return s.getBool(KeyHasOnboarded, false) }

func (s *Store) SetHasOnboarded(v bool) error { return s.put(KeyHasOnboarded, v) }

func (s *Store) TruncationLength() int {
	var v int
	ok, err := s.get(KeyTruncationLength, &v)
	if err != nil || !ok || v <= 0 {
		return DefaultTruncationLength
	}
	return v
}

func (s *Store) SetTruncationLength(v int) error {
	if v <= 0 {
		return fmt.Errorf("truncation length must be positive, got %d", v)
	}
	return s.put(KeyTruncationLength, v)
}

// All returns every user-facing setting with defaults applied. The
// credential is reported by length only.
func (s *Store) All() map[string]string {
	return map[string]string{
		KeyCredential:       fmt.Sprintf("<%d chars>", len(s.Credential())),
		KeyShowLyrics:       fmt.Sprintf("%t", s.ShowLyrics()),
		KeyLaunchOnLogin:    fmt.Sprintf("%t", s.LaunchOnLogin()),
		KeyTruncationLength: fmt.Sprintf("%d", s.TruncationLength()),
		KeyHasOnboarded:     fmt.Sprintf("%t", s.HasOnboarded()),
	}
}

// Set parses value for one of the user-editable keys. The credential and
// onboarding flag are managed by the session bootstrap instead.
func (s *Store) Set(key, value string) error {
	switch key {
	case KeyShowLyrics, KeyLaunchOnLogin:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, err)
		}
		return s.put(key, v)
	case KeyTruncationLength:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects a number: %w", key, err)
		}
		return s.SetTruncationLength(v)
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}
