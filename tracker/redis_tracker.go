package tracker

import (
	"fmt"

	"github.com/go-redis/redis/v7"
	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/service"
)

// RedisTracker keeps the upload log in a Redis hash keyed by content
// hash, one row per photo. Crews that share one log across laptops use
// this backend instead of the CSV file.
type RedisTracker struct {
	client *redis.Client
	key    string
}

// NewRedisTracker connects to Redis at the given address and pings it
// once, so a bad address fails at startup instead of mid-run.
func NewRedisTracker(address, password string, db int) (*RedisTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, fmt.Errorf("Cannot reach Redis at %s: %v", address, err)
	}
	return &RedisTracker{
		client: client,
		key:    constants.RedisTrackerKey,
	}, nil
}

func (t *RedisTracker) HasBeenUploaded(fileHash string) (bool, error) {
	entry, err := t.Entry(fileHash)
	if err != nil {
		return false, err
	}
	return entry != nil && entry.WasUploaded(), nil
}

func (t *RedisTracker) Entry(fileHash string) (*service.UploadLogEntry, error) {
	data, err := t.client.HGet(t.key, fileHash).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Entry (%s): %v", fileHash, err)
	}
	return service.UploadLogEntryFromJSON(data)
}

// Append stores the row under its content hash. Redis holds one row
// per hash, so when a later run sees a photo that already has an ok
// row, the ok row stays and only its updatetime moves forward.
func (t *RedisTracker) Append(entry *service.UploadLogEntry) error {
	existing, err := t.Entry(entry.FileHash)
	if err != nil {
		return err
	}
	if existing != nil && existing.WasUploaded() && !entry.WasUploaded() {
		existing.UpdateTime = entry.UpdateTime
		entry = existing
	}
	jsonData, err := entry.ToJSON()
	if err != nil {
		return err
	}
	if _, err = t.client.HSet(t.key, entry.FileHash, jsonData).Result(); err != nil {
		return fmt.Errorf("Append (%s): %v", entry.FileHash, err)
	}
	return nil
}

func (t *RedisTracker) Counts() (int, int, error) {
	rows, err := t.client.HGetAll(t.key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("Counts: %v", err)
	}
	uploaded, failed := 0, 0
	for _, data := range rows {
		entry, err := service.UploadLogEntryFromJSON(data)
		if err != nil {
			return 0, 0, err
		}
		if entry.WasUploaded() {
			uploaded++
		} else if entry.Status == constants.StatusFailed {
			failed++
		}
	}
	return uploaded, failed, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
