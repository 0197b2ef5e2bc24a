package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultRetention is the number of entries kept per channel.
const DefaultRetention = 500

// FileStorage implements activity.Repository using file system
type FileStorage struct {
	basePath  string
	retention int
	mu        sync.RWMutex
}

// NewFileStorage creates a new file-based activity repository
func NewFileStorage(basePath string, retention int) (Repository, error) {
	activityPath := filepath.Join(basePath, "activity")
	if err := os.MkdirAll(activityPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create activity directory").Wrap(err)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &FileStorage{basePath: activityPath, retention: retention}, nil
}

func (s *FileStorage) SaveActivity(activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Entries live in channel-specific directories; names sort by time.
	dir := filepath.Join(s.basePath, channelDir(activity.ChannelID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return oops.With("activity_dir", dir, "context", "failed to create activity directory").Wrap(err)
	}

	name := fmt.Sprintf("%020d-%s-%s.json", activity.At.UnixNano(), filepath.Base(activity.SourceID), activity.Kind)
	data, err := json.MarshalIndent(activity, "", "  ")
	if err != nil {
		return oops.With("channel_id", activity.ChannelID, "source_id", activity.SourceID, "context", "failed to marshal activity").Wrap(err)
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return oops.With("channel_id", activity.ChannelID, "source_id", activity.SourceID, "context", "failed to write activity").Wrap(err)
	}

	return s.prune(dir)
}

// prune removes the oldest entries beyond the retention limit.
func (s *FileStorage) prune(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return oops.With("activity_dir", dir, "context", "failed to read activity directory").Wrap(err)
	}

	files := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && filepath.Ext(e.Name()) == ".json"
	})
	for i := 0; i < len(files)-s.retention; i++ {
		if err := os.Remove(filepath.Join(dir, files[i].Name())); err != nil && !os.IsNotExist(err) {
			return oops.With("activity_dir", dir, "context", "failed to prune activity").Wrap(err)
		}
	}
	return nil
}

func (s *FileStorage) GetRecent(channelID string, limit int) ([]*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readChannel(filepath.Join(s.basePath, channelDir(channelID)), limit)
}

func (s *FileStorage) GetAll(limit int) ([]*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("base_path", s.basePath, "context", "failed to read activity directory").Wrap(err)
	}

	var all []*domain.Activity
	for _, ch := range channels {
		if !ch.IsDir() {
			continue
		}
		activities, err := s.readChannel(filepath.Join(s.basePath, ch.Name()), limit)
		if err != nil {
			return nil, err
		}
		all = append(all, activities...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].At.After(all[j].At)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *FileStorage) readChannel(dir string, limit int) ([]*domain.Activity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Activity{}, nil
		}
		return nil, oops.With("activity_dir", dir, "context", "failed to read activity directory").Wrap(err)
	}

	var activities []*domain.Activity
	for i := len(entries) - 1; i >= 0 && (limit <= 0 || len(activities) < limit); i-- {
		entry := entries[i]
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		var activity domain.Activity
		if err := json.Unmarshal(data, &activity); err != nil {
			continue
		}

		activities = append(activities, &activity)
	}

	return activities, nil
}

// channelDir maps a channel id to a single directory name below basePath.
func channelDir(channelID string) string {
	name := filepath.Base(channelID)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "unknown"
	}
	return name
}
