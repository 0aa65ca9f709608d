package config

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// AssetStore serves the current asset set and hot-swaps it when a file in
// the assets directory changes. Readers always see a complete, validated
// set; a broken edit keeps the previous set in place.
type AssetStore struct {
	mu     sync.RWMutex
	dir    string
	assets *Assets
}

func NewAssetStore(dir string) (*AssetStore, error) {
	assets, err := LoadAssets(dir)
	if err != nil {
		return nil, err
	}
	return &AssetStore{dir: dir, assets: assets}, nil
}

func (s *AssetStore) Get() *Assets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assets
}

// Watch reloads assets on filesystem changes until the watcher fails.
// Intended to run as a goroutine.
func (s *AssetStore) Watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[WARN] Asset watcher unavailable: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		log.Printf("[WARN] Cannot watch assets dir %s: %v", s.dir, err)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			assets, err := LoadAssets(s.dir)
			if err != nil {
				log.Printf("[WARN] Asset reload rejected: %v", err)
				continue
			}
			s.mu.Lock()
			s.assets = assets
			s.mu.Unlock()
			log.Printf("[INFO] Assets reloaded after change to %s", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] Asset watcher error: %v", err)
		}
	}
}
