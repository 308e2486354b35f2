package sim

import (
	"log"
	"path/filepath"

	"github.com/milk9111/critters/creatures"
	"github.com/milk9111/critters/prefabs"
)

// WatchPrefabs starts watching a directory of prefab YAML; changed specs
// recompile and hot-swap into the running behavior definitions on the
// next Step.
func (s *Sim) WatchPrefabs(dir string) error {
	w, err := prefabs.NewWatcher(dir)
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// Close stops the prefab watcher, if one is running.
func (s *Sim) Close() error {
	if s.watcher == nil {
		return nil
	}
	w := s.watcher
	s.watcher = nil
	return w.Close()
}

func (s *Sim) drainWatcher() {
	if s.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-s.watcher.Events:
			if !ok {
				s.watcher = nil
				return
			}
			s.reloadPrefab(path)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.watcher = nil
				return
			}
			log.Printf("sim: prefab watcher error: %v", err)
		default:
			return
		}
	}
}

// reloadPrefab reloads one spec file, recompiles its archetype, and
// hot-swaps the definition. A broken edit logs and keeps the old
// definition running.
func (s *Sim) reloadPrefab(path string) {
	switch filepath.Base(path) {
	case "critter.yaml":
		spec, err := prefabs.LoadCritterSpec()
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		def, err := creatures.CritterDef(spec)
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		s.critter = spec
		s.rt.Reload(def)
	case "worm.yaml":
		spec, err := prefabs.LoadWormSpec()
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		def, err := creatures.WormDef(spec)
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		s.worm = spec
		s.rt.Reload(def)
	case "waygate.yaml":
		spec, err := prefabs.LoadWaygateSpec()
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		def, err := creatures.WaygateDef(spec)
		if err != nil {
			log.Printf("sim: reload %s: %v", path, err)
			return
		}
		s.waygate = spec
		s.rt.Reload(def)
	default:
		log.Printf("sim: ignoring change to %s", path)
	}
}
