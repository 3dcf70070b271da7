// Package registry loads the JSON registries the bot is configured from
// (models, profiles, banned users, filler phrases) and owns the mutable
// active-model/active-profile selection.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"sync"
)

// ErrNotFound is returned when switching to a model or profile name that is
// not in the registry. The previous selection stays in effect.
var ErrNotFound = errors.New("not found")

// ModelConfig describes one configured backend. A non-empty Endpoint routes
// requests to the generic HTTP backend; an empty one selects the vendor SDK.
type ModelConfig struct {
	Model     string `json:"model"`
	Endpoint  string `json:"endpoint,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

type Profile struct {
	BehaviorPrompt string `json:"behavior_prompt"`
}

type Store struct {
	mu            sync.RWMutex
	models        map[string]ModelConfig
	profiles      map[string]Profile
	banned        map[string]struct{}
	phrases       []string
	activeModel   string
	activeProfile string
}

// Load reads all registries. Models and profiles are required and must
// contain the active names; banned users and phrases are best-effort and
// default to empty.
func Load(modelsPath, profilesPath, bannedPath, phrasesPath, activeModel, activeProfile string) (*Store, error) {
	s := &Store{
		banned:        map[string]struct{}{},
		activeModel:   activeModel,
		activeProfile: activeProfile,
	}

	if err := readJSONFile(modelsPath, &s.models); err != nil {
		return nil, fmt.Errorf("loading models: %w", err)
	}
	if _, ok := s.models[activeModel]; !ok {
		return nil, fmt.Errorf("active model %q not present in %s", activeModel, modelsPath)
	}

	if err := readJSONFile(profilesPath, &s.profiles); err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	if _, ok := s.profiles[activeProfile]; !ok {
		return nil, fmt.Errorf("active profile %q not present in %s", activeProfile, profilesPath)
	}

	var bannedIDs []string
	if err := readJSONFile(bannedPath, &bannedIDs); err != nil {
		log.Printf("No banned users loaded from %q: %v", bannedPath, err)
	}
	for _, id := range bannedIDs {
		s.banned[id] = struct{}{}
	}

	if err := readJSONFile(phrasesPath, &s.phrases); err != nil {
		log.Printf("No phrases loaded from %q: %v", phrasesPath, err)
	}

	return s, nil
}

func readJSONFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// ActiveModel returns the name and config of the current selection.
func (s *Store) ActiveModel() (string, ModelConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeModel, s.models[s.activeModel]
}

func (s *Store) ActiveProfile() (string, Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProfile, s.profiles[s.activeProfile]
}

func (s *Store) SetActiveModel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[name]; !ok {
		return fmt.Errorf("model %q: %w", name, ErrNotFound)
	}
	s.activeModel = name
	return nil
}

func (s *Store) SetActiveProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	s.activeProfile = name
	return nil
}

// ModelNames lists configured model names in sorted order.
func (s *Store) ModelNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) IsBanned(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[userID]
	return ok
}

// RandomPhrase picks one filler phrase, or returns fallback when none are
// configured.
func (s *Store) RandomPhrase(fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.phrases) == 0 {
		return fallback
	}
	return s.phrases[rand.Intn(len(s.phrases))]
}
