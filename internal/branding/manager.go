package branding

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bigbatmanorg/pasreporter/pkg/config"
)

const metadataExt = ".json"

// Info records a running branding server instance.
type Info struct {
	Name      string    `json:"name"`
	Port      int       `json:"port"`
	PID       int       `json:"pid"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// Save writes a server record to disk, overwriting any existing record for
// the name.
func Save(info Info) error {
	if info.Name == "" {
		return errors.New("server info missing name")
	}
	if info.Port <= 0 {
		return fmt.Errorf("server %s missing port", info.Name)
	}

	path, err := metadataPath(info.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal server metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write server metadata %s: %w", info.Name, err)
	}
	return nil
}

// Remove deletes the record for a server name.
func Remove(name string) error {
	if name == "" {
		return errors.New("server name required for removal")
	}
	path, err := metadataPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove server metadata %s: %w", name, err)
	}
	return nil
}

// Load retrieves the record for a server name. Returns nil when no record
// exists.
func Load(name string) (*Info, error) {
	if name == "" {
		return nil, errors.New("server name required")
	}
	path, err := metadataPath(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- path constructed from the home directory
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read server metadata %s: %w", name, err)
	}

	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse server metadata %s: %w", name, err)
	}
	return &info, nil
}

// List returns all server records sorted by name.
func List() ([]Info, error) {
	dir, err := config.GetServersDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read server directory: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != metadataExt {
			continue
		}
		name := entry.Name()[:len(entry.Name())-len(metadataExt)]
		info, err := Load(name)
		if err != nil {
			// Skip invalid metadata but continue processing.
			continue
		}
		if info != nil {
			infos = append(infos, *info)
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// ProbePing calls the ping endpoint for a recorded server instance.
func ProbePing(info Info, client *http.Client) (*PingResponse, error) {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/api/pasreporter/ping", info.Port)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var ping PingResponse
	if err := json.NewDecoder(resp.Body).Decode(&ping); err != nil {
		return nil, fmt.Errorf("decode ping response: %w", err)
	}
	return &ping, nil
}

// IsPortAvailable returns true when the port is free on localhost.
func IsPortAvailable(port int) bool {
	if port <= 0 {
		return false
	}
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func metadataPath(name string) (string, error) {
	dir, err := config.GetServersDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+metadataExt), nil
}
