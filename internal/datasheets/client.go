// Package datasheets bootstraps the local datasheet reference library from a
// community datasheet API, converting each record to the YAML overlay format
// the data library loads.
package datasheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
)

// DefaultBaseURL is the public datasheet API root. Overridable for tests and
// mirrors.
const DefaultBaseURL = "https://grimdata.fly.dev"

// fetchThrottle spaces item requests so a full faction bootstrap stays
// polite to the public API.
const fetchThrottle = 100 * time.Millisecond

type Client struct {
	client  *http.Client
	baseURL string
	dataDir string
	force   bool
}

// NewClient creates a bootstrap client writing under dataDir/datasheets.
// With force set, existing files are refetched and overwritten.
func NewClient(baseURL, dataDir string, force bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		dataDir: dataDir,
		force:   force,
	}
}

// ListEntry is one datasheet reference in a faction index.
type ListEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListResponse is a faction's datasheet index.
type ListResponse struct {
	Count   int         `json:"count"`
	Results []ListEntry `json:"results"`
}

// FetchList fetches the datasheet index for a faction slug.
func (c *Client) FetchList(ctx context.Context, faction string) (*ListResponse, error) {
	url := fmt.Sprintf("%s/api/factions/%s/datasheets", c.baseURL, faction)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	return &list, nil
}

// wireDatasheet is the API's record shape.
type wireDatasheet struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Faction   string   `json:"faction"`
	Wounds    int      `json:"wounds"`
	Toughness int      `json:"toughness"`
	Save      int      `json:"save"`
	Models    int      `json:"models"`
	Keywords  []string `json:"keywords"`
	Abilities []struct {
		Name string `json:"name"`
		Text string `json:"text"`
	} `json:"abilities"`
}

// FetchItem fetches and transforms one datasheet by its API path.
func (c *Client) FetchItem(ctx context.Context, itemURL string) (*data.Datasheet, error) {
	fullURL := itemURL
	if strings.HasPrefix(itemURL, "/") {
		fullURL = c.baseURL + itemURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", fullURL, resp.Status)
	}

	var wire wireDatasheet
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, err
	}

	return transform(wire), nil
}

// transform converts the wire record to the library's YAML model. Ability
// entries flatten to "Name: text" strings; full text goes into RulesText.
func transform(wire wireDatasheet) *data.Datasheet {
	ds := &data.Datasheet{
		ID:        wire.ID,
		Name:      wire.Name,
		Faction:   wire.Faction,
		Wounds:    wire.Wounds,
		Toughness: wire.Toughness,
		Save:      wire.Save,
		Models:    wire.Models,
		Keywords:  wire.Keywords,
	}
	var rules []string
	for _, a := range wire.Abilities {
		ds.Abilities = append(ds.Abilities, a.Name)
		rules = append(rules, fmt.Sprintf("%s: %s", a.Name, a.Text))
	}
	ds.RulesText = strings.Join(rules, "\n")
	return ds
}

// Exists reports whether the datasheet is already bootstrapped locally.
func (c *Client) Exists(id string) bool {
	_, err := os.Stat(c.localPath(id))
	return err == nil
}

// SaveItem writes a datasheet to the local overlay as YAML.
func (c *Client) SaveItem(ds *data.Datasheet) error {
	localPath := c.localPath(ds.ID)
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	return encoder.Encode(ds)
}

// Bootstrap fetches every datasheet for a faction, skipping files that
// already exist unless force is set. The progress callback fires once per
// entry whether fetched or skipped.
func (c *Client) Bootstrap(ctx context.Context, faction string, progress func(name string)) (int, error) {
	list, err := c.FetchList(ctx, faction)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for _, entry := range list.Results {
		if progress != nil {
			progress(entry.Name)
		}
		if !c.force && c.Exists(entry.ID) {
			continue
		}

		time.Sleep(fetchThrottle)
		ds, err := c.FetchItem(ctx, entry.URL)
		if err != nil {
			return fetched, fmt.Errorf("failed to bootstrap %s: %w", entry.Name, err)
		}
		if err := c.SaveItem(ds); err != nil {
			return fetched, err
		}
		fetched++
	}
	return fetched, nil
}

func (c *Client) localPath(id string) string {
	return filepath.Join(c.dataDir, "datasheets", id+".yaml")
}
