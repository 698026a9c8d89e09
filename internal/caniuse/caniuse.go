// Package caniuse reports which browsers support a web platform feature,
// using the raw feature data published by the caniuse project.
package caniuse

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/JonMunkholm/packcat/internal/fetch"
)

// ErrUnknownFeature is returned for a feature key missing from Features.
var ErrUnknownFeature = errors.New("unknown caniuse feature")

// ErrBadFeatureData is returned when the feature document cannot be decoded.
var ErrBadFeatureData = errors.New("invalid caniuse feature data")

// Browser is a caniuse browser code.
type Browser string

// browserNames maps caniuse codes to display names.
var browserNames = map[Browser]string{
	"ie":      "Internet Explorer",
	"edge":    "Microsoft Edge",
	"firefox": "Mozilla Firefox",
	"chrome":  "Google Chrome",
	"safari":  "Apple Safari",
	"opera":   "Opera",
	"ios_saf": "iOS Safari",
	"op_mini": "Opera Mini",
	"android": "Android",
	"bb":      "BlackBerry",
	"op_mob":  "Opera Mobile",
	"and_chr": "Android Chrome",
	"and_ff":  "Android Firefox",
	"ie_mob":  "Internet Explorer Mobile",
	"and_uc":  "UC Browser",
	"samsung": "Samsung Browser",
	"and_qq":  "QQ Browser",
	"baidu":   "Baidu Browser",
	"kaios":   "KaiOS Browser",
}

// DisplayName returns the human readable name of b, or "" when unknown.
func (b Browser) DisplayName() string {
	return browserNames[b]
}

// Features maps feature keys to caniuse feature documents. The commit is
// pinned so results do not drift.
var Features = map[string]string{
	"fileSystemAccessAPI": "https://raw.githubusercontent.com/Fyrd/caniuse/fedfb067aceccb2a5edadcc8143a8c5be509a006/features-json/native-filesystem-api.json",
}

// FeatureData is the subset of a caniuse feature document we read.
type FeatureData struct {
	Title       string                        `json:"title"`
	Description string                        `json:"description"`
	Stats       map[Browser]map[string]string `json:"stats"`
}

// Getter is the fetch dependency of Client.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Client looks up feature support.
type Client struct {
	getter   Getter
	features map[string]string
}

// NewClient returns a Client backed by getter and the built-in Features.
func NewClient(getter Getter) *Client {
	return &Client{getter: getter, features: Features}
}

// WithFeatures returns a copy of c that resolves keys against features.
func (c *Client) WithFeatures(features map[string]string) *Client {
	cp := *c
	cp.features = features
	return &cp
}

// FeatureKeys lists the known feature keys in sorted order.
func (c *Client) FeatureKeys() []string {
	keys := make([]string, 0, len(c.features))
	for k := range c.features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SupportedBrowsers returns the display names, sorted, of browsers where at
// least one version fully supports feature (status exactly "y").
func (c *Client) SupportedBrowsers(ctx context.Context, feature string) ([]string, error) {
	src, ok := c.features[feature]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
	}

	body, err := c.getter.Get(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch feature %s: %w", feature, err)
	}

	var data FeatureData
	if !fetch.ParseJSON(body, &data) {
		return nil, fmt.Errorf("%w: %s", ErrBadFeatureData, feature)
	}

	return Supported(data), nil
}

// Supported extracts the supporting browsers from decoded feature data.
// Browser codes without a display name are skipped.
func Supported(data FeatureData) []string {
	var names []string
	for code, versions := range data.Stats {
		name := code.DisplayName()
		if name == "" {
			continue
		}
		for _, status := range versions {
			if status == "y" {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}
