// Package config loads SeedCanvas settings from the app data directory.
package config

// Settings is the root configuration, read from {dataDir}/settings.json.
// The file format matches the desktop app: camelCase keys, comments allowed.
type Settings struct {
	APIKey  string        `json:"apiKey"`
	BaseURL string        `json:"baseURL"`
	DataDir string        `json:"dataDir,omitempty"`
	Gateway GatewayConfig `json:"gateway"`
	Events  EventsConfig  `json:"events"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"bufferSize"`
}
