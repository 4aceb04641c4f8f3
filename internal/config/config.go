package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default card lists shipped with the tracker firmware. Used to seed
// dev environments when no lists are configured.
var (
	DefaultBoardingUIDs  = []string{"F3A02F27", "5E6F7A8B", "9C0D1E2F"}
	DefaultAlightingUIDs = []string{"5331E50C", "E5F6A7B8", "C9D0E1F2"}
)

type Config struct {
	HTTPAddr string

	Env string // "dev" | "prod"

	// Store
	Store  string // "memory" | "sqlite"
	DBPath string // e.g. "./data/bustracker.db"

	// Occupancy
	Capacity int

	// Retention
	FixLogCap          int // hard cap on retained GPS fixes
	ScanLogMaxEntries  int // 0 = keep forever
	PruneIntervalMins  int // how often the scan pruner runs

	// Registry seed
	BoardingUIDs  []string
	AlightingUIDs []string

	MQTT MQTTConfig
}

type MQTTConfig struct {
	Broker    string // empty = bridge disabled
	ClientID  string
	GPSTopic  string
	ScanTopic string
	QoS       int
}

// Load builds the config from the environment, then overlays the YAML
// file named by BUSTRACKER_CONFIG if one is set.
func Load() (Config, error) {
	cfg := FromEnv()

	if path := strings.TrimSpace(os.Getenv("BUSTRACKER_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("BUSTRACKER_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	st := strings.ToLower(getenvDefault("BUSTRACKER_STORE", "memory"))
	if st != "memory" && st != "sqlite" {
		st = "memory"
	}

	return Config{
		HTTPAddr: getenvDefault("BUSTRACKER_HTTP_ADDR", ":8000"),
		Env:      env,

		Store:  st,
		DBPath: getenvDefault("BUSTRACKER_DB_PATH", "./data/bustracker.db"),

		Capacity: getenvInt("BUSTRACKER_CAPACITY", 30),

		FixLogCap:         getenvInt("BUSTRACKER_FIX_LOG_CAP", 100),
		ScanLogMaxEntries: getenvInt("BUSTRACKER_SCAN_LOG_MAX_ENTRIES", 0),
		PruneIntervalMins: getenvInt("BUSTRACKER_PRUNE_INTERVAL_MINUTES", 60),

		BoardingUIDs:  splitCSV(os.Getenv("BUSTRACKER_BOARDING_UIDS")),
		AlightingUIDs: splitCSV(os.Getenv("BUSTRACKER_ALIGHTING_UIDS")),

		MQTT: MQTTConfig{
			Broker:    strings.TrimSpace(os.Getenv("BUSTRACKER_MQTT_BROKER")),
			ClientID:  getenvDefault("BUSTRACKER_MQTT_CLIENT_ID", "bustracker-server"),
			GPSTopic:  getenvDefault("BUSTRACKER_MQTT_GPS_TOPIC", "bus/tracker/gps"),
			ScanTopic: getenvDefault("BUSTRACKER_MQTT_SCAN_TOPIC", "bus/tracker/rfid"),
			QoS:       getenvInt("BUSTRACKER_MQTT_QOS", 1),
		},
	}
}

// fileConfig mirrors Config with pointer fields so an absent key leaves
// the env-derived value alone.
type fileConfig struct {
	HTTPAddr *string `yaml:"http_addr"`
	Env      *string `yaml:"env"`

	Store  *string `yaml:"store"`
	DBPath *string `yaml:"db_path"`

	Capacity *int `yaml:"capacity"`

	FixLogCap         *int `yaml:"fix_log_cap"`
	ScanLogMaxEntries *int `yaml:"scan_log_max_entries"`
	PruneIntervalMins *int `yaml:"prune_interval_minutes"`

	BoardingUIDs  []string `yaml:"boarding_uids"`
	AlightingUIDs []string `yaml:"alighting_uids"`

	MQTT *struct {
		Broker    *string `yaml:"broker"`
		ClientID  *string `yaml:"client_id"`
		GPSTopic  *string `yaml:"gps_topic"`
		ScanTopic *string `yaml:"scan_topic"`
		QoS       *int    `yaml:"qos"`
	} `yaml:"mqtt"`
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.Env, fc.Env)
	setString(&cfg.Store, fc.Store)
	setString(&cfg.DBPath, fc.DBPath)
	setInt(&cfg.Capacity, fc.Capacity)
	setInt(&cfg.FixLogCap, fc.FixLogCap)
	setInt(&cfg.ScanLogMaxEntries, fc.ScanLogMaxEntries)
	setInt(&cfg.PruneIntervalMins, fc.PruneIntervalMins)

	if fc.BoardingUIDs != nil {
		cfg.BoardingUIDs = fc.BoardingUIDs
	}
	if fc.AlightingUIDs != nil {
		cfg.AlightingUIDs = fc.AlightingUIDs
	}

	if fc.MQTT != nil {
		setString(&cfg.MQTT.Broker, fc.MQTT.Broker)
		setString(&cfg.MQTT.ClientID, fc.MQTT.ClientID)
		setString(&cfg.MQTT.GPSTopic, fc.MQTT.GPSTopic)
		setString(&cfg.MQTT.ScanTopic, fc.MQTT.ScanTopic)
		setInt(&cfg.MQTT.QoS, fc.MQTT.QoS)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
