package corpus

import (
	"fmt"
	"time"
)

// Storage drivers recognized in DBConfig.Driver.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverFS     = "fs"
)

// Extraction strategies recognized in SourceConfig.Strategy.
const (
	StrategySelector    = "selector"
	StrategyReadability = "readability"
	StrategyTrafilatura = "trafilatura"
)

// ChangePolicy decides when re-downloaded content is written back.
type ChangePolicy string

const (
	// ChangePolicyHeaders writes when the content hash or the stored
	// validators (ETag, Last-Modified) differ.
	ChangePolicyHeaders ChangePolicy = "headers"

	// ChangePolicyContent writes only when the content hash differs.
	ChangePolicyContent ChangePolicy = "content"
)

// Default configuration values.
const (
	DefaultTitlesFile   = "data/titles_en.txt"
	DefaultProgressFile = "crawler_state.json"
	DefaultMaxDocs      = 50000
	DefaultDelay        = 1.5
	DefaultGetTimeout   = 20
	DefaultHeadTimeout  = 10
	DefaultUserAgent    = "MAI-CarCrawler/1.0"
	DefaultMaxRPS       = 2.0
)

// Config is the whole configuration surface of a crawl.
type Config struct {
	DB           DBConfig                `yaml:"db"`
	TitlesFile   string                  `yaml:"titles_file"`
	ProgressFile string                  `yaml:"progress_file"`
	Logic        LogicConfig             `yaml:"logic"`
	Sources      map[string]SourceConfig `yaml:"sources"`
}

// DBConfig selects and locates the document store.
type DBConfig struct {
	Driver     string `yaml:"driver"`
	URI        string `yaml:"uri"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"`
}

// MongoURI returns URI if set, otherwise a URI built from host and port.
func (c DBConfig) MongoURI() string {
	if c.URI != "" {
		return c.URI
	}
	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}

// LogicConfig tunes the crawl loop. Durations are in seconds.
// MaxDocs and Delay are pointers so an explicit zero survives defaulting:
// max_docs: 0 means no limit and delay: 0 means no pacing.
type LogicConfig struct {
	MaxDocs      *int         `yaml:"max_docs"`
	Delay        *float64     `yaml:"delay"`
	MinWords     int          `yaml:"min_words"`
	GetTimeout   float64      `yaml:"get_timeout"`
	HeadTimeout  float64      `yaml:"head_timeout"`
	UserAgent    string       `yaml:"user_agent"`
	MaxRPS       float64      `yaml:"max_rps"`
	ChangePolicy ChangePolicy `yaml:"change_policy"`
	KeepRawHTML  bool         `yaml:"keep_raw_html"`
}

// DocLimit returns the per-run document ceiling. Zero means no limit.
func (c LogicConfig) DocLimit() int {
	if c.MaxDocs == nil {
		return DefaultMaxDocs
	}
	return *c.MaxDocs
}

// DelayDuration returns the politeness delay.
func (c LogicConfig) DelayDuration() time.Duration {
	if c.Delay == nil {
		return seconds(DefaultDelay)
	}
	return seconds(*c.Delay)
}

// GetTimeoutDuration returns the full-fetch timeout.
func (c LogicConfig) GetTimeoutDuration() time.Duration {
	return seconds(c.GetTimeout)
}

// HeadTimeoutDuration returns the probe timeout.
func (c LogicConfig) HeadTimeoutDuration() time.Duration {
	return seconds(c.HeadTimeout)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// SourceConfig describes one source kind.
type SourceConfig struct {
	URL      string   `yaml:"url"`
	Space    string   `yaml:"space"`
	Strategy string   `yaml:"strategy"`
	Content  string   `yaml:"content"`
	Remove   []string `yaml:"remove"`
}

// DefaultSources returns the built-in source kinds.
func DefaultSources() map[string]SourceConfig {
	return map[string]SourceConfig{
		"wikipedia": {
			URL:      "https://en.wikipedia.org/wiki/{title}",
			Space:    "_",
			Strategy: StrategySelector,
			Content:  "div.mw-parser-output",
			Remove: []string{
				"script", "style", "nav", "footer", "aside",
				"table.infobox", "div.navbox", "div.thumb", "div.metadata",
			},
		},
		"autoru": {
			URL:      "https://auto.ru/articles/{title}/",
			Strategy: StrategySelector,
			Content:  ".article",
			Remove: []string{
				"script", "style", "nav", "footer", "aside", "header",
				".b-popup", ".b-banner", ".ListingItem", ".ListingItems",
			},
		},
	}
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values with defaults. Configured sources are merged
// over the built-in ones.
func (c *Config) SetDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = DriverMongo
	}
	if c.DB.Host == "" {
		c.DB.Host = "localhost"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 27017
	}
	if c.DB.Name == "" {
		c.DB.Name = "corpus"
	}
	if c.DB.Collection == "" {
		c.DB.Collection = "documents"
	}
	if c.DB.Path == "" {
		switch c.DB.Driver {
		case DriverFS:
			c.DB.Path = "corpus"
		default:
			c.DB.Path = "corpus.db"
		}
	}
	if c.TitlesFile == "" {
		c.TitlesFile = DefaultTitlesFile
	}
	if c.ProgressFile == "" {
		c.ProgressFile = DefaultProgressFile
	}
	if c.Logic.MaxDocs == nil {
		n := DefaultMaxDocs
		c.Logic.MaxDocs = &n
	}
	if c.Logic.Delay == nil {
		d := DefaultDelay
		c.Logic.Delay = &d
	}
	if c.Logic.MinWords == 0 {
		c.Logic.MinWords = DefaultMinWords
	}
	if c.Logic.GetTimeout == 0 {
		c.Logic.GetTimeout = DefaultGetTimeout
	}
	if c.Logic.HeadTimeout == 0 {
		c.Logic.HeadTimeout = DefaultHeadTimeout
	}
	if c.Logic.UserAgent == "" {
		c.Logic.UserAgent = DefaultUserAgent
	}
	if c.Logic.MaxRPS == 0 {
		c.Logic.MaxRPS = DefaultMaxRPS
	}
	if c.Logic.ChangePolicy == "" {
		c.Logic.ChangePolicy = ChangePolicyHeaders
	}

	sources := DefaultSources()
	for kind, src := range c.Sources {
		if src.Strategy == "" {
			src.Strategy = StrategySelector
		}
		sources[kind] = src
	}
	c.Sources = sources
}

// Validate returns an error if the configuration cannot drive a crawl.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMongo, DriverSQLite, DriverFS:
	default:
		return Errorf(EINVALID, "unknown db driver %q", c.DB.Driver)
	}
	if c.TitlesFile == "" {
		return Errorf(EINVALID, "titles_file required")
	}
	if c.Logic.DocLimit() < 0 {
		return Errorf(EINVALID, "logic.max_docs must not be negative")
	}
	if c.Logic.DelayDuration() < 0 {
		return Errorf(EINVALID, "logic.delay must not be negative")
	}
	if c.Logic.MinWords < 0 {
		return Errorf(EINVALID, "logic.min_words must not be negative")
	}
	switch c.Logic.ChangePolicy {
	case ChangePolicyHeaders, ChangePolicyContent:
	default:
		return Errorf(EINVALID, "unknown change policy %q", c.Logic.ChangePolicy)
	}
	for kind, src := range c.Sources {
		if err := src.validate(kind); err != nil {
			return err
		}
	}
	return nil
}

func (s SourceConfig) validate(kind string) error {
	if s.URL == "" {
		return Errorf(EINVALID, "source %q: url required", kind)
	}
	switch s.Strategy {
	case StrategySelector:
		if s.Content == "" {
			return Errorf(EINVALID, "source %q: content selector required", kind)
		}
	case StrategyReadability, StrategyTrafilatura:
	default:
		return Errorf(EINVALID, "source %q: unknown strategy %q", kind, s.Strategy)
	}
	return nil
}
