package dataset

import (
	"fmt"
	"io"
	"runtime"
)

// Size constants
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// Config holds the generation settings. The mapstructure tags match the CLI
// flag names so a settings file and flags unmarshal into the same struct.
type Config struct {
	// Window shape
	Height int `mapstructure:"height" json:"height"`
	Width  int `mapstructure:"width" json:"width"`

	// Stop once every bucket holds this many examples (0 = no limit)
	MaxPerClass int `mapstructure:"max-per-class" json:"max_per_class"`

	// Seed of the error-column choice
	Seed int64 `mapstructure:"seed" json:"seed"`

	// Number of parallel workers (1 = sequential)
	Workers int `mapstructure:"workers" json:"workers"`

	// Output labelling
	Scheme  LabelScheme `mapstructure:"scheme" json:"scheme"`
	Preview bool        `mapstructure:"preview" json:"preview"`

	// Progress reporting
	ShowProgress bool `mapstructure:"progress" json:"-"`
}

// NewConfig returns a Config with the defaults of the w51_h100
// datasets and an auto-detected worker count.
func NewConfig() *Config {
	return &Config{
		Height:       100,
		Width:        51,
		MaxPerClass:  0,
		Seed:         1,
		Workers:      detectOptimalWorkers(),
		Scheme:       SchemeBase,
		ShowProgress: true,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Height < 1 || c.Width < 1 {
		return fmt.Errorf("window must be at least 1x1, got %dx%d", c.Height, c.Width)
	}
	if c.MaxPerClass < 0 {
		return fmt.Errorf("max-per-class must be >= 0")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	scheme, err := ParseLabelScheme(string(c.Scheme))
	if err != nil {
		return err
	}
	c.Scheme = scheme
	return nil
}

// EstimatedMemory returns the window memory needed to hold a full set of
// buckets, or 0 when MaxPerClass is unlimited.
func (c *Config) EstimatedMemory() int64 {
	if c.MaxPerClass == 0 {
		return 0
	}
	perExample := int64(c.Height*c.Width) + 128
	return 2 * int64(len(Bases)) * int64(c.MaxPerClass) * perExample
}

// ShowConfig prints system information and the effective configuration
func (c *Config) ShowConfig(w io.Writer) {
	mem := getSystemMemory()

	fmt.Fprintf(w, "System Information:\n")
	fmt.Fprintf(w, "  Total RAM: %.1f GB\n", float64(mem.Total)/float64(GB))
	fmt.Fprintf(w, "  Available RAM: %.1f GB\n", float64(mem.Available)/float64(GB))

	totalCores := runtime.NumCPU()
	optimal := detectOptimalWorkers()
	if optimal < totalCores {
		fmt.Fprintf(w, "  CPU cores: %d total (%d performance)\n", totalCores, optimal)
	} else {
		fmt.Fprintf(w, "  CPU cores: %d\n", totalCores)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Configuration:\n")
	fmt.Fprintf(w, "  Window: %d x %d (height x width)\n", c.Height, c.Width)
	if c.MaxPerClass > 0 {
		fmt.Fprintf(w, "  Max examples per class: %d\n", c.MaxPerClass)
	} else {
		fmt.Fprintf(w, "  Max examples per class: unlimited\n")
	}
	fmt.Fprintf(w, "  Seed: %d\n", c.Seed)
	fmt.Fprintf(w, "  Workers: %d\n", c.Workers)
	fmt.Fprintf(w, "  Label scheme: %s\n", c.Scheme)
	fmt.Fprintf(w, "  Preview images: %t\n", c.Preview)

	if est := c.EstimatedMemory(); est > 0 {
		fmt.Fprintf(w, "  Estimated window memory: %.1f MB\n", float64(est)/float64(MB))
		if est > mem.Available {
			fmt.Fprintf(w, "Warning: estimated window memory exceeds available RAM\n")
		}
	}
	fmt.Fprintf(w, "\n")
}

// SystemMemory holds system memory information
type SystemMemory struct {
	Total     int64
	Available int64
}

// getSystemMemory returns detected memory, or 16 GB / 12 GB when the
// platform gives no answer.
func getSystemMemory() SystemMemory {
	total, available := detectSystemMemory()
	if total == 0 {
		total = 16 * GB
		available = 12 * GB
	}
	return SystemMemory{Total: total, Available: available}
}
