package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"warehouse-route-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BranchConfig is one branch planned by the batch run.
type BranchConfig struct {
	Name      string `yaml:"name" validate:"required"`
	OrdersCSV string `yaml:"orders_csv" validate:"required"`
	Vehicles  int    `yaml:"vehicles" validate:"gte=0"`
}

type CacheConfig struct {
	// Backend selects the matrix cache: none, file, sqlite, postgres or redis.
	Backend    string        `yaml:"backend" validate:"oneof=none file sqlite postgres redis"`
	Dir        string        `yaml:"dir"`
	SqlitePath string        `yaml:"sqlite_path"`
	TTL        time.Duration `yaml:"ttl"`
}

type MatrixConfig struct {
	BaseURL           string  `yaml:"base_url" validate:"omitempty,url"`
	MaxElements       int     `yaml:"max_elements" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

// PlannerConfig holds the settings of a planning run.
type PlannerConfig struct {
	DepotsPath string         `yaml:"depots_path" validate:"required"`
	OutputDir  string         `yaml:"output_dir" validate:"required"`
	Branches   []BranchConfig `yaml:"branches" validate:"required,min=1,dive"`

	Cache  CacheConfig  `yaml:"cache"`
	Matrix MatrixConfig `yaml:"matrix"`

	// Clock values are "HH:MM" local time.
	WorkStart    string `yaml:"work_start" validate:"clock"`
	WorkEnd      string `yaml:"work_end" validate:"clock"`
	LunchStart   string `yaml:"lunch_start" validate:"omitempty,clock"`
	LunchEnd     string `yaml:"lunch_end" validate:"omitempty,clock"`
	EnforceLunch bool   `yaml:"enforce_lunch"`

	ServicePerDesi  float64 `yaml:"service_seconds_per_desi" validate:"gte=0"`
	VehicleCapacity float64 `yaml:"vehicle_capacity" validate:"gt=0"`
	DefaultVehicles int     `yaml:"default_vehicles" validate:"gte=1"`
	MaxWaitSeconds  int64   `yaml:"max_wait_seconds" validate:"gte=0"`

	TimeBudget  time.Duration `yaml:"time_budget"`
	Concurrency int           `yaml:"concurrency" validate:"gte=1"`
	Schedule    string        `yaml:"schedule"`
	LogFormat   string        `yaml:"log_format" validate:"oneof=text json"`
	XLSX        bool          `yaml:"xlsx"`
}

// DefaultPlannerConfig mirrors the production deployment of the two
// Istanbul branches.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		DepotsPath: "data/depots.json",
		OutputDir:  "output",
		Branches: []BranchConfig{
			{Name: "Esenyurt", OrdersCSV: "data/esenyurt_orders.csv", Vehicles: 100},
			{Name: "Haramidere", OrdersCSV: "data/haramidere_orders.csv", Vehicles: 100},
		},
		Cache:           CacheConfig{Backend: "file", Dir: "cache"},
		WorkStart:       "08:00",
		WorkEnd:         "17:00",
		LunchStart:      "12:00",
		LunchEnd:        "13:00",
		ServicePerDesi:  2,
		VehicleCapacity: 15000,
		DefaultVehicles: 100,
		TimeBudget:      60 * time.Second,
		Concurrency:     2,
		LogFormat:       "text",
		XLSX:            true,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// LoadPlannerConfig reads a YAML file over DefaultPlannerConfig and validates the result.
func LoadPlannerConfig(path string) (PlannerConfig, error) {
	cfg := DefaultPlannerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return PlannerConfig{}, fmt.Errorf("load planner config: read %q: %w", path, err)
	}

	// Branches from the file replace the defaults rather than merging into them.
	cfg.Branches = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PlannerConfig{}, fmt.Errorf("load planner config: parse %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return PlannerConfig{}, fmt.Errorf("load planner config: %w", err)
	}
	return cfg, nil
}

func (c PlannerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Fleet(c.Branches[0]); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Fleet builds the shift and vehicle rules for branch.
func (c PlannerConfig) Fleet(branch BranchConfig) (domain.Fleet, error) {
	start, err := ParseClock(c.WorkStart)
	if err != nil {
		return domain.Fleet{}, err
	}
	end, err := ParseClock(c.WorkEnd)
	if err != nil {
		return domain.Fleet{}, err
	}

	vehicles := branch.Vehicles
	if vehicles == 0 {
		vehicles = c.DefaultVehicles
	}

	f := domain.Fleet{
		Vehicles:       vehicles,
		Capacity:       c.VehicleCapacity,
		WorkStart:      start,
		WorkEnd:        end,
		ServicePerDesi: c.ServicePerDesi,
	}

	if c.EnforceLunch && c.LunchStart != "" && c.LunchEnd != "" {
		if f.LunchStart, err = ParseClock(c.LunchStart); err != nil {
			return domain.Fleet{}, err
		}
		if f.LunchEnd, err = ParseClock(c.LunchEnd); err != nil {
			return domain.Fleet{}, err
		}
	}

	if err := f.Validate(); err != nil {
		return domain.Fleet{}, err
	}
	return f, nil
}

// ParseClock converts "HH:MM" (or "HH:MM:SS") to seconds of day.
func ParseClock(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}

	limits := []int64{23, 59, 59}
	var secs int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("clock %q: invalid component %q", s, p)
		}
		switch i {
		case 0:
			secs += n * domain.Hour
		case 1:
			secs += n * 60
		default:
			secs += n
		}
	}
	return secs, nil
}
