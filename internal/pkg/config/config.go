package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Planner   planner.Config  `mapstructure:"planner"`
	Budget    BudgetConfig    `mapstructure:"budget"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
	Enabled       bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// CatalogConfig tunes the location catalog read path.
type CatalogConfig struct {
	CacheTTL        int    `mapstructure:"cache_ttl"` // seconds
	BreakerFailures uint32 `mapstructure:"breaker_failures"`
	BreakerTimeout  int    `mapstructure:"breaker_timeout"` // seconds the breaker stays open
	ItineraryTTL    int    `mapstructure:"itinerary_ttl"`   // seconds
	SeedFile        string `mapstructure:"seed_file"`
	MigrationsDir   string `mapstructure:"migrations_dir"`
}

// BudgetConfig holds the percentage bands used to split a trip budget.
type BudgetConfig struct {
	Bands planner.Bands `mapstructure:"bands"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tripplanner")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tripplanner")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.collector_addr", "otel-collector:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "itineraries")
	v.SetDefault("catalog.cache_ttl", 300)
	v.SetDefault("catalog.breaker_failures", 5)
	v.SetDefault("catalog.breaker_timeout", 30)
	v.SetDefault("catalog.itinerary_ttl", 3600)
	v.SetDefault("catalog.seed_file", "data/danang.json")
	v.SetDefault("catalog.migrations_dir", "migrations")
	setPlannerDefaults(v, planner.DefaultConfig())
	setBandDefaults(v, planner.DefaultBands())

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRIPPLANNER_PLANNER_PREFERENCE_BONUS → planner.preference_bonus
	v.SetEnvPrefix("TRIPPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setPlannerDefaults(v *viper.Viper, d planner.Config) {
	v.SetDefault("planner.preference_bonus", d.PreferenceBonus)
	v.SetDefault("planner.distance_bonus_max", d.DistanceBonusMax)
	v.SetDefault("planner.distance_penalty_per_km", d.DistancePenaltyPerKm)
	v.SetDefault("planner.budget_fit_bonus", d.BudgetFitBonus)
	v.SetDefault("planner.budget_fit_ratio", d.BudgetFitRatio)
	v.SetDefault("planner.diversity_bonus", d.DiversityBonus)
	v.SetDefault("planner.min_daily_own_transport", d.MinDailyOwnTransport)
	v.SetDefault("planner.min_daily_paid_transport", d.MinDailyPaidTransport)
	v.SetDefault("planner.budget_tier_ceiling", d.BudgetTierCeiling)
	v.SetDefault("planner.mid_tier_ceiling", d.MidTierCeiling)
	v.SetDefault("planner.hotel_floor_per_person", d.HotelFloorPerPerson)
	v.SetDefault("planner.large_group_size", d.LargeGroupSize)
	v.SetDefault("planner.lodging_share", d.LodgingShare)
	v.SetDefault("planner.category_cooldown_hours", d.CategoryCooldownHours)
	v.SetDefault("planner.food_cooldown_hours", d.FoodCooldownHours)
	v.SetDefault("planner.airport_buffer_hours", d.AirportBufferHours)
	v.SetDefault("planner.siesta_hours", d.SiestaHours)
	v.SetDefault("planner.day_start_hour", d.DayStartHour)
	v.SetDefault("planner.day_end_hour", d.DayEndHour)
	v.SetDefault("planner.return_hour", d.ReturnHour)
	v.SetDefault("planner.evening_loop_cap", d.EveningLoopCap)
	v.SetDefault("planner.currency_step", d.CurrencyStep)
}

// setBandDefaults registers every band leaf so env overrides such as
// TRIPPLANNER_BUDGET_BANDS_STAY_HOTEL_MAX resolve.
func setBandDefaults(v *viper.Viper, b planner.Bands) {
	set := func(key string, band planner.Band) {
		v.SetDefault("budget.bands."+key+".min", band.Min)
		v.SetDefault("budget.bands."+key+".max", band.Max)
	}
	for tier, band := range b.Stay {
		set("stay."+string(tier), band)
	}
	set("food", b.Food)
	set("transport", b.Transport)
	set("activities", b.Activities)
	set("buffer", b.Buffer)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}
	if c.Catalog.CacheTTL < 0 {
		errs = append(errs, "catalog.cache_ttl must not be negative")
	}
	if c.Catalog.BreakerFailures == 0 {
		errs = append(errs, "catalog.breaker_failures must be positive")
	}
	errs = append(errs, validatePlanner(c.Planner)...)
	errs = append(errs, validateBands(c.Budget.Bands)...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validatePlanner(p planner.Config) []string {
	var errs []string
	weights := []struct {
		name  string
		value float64
	}{
		{"preference_bonus", p.PreferenceBonus},
		{"distance_bonus_max", p.DistanceBonusMax},
		{"distance_penalty_per_km", p.DistancePenaltyPerKm},
		{"budget_fit_bonus", p.BudgetFitBonus},
		{"diversity_bonus", p.DiversityBonus},
		{"min_daily_own_transport", p.MinDailyOwnTransport},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, fmt.Sprintf("planner.%s must not be negative", w.name))
		}
	}
	if p.MinDailyPaidTransport < p.MinDailyOwnTransport {
		errs = append(errs, "planner.min_daily_paid_transport must be at least min_daily_own_transport")
	}
	if p.LodgingShare <= 0 || p.LodgingShare > 1 {
		errs = append(errs, "planner.lodging_share must be in (0, 1]")
	}
	if p.CurrencyStep <= 0 {
		errs = append(errs, "planner.currency_step must be positive")
	}
	if p.DayStartHour < 0 || p.DayEndHour > 24 || p.DayStartHour >= p.DayEndHour {
		errs = append(errs, "planner.day_start_hour and day_end_hour must form a window within 0-24")
	}
	if p.EveningLoopCap < 0 {
		errs = append(errs, "planner.evening_loop_cap must not be negative")
	}
	return errs
}

func validateBands(b planner.Bands) []string {
	var errs []string
	check := func(name string, band planner.Band) {
		if band.Min < 0 || band.Max < band.Min || band.Max > 100 {
			errs = append(errs, fmt.Sprintf("budget.bands.%s must satisfy 0 <= min <= max <= 100", name))
		}
	}
	if len(b.Stay) == 0 {
		errs = append(errs, "budget.bands.stay is required")
	}
	tiers := make([]string, 0, len(b.Stay))
	for tier := range b.Stay {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		check("stay."+tier, b.Stay[domain.AccommodationTier(tier)])
	}
	check("food", b.Food)
	check("transport", b.Transport)
	check("activities", b.Activities)
	check("buffer", b.Buffer)
	return errs
}
