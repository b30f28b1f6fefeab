package normalizeschedule

import "time"

type Config struct {
	// FallbackDays is added to today's date when the requested date cannot
	// be read as a full calendar date.
	FallbackDays int
	// DefaultStartHour opens the window used when no time can be read.
	DefaultStartHour int
	Location         *time.Location
}

func LoadConfig() *Config {
	return &Config{
		FallbackDays:     7,
		DefaultStartHour: 10,
		Location:         time.UTC,
	}
}
