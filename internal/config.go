package internal

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is loaded from the environment by go-env in main. Every field
// has a default so the server starts with no environment at all, matching
// the defaults of the wire protocol (0.0.0.0:12345).
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port     int    `env:"PORT,default=12345" validate:"gte=1,lte=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	// WriteTimeout bounds how long one stalled recipient can hold a
	// router write. Zero disables the deadline.
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=5s" validate:"gte=0"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=30s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`

	ModerationEnabled bool   `env:"MODERATION_ENABLED,default=false"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CharacterRune rejects multi-character replacement masks early instead of
// silently masking with the first rune.
func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}
