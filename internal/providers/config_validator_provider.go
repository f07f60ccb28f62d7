package providers

import (
	"beelandr/internal/structures"
	"errors"
	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks every nested config section and returns the first
// section's errors joined into one message.
func (cv *CnfValidator) Validate() error {
	sections := []any{
		&cv.conf.WebServer,
		&cv.conf.Storage,
		&cv.conf.Logger,
		&cv.conf.Weather,
	}
	for _, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			return errors.New(v.Errors.String())
		}
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.Size <= 0 {
		return errors.New("cache.size must be positive when cache is enabled")
	}
	return nil
}
