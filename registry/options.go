package registry

import (
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/log"
)

type RegistryOptions struct {
	Logger *log.Logger
	// FatalHandler receives every provider load failure. Defaults to
	// Logger.Fatal, which terminates the process.
	FatalHandler func(err error)
}

type RegistryOption func(*RegistryOptions) error

func newDefaultRegistryOptions() *RegistryOptions {
	return &RegistryOptions{
		Logger: log.NewLogger("registry", log.Info, "", false),
	}
}

func WithLogger(logger *log.Logger) RegistryOption {
	return func(opts *RegistryOptions) error {
		if logger == nil {
			return errors.InvalidArgument("registry logger must not be nil")
		}
		opts.Logger = logger
		return nil
	}
}

func WithFatalHandler(handler func(err error)) RegistryOption {
	return func(opts *RegistryOptions) error {
		opts.FatalHandler = handler
		return nil
	}
}
