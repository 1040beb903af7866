package vfs

import (
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/log"
)

const defaultUploadMemory = 32 << 20

type VirtualFileSystemOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool
	Logger        *log.Logger // Used instead of LogLevel, LogFile and NoTerminalLog if set.

	UploadMemory int64 // Bytes of multipart uploads kept in memory before spooling to disk.
}

type VirtualFileSystemOption func(*VirtualFileSystemOptions) error

func newDefaultVirtualFileSystemOptions() *VirtualFileSystemOptions {
	return &VirtualFileSystemOptions{
		LogLevel:     log.Info,
		UploadMemory: defaultUploadMemory,
	}
}

func WithLogLevel(logLevel log.LogLevel) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithLogger(logger *log.Logger) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.Logger = logger
		return nil
	}
}

func WithUploadMemory(size int64) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		if size <= 0 {
			return errors.InvalidArgument("upload memory must be positive")
		}
		opts.UploadMemory = size
		return nil
	}
}
