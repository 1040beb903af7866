package errors

func Backend(err error, name, format string, args ...any) error {
	return newError(ErrServer, nil, err, "backend '%s': "+format, append([]any{name}, args...)...)
}

func Server(err error, format string, args ...any) error {
	return newError(ErrServer, nil, err, format, args...)
}

func Unsupported(operation string) error {
	return newError(ErrServer, ErrNotSupported, nil, "%s not supported", operation)
}

func MountClosed(tenant string) error {
	return newError(ErrServer, ErrMountClosed, nil, "mount point of tenant '%s' closed", tenant)
}

func InvalidArgument(format string, args ...any) error {
	return newError(ErrConflict, nil, nil, format, args...)
}

func InvalidItemType(itemType string) error {
	return newError(ErrForbidden, nil, nil, "unknown item type '%s'", itemType)
}

func ProviderExists(tenant string) error {
	return newError(ErrServer, ErrProviderExists, nil, "provider for tenant '%s' already registered", tenant)
}

func ProviderLoad(err error, tenant string) error {
	return newError(ErrServer, ErrProviderLoad, err, "unable to load provider for tenant '%s'", tenant)
}
