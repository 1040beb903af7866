package errors

func PermissionDenied(path, permission string) error {
	return newError(ErrForbidden, nil, nil, "'%s' permission denied on '%s'", permission, path)
}

func PropertyReadOnly(name string) error {
	return newError(ErrForbidden, nil, nil, "property '%s' is read-only", name)
}

func AlreadyLocked(path string) error {
	return newError(ErrConflict, ErrLocked, nil, "file '%s' is already locked", path)
}

func NotLocked(path string) error {
	return newError(ErrConflict, nil, nil, "file '%s' is not locked", path)
}

func LockTokenMismatch(path string) error {
	return newError(ErrForbidden, ErrLocked, nil, "file '%s' is locked, lock token does not match", path)
}

func LockedDescendant(path, descendant string) error {
	return newError(ErrForbidden, ErrLocked, nil, "unable to modify '%s', descendant '%s' is locked", path, descendant)
}
