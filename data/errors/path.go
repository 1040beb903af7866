package errors

func InvalidPath(err error, path string) error {
	return newError(ErrConflict, ErrInvalidPath, err, "invalid path '%s' detected", path)
}

func ItemNotFound(err error, item string) error {
	return newError(ErrNotFound, nil, err, "item '%s' not found", item)
}

func VersionNotFound(path, version string) error {
	return newError(ErrNotFound, nil, nil, "version '%s' of '%s' not found", version, path)
}

func ItemExists(parent, name string) error {
	return newError(ErrConflict, nil, nil, "item '%s' already exists in '%s'", name, parent)
}

func NotAFolder(path string) error {
	return newError(ErrForbidden, nil, nil, "item '%s' is not a folder", path)
}

func NotAFile(path string) error {
	return newError(ErrForbidden, nil, nil, "item '%s' is not a file", path)
}

func RootOperation(operation string) error {
	return newError(ErrForbidden, nil, nil, "unable to %s root folder", operation)
}

func InvalidName(name string) error {
	return newError(ErrConflict, ErrInvalidPath, nil, "invalid item name '%s'", name)
}

func SelfReference(path, destination string) error {
	return newError(ErrForbidden, nil, nil, "unable to place '%s' into its own subtree '%s'", path, destination)
}

func VersionReadOnly(path, version string) error {
	return newError(ErrForbidden, nil, nil, "version '%s' of '%s' is read-only", version, path)
}

func InvalidArchive(err error, entry string) error {
	return newError(ErrConflict, nil, err, "invalid archive entry '%s'", entry)
}

func InvalidVersionRequest(path string) error {
	return newError(ErrForbidden, nil, nil, "item '%s' is not a file, version id must not be set", path)
}
