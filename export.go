package vfs

import (
	"bufio"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

const md5HexLength = 32

// ExportResult is the outcome of an incremental export.
type ExportResult struct {
	// Archive holds new and changed files. It is nil if NoChanges is set.
	Archive *mount.ContentStream
	// Removed lists manifest paths that no longer exist, sorted.
	Removed []string
	// NoChanges is set if the manifest matches the folder exactly.
	NoChanges bool
}

// ExportZip streams the readable subtree of folder id as zip archive.
func (v *VirtualFileSystem) ExportZip(ctx context.Context, folderID string) (*mount.ContentStream, error) {
	folder, err := v.folderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return folder.Zip(ctx, nil)
}

// ExportZipIncremental compares the folder id with manifest and exports only
// the files that differ. Each manifest line holds an md5 hex digest followed
// by whitespace and the path relative to the folder. An empty manifest
// exports everything.
func (v *VirtualFileSystem) ExportZipIncremental(ctx context.Context, folderID string, manifest io.Reader) (*ExportResult, error) {
	folder, err := v.folderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	remote, err := parseManifest(manifest)
	if err != nil {
		return nil, err
	}
	if len(remote) == 0 {
		archive, err := folder.Zip(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Archive: archive}, nil
	}

	local, err := collectMd5Sums(ctx, folder)
	if err != nil {
		return nil, err
	}

	changed, removed := diffSums(local, remote)
	if len(changed) == 0 && len(removed) == 0 {
		return &ExportResult{NoChanges: true}, nil
	}

	v.log.Debug("Exporting %d changed files of '%s', %d removed", len(changed), folder.Path(), len(removed))
	archive, err := folder.Zip(ctx, changedFilter(changed))
	if err != nil {
		return nil, err
	}
	return &ExportResult{Archive: archive, Removed: removed}, nil
}

// Md5Sums returns the md5 of every readable file below the item id, sorted
// by relative path. A file has no descendants and returns an empty list.
func (v *VirtualFileSystem) Md5Sums(ctx context.Context, id string) ([]data.Md5Sum, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return collectMd5Sums(ctx, file)
}

func collectMd5Sums(ctx context.Context, file *mount.VirtualFile) ([]data.Md5Sum, error) {
	var sums []data.Md5Sum
	for sum, err := range file.CountMd5Sums(ctx) {
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	slices.SortFunc(sums, func(a, b data.Md5Sum) int {
		return strings.Compare(a.Path, b.Path)
	})
	return sums, nil
}

func parseManifest(r io.Reader) ([]data.Md5Sum, error) {
	var sums []data.Md5Sum
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if len(text) <= md5HexLength {
			return nil, errors.InvalidArgument("manifest line %d is malformed", line)
		}
		path := strings.TrimSpace(text[md5HexLength:])
		if path == "" || path == text[md5HexLength:] {
			return nil, errors.InvalidArgument("manifest line %d is malformed", line)
		}

		sums = append(sums, data.Md5Sum{
			Hash: strings.ToLower(text[:md5HexLength]),
			Path: strings.TrimPrefix(path, "/"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Server(err, "failed to read manifest")
	}
	return sums, nil
}

// diffSums merges both lists ordered by path. It returns the local paths
// that are missing or different in remote and the remote-only paths.
func diffSums(local, remote []data.Md5Sum) ([]string, []string) {
	byPath := func(a, b data.Md5Sum) int {
		return strings.Compare(a.Path, b.Path)
	}
	slices.SortFunc(local, byPath)
	slices.SortFunc(remote, byPath)

	var changed, removed []string
	i, j := 0, 0
	for i < len(local) || j < len(remote) {
		switch {
		case j == len(remote) || (i < len(local) && local[i].Path < remote[j].Path):
			changed = append(changed, local[i].Path)
			i++
		case i == len(local) || local[i].Path > remote[j].Path:
			removed = append(removed, remote[j].Path)
			j++
		default:
			if local[i].Hash != remote[j].Hash {
				changed = append(changed, local[i].Path)
			}
			i++
			j++
		}
	}
	return changed, removed
}

// changedFilter accepts the changed files and every folder above them.
func changedFilter(changed []string) mount.ZipFilter {
	files := make(map[string]bool, len(changed))
	for _, path := range changed {
		files[path] = true
	}

	return func(relative string) bool {
		if !strings.HasSuffix(relative, "/") {
			return files[relative]
		}
		for _, path := range changed {
			if strings.HasPrefix(path, relative) {
				return true
			}
		}
		return false
	}
}

// ImportZip extracts the archive r into the folder parentID. With
// skipFirstLevel the top-level directory of every entry is dropped.
func (v *VirtualFileSystem) ImportZip(ctx context.Context, parentID string, r io.Reader, overwrite, skipFirstLevel bool) error {
	folder, err := v.folderByID(ctx, parentID)
	if err != nil {
		return err
	}

	strip := 0
	if skipFirstLevel {
		strip = 1
	}
	return folder.Unzip(ctx, r, overwrite, strip)
}
