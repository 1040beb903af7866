package vfs

import (
	"context"
	stderrors "errors"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

// page returns the window [skipCount, skipCount+maxItems) of values.
// A negative maxItems returns everything after skipCount.
func page[T any](values []T, maxItems, skipCount int) ([]T, bool, error) {
	if skipCount < 0 {
		return nil, false, errors.InvalidArgument("skip count must not be negative: %d", skipCount)
	}
	if skipCount > len(values) {
		return nil, false, errors.InvalidArgument("skip count %d exceeds %d items", skipCount, len(values))
	}

	end := len(values)
	if maxItems >= 0 && skipCount+maxItems < end {
		end = skipCount + maxItems
	}
	return values[skipCount:end], end < len(values), nil
}

// GetChildren lists a page of the readable children of the folder id.
// An empty itemType lists files and folders.
func (v *VirtualFileSystem) GetChildren(ctx context.Context, id string, maxItems, skipCount int, itemType string, includePermissions bool, filter data.PropertyFilter) (*data.ItemList, error) {
	kind, err := data.ParseItemType(itemType)
	if err != nil {
		return nil, err
	}

	folder, err := v.folderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := folder.Children(ctx, kind)
	if err != nil {
		return nil, err
	}

	window, more, err := page(children, maxItems, skipCount)
	if err != nil {
		return nil, err
	}

	items := make([]*data.Item, 0, len(window))
	for _, child := range window {
		item, err := child.Item(ctx, includePermissions, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &data.ItemList{
		Items:        items,
		NumItems:     len(children),
		HasMoreItems: more,
	}, nil
}

// GetTree returns the folder id with its subtree down to depth levels.
// A negative depth is unlimited, zero returns the folder alone.
func (v *VirtualFileSystem) GetTree(ctx context.Context, id string, depth int, includePermissions bool, filter data.PropertyFilter) (*data.ItemNode, error) {
	folder, err := v.folderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.tree(ctx, folder, depth, includePermissions, filter)
}

func (v *VirtualFileSystem) tree(ctx context.Context, file *mount.VirtualFile, depth int, includePermissions bool, filter data.PropertyFilter) (*data.ItemNode, error) {
	item, err := file.Item(ctx, includePermissions, filter)
	if err != nil {
		return nil, err
	}

	result := &data.ItemNode{Item: item}
	if depth == 0 || !item.IsFolder() {
		return result, nil
	}

	children, err := file.Children(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node, err := v.tree(ctx, child, depth-1, includePermissions, filter)
		if err != nil {
			return nil, err
		}
		result.Children = append(result.Children, node)
	}
	return result, nil
}

// GetVersions lists a page of the versions of the file id, newest first.
func (v *VirtualFileSystem) GetVersions(ctx context.Context, id string, maxItems, skipCount int, filter data.PropertyFilter) (*data.ItemList, error) {
	file, err := v.mount.GetVirtualFileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	versions, err := file.GetVersions(ctx, filter)
	if err != nil {
		return nil, err
	}

	window, more, err := page(versions, maxItems, skipCount)
	if err != nil {
		return nil, err
	}

	return &data.ItemList{
		Items:        window,
		NumItems:     len(versions),
		HasMoreItems: more,
	}, nil
}

// Search runs query against the configured searcher and returns a page of
// the matching items. Hits that vanished or are not readable are skipped.
func (v *VirtualFileSystem) Search(ctx context.Context, query string, maxItems, skipCount int, filter data.PropertyFilter) (*data.ItemList, error) {
	searcher := v.mount.Options().Searcher
	if searcher == nil {
		return nil, errors.Unsupported("search")
	}

	documents, err := searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]*data.Item, 0, len(documents))
	for _, doc := range documents {
		file, err := v.mount.GetVirtualFileByID(ctx, doc.ID)
		if err == nil {
			var item *data.Item
			if item, err = file.Item(ctx, false, filter); err == nil {
				items = append(items, item)
				continue
			}
		}

		if stderrors.Is(err, data.ErrNotFound) || stderrors.Is(err, data.ErrForbidden) {
			v.log.Debug("Skipping search hit '%s': %v", doc.Path, err)
			continue
		}
		return nil, err
	}

	window, more, err := page(items, maxItems, skipCount)
	if err != nil {
		return nil, err
	}

	return &data.ItemList{
		Items:        window,
		NumItems:     len(items),
		HasMoreItems: more,
	}, nil
}
