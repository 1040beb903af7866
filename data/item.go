package data

import "time"

// Item is the caller-facing description of a virtual file or folder.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	ParentID    string     `json:"parentId,omitempty"`
	Type        ItemType   `json:"itemType"`
	MediaType   string     `json:"mimeType"`
	CreatedAt   time.Time  `json:"creationDate"`
	Properties  []Property `json:"properties,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	TenantID    string     `json:"vfsId"`

	// File only
	VersionID  string    `json:"versionId,omitempty"`
	Length     int64     `json:"length,omitempty"`
	ModifiedAt time.Time `json:"lastModificationDate"`
	Locked     bool      `json:"locked,omitempty"`
}

// IsFolder returns true if the item describes a folder.
func (i *Item) IsFolder() bool {
	return i.Type == ItemTypeFolder
}

// ItemList is a page of items.
type ItemList struct {
	Items        []*Item `json:"items"`
	NumItems     int     `json:"numItems"`
	HasMoreItems bool    `json:"hasMoreItems"`
}

// ItemNode is an item together with its (possibly truncated) subtree.
type ItemNode struct {
	Item     *Item       `json:"item"`
	Children []*ItemNode `json:"children,omitempty"`
}

// Md5Sum pairs the hex md5 of a file with its path relative to the hashed folder.
type Md5Sum struct {
	Hash string
	Path string
}

// Info describes the capabilities of a tenant file system.
type Info struct {
	TenantID        string   `json:"id"`
	Versioning      bool     `json:"versioningSupported"`
	LockSupported   bool     `json:"lockSupported"`
	ACLSupported    bool     `json:"aclSupported"`
	SearchSupported bool     `json:"queryCapability"`
	AnyPrincipal    string   `json:"anyPrincipal"`
	Permissions     []string `json:"permissions"`
	RootFolderID    string   `json:"rootFolderId"`
	RootFolderPath  string   `json:"rootFolderPath"`
	Backend         string   `json:"backend"`
	BackendFeatures []string `json:"backendCapabilities"`
}
