package domain

// AssetClass categorizes an uploaded asset and selects its folder placement
// and size policy.
type AssetClass string

const (
	AssetClassThumbnail AssetClass = "thumbnail"
	AssetClassImage     AssetClass = "image"
	AssetClassVideo     AssetClass = "video"
	AssetClassDocument  AssetClass = "document"
)

// AssetClassFolders maps non-thumbnail asset classes to their pluralized
// folder names inside a lesson. Thumbnails bypass the hierarchy entirely.
var AssetClassFolders = map[AssetClass]string{
	AssetClassImage:    "images",
	AssetClassVideo:    "videos",
	AssetClassDocument: "documents",
}

// Valid reports whether c is one of the known asset classes.
func (c AssetClass) Valid() bool {
	if c == AssetClassThumbnail {
		return true
	}
	_, ok := AssetClassFolders[c]
	return ok
}

// BackendKind selects which storage backend the signer targets.
type BackendKind string

const (
	BackendS3       BackendKind = "s3"
	BackendSupabase BackendKind = "supabase"
)
