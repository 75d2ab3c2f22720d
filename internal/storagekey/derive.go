// Package storagekey derives canonical storage keys from hierarchical
// course metadata. Derivation is pure: no I/O, and no randomness beyond a
// millisecond-timestamp nonce used only when the caller supplies no item ID.
package storagekey

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coursevault/internal/domain"
)

// DefaultRoot is the top-level folder every key lives under.
const DefaultRoot = "LMS_Uploads"

// ThumbnailBasename is the fixed basename for course thumbnails. Using a
// fixed name guarantees at most one live thumbnail per course; a re-upload
// overwrites the previous one.
const ThumbnailBasename = "thumbnail"

// Input carries the already-resolved hierarchy strings for one upload.
// Ordinals are 1-based; zero means the level is absent.
type Input struct {
	AssetClass    domain.AssetClass
	CourseSlug    string
	ModuleOrdinal int
	ModuleTitle   string
	LessonOrdinal int
	LessonTitle   string
	Filename      string
	ItemID        string
}

// Deriver builds storage keys under a configured root folder. The zero
// value is not usable; construct with New.
type Deriver struct {
	root string
	now  func() time.Time
}

// New returns a Deriver rooted at root, or at DefaultRoot when root is empty.
func New(root string) *Deriver {
	if root == "" {
		root = DefaultRoot
	}
	return &Deriver{root: root, now: time.Now}
}

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9-]+`)
	titleStrip = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	fileStrip  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Derive computes the storage key for in. Same inputs always produce the
// same key, except the timestamp nonce taken when ItemID is empty.
func (d *Deriver) Derive(in Input) (string, error) {
	if !in.AssetClass.Valid() {
		return "", fmt.Errorf("asset class %q: %w", in.AssetClass, domain.ErrValidation)
	}
	course := Slugify(in.CourseSlug)
	if course == "" {
		return "", fmt.Errorf("course slug: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return "", fmt.Errorf("filename: %w", domain.ErrValidation)
	}

	// Thumbnails bypass the module/lesson hierarchy: one per course,
	// last write wins.
	if in.AssetClass == domain.AssetClassThumbnail {
		ext := strings.ToLower(path.Ext(in.Filename))
		return path.Join(d.root, course, ThumbnailBasename+ext), nil
	}

	parts := []string{d.root, course}
	if in.ModuleOrdinal > 0 || in.ModuleTitle != "" {
		parts = append(parts, titleSegment(in.ModuleOrdinal, in.ModuleTitle))
	}
	if in.LessonOrdinal > 0 || in.LessonTitle != "" {
		parts = append(parts, titleSegment(in.LessonOrdinal, in.LessonTitle))
	}
	parts = append(parts, domain.AssetClassFolders[in.AssetClass])

	// The filename carries its own ordinal prefix plus a discriminator so
	// keys stay human-sortable without colliding across repeated uploads
	// of the same logical item.
	ordinal := in.LessonOrdinal
	if ordinal == 0 {
		ordinal = in.ModuleOrdinal
	}
	discriminator := sanitizeItemID(in.ItemID)
	if discriminator == "" {
		discriminator = strconv.FormatInt(d.now().UnixMilli(), 10)
	}
	filename := fmt.Sprintf("%02d_%s_%s", ordinal, discriminator, sanitizeFilename(in.Filename))
	parts = append(parts, filename)

	return path.Join(parts...), nil
}

// Slugify lower-cases s, turns whitespace into hyphens, and strips
// everything outside [a-z0-9-].
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespace.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// titleSegment renders a hierarchy folder like "02_Safety_Basics": ordinal
// zero-padded to two digits, whitespace collapsed to underscores, original
// case kept.
func titleSegment(ordinal int, title string) string {
	t := whitespace.ReplaceAllString(strings.TrimSpace(title), "_")
	t = titleStrip.ReplaceAllString(t, "")
	t = strings.Trim(t, "_")
	if t == "" {
		return fmt.Sprintf("%02d", ordinal)
	}
	return fmt.Sprintf("%02d_%s", ordinal, t)
}

func sanitizeFilename(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(path.Base(name)), "_")
	return fileStrip.ReplaceAllString(name, "")
}

func sanitizeItemID(id string) string {
	id = whitespace.ReplaceAllString(strings.TrimSpace(id), "-")
	return fileStrip.ReplaceAllString(id, "")
}
