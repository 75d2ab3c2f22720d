package storagekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursevault/internal/domain"
)

func fixedClock(millis int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(millis) }
}

func TestDerive_Thumbnail(t *testing.T) {
	d := New("")

	key, err := d.Derive(Input{
		AssetClass: domain.AssetClassThumbnail,
		CourseSlug: "Intro To Ops",
		Filename:   "cover.PNG",
	})

	require.NoError(t, err)
	assert.Equal(t, "LMS_Uploads/intro-to-ops/thumbnail.png", key)
}

func TestDerive_Thumbnail_LastWriteWins(t *testing.T) {
	d := New("")

	first, err := d.Derive(Input{
		AssetClass: domain.AssetClassThumbnail,
		CourseSlug: "acme-101",
		Filename:   "old-cover.jpg",
	})
	require.NoError(t, err)

	second, err := d.Derive(Input{
		AssetClass: domain.AssetClassThumbnail,
		CourseSlug: "acme-101",
		Filename:   "new-cover.jpg",
	})
	require.NoError(t, err)

	// Same fixed basename regardless of the source filename.
	assert.Equal(t, first, second)
}

func TestDerive_VideoHierarchy(t *testing.T) {
	d := New("")

	key, err := d.Derive(Input{
		AssetClass:    domain.AssetClassVideo,
		CourseSlug:    "acme-101",
		ModuleOrdinal: 2,
		ModuleTitle:   "Safety Basics",
		LessonOrdinal: 1,
		LessonTitle:   "Overview",
		Filename:      "intro.mp4",
		ItemID:        "lesson-abc",
	})

	require.NoError(t, err)
	assert.Equal(t, "LMS_Uploads/acme-101/02_Safety_Basics/01_Overview/videos/01_lesson-abc_intro.mp4", key)
}

func TestDerive_Deterministic(t *testing.T) {
	d := New("")
	in := Input{
		AssetClass:    domain.AssetClassDocument,
		CourseSlug:    "acme-101",
		ModuleOrdinal: 3,
		ModuleTitle:   "Incident Response",
		LessonOrdinal: 4,
		LessonTitle:   "Escalation",
		Filename:      "runbook.pdf",
		ItemID:        "doc-42",
	}

	first, err := d.Derive(in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := d.Derive(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDerive_DistinctItemIDsAvoidCollision(t *testing.T) {
	d := New("")
	in := Input{
		AssetClass:    domain.AssetClassImage,
		CourseSlug:    "acme-101",
		ModuleOrdinal: 1,
		ModuleTitle:   "Orientation",
		Filename:      "diagram.png",
	}

	in.ItemID = "img-1"
	first, err := d.Derive(in)
	require.NoError(t, err)

	in.ItemID = "img-2"
	second, err := d.Derive(in)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDerive_TimestampFallbackAvoidsCollision(t *testing.T) {
	d := New("")
	in := Input{
		AssetClass:    domain.AssetClassImage,
		CourseSlug:    "acme-101",
		ModuleOrdinal: 1,
		ModuleTitle:   "Orientation",
		Filename:      "diagram.png",
	}

	d.now = fixedClock(1700000000000)
	first, err := d.Derive(in)
	require.NoError(t, err)
	assert.Contains(t, first, "01_1700000000000_diagram.png")

	d.now = fixedClock(1700000000001)
	second, err := d.Derive(in)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDerive_FolderPerAssetClass(t *testing.T) {
	d := New("")
	for class, folder := range map[domain.AssetClass]string{
		domain.AssetClassVideo:    "videos",
		domain.AssetClassDocument: "documents",
		domain.AssetClassImage:    "images",
	} {
		key, err := d.Derive(Input{
			AssetClass:    class,
			CourseSlug:    "acme-101",
			LessonOrdinal: 5,
			LessonTitle:   "Wrap Up",
			Filename:      "asset.bin",
			ItemID:        "x",
		})
		require.NoError(t, err)
		assert.Contains(t, key, "/"+folder+"/")
	}
}

func TestDerive_CustomRoot(t *testing.T) {
	d := New("StagingContent")

	key, err := d.Derive(Input{
		AssetClass: domain.AssetClassThumbnail,
		CourseSlug: "acme-101",
		Filename:   "c.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "StagingContent/acme-101/thumbnail.png", key)
}

func TestDerive_ValidationErrors(t *testing.T) {
	d := New("")

	_, err := d.Derive(Input{AssetClass: "archive", CourseSlug: "acme-101", Filename: "a.zip"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.Derive(Input{AssetClass: domain.AssetClassVideo, CourseSlug: "  ", Filename: "a.mp4"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.Derive(Input{AssetClass: domain.AssetClassVideo, CourseSlug: "acme-101", Filename: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Intro To Ops":       "intro-to-ops",
		"  Acme  101  ":      "acme-101",
		"C# Basics":          "c-basics",
		"already-slugged":    "already-slugged",
		"Trailing Symbols!!": "trailing-symbols",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestDerive_TitleSanitization(t *testing.T) {
	d := New("")

	key, err := d.Derive(Input{
		AssetClass:    domain.AssetClassDocument,
		CourseSlug:    "acme-101",
		ModuleOrdinal: 7,
		ModuleTitle:   "  Fire   Drills!  ",
		Filename:      "plan.pdf",
		ItemID:        "d1",
	})

	require.NoError(t, err)
	assert.Contains(t, key, "/07_Fire_Drills/")
}
