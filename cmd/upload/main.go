// Command upload pushes one file through the upload pipeline against a
// running signing boundary. It is the same client-side path a browser
// upload takes: derive the key locally, sign remotely, PUT directly to
// storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"coursevault/internal/domain"
	"coursevault/internal/signer"
	"coursevault/internal/storagekey"
	"coursevault/internal/uploader"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		filePath      = flag.String("file", "", "path of the file to upload (required)")
		class         = flag.String("class", "document", "asset class: thumbnail, image, video, document")
		contentType   = flag.String("content-type", "application/octet-stream", "MIME content type")
		course        = flag.String("course", "", "course slug (required)")
		moduleOrdinal = flag.Int("module-ordinal", 0, "module ordinal (1-based)")
		moduleTitle   = flag.String("module-title", "", "module title")
		lessonOrdinal = flag.Int("lesson-ordinal", 0, "lesson ordinal (1-based)")
		lessonTitle   = flag.String("lesson-title", "", "lesson title")
		itemID        = flag.String("item-id", "", "caller item identifier (optional)")
		rootPrefix    = flag.String("root", storagekey.DefaultRoot, "storage root prefix")
		serverURL     = flag.String("server", "http://localhost:8080", "signing boundary base URL")
		token         = flag.String("token", "", "bearer session token for the signing boundary")
		timeout       = flag.Duration("timeout", 5*time.Minute, "per-request transfer timeout")
	)
	flag.Parse()

	if *filePath == "" || *course == "" {
		flag.Usage()
		return fmt.Errorf("-file and -course are required")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *filePath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", *filePath, err)
	}

	httpc := &http.Client{Timeout: *timeout}
	up := uploader.New(
		storagekey.New(*rootPrefix),
		signer.NewClient(*serverURL, *token, httpc),
		httpc,
	)

	result, err := up.Upload(context.Background(), uploader.Input{
		Content:       f,
		Size:          info.Size(),
		Filename:      info.Name(),
		ContentType:   *contentType,
		AssetClass:    domain.AssetClass(*class),
		CourseSlug:    *course,
		ModuleOrdinal: *moduleOrdinal,
		ModuleTitle:   *moduleTitle,
		LessonOrdinal: *lessonOrdinal,
		LessonTitle:   *lessonTitle,
		ItemID:        *itemID,
		Progress: func(p domain.Progress) {
			if p.TotalChunks > 1 {
				fmt.Printf("\rchunk %d/%d (%.0f%%)", p.ChunksDone, p.TotalChunks, p.Fraction()*100)
			} else {
				fmt.Printf("\r%.0f%%", p.Fraction()*100)
			}
		},
	})
	if err != nil {
		fmt.Println()
		return err
	}

	fmt.Printf("\nuploaded %d bytes\n  key: %s\n  url: %s\n",
		result.ByteSize, result.StorageKey, result.PublicURL)
	return nil
}
