package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ArchiveContentType is the MIME type of archive downloads.
const ArchiveContentType = "application/zip"

// archiveWorkers bounds concurrent producers of one archive.
const archiveWorkers = 4

// Producer creates one archive entry. A nil download is skipped.
type Producer func(ctx context.Context) (*Download, error)

// ExportArchive runs the producers concurrently and zips their downloads in
// producer order. The first producer error cancels the rest.
func (a *Adapter) ExportArchive(ctx context.Context, fileName string, producers []Producer) (*Download, error) {
	results := make([]*Download, len(producers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveWorkers)
	for i, produce := range producers {
		g.Go(func() error {
			d, err := produce(gctx)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int)
	for _, d := range results {
		if d == nil {
			continue
		}
		w, err := zw.Create(uniqueName(used, d.FileName))
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", d.FileName, err)
		}
		if _, err := w.Write(d.Data); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", d.FileName, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	name := SanitizeFileName(fileName)
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		name += ".zip"
	}
	return &Download{FileName: name, ContentType: ArchiveContentType, Data: buf.Bytes()}, nil
}

// uniqueName suffixes repeated entry names: a.png, a_2.png, ...
func uniqueName(used map[string]int, name string) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
}
