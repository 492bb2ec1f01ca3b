package parser

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// relationship is one entry of an OOXML .rels part.
type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

type workbookSheet struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"id,attr"`
}

type workbookPart struct {
	Sheets []workbookSheet `xml:"sheets>sheet"`
}

// readZipFile returns the content of a package part, or nil when absent.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// readXMLPart decodes a package part into v. It reports false when the part
// is missing or malformed.
func readXMLPart(r *zip.Reader, name string, v interface{}) bool {
	data, err := readZipFile(r, name)
	if err != nil || data == nil {
		return false
	}
	return xml.Unmarshal(data, v) == nil
}

// relsPath returns the relationships part of a package part,
// e.g. xl/drawings/drawing1.xml -> xl/drawings/_rels/drawing1.xml.rels.
func relsPath(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveRelativePath resolves a relationship target against the directory
// of its source part.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		if strings.HasPrefix(target, "/xl/") {
			return strings.TrimPrefix(target, "/")
		}
		return baseDir + target
	}
	return path.Clean(path.Join(baseDir, target))
}

// sheetParts maps sheet names to their worksheet part paths.
func sheetParts(r *zip.Reader) map[string]string {
	result := make(map[string]string)

	var wb workbookPart
	if !readXMLPart(r, "xl/workbook.xml", &wb) {
		return result
	}
	var rels relationships
	if !readXMLPart(r, "xl/_rels/workbook.xml.rels", &rels) {
		return result
	}

	targets := make(map[string]string, len(rels.Items))
	for _, rel := range rels.Items {
		if strings.Contains(strings.ToLower(rel.Type), "worksheet") {
			targets[rel.ID] = rel.Target
		}
	}
	for _, s := range wb.Sheets {
		if target, ok := targets[s.RID]; ok {
			result[s.Name] = resolveRelativePath(target, "xl")
		}
	}
	return result
}

// relatedParts returns the resolved targets of the relationships of part
// whose type contains kind, keyed by relationship id.
func relatedParts(r *zip.Reader, part, kind string) map[string]string {
	result := make(map[string]string)
	var rels relationships
	if !readXMLPart(r, relsPath(part), &rels) {
		return result
	}
	baseDir := path.Dir(part)
	for _, rel := range rels.Items {
		if strings.HasSuffix(strings.ToLower(rel.Type), "/"+kind) {
			result[rel.ID] = resolveRelativePath(rel.Target, baseDir)
		}
	}
	return result
}
