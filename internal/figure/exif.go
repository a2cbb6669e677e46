package figure

import (
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Category groups sensitive EXIF tags.
type Category string

const (
	CategoryLocation Category = "location"
	CategoryIdentity Category = "identity"
	CategoryDevice   Category = "device"
)

// Finding is one sensitive EXIF tag found in an image.
type Finding struct {
	Category Category
	Tag      string
	Value    string
}

// MetadataError is returned by a strict Loader when an image carries
// sensitive metadata.
type MetadataError struct {
	Findings []Finding
}

func (e *MetadataError) Error() string {
	tags := make([]string, 0, len(e.Findings))
	for _, f := range e.Findings {
		tags = append(tags, f.Tag)
	}
	return fmt.Sprintf("sensitive image metadata: %s", strings.Join(tags, ", "))
}

var sensitiveTags = map[string]Category{
	"GPSLatitude":        CategoryLocation,
	"GPSLongitude":       CategoryLocation,
	"GPSAltitude":        CategoryLocation,
	"Artist":             CategoryIdentity,
	"Author":             CategoryIdentity,
	"XPAuthor":           CategoryIdentity,
	"Copyright":          CategoryIdentity,
	"CameraOwnerName":    CategoryIdentity,
	"SerialNumber":       CategoryDevice,
	"CameraSerialNumber": CategoryDevice,
	"BodySerialNumber":   CategoryDevice,
	"LensSerialNumber":   CategoryDevice,
}

// Scan returns the sensitive EXIF tags found in image data. Images
// without EXIF, or with EXIF that cannot be parsed, yield no findings.
func Scan(data []byte) []Finding {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	var findings []Finding
	seen := make(map[string]bool)
	for _, entry := range entries {
		category, ok := sensitiveTags[entry.TagName]
		if !ok || seen[entry.TagName] {
			continue
		}
		seen[entry.TagName] = true
		findings = append(findings, Finding{
			Category: category,
			Tag:      entry.TagName,
			Value:    entry.Formatted,
		})
	}
	return findings
}
