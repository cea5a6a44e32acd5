// Package exifmeta derives camera facts, the capture timestamp and a
// formatted geolocation from the EXIF block of a raw image buffer. Everything
// here is best-effort: missing or malformed tags simply leave fields unset.
package exifmeta

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/zsefvlol/timezonemapper"
)

const createdFormat = "2006-01-02T15:04:05.000Z"

type Facts struct {
	Created       *string
	Latlong       *string
	CameraModel   *string
	ExposureTime  *string
	FNumber       *string
	ISO           *string
	FocalLength   *string
	FocalLength35 *string
}

// Extract never fails; an image without EXIF yields zero Facts.
func Extract(raw []byte) (facts Facts) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	tags := rawTags(x)

	facts.CameraModel = tagValue(tags, "Model")
	facts.ExposureTime = tagValue(tags, "ExposureTime")
	facts.FNumber = tagValue(tags, "FNumber")
	facts.ISO = tagValue(tags, "ISOSpeedRatings")
	facts.FocalLength = tagValue(tags, "FocalLength")
	facts.FocalLength35 = tagValue(tags, "FocalLengthIn35mmFilm")

	latlong, lat, long, ok := parseGPS(tags)
	if ok {
		facts.Latlong = &latlong
	}
	facts.Created = parseCreated(tags, lat, long, ok)
	return
}

// rawTags walks every EXIF field into a normalized name -> stringified value
// map; values keep the tag's raw shape (rationals stay "22/1").
func rawTags(x *exif.Exif) map[string]string {
	w := tagWalker{tags: map[string]string{}}
	_ = x.Walk(&w)
	return w.tags
}

type tagWalker struct {
	tags map[string]string
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.tags[string(name)] = strings.Trim(tag.String(), "\"")
	return nil
}

func tagValue(tags map[string]string, name string) *string {
	v, ok := tags[name]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// parseCreated reparses the EXIF wall-clock capture time into ISO-8601 UTC.
// EXIF timestamps carry no zone; when the photo has GPS coordinates the
// wall-clock is interpreted in the timezone at that location, otherwise as UTC.
func parseCreated(tags map[string]string, lat, long float64, haveGPS bool) *string {
	value, ok := tags["DateTimeOriginal"]
	if !ok {
		if value, ok = tags["DateTime"]; !ok {
			return nil
		}
	}
	zone := time.UTC
	if haveGPS {
		if loc, err := time.LoadLocation(timezonemapper.LatLngToTimezoneString(lat, long)); err == nil && loc != nil {
			zone = loc
		}
	}
	t, err := time.ParseInLocation("2006:01:02 15:04:05", value, zone)
	if err != nil {
		return nil
	}
	created := t.UTC().Format(createdFormat)
	return &created
}

// parseGPS converts the DMS latitude/longitude tags into the formatted
// "35.68944 N, 139.69171 E" form plus signed decimals. Any parse failure
// drops the location entirely.
func parseGPS(tags map[string]string) (formatted string, lat, long float64, ok bool) {
	latRef := tags["GPSLatitudeRef"]
	longRef := tags["GPSLongitudeRef"]
	if latRef == "" || longRef == "" {
		return
	}
	lat, err := DMSToDecimal(tags["GPSLatitude"])
	if err != nil {
		return
	}
	long, err = DMSToDecimal(tags["GPSLongitude"])
	if err != nil {
		return
	}
	formatted = fmt.Sprintf("%.5f %s, %.5f %s", lat, latRef, long, longRef)
	if latRef == "S" {
		lat = -lat
	}
	if longRef == "W" {
		long = -long
	}
	return formatted, lat, long, true
}

// DMSToDecimal parses a degrees-minutes-seconds triple where each component
// may be a plain number or a "numerator/denominator" rational. Accepted
// shapes include `[35, 41, 22/1]` and `["35/1","41/1","22/1"]`.
func DMSToDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected 3 DMS components in %q", s)
	}
	var dms [3]float64
	for i, part := range parts {
		v, err := parseRational(part)
		if err != nil {
			return 0, err
		}
		dms[i] = v
	}
	return dms[0] + dms[1]/60 + dms[2]/3600, nil
}

func parseRational(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "\"")
	if num, denom, found := strings.Cut(s, "/"); found {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("bad rational %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(denom, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad rational %q", s)
		}
		return n / d, nil
	}
	return strconv.ParseFloat(s, 64)
}
