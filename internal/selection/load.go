package selection

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Extensions lists the file types LoadFile understands.
var Extensions = []string{".json", ".csv", ".geojson"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// LoadFile reads a selection from disk. JSON files may hold a payload object
// or a bare array of descriptors.
func LoadFile(path string) (Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			msg, err = DecodeList(trimmed)
		} else {
			msg, err = Decode(trimmed)
		}
	case ".csv":
		msg, err = ReadCSV(bytes.NewReader(data))
	case ".geojson":
		msg, err = DecodeGeoJSON(data)
	default:
		return Message{}, fmt.Errorf("unsupported file: %s", ext)
	}
	if err != nil {
		return Message{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	msg.Source = "file:" + filepath.Base(path)
	return msg, nil
}

var csvColumns = map[string]string{
	"minlongitude": "minLongitude", "minlon": "minLongitude", "west": "minLongitude",
	"maxlongitude": "maxLongitude", "maxlon": "maxLongitude", "east": "maxLongitude",
	"minlatitude": "minLatitude", "minlat": "minLatitude", "south": "minLatitude",
	"maxlatitude": "maxLatitude", "maxlat": "maxLatitude", "north": "maxLatitude",
	"title": "title", "authors": "authors", "author": "authors",
	"datacenter": "dataCenter", "data_center": "dataCenter",
	"color": "color", "colour": "color",
	"metadatalink": "metadataLink", "metadata_link": "metadataLink",
}

// ReadCSV reads descriptors from a CSV with a header row. Column names are
// matched case-insensitively; rows with unparsable bounds are rejected.
func ReadCSV(r io.Reader) (Message, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return Message{}, err
	}
	if len(recs) == 0 {
		return Message{}, errors.New("empty csv")
	}
	idx := map[string]int{}
	for i, h := range recs[0] {
		if name, ok := csvColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := idx[name]; !seen {
				idx[name] = i
			}
		}
	}
	for _, c := range []string{"minLongitude", "maxLongitude", "minLatitude", "maxLatitude"} {
		if _, ok := idx[c]; !ok {
			return Message{}, fmt.Errorf("csv: column %s not found", c)
		}
	}
	var msg Message
	for n, row := range recs[1:] {
		cell := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		var bounds [4]float64
		var bad error
		for i, c := range []string{"minLongitude", "maxLongitude", "minLatitude", "maxLatitude"} {
			v, err := strconv.ParseFloat(cell(c), 64)
			if err != nil {
				bad = fmt.Errorf("%w: %s: %v", ErrMissingBounds, c, err)
				break
			}
			bounds[i] = v
		}
		if bad != nil {
			msg.Rejected = append(msg.Rejected, Rejected{Index: n, Err: bad})
			continue
		}
		msg.Selected = append(msg.Selected, Descriptor{
			MinLongitude: bounds[0],
			MaxLongitude: bounds[1],
			MinLatitude:  bounds[2],
			MaxLatitude:  bounds[3],
			Title:        cell("title"),
			Authors:      cell("authors"),
			DataCenter:   cell("dataCenter"),
			Color:        cell("color"),
			MetadataLink: cell("metadataLink"),
		})
	}
	return msg, nil
}

// DecodeGeoJSON derives one descriptor per feature from the feature's bound.
// Properties named like the payload fields, or like the exported attributes,
// fill in the metadata.
func DecodeGeoJSON(data []byte) (Message, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil || fc.Type != "FeatureCollection" {
		f, ferr := geojson.UnmarshalFeature(data)
		if ferr != nil {
			if err == nil {
				err = ferr
			}
			return Message{}, fmt.Errorf("geojson: %w", err)
		}
		fc = geojson.NewFeatureCollection().Append(f)
	}
	var msg Message
	for i, f := range fc.Features {
		if f.Geometry == nil {
			msg.Rejected = append(msg.Rejected, Rejected{Index: i, Err: ErrMissingBounds})
			continue
		}
		b := f.Geometry.Bound()
		msg.Selected = append(msg.Selected, Descriptor{
			MinLongitude: b.Min.Lon(),
			MaxLongitude: b.Max.Lon(),
			MinLatitude:  b.Min.Lat(),
			MaxLatitude:  b.Max.Lat(),
			Title:        firstProp(f.Properties, "title", "Dataset Title"),
			Authors:      firstProp(f.Properties, "authors", "Author"),
			DataCenter:   firstProp(f.Properties, "dataCenter", "Data Center"),
			Color:        firstProp(f.Properties, "color"),
			MetadataLink: firstProp(f.Properties, "metadataLink"),
		})
	}
	return msg, nil
}

func firstProp(p geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if s := p.MustString(k, ""); s != "" {
			return s
		}
	}
	return ""
}
