package models

type Image struct {
	ID            uint64  `gorm:"primaryKey"`
	UploadedAt    int64   `gorm:"index:idx_uploaded_id,priority:1;not null"` // unix time the record was persisted; listing order key
	Name          string  `gorm:"type:varchar(300)"`
	ContentHash   string  `gorm:"type:varchar(64);index:idx_content_hash;not null"`
	PublicURL     string  `gorm:"type:varchar(2000)"`
	Created       *string `gorm:"type:varchar(30)"` // ISO-8601 UTC, from EXIF capture time
	Latlong       *string `gorm:"type:varchar(50)"`
	CameraModel   *string `gorm:"type:varchar(100)"`
	ExposureTime  *string `gorm:"type:varchar(30)"`
	FNumber       *string `gorm:"type:varchar(30)"`
	ISO           *string `gorm:"type:varchar(30)"`
	FocalLength   *string `gorm:"type:varchar(30)"`
	FocalLength35 *string `gorm:"type:varchar(30)"`
	Hue           *int
	ColorR        *int
	ColorG        *int
	ColorB        *int
	Saturation    *float64
	Brightness    *float64
	ColorFamily   *string `gorm:"type:varchar(20)"`
	Haiku         string  `gorm:"type:varchar(500);not null"` // three lines joined with \n
	Deleted       bool    `gorm:"not null;default 0"`
}

// HaikuLines splits the stored caption into its three lines.
// Short values are padded so renderers can always index line 1..3.
func (i *Image) HaikuLines() [3]string {
	var lines [3]string
	for n, line := range splitLines(i.Haiku) {
		if n >= 3 {
			break
		}
		lines[n] = line
	}
	return lines
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// BrightnessOrZero is the gallery sort key; assets with no color profile sink
// to the bottom.
func (i *Image) BrightnessOrZero() float64 {
	if i.Brightness == nil {
		return 0
	}
	return *i.Brightness
}
