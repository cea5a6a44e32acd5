package handlers

import (
	"log"
	"net/http"
	"sort"
	"time"

	"server/config"
	"server/models"
	"server/utils"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
)

type ImageView struct {
	URL           string   `json:"url"`
	Line1         string   `json:"line1"`
	Line2         string   `json:"line2"`
	Line3         string   `json:"line3"`
	Created       *string  `json:"created,omitempty"`
	Latlong       *string  `json:"latlong,omitempty"`
	CameraModel   *string  `json:"camera_model,omitempty"`
	ExposureTime  *string  `json:"exposure_time,omitempty"`
	FNumber       *string  `json:"f_number,omitempty"`
	ISO           *string  `json:"iso,omitempty"`
	FocalLength   *string  `json:"focal_length,omitempty"`
	FocalLength35 *string  `json:"focal_length_35,omitempty"`
	Hue           *int     `json:"hue,omitempty"`
	RGB           []int    `json:"rgb,omitempty"`
	Saturation    *float64 `json:"saturation,omitempty"`
	Brightness    *float64 `json:"brightness,omitempty"`
	ColorFamily   *string  `json:"color_family,omitempty"`
}

func toView(img *models.Image) ImageView {
	lines := img.HaikuLines()
	view := ImageView{
		URL:           img.PublicURL,
		Line1:         lines[0],
		Line2:         lines[1],
		Line3:         lines[2],
		Created:       img.Created,
		Latlong:       img.Latlong,
		CameraModel:   img.CameraModel,
		ExposureTime:  img.ExposureTime,
		FNumber:       img.FNumber,
		ISO:           img.ISO,
		FocalLength:   img.FocalLength,
		FocalLength35: img.FocalLength35,
		Hue:           img.Hue,
		Saturation:    img.Saturation,
		Brightness:    img.Brightness,
		ColorFamily:   img.ColorFamily,
	}
	if img.ColorR != nil && img.ColorG != nil && img.ColorB != nil {
		view.RGB = []int{*img.ColorR, *img.ColorG, *img.ColorB}
	}
	return view
}

type galleryEntry struct {
	builtAt time.Time
	views   []ImageView
}

// The whole collection is materialized per call, so cache the projection for
// a minute. The store is eventually consistent anyway.
var galleryCache = cmap.New[galleryEntry]()

const galleryCacheKey = "gallery"

// GalleryList returns every image, brightest first.
func GalleryList(c *gin.Context) {
	maxAge := time.Duration(config.GALLERY_CACHE_SECS) * time.Second
	if entry, ok := galleryCache.Get(galleryCacheKey); ok && time.Since(entry.builtAt) < maxAge {
		serveGallery(c, entry.views)
		return
	}
	images, err := store.All()
	if err != nil {
		log.Printf("Gallery load error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].BrightnessOrZero() > images[j].BrightnessOrZero()
	})
	views := make([]ImageView, 0, len(images))
	for i := range images {
		views = append(views, toView(&images[i]))
	}
	galleryCache.Set(galleryCacheKey, galleryEntry{builtAt: time.Now(), views: views})
	serveGallery(c, views)
}

func serveGallery(c *gin.Context, views []ImageView) {
	utils.CachePublicly(c, config.GALLERY_CACHE_SECS)
	c.JSON(http.StatusOK, views)
}
