// Package ingest turns staged uploads into enriched, deduplicated image
// records. Registration only queues work; the worker owns the whole
// staged -> persisted lifecycle and records each outcome on the task row.
package ingest

import (
	"bytes"
	"context"
	"log"
	"strings"
	"time"

	"server/ai"
	"server/colormeta"
	"server/exifmeta"
	"server/models"
	"server/storage"
	"server/transcode"
	"server/utils"
)

const idlePoll = 30 * time.Second

// RecordStore is the slice of the entity store the worker needs: image
// persistence plus the durable task queue it drains.
type RecordStore interface {
	Put(*models.Image) error
	ExistsHash(hash string) (bool, error)
	AddIngest(*models.IngestTask) error
	NextPendingIngest() (*models.IngestTask, error)
	SaveIngest(*models.IngestTask) error
}

type Worker struct {
	records   RecordStore
	blobs     storage.StorageAPI
	captioner ai.Captioner
	nudge     chan struct{}
}

func NewWorker(records RecordStore, blobs storage.StorageAPI, captioner ai.Captioner) *Worker {
	return &Worker{
		records:   records,
		blobs:     blobs,
		captioner: captioner,
		nudge:     make(chan struct{}, 1),
	}
}

// Register queues an ingestion for a staged filename and returns immediately.
// The outcome never reaches the caller; it lands on the task row.
func (w *Worker) Register(filename string) (models.IngestTask, error) {
	task := models.NewIngestTask(filename)
	if err := w.records.AddIngest(&task); err != nil {
		return task, err
	}
	select {
	case w.nudge <- struct{}{}:
	default:
	}
	return task, nil
}

// Run drains pending tasks forever. Meant to be launched once from main.
func (w *Worker) Run() {
	for {
		if !w.runOnce() {
			select {
			case <-w.nudge:
			case <-time.After(idlePoll):
			}
		}
	}
}

// runOnce processes the oldest pending task and reports whether there was one
// to process. A store error counts as idle so the loop backs off.
func (w *Worker) runOnce() bool {
	task, err := w.records.NextPendingIngest()
	if err != nil {
		log.Printf("Error fetching pending ingest task: %v", err)
		return false
	}
	if task == nil {
		return false
	}
	task.Status, task.Detail = w.Ingest(context.Background(), task)
	if err := w.records.SaveIngest(task); err != nil {
		log.Printf("Error saving ingest task %d: %v", task.ID, err)
		return false
	}
	return true
}

// Ingest runs one task through dedup, transcode, enrichment, captioning and
// persistence, returning the final status and a human-readable detail.
// Failures are terminal: log, abandon, no retry.
func (w *Worker) Ingest(ctx context.Context, task *models.IngestTask) (int, string) {
	stagedPath := storage.StagedPrefix + "/" + task.Filename

	buf := bytes.Buffer{}
	if _, err := w.blobs.Load(stagedPath, &buf); err != nil {
		log.Printf("Ingest %d: staged blob %s missing: %v", task.ID, stagedPath, err)
		return models.IngestFailed, "staged blob missing"
	}
	raw := buf.Bytes()

	// Dedup key is the staged bytes, before transcoding
	hash := utils.MD5String(raw)
	duplicate, err := w.records.ExistsHash(hash)
	if err != nil {
		log.Printf("Ingest %d: dedup lookup failed: %v", task.ID, err)
		return models.IngestFailed, "dedup lookup failed"
	}
	if duplicate {
		if err := w.blobs.Delete(stagedPath); err != nil {
			log.Printf("Ingest %d: deleting duplicate staged blob: %v", task.ID, err)
		}
		log.Printf("Ingest %d: duplicate content %s, discarded", task.ID, hash)
		return models.IngestDuplicate, "content hash already ingested"
	}

	encoded, err := transcode.Reencode(raw)
	if err != nil {
		log.Printf("Ingest %d: transcode failed: %v", task.ID, err)
		return models.IngestFailed, "transcode failed"
	}

	// Enrichment is best-effort on both fronts; the record simply degrades.
	facts := exifmeta.Extract(raw)
	profile := colormeta.Extract(encoded)

	// No caption, no record. The staged blob stays put for inspection.
	lines, err := w.captioner.Haiku(ctx, encoded)
	if err != nil {
		log.Printf("Ingest %d: captioning failed: %v", task.ID, err)
		return models.IngestFailed, "captioning failed"
	}

	publicPath := storage.PublicPrefix + "/" + hash + ".jpg"
	if _, err := w.blobs.Save(publicPath, "image/jpeg", bytes.NewReader(encoded)); err != nil {
		log.Printf("Ingest %d: upload failed: %v", task.ID, err)
		return models.IngestFailed, "public upload failed"
	}

	img := models.Image{
		UploadedAt:    time.Now().Unix(),
		Name:          task.Filename,
		ContentHash:   hash,
		PublicURL:     w.blobs.PublicURL(publicPath),
		Created:       facts.Created,
		Latlong:       facts.Latlong,
		CameraModel:   facts.CameraModel,
		ExposureTime:  facts.ExposureTime,
		FNumber:       facts.FNumber,
		ISO:           facts.ISO,
		FocalLength:   facts.FocalLength,
		FocalLength35: facts.FocalLength35,
		Haiku:         strings.Join(lines, "\n"),
	}
	if profile != nil {
		img.Hue = &profile.Hue
		img.ColorR = &profile.R
		img.ColorG = &profile.G
		img.ColorB = &profile.B
		img.Saturation = &profile.Saturation
		img.Brightness = &profile.Brightness
		img.ColorFamily = &profile.Family
	}
	if err := w.records.Put(&img); err != nil {
		log.Printf("Ingest %d: persisting record failed: %v", task.ID, err)
		return models.IngestFailed, "store write failed"
	}
	if err := w.blobs.Delete(stagedPath); err != nil {
		log.Printf("Ingest %d: deleting staged blob after success: %v", task.ID, err)
	}
	return models.IngestComplete, ""
}
