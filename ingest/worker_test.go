package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"server/models"
	"server/storage"
)

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	bucket  storage.Bucket
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

func (f *fakeBlobs) Load(path string, writer io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	if !ok {
		return 0, errors.New("object not found: " + path)
	}
	n, err := writer.Write(data)
	return int64(n), err
}

func (f *fakeBlobs) Save(path, mimeType string, reader io.Reader) (int64, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	return int64(len(data)), nil
}

func (f *fakeBlobs) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[path]; !ok {
		return errors.New("object not found: " + path)
	}
	delete(f.objects, path)
	return nil
}

func (f *fakeBlobs) Serve(path string, request *http.Request, writer http.ResponseWriter) {}

func (f *fakeBlobs) SignUploadURL(path, contentType string, ttl time.Duration) (string, error) {
	return "https://blobs.test/upload/" + path, nil
}

func (f *fakeBlobs) PublicURL(path string) string {
	return "https://blobs.test/" + path
}

func (f *fakeBlobs) GetBucket() *storage.Bucket {
	return &f.bucket
}

type fakeRecords struct {
	mu     sync.Mutex
	images []models.Image
	tasks  []models.IngestTask
}

func (f *fakeRecords) Put(img *models.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	img.ID = uint64(len(f.images) + 1)
	f.images = append(f.images, *img)
	return nil
}

func (f *fakeRecords) ExistsHash(hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.images {
		if !img.Deleted && img.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecords) AddIngest(task *models.IngestTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = uint64(len(f.tasks) + 1)
	f.tasks = append(f.tasks, *task)
	return nil
}

func (f *fakeRecords) NextPendingIngest() (*models.IngestTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].Status == models.IngestPending {
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, nil
}

func (f *fakeRecords) SaveIngest(task *models.IngestTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == task.ID {
			f.tasks[i] = *task
			return nil
		}
	}
	return errors.New("unknown task")
}

type fakeCaptioner struct {
	lines []string
	err   error
}

func (f *fakeCaptioner) Haiku(ctx context.Context, imageData []byte) ([]string, error) {
	return f.lines, f.err
}

func testJPEG(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x * 30), B: uint8(y * 30), A: 255})
		}
	}
	buf := bytes.Buffer{}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func stage(t *testing.T, blobs *fakeBlobs, filename string, data []byte) *models.IngestTask {
	t.Helper()
	if _, err := blobs.Save(storage.StagedPrefix+"/"+filename, "image/jpeg", bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	return &models.IngestTask{ID: 1, Filename: filename}
}

func TestIngestSuccess(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})
	task := stage(t, blobs, "photo.jpg", testJPEG(t, 200))

	status, detail := worker.Ingest(context.Background(), task)
	if status != models.IngestComplete {
		t.Fatalf("Ingest() status = %d (%s), want complete", status, detail)
	}
	if len(records.images) != 1 {
		t.Fatalf("persisted %d records, want 1", len(records.images))
	}
	img := records.images[0]
	if img.Haiku != "one\ntwo\nthree" {
		t.Errorf("haiku = %q", img.Haiku)
	}
	if img.ContentHash == "" || img.PublicURL == "" {
		t.Errorf("record missing hash or URL: %+v", img)
	}
	if blobs.Exists(storage.StagedPrefix + "/photo.jpg") {
		t.Error("staged blob still present after successful ingestion")
	}
	if !blobs.Exists(storage.PublicPrefix + "/" + img.ContentHash + ".jpg") {
		t.Error("public rendition missing")
	}
}

func TestIngestDuplicateDiscardsStagedInput(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})
	data := testJPEG(t, 120)

	first := stage(t, blobs, "first.jpg", data)
	if status, _ := worker.Ingest(context.Background(), first); status != models.IngestComplete {
		t.Fatalf("first ingest status = %d", status)
	}
	second := stage(t, blobs, "second.jpg", data)
	status, _ := worker.Ingest(context.Background(), second)
	if status != models.IngestDuplicate {
		t.Fatalf("second ingest status = %d, want duplicate", status)
	}
	if len(records.images) != 1 {
		t.Errorf("persisted %d records, want 1", len(records.images))
	}
	if blobs.Exists(storage.StagedPrefix + "/second.jpg") {
		t.Error("duplicate staged blob not deleted")
	}
}

func TestIngestCaptionFailureKeepsStagedInput(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{err: errors.New("model unavailable")})
	task := stage(t, blobs, "photo.jpg", testJPEG(t, 40))

	status, _ := worker.Ingest(context.Background(), task)
	if status != models.IngestFailed {
		t.Fatalf("Ingest() status = %d, want failed", status)
	}
	if len(records.images) != 0 {
		t.Errorf("persisted %d records, want 0", len(records.images))
	}
	if !blobs.Exists(storage.StagedPrefix + "/photo.jpg") {
		t.Error("staged blob deleted; should be kept for inspection")
	}
}

func TestIngestMissingStagedBlob(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})

	status, _ := worker.Ingest(context.Background(), &models.IngestTask{ID: 1, Filename: "gone.jpg"})
	if status != models.IngestFailed {
		t.Errorf("Ingest() status = %d, want failed", status)
	}
	if len(records.images) != 0 {
		t.Errorf("persisted %d records, want 0", len(records.images))
	}
}

func TestIngestUndecodableImage(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})
	task := stage(t, blobs, "junk.bin", []byte("not an image"))

	status, _ := worker.Ingest(context.Background(), task)
	if status != models.IngestFailed {
		t.Errorf("Ingest() status = %d, want failed", status)
	}
}

func TestIngestWithoutExifStillPersists(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})
	// Plain encoder output: no EXIF block at all
	task := stage(t, blobs, "bare.jpg", testJPEG(t, 90))

	status, detail := worker.Ingest(context.Background(), task)
	if status != models.IngestComplete {
		t.Fatalf("Ingest() status = %d (%s), want complete", status, detail)
	}
	img := records.images[0]
	if img.Created != nil || img.Latlong != nil || img.CameraModel != nil {
		t.Errorf("EXIF-derived fields set without EXIF: %+v", img)
	}
}

func TestRegisterAndDrainQueue(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})

	task, err := worker.Register("queued.jpg")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if task.Token == "" {
		t.Error("Register() task has no token")
	}
	if task.Status != models.IngestPending {
		t.Errorf("Register() task status = %d, want pending", task.Status)
	}
	if _, err := blobs.Save(storage.StagedPrefix+"/queued.jpg", "image/jpeg", bytes.NewReader(testJPEG(t, 60))); err != nil {
		t.Fatal(err)
	}

	if !worker.runOnce() {
		t.Fatal("runOnce() = false with a pending task")
	}
	saved := records.tasks[0]
	if saved.Status != models.IngestComplete {
		t.Errorf("drained task status = %d (%s), want complete", saved.Status, saved.Detail)
	}
	if len(records.images) != 1 {
		t.Errorf("persisted %d records, want 1", len(records.images))
	}
	if worker.runOnce() {
		t.Error("runOnce() = true with an empty queue")
	}
}

func TestIngestDistinctImagesBothPersist(t *testing.T) {
	blobs := newFakeBlobs()
	records := &fakeRecords{}
	worker := NewWorker(records, blobs, &fakeCaptioner{lines: []string{"one", "two", "three"}})

	for i, seed := range []uint8{10, 250} {
		task := stage(t, blobs, fmt.Sprintf("photo%d.jpg", i), testJPEG(t, seed))
		if status, detail := worker.Ingest(context.Background(), task); status != models.IngestComplete {
			t.Fatalf("ingest %d status = %d (%s)", i, status, detail)
		}
	}
	if len(records.images) != 2 {
		t.Errorf("persisted %d records, want 2", len(records.images))
	}
}
