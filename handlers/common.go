package handlers

import (
	"strings"

	"server/entity"
	"server/ingest"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse       = Response{}
	NopeResponse     = Response{"nope"}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
)

var (
	store  *entity.Store
	worker *ingest.Worker
)

func Init(s *entity.Store, w *ingest.Worker) {
	store = s
	worker = w
}

// sanitizeFilename restricts staged filenames the same way asset names are
// restricted elsewhere: anything outside [a-zA-Z0-9._-] becomes '_'.
func sanitizeFilename(name string) string {
	var out strings.Builder
	for i, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			(c == '.' && i > 0) || (c == '-') || (c == '_') {

			out.WriteRune(c)
		} else {
			out.WriteString("_")
		}
	}
	return out.String()
}
