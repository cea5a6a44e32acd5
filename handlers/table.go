package handlers

import (
	"log"
	"net/http"

	"server/config"
	"server/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const cursorStackKey = "cursors"

type TablePage struct {
	Images      []ImageView `json:"images"`
	TotalPages  int         `json:"total_pages"`
	CurrentPage int         `json:"current_page"`
}

// Pager is the slice of the entity store the table view needs. The backing
// store only hands out opaque forward cursors, so browsing is a walk.
type Pager interface {
	FetchPage(limit int, cursor string) ([]models.Image, string, error)
	Count() (int64, error)
}

// TableList serves one fixed-size page per call. The per-session cursor
// stack lives in the cookie session; each call fetches from the last cursor
// and pushes the new one, so the page number is just the stack depth.
// Forward-only: there is no way back to an earlier page within a session.
func TableList(c *gin.Context) {
	session := sessions.Default(c)
	stack, _ := session.Get(cursorStackKey).([]string)

	page, stack, err := buildTablePage(store, stack, config.PAGE_SIZE)
	if err != nil {
		log.Printf("Table fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	session.Set(cursorStackKey, stack)
	if err := session.Save(); err != nil {
		log.Printf("Error saving session: %v", err)
	}
	c.JSON(http.StatusOK, page)
}

// buildTablePage advances the session's cursor stack by one fetch and pads
// short pages with empty placeholders so renderers can rely on the size.
func buildTablePage(p Pager, stack []string, pageSize int) (TablePage, []string, error) {
	from := ""
	if len(stack) > 0 {
		from = stack[len(stack)-1]
	}
	images, next, err := p.FetchPage(pageSize, from)
	if err != nil {
		return TablePage{}, stack, err
	}
	count, err := p.Count()
	if err != nil {
		return TablePage{}, stack, err
	}
	if len(images) > 0 {
		stack = append(stack, next)
	}
	currentPage := len(stack)
	if currentPage == 0 {
		currentPage = 1
	}
	views := make([]ImageView, 0, pageSize)
	for i := range images {
		views = append(views, toView(&images[i]))
	}
	for len(views) < pageSize {
		views = append(views, ImageView{})
	}
	return TablePage{
		Images:      views,
		TotalPages:  int((count + int64(pageSize) - 1) / int64(pageSize)),
		CurrentPage: currentPage,
	}, stack, nil
}
