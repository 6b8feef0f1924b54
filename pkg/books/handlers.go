package books

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/readloop/readloop/pkg/models"
	"github.com/readloop/readloop/pkg/notify"
	"github.com/readloop/readloop/pkg/settings"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService     *Service
	settingsService *settings.Service
	notifier        notify.Notifier
}

// ProgressReport is one row of the progress endpoint.
type ProgressReport struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Status       string  `json:"status"`
	LastReadPage int     `json:"last_read_page"`
	TotalPages   int     `json:"total_pages"`
	Percent      float64 `json:"percent"`
}

// ConfirmResponse is the outcome of a confirmation endpoint.
type ConfirmResponse struct {
	Book     *models.Book     `json:"book"`
	Reminder *models.Reminder `json:"reminder"`
	Finished bool             `json:"finished"`
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.StartPage > params.TotalPages {
		return errcodes.InvalidRange("start_page can't be greater than total_pages.")
	}

	book, err := h.bookService.CreateBook(ctx, CreateBookOptions{
		Title:      params.Title,
		Author:     params.Author,
		TotalPages: params.TotalPages,
		StartPage:  params.StartPage,
		StartDate:  params.StartDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// The header post is best-effort: the book exists either way, and a
	// missing header just means there's nothing to edit at finish time.
	channelID, err := h.settingsService.ChannelID(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if channelID != 0 {
		messageID, err := h.notifier.PostHeader(ctx, channelID, book)
		if err != nil {
			log.Warn("failed to post book header", logger.Data{"book_id": book.ID, "error": err.Error()})
		} else if messageID != 0 {
			if err := h.bookService.SetHeaderMessage(ctx, book.ID, messageID); err != nil {
				return errors.WithStack(err)
			}
			book.HeaderMessageID = &messageID
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	query := ListBooksQuery{}
	if err := c.Bind(&query); err != nil {
		return errors.WithStack(err)
	}

	opts := ListBooksOptions{
		Limit:  &query.Limit,
		Offset: &query.Offset,
	}
	if query.Status != "" {
		opts.Statuses = []string{query.Status}
	}

	list, err := h.bookService.ListBooks(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, list))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) pause(c echo.Context) error {
	return h.transition(c, h.bookService.Pause)
}

func (h *handler) resume(c echo.Context) error {
	return h.transition(c, h.bookService.Resume)
}

func (h *handler) transition(c echo.Context, fn func(ctx context.Context, id int) (*models.Book, error)) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := fn(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) progress(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.bookService.ListBooks(ctx, ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	report := make([]ProgressReport, 0, len(list))
	for _, book := range list {
		percent := 0.0
		if book.TotalPages > 0 {
			percent = float64(book.LastReadPage) / float64(book.TotalPages) * 100
		}
		report = append(report, ProgressReport{
			ID:           book.ID,
			Title:        book.Title,
			Author:       book.Author,
			Status:       book.Status,
			LastReadPage: book.LastReadPage,
			TotalPages:   book.TotalPages,
			Percent:      percent,
		})
	}

	return errors.WithStack(c.JSON(http.StatusOK, report))
}

func (h *handler) confirmRead(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reminder")
	}

	result, err := h.bookService.ConfirmRead(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	h.afterConfirm(c, result)

	return errors.WithStack(c.JSON(http.StatusOK, ConfirmResponse{
		Book:     result.Book,
		Reminder: result.Reminder,
		Finished: result.Finished,
	}))
}

func (h *handler) confirmCustomRead(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reminder")
	}

	params := ConfirmCustomReadPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.bookService.ConfirmCustomRead(ctx, id, params.FromPage, params.ToPage)
	if err != nil {
		return errors.WithStack(err)
	}

	h.afterConfirm(c, result)

	return errors.WithStack(c.JSON(http.StatusOK, ConfirmResponse{
		Book:     result.Book,
		Reminder: result.Reminder,
		Finished: result.Finished,
	}))
}

func (h *handler) skip(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reminder")
	}

	reminder, err := h.bookService.reminderService.MarkSkipped(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	h.cleanupReminderMessage(c, reminder)

	return errors.WithStack(c.JSON(http.StatusOK, reminder))
}

// afterConfirm performs the channel side effects of a confirmation. The state
// is already committed; failures here are logged and the response still
// succeeds.
func (h *handler) afterConfirm(c echo.Context, result *ConfirmResult) {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	h.cleanupReminderMessage(c, result.Reminder)

	if !result.Finished {
		return
	}

	channelID, err := h.settingsService.ChannelID(ctx)
	if err != nil || channelID == 0 {
		return
	}

	if result.Book.HeaderMessageID != nil {
		if err := h.notifier.EditHeader(ctx, channelID, *result.Book.HeaderMessageID, result.Book); err != nil {
			log.Warn("failed to edit header", logger.Data{"book_id": result.Book.ID, "error": err.Error()})
		}
	}
	if err := h.notifier.PostCompletion(ctx, channelID, result.Book); err != nil {
		log.Warn("failed to post completion", logger.Data{"book_id": result.Book.ID, "error": err.Error()})
	}
}

// cleanupReminderMessage deletes the delivered channel message of a resolved
// reminder so the channel only shows actionable reminders.
func (h *handler) cleanupReminderMessage(c echo.Context, reminder *models.Reminder) {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	if reminder.ChannelMessageID == nil {
		return
	}

	channelID, err := h.settingsService.ChannelID(ctx)
	if err != nil || channelID == 0 {
		return
	}

	if err := h.notifier.DeleteMessage(ctx, channelID, *reminder.ChannelMessageID); err != nil {
		log.Warn("failed to delete reminder message", logger.Data{"reminder_id": reminder.ID, "error": err.Error()})
		return
	}
	if err := h.bookService.reminderService.ClearChannelMessage(ctx, reminder.ID); err != nil {
		log.Warn("failed to clear reminder message", logger.Data{"reminder_id": reminder.ID, "error": err.Error()})
		return
	}
	reminder.ChannelMessageID = nil
}
