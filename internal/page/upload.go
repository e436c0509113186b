package page

import (
	"context"
	"io"

	"github.com/dukerupert/andre/internal/api"
	"github.com/dukerupert/andre/internal/router"
	"github.com/dukerupert/andre/internal/session"
)

// UploadView is the landing page.
type UploadView struct {
	Busy    bool
	Message string
	Error   string
}

// Index returns the landing page, or the dashboard path when the visitor
// already has transactions.
func (c *Controller) Index(st session.State) (UploadView, string) {
	if st.HasTransactions() {
		return UploadView{}, router.Dashboard.Path()
	}
	return UploadView{}, ""
}

// UploadTooLarge is the landing page after an upload over the size limit.
func (c *Controller) UploadTooLarge() UploadView {
	return UploadView{Error: errorf(MsgFileTooLarge)}
}

// Upload forwards the file to the API. On success the rows are stored, a
// user id is ensured and the dashboard path is returned. Busy is cleared on
// every return.
func (c *Controller) Upload(ctx context.Context, st session.State, filename string, file io.Reader) (view UploadView, redirect string, err error) {
	view.Busy = true
	view.Message = MsgProcessing
	defer func() {
		view.Busy = false
	}()

	fail := func(msg string) (UploadView, string, error) {
		view.Message = ""
		view.Error = errorf(msg)
		return view, "", nil
	}

	if file == nil || filename == "" {
		return fail(MsgNoFile)
	}

	txs, err := c.api.UploadTransactions(ctx, filename, file)
	if err != nil {
		c.logger.Warn("upload failed", "filename", filename, "error", err)
		return fail(api.Message(err))
	}
	if len(txs) == 0 {
		return fail(MsgNoTransactions)
	}

	if err := st.SetTransactions(txs); err != nil {
		return view, "", err
	}
	if _, err := st.EnsureUserID(); err != nil {
		return view, "", err
	}

	c.logger.Info("transactions uploaded", "count", len(txs))
	view.Message = ""
	return view, router.Dashboard.Path(), nil
}
